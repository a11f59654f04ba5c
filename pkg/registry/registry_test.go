package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: "Search Employee",
		Category:    "enrichment",
		TaskType:    id,
		Properties: []Property{
			{Name: "searchMethod", Type: "options"},
			{Name: "linkedinUrl", Type: "string", ShowWhen: map[string][]string{"searchMethod": {"linkedin"}}},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")

	reg, err := LoadOrNew(path)
	require.NoError(t, err)
	assert.Empty(t, reg.Activities)

	assert.False(t, reg.Upsert(activity("quickenrich.employee.search")))
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 1)
	assert.Len(t, loaded.Activities[0].Properties, 2)

	updated := activity("quickenrich.employee.search")
	updated.Version = "1.1.0"
	assert.True(t, loaded.Upsert(updated))
	found, ok := loaded.Find("quickenrich.employee.search")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", found.Version)
	assert.Len(t, loaded.Activities, 1)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&ActivityRegistry{}).Validate())

	reg := &ActivityRegistry{Activities: []Activity{activity("a.b.c")}}
	assert.NoError(t, reg.Validate())

	reg.Activities = append(reg.Activities, activity("a.b.c"))
	assert.ErrorContains(t, reg.Validate(), "duplicate activity ID")

	broken := activity("x.y.z")
	broken.Properties[1].ShowWhen = map[string][]string{"mode": {"x"}}
	reg = &ActivityRegistry{Activities: []Activity{broken}}
	assert.ErrorContains(t, reg.Validate(), "unknown property mode")

	missing := activity("x.y.z")
	missing.Category = ""
	reg = &ActivityRegistry{Activities: []Activity{missing}}
	assert.ErrorContains(t, reg.Validate(), "Category")
}
