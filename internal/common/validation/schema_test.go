package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"name"},
		Properties: map[string]Property{
			"name": {Type: "string", MinLength: Int(1)},
			"tags": {Type: "array", Items: &Property{Type: "string"}},
			"mode": {Type: "string", Enum: []string{"a", "b"}},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name   string
		input  map[string]interface{}
		valid  bool
		fields []string
	}{
		{"valid", map[string]interface{}{"name": "x", "tags": []interface{}{"t"}}, true, nil},
		{"extra fields allowed", map[string]interface{}{"name": "x", "other": 1}, true, nil},
		{"missing required", map[string]interface{}{}, false, []string{"(root)"}},
		{"wrong type", map[string]interface{}{"name": 5}, false, []string{"name"}},
		{"bad array item", map[string]interface{}{"name": "x", "tags": []interface{}{1}}, false, []string{"tags.0"}},
		{"enum", map[string]interface{}{"name": "x", "mode": "c"}, false, []string{"mode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
			for _, f := range tt.fields {
				assert.True(t, result.HasErrors(f), "expected error on %s, got %v", f, result.GetErrorMessages())
			}
		})
	}
}

func TestValidateInput_ClosedObject(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = Bool(false)

	result := ValidateInput(map[string]interface{}{"name": "x", "other": 1}, schema)
	assert.False(t, result.Valid)
}

func TestJSONSchema_ToMap(t *testing.T) {
	m := testSchema().ToMap()
	require.NotNil(t, m)
	assert.Equal(t, "object", m["type"])
	assert.NotContains(t, m, "additionalProperties")

	props := m["properties"].(map[string]interface{})
	assert.Contains(t, props, "tags")
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("quickenrich.employee.search"))
	assert.Error(t, ValidateActivityNaming("quickenrich.employee"))
	assert.Error(t, ValidateActivityNaming("QuickEnrich.employee.search"))
}
