package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: zeebe:26500
quickenrich:
  api_key: secret
workers:
  quickenrich-employee-search:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultQuickEnrichBaseURL, cfg.QuickEnrich.BaseURL)
	assert.Equal(t, DefaultCredentialName, cfg.QuickEnrich.CredentialName)
	assert.Equal(t, 30000, cfg.QuickEnrich.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Observability.MetricsAddress)
	assert.Equal(t, "quickenrich-workers", cfg.Observability.ServiceName)

	worker := cfg.Workers["quickenrich-employee-search"]
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("QUICKENRICH_API_KEY", "from-env")
	t.Setenv("QUICKENRICH_BASE_URL", "http://localhost:9999/")

	path := writeConfig(t, `
camunda:
  broker_address: zeebe:26500
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.QuickEnrich.APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.QuickEnrich.BaseURL)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("QE_TEST_SECRET", "expanded")

	path := writeConfig(t, `
camunda:
  broker_address: zeebe:26500
quickenrich:
  api_key: ${QE_TEST_SECRET}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded", cfg.QuickEnrich.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name: "missing broker",
			body: `
quickenrich:
  api_key: secret
`,
			errMsg: "camunda.broker_address is required",
		},
		{
			name: "no credential source",
			body: `
camunda:
  broker_address: zeebe:26500
`,
			errMsg: "quickenrich.api_key or redis.address is required",
		},
		{
			name: "bad base url",
			body: `
camunda:
  broker_address: zeebe:26500
quickenrich:
  api_key: secret
  base_url: ftp://example.com
`,
			errMsg: "quickenrich.base_url must be an http(s) URL",
		},
		{
			name: "bad sampling ratio",
			body: `
camunda:
  broker_address: zeebe:26500
quickenrich:
  api_key: secret
observability:
  trace_sampling: 2
`,
			errMsg: "observability.trace_sampling must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QUICKENRICH_API_KEY", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{}}

	wc := GetWorkerConfig(cfg, "unknown")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
