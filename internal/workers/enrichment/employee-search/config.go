package employeesearch

import (
	"fmt"
	"time"

	"quickenrich-workers/internal/common/config"
	"quickenrich-workers/internal/common/credentials"
)

// WorkerName is the key of this worker under "workers" in the config file.
const WorkerName = "quickenrich-employee-search"

type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxJobsActive  int           `mapstructure:"max_jobs_active"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	ContinueOnFail bool          `mapstructure:"continue_on_fail"`
	CredentialName string        `mapstructure:"credential_name"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		CredentialName: credentials.CredentialType,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.CredentialName == "" {
		return fmt.Errorf("credential_name is required")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	workerCfg := config.GetWorkerConfig(appConfig, WorkerName)
	cfg.Enabled = workerCfg.Enabled
	if workerCfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = workerCfg.MaxJobsActive
	}
	if workerCfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(workerCfg.Timeout)
	}
	if workerCfg.MaxRetries > 0 {
		cfg.MaxRetries = workerCfg.MaxRetries
	}

	cfg.ContinueOnFail = appConfig.QuickEnrich.ContinueOnFail
	if appConfig.QuickEnrich.CredentialName != "" {
		cfg.CredentialName = appConfig.QuickEnrich.CredentialName
	}
	return cfg
}
