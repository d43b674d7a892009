package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Environment variable bindings. These are the names the hosting
// runtime (or CI) sets; each falls back to the documented default
// when absent or empty.
var envBindings = map[string]string{
	"tenant.id":            "TENANT_ID",
	"tenant.environment":   "ENVIRONMENT",
	"tenant.region":        "REGION",
	"tenant.tier":          "TENANT_TIER",
	"model.id":             "MODEL_ID",
	"memory.memory_id":     "MEMORY_ID",
	"memory.endpoint":      "MEMORY_ENDPOINT",
	"ai.anthropic_api_key": "ANTHROPIC_API_KEY",
	"ai.openai_api_key":    "OPENAI_API_KEY",
	"logging.level":        "LOG_LEVEL",
	"system_prompt_file":   "SYSTEM_PROMPT_FILE",
	"server.port":          "PORT",
}

// Loader handles configuration loading.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader. An empty configPath means
// environment-only configuration.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load resolves the configuration: defaults, then optional JSON config
// file, then environment variables. No validation beyond presence is
// performed; bad model ids or unreachable regions surface as delegated
// call errors downstream.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if l.configPath != "" {
		if _, err := os.Stat(l.configPath); err == nil {
			v.SetConfigFile(l.configPath)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Viper leaves defaults untouched only for unset keys; empty
	// environment values must not blank out the defaults.
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Tenant.ID == "" {
		cfg.Tenant.ID = def.Tenant.ID
	}
	if cfg.Tenant.Environment == "" {
		cfg.Tenant.Environment = def.Tenant.Environment
	}
	if cfg.Tenant.Region == "" {
		cfg.Tenant.Region = def.Tenant.Region
	}
	if cfg.Tenant.Tier == "" {
		cfg.Tenant.Tier = def.Tenant.Tier
	}
	if cfg.Model.ID == "" {
		cfg.Model.ID = def.Model.ID
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = def.Model.Temperature
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = def.Model.MaxTokens
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.RateLimitPerSecond == 0 {
		cfg.Server.RateLimitPerSecond = def.Server.RateLimitPerSecond
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// Load is a convenience function that creates a loader and loads the
// config.
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}
