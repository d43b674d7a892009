package config

import (
	"encoding/json"
	"sync/atomic"
)

// Config holds the process-wide Tanya configuration. It is resolved
// once at startup and passed by reference to every component; nothing
// in this struct is mutated after Load returns except the memory
// availability flag, which the probe refreshes through SetMemoryAvailable.
type Config struct {
	// Tenant identity
	Tenant TenantConfig `json:"tenant" mapstructure:"tenant"`

	// Model configuration
	Model ModelConfig `json:"model" mapstructure:"model"`

	// Remote session memory (optional)
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`

	// AI provider credentials
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Optional system prompt override file
	SystemPromptFile string `json:"system_prompt_file" mapstructure:"system_prompt_file"`

	// memoryAvailable is resolved at startup by probing the memory
	// endpoint and refreshed by the probe while serving. Request
	// handlers read it concurrently, so access goes through
	// MemoryEnabled/SetMemoryAvailable.
	memoryAvailable atomic.Bool
}

// TenantConfig identifies the tenant this process serves.
type TenantConfig struct {
	ID          string `json:"id" mapstructure:"id"`
	Environment string `json:"environment" mapstructure:"environment"`
	Region      string `json:"region" mapstructure:"region"`
	Tier        string `json:"tier" mapstructure:"tier"`
}

// ModelConfig holds the model binding parameters. Temperature and
// MaxTokens are fixed decoding parameters, not request inputs.
type ModelConfig struct {
	ID          string  `json:"id" mapstructure:"id"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// MemoryConfig holds remote session memory settings. Integration is
// active only when MemoryID is set and the service answered the
// startup probe.
type MemoryConfig struct {
	MemoryID string `json:"memory_id" mapstructure:"memory_id"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
}

// AIConfig holds provider API keys.
type AIConfig struct {
	AnthropicAPIKey string `json:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key" mapstructure:"openai_api_key"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host               string `json:"host" mapstructure:"host"`
	Port               int    `json:"port" mapstructure:"port"`
	RateLimitPerSecond int    `json:"rate_limit_per_second" mapstructure:"rate_limit_per_second"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with the documented defaults. These
// match the template's behaviour when no environment is provided.
func DefaultConfig() *Config {
	return &Config{
		Tenant: TenantConfig{
			ID:          "demo-tenant",
			Environment: "dev",
			Region:      "eu-west-2",
			Tier:        "professional",
		},
		Model: ModelConfig{
			ID:          "claude-sonnet-4-20250514",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			RateLimitPerSecond: 50,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}

// MemoryEnabled reports whether the remote memory integration is
// active for this process.
func (c *Config) MemoryEnabled() bool {
	return c.Memory.MemoryID != "" && c.memoryAvailable.Load()
}

// SetMemoryAvailable records the latest probe outcome.
func (c *Config) SetMemoryAvailable(ok bool) {
	c.memoryAvailable.Store(ok)
}

// String returns a JSON representation of the config. API keys are
// omitted so the value is safe to log.
func (c *Config) String() string {
	view := struct {
		Tenant           TenantConfig  `json:"tenant"`
		Model            ModelConfig   `json:"model"`
		Memory           MemoryConfig  `json:"memory"`
		Server           ServerConfig  `json:"server"`
		Logging          LoggingConfig `json:"logging"`
		SystemPromptFile string        `json:"system_prompt_file"`
	}{c.Tenant, c.Model, c.Memory, c.Server, c.Logging, c.SystemPromptFile}

	data, _ := json.MarshalIndent(&view, "", "  ")
	return string(data)
}
