package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/config.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/config.json", loader.configPath)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("defaults when nothing is configured", func(t *testing.T) {
		loader := NewLoader("")
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.Equal(t, "demo-tenant", cfg.Tenant.ID)
		assert.Equal(t, "dev", cfg.Tenant.Environment)
		assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.ID)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("TENANT_ID", "acme")
		t.Setenv("ENVIRONMENT", "prod")
		t.Setenv("REGION", "us-east-1")
		t.Setenv("MODEL_ID", "gpt-4o")
		t.Setenv("MEMORY_ID", "mem-42")
		t.Setenv("TENANT_TIER", "enterprise")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, "acme", cfg.Tenant.ID)
		assert.Equal(t, "prod", cfg.Tenant.Environment)
		assert.Equal(t, "us-east-1", cfg.Tenant.Region)
		assert.Equal(t, "gpt-4o", cfg.Model.ID)
		assert.Equal(t, "mem-42", cfg.Memory.MemoryID)
		assert.Equal(t, "enterprise", cfg.Tenant.Tier)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("empty environment values keep defaults", func(t *testing.T) {
		t.Setenv("TENANT_ID", "")
		t.Setenv("MODEL_ID", "")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, "demo-tenant", cfg.Tenant.ID)
		assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.ID)
	})

	t.Run("missing memory id leaves memory disabled", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		assert.Empty(t, cfg.Memory.MemoryID)
		assert.False(t, cfg.MemoryEnabled())
	})

	t.Run("load config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		testConfig := `{
			"tenant": {"id": "file-tenant", "environment": "staging"},
			"model": {"id": "claude-opus-4"},
			"memory": {"memory_id": "mem-file", "endpoint": "http://memory.internal"}
		}`
		err := os.WriteFile(configPath, []byte(testConfig), 0644)
		require.NoError(t, err)

		cfg, err := Load(configPath)

		require.NoError(t, err)
		assert.Equal(t, "file-tenant", cfg.Tenant.ID)
		assert.Equal(t, "staging", cfg.Tenant.Environment)
		assert.Equal(t, "claude-opus-4", cfg.Model.ID)
		assert.Equal(t, "mem-file", cfg.Memory.MemoryID)
		assert.Equal(t, "http://memory.internal", cfg.Memory.Endpoint)
		// Unset fields still get defaults
		assert.Equal(t, "eu-west-2", cfg.Tenant.Region)
		assert.Equal(t, 2048, cfg.Model.MaxTokens)
	})

	t.Run("missing file falls back to environment and defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.json"))

		require.NoError(t, err)
		assert.Equal(t, "demo-tenant", cfg.Tenant.ID)
	})
}
