package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/pkg/memory"
	"github.com/harun/tanya/pkg/tools"
)

func testFactoryConfig(t *testing.T, cfg *config.Config) FactoryConfig {
	t.Helper()

	registry := tools.NewRegistry(testLogger())
	require.NoError(t, tools.RegisterBuiltins(registry, cfg, testLogger()))

	prompts, err := NewPromptStore("", testLogger())
	require.NoError(t, err)

	return FactoryConfig{
		Config:   cfg,
		Registry: registry,
		Prompts:  prompts,
		Logger:   testLogger(),
	}
}

func TestNewFactory(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := NewFactory(FactoryConfig{})
		assert.Error(t, err)
	})

	t.Run("requires memory client when memory enabled", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Memory.MemoryID = "mem-1"
		cfg.SetMemoryAvailable(true)

		_, err := NewFactory(testFactoryConfig(t, cfg))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "memory client")
	})

	t.Run("succeeds without memory", func(t *testing.T) {
		factory, err := NewFactory(testFactoryConfig(t, config.DefaultConfig()))

		require.NoError(t, err)
		assert.NotNil(t, factory)
	})
}

func TestFactoryNew(t *testing.T) {
	t.Run("builds agent without memory session", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.AI.AnthropicAPIKey = "sk-ant-test"
		factory, err := NewFactory(testFactoryConfig(t, cfg))
		require.NoError(t, err)

		agent, err := factory.New("", "")

		require.NoError(t, err)
		assert.Nil(t, agent.Session())
		assert.Equal(t, "anthropic", agent.provider.Provider())
		assert.Contains(t, agent.systemPrompt, "demo-tenant")
	})

	t.Run("derives session and actor ids when memory enabled", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.AI.AnthropicAPIKey = "sk-ant-test"
		cfg.Memory.MemoryID = "mem-1"
		cfg.SetMemoryAvailable(true)

		fc := testFactoryConfig(t, cfg)
		fc.MemoryClient = memory.NewClient("http://localhost:0", cfg.Tenant.Region, testLogger())
		factory, err := NewFactory(fc)
		require.NoError(t, err)

		agent, err := factory.New("", "")

		require.NoError(t, err)
		require.NotNil(t, agent.Session())
		assert.Regexp(t, `^session-\d{14}$`, agent.Session().SessionID())
		assert.Equal(t, "actor-demo-tenant", agent.Session().ActorID())
	})

	t.Run("caller-supplied ids are kept", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.AI.AnthropicAPIKey = "sk-ant-test"
		cfg.Memory.MemoryID = "mem-1"
		cfg.SetMemoryAvailable(true)

		fc := testFactoryConfig(t, cfg)
		fc.MemoryClient = memory.NewClient("http://localhost:0", cfg.Tenant.Region, testLogger())
		factory, err := NewFactory(fc)
		require.NoError(t, err)

		agent, err := factory.New("session-custom", "actor-custom")

		require.NoError(t, err)
		assert.Equal(t, "session-custom", agent.Session().SessionID())
		assert.Equal(t, "actor-custom", agent.Session().ActorID())
	})

	t.Run("missing credential fails", func(t *testing.T) {
		factory, err := NewFactory(testFactoryConfig(t, config.DefaultConfig()))
		require.NoError(t, err)

		_, err = factory.New("", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})
}

func TestDeriveSessionID(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "session-20250314092653", DeriveSessionID(now))
}

func TestDeriveActorID(t *testing.T) {
	assert.Equal(t, "actor-acme", DeriveActorID("acme"))
}
