package agent

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/internal/metrics"
	"github.com/harun/tanya/pkg/memory"
	"github.com/harun/tanya/pkg/tools"
)

// Factory assembles agents. The process-wide pieces (config, tool
// registry, prompt store, memory client) are built once; agents are
// built fresh per invocation and never pooled, trading latency for
// statelessness.
type Factory struct {
	cfg       *config.Config
	registry  *tools.Registry
	prompts   *PromptStore
	memClient *memory.Client
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// FactoryConfig holds factory dependencies. MemoryClient and Metrics
// may be nil.
type FactoryConfig struct {
	Config       *config.Config
	Registry     *tools.Registry
	Prompts      *PromptStore
	MemoryClient *memory.Client
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
}

// NewFactory creates an agent factory.
func NewFactory(fc FactoryConfig) (*Factory, error) {
	if fc.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if fc.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if fc.Prompts == nil {
		return nil, fmt.Errorf("prompt store is required")
	}
	if fc.Config.MemoryEnabled() && fc.MemoryClient == nil {
		return nil, fmt.Errorf("memory client is required when memory is enabled")
	}

	return &Factory{
		cfg:       fc.Config,
		registry:  fc.Registry,
		prompts:   fc.Prompts,
		memClient: fc.MemoryClient,
		metrics:   fc.Metrics,
		logger:    fc.Logger,
	}, nil
}

// New builds a ready-to-invoke agent. sessionID and actorID may be
// empty; when memory is enabled they are derived (timestamp-based
// session, tenant-based actor). No network call happens here —
// misconfiguration surfaces on Invoke.
func (f *Factory) New(sessionID, actorID string) (*Agent, error) {
	provider, err := NewProvider(f.cfg.Model.ID, f.cfg.AI)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := f.prompts.Render(f.cfg.Tenant.ID, f.cfg.Tenant.Environment)
	if err != nil {
		return nil, err
	}

	var session *memory.Session
	if f.cfg.MemoryEnabled() {
		if sessionID == "" {
			sessionID = DeriveSessionID(time.Now())
		}
		if actorID == "" {
			actorID = DeriveActorID(f.cfg.Tenant.ID)
		}

		f.logger.Info().
			Str("memory_id", f.cfg.Memory.MemoryID).
			Str("session_id", sessionID).
			Msg("Configuring session memory")

		session = memory.NewSession(f.memClient, f.cfg.Memory.MemoryID, sessionID, actorID, f.logger)
	}

	agent := &Agent{
		provider:     provider,
		model:        f.cfg.Model,
		systemPrompt: systemPrompt,
		registry:     f.registry,
		session:      session,
		metrics:      f.metrics,
		logger:       f.logger,
	}

	f.logger.Info().
		Str("tenant", f.cfg.Tenant.ID).
		Int("tools", len(f.registry.List())).
		Msg("Agent created")

	return agent, nil
}

// DeriveSessionID synthesizes a session identifier from a timestamp.
// Format: session-YYYYMMDDHHMMSS.
func DeriveSessionID(now time.Time) string {
	return "session-" + now.Format("20060102150405")
}

// DeriveActorID synthesizes an actor identifier from the tenant.
func DeriveActorID(tenantID string) string {
	return "actor-" + tenantID
}
