package memory

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/internal/metrics"
)

// Probe resolves the memory capability flag. It runs one synchronous
// check at startup and refreshes the flag on a schedule while the
// server runs, so the agent factory can branch on an explicit flag
// instead of discovering unreachability mid-invocation.
type Probe struct {
	client  *Client
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
	cron    *cron.Cron
}

// probeSchedule is how often the availability flag is refreshed.
const probeSchedule = "@every 1m"

// NewProbe creates a probe. metrics may be nil.
func NewProbe(client *Client, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Probe {
	return &Probe{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Refresh performs one availability check and updates the flag.
func (p *Probe) Refresh(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.client.Health(checkCtx)
	available := err == nil

	if !available {
		p.logger.Warn().Err(err).Msg("Memory service probe failed")
	}

	p.cfg.SetMemoryAvailable(available)
	if p.metrics != nil {
		if available {
			p.metrics.MemoryAvailable.Set(1)
		} else {
			p.metrics.MemoryAvailable.Set(0)
		}
	}
	return available
}

// Start begins periodic refreshing. Call Refresh once before Start if
// the flag is needed immediately.
func (p *Probe) Start() error {
	_, err := p.cron.AddFunc(probeSchedule, func() {
		p.Refresh(context.Background())
	})
	if err != nil {
		return err
	}
	p.cron.Start()
	p.logger.Info().Str("schedule", probeSchedule).Msg("Memory availability probe started")
	return nil
}

// Stop halts periodic refreshing.
func (p *Probe) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}
