package memory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/internal/metrics"
)

func TestProbeRefresh(t *testing.T) {
	t.Run("reachable service enables memory", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		cfg := config.DefaultConfig()
		cfg.Memory.MemoryID = "mem-1"
		probe := NewProbe(NewClient(srv.URL, cfg.Tenant.Region, testLogger()), cfg, metrics.NewMetrics(), testLogger())

		assert.True(t, probe.Refresh(context.Background()))
		assert.True(t, cfg.MemoryEnabled())
	})

	t.Run("unreachable service disables memory", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Memory.MemoryID = "mem-1"
		cfg.SetMemoryAvailable(true)
		probe := NewProbe(NewClient("http://127.0.0.1:1", cfg.Tenant.Region, testLogger()), cfg, nil, testLogger())

		assert.False(t, probe.Refresh(context.Background()))
		assert.False(t, cfg.MemoryEnabled())
	})

	t.Run("flag flips when availability changes", func(t *testing.T) {
		var healthy atomic.Bool
		healthy.Store(true)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if healthy.Load() {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		cfg := config.DefaultConfig()
		cfg.Memory.MemoryID = "mem-1"
		probe := NewProbe(NewClient(srv.URL, cfg.Tenant.Region, testLogger()), cfg, nil, testLogger())

		require.True(t, probe.Refresh(context.Background()))
		assert.True(t, cfg.MemoryEnabled())

		healthy.Store(false)
		require.False(t, probe.Refresh(context.Background()))
		assert.False(t, cfg.MemoryEnabled())
	})
}

func TestProbeStartStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	probe := NewProbe(NewClient(srv.URL, cfg.Tenant.Region, testLogger()), cfg, nil, testLogger())

	require.NoError(t, probe.Start())
	probe.Stop()
}
