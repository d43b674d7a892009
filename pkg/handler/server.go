package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/harun/tanya/internal/metrics"
)

// ServerOptions configures the invocation HTTP server.
type ServerOptions struct {
	Host               string
	Port               int
	RateLimitPerSecond int
}

// limiterCleanupInterval is how often stale per-IP limiters are swept;
// limiterMaxAge is how long an idle entry survives.
const (
	limiterCleanupInterval = 10 * time.Minute
	limiterMaxAge          = 30 * time.Minute
)

// Server exposes the handler over HTTP: POST /invocations for the
// request envelope, GET /ping for health, GET /metrics for Prometheus.
// Concurrency and scaling beyond per-IP rate limiting belong to the
// hosting runtime.
type Server struct {
	options        ServerOptions
	server         *http.Server
	handler        *Handler
	metrics        *metrics.Metrics
	rateLimiter    *RateLimiter
	logger         zerolog.Logger
	startTime      time.Time
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
	cleanupDone    chan struct{}
}

// NewServer creates an invocation server.
func NewServer(options ServerOptions, h *Handler, m *metrics.Metrics, logger zerolog.Logger) (*Server, error) {
	if h == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.Port == 0 {
		options.Port = 8080
	}
	if options.RateLimitPerSecond == 0 {
		options.RateLimitPerSecond = 50
	}

	s := &Server{
		options:     options,
		handler:     h,
		metrics:     m,
		rateLimiter: NewRateLimiter(float64(options.RateLimitPerSecond), options.RateLimitPerSecond*2),
		logger:      logger,
		startTime:   time.Now(),
		cleanupDone: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/invocations", s.handleInvocation)
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", options.Host, options.Port),
		Handler: mux,
	}

	return s, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start() error {
	go s.cleanupLoop(limiterCleanupInterval)

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting invocation server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start invocation server: %w", err)
	}
	return nil
}

// cleanupLoop sweeps idle per-IP limiters so the map doesn't grow
// without bound in a long-running process.
func (s *Server) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.rateLimiter.Cleanup(limiterMaxAge)
		case <-s.cleanupDone:
			return
		}
	}
}

// Stop gracefully stops the server, draining in-flight requests. Safe
// to call even if Start never ran.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	close(s.cleanupDone)

	s.logger.Info().Msg("Shutting down invocation server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown invocation server: %w", err)
	}

	s.logger.Info().Msg("Invocation server stopped")
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Seconds(),
		"timestamp": time.Now().UnixMilli(),
	})
}

func (s *Server) handleInvocation(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	if s.isShuttingDown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.shutdownMu.RUnlock()

	s.inFlightReqs.Add(1)
	defer s.inFlightReqs.Done()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID, _ := gonanoid.New()
	w.Header().Set("X-Request-Id", requestID)

	ip := s.clientIP(r)
	if !s.rateLimiter.Allow(ip) {
		s.logger.Warn().Str("ip", ip).Msg("Rate limit exceeded")
		writeJSON(w, http.StatusTooManyRequests, ErrorBody{Error: "Too many requests"})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid request body"})
		return
	}

	resp := s.handler.Handle(r.Context(), req)
	writeJSON(w, resp.StatusCode, resp.Body)
}

func (s *Server) clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
