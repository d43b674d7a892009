package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harun/tanya/internal/metrics"
	"github.com/harun/tanya/pkg/agent"
)

// AgentInvoker is the slice of agent behaviour the handler needs.
type AgentInvoker interface {
	Invoke(ctx context.Context, message string) (*agent.InvocationResult, error)
}

// AgentFactory builds a fresh agent per invocation.
type AgentFactory interface {
	New(sessionID, actorID string) (AgentInvoker, error)
}

// NewAgentFactory adapts the concrete agent factory to the handler's
// narrow interface.
func NewAgentFactory(f *agent.Factory) AgentFactory {
	return factoryAdapter{f}
}

type factoryAdapter struct {
	factory *agent.Factory
}

func (a factoryAdapter) New(sessionID, actorID string) (AgentInvoker, error) {
	return a.factory.New(sessionID, actorID)
}

// Handler validates inbound requests, invokes the agent, and reshapes
// the result into a response envelope. It holds only read-only
// dependencies, so it is safe under arbitrary concurrency.
type Handler struct {
	factory AgentFactory
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a handler. metrics may be nil.
func New(factory AgentFactory, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		factory: factory,
		metrics: m,
		logger:  logger,
	}
}

// Handle processes one invocation: validate, then execute. A single
// attempt, a single round trip — no retries, no timeout enforcement
// beyond the caller's context, no partial results.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	invocationID := uuid.NewString()

	logger := h.logger.With().Str("invocation_id", invocationID).Logger()
	logger.Info().Msg("Handler invoked")

	if req.Message == "" {
		h.recordInvocation(http.StatusBadRequest, start)
		return Response{
			StatusCode: http.StatusBadRequest,
			Body:       ErrorBody{Error: "No message provided"},
		}
	}

	ag, err := h.factory.New(req.SessionID, req.UserID)
	if err != nil {
		return h.failure(logger, start, err)
	}

	result, err := ag.Invoke(ctx, req.Message)
	if err != nil {
		return h.failure(logger, start, err)
	}

	var sessionID *string
	if req.SessionID != "" {
		sessionID = &req.SessionID
	}

	invMetrics := InvocationMetrics{LatencyMs: result.LatencyMs}
	if result.Usage != nil {
		invMetrics.InputTokens = result.Usage.InputTokens
		invMetrics.OutputTokens = result.Usage.OutputTokens
	}

	h.recordInvocation(http.StatusOK, start)
	if h.metrics != nil {
		h.metrics.InputTokensTotal.Add(float64(invMetrics.InputTokens))
		h.metrics.OutputTokensTotal.Add(float64(invMetrics.OutputTokens))
	}

	return Response{
		StatusCode: http.StatusOK,
		Body: SuccessBody{
			Response:  result.Response,
			SessionID: sessionID,
			Metrics:   invMetrics,
		},
	}
}

// failure logs the error with full detail and wraps it in a 500
// envelope. The error's message text is surfaced verbatim; the caller
// owns any retry policy.
func (h *Handler) failure(logger zerolog.Logger, start time.Time, err error) Response {
	logger.Error().
		Err(err).
		Msg("Handler error")

	h.recordInvocation(http.StatusInternalServerError, start)
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body:       ErrorBody{Error: err.Error()},
	}
}

func (h *Handler) recordInvocation(status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.InvocationsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	h.metrics.InvocationDuration.Observe(time.Since(start).Seconds())
}
