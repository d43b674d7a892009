package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/tanya/internal/metrics"
	"github.com/harun/tanya/pkg/agent"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
}

// stubFactory records construction calls and hands out a scripted
// agent.
type stubFactory struct {
	agent      AgentInvoker
	err        error
	newCalls   int
	sessionIDs []string
	actorIDs   []string
}

func (f *stubFactory) New(sessionID, actorID string) (AgentInvoker, error) {
	f.newCalls++
	f.sessionIDs = append(f.sessionIDs, sessionID)
	f.actorIDs = append(f.actorIDs, actorID)
	if f.err != nil {
		return nil, f.err
	}
	return f.agent, nil
}

type stubAgent struct {
	result *agent.InvocationResult
	err    error
}

func (a *stubAgent) Invoke(ctx context.Context, message string) (*agent.InvocationResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func TestHandle(t *testing.T) {
	t.Run("empty message returns 400 without building an agent", func(t *testing.T) {
		factory := &stubFactory{}
		h := New(factory, nil, testLogger())

		resp := h.Handle(context.Background(), Request{Message: ""})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, ErrorBody{Error: "No message provided"}, resp.Body)
		assert.Zero(t, factory.newCalls)
	})

	t.Run("successful invocation returns the full envelope", func(t *testing.T) {
		factory := &stubFactory{agent: &stubAgent{result: &agent.InvocationResult{
			Response:  "Hi there",
			Usage:     &agent.TokenUsage{InputTokens: 5, OutputTokens: 3},
			LatencyMs: 120,
		}}}
		h := New(factory, metrics.NewMetrics(), testLogger())

		resp := h.Handle(context.Background(), Request{Message: "Hello", SessionID: "session-1", UserID: "user-1"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, ok := resp.Body.(SuccessBody)
		require.True(t, ok)
		assert.Equal(t, "Hi there", body.Response)
		require.NotNil(t, body.SessionID)
		assert.Equal(t, "session-1", *body.SessionID)
		assert.Equal(t, 5, body.Metrics.InputTokens)
		assert.Equal(t, 3, body.Metrics.OutputTokens)
		assert.Equal(t, int64(120), body.Metrics.LatencyMs)

		assert.Equal(t, []string{"session-1"}, factory.sessionIDs)
		assert.Equal(t, []string{"user-1"}, factory.actorIDs)
	})

	t.Run("missing session id renders as null", func(t *testing.T) {
		factory := &stubFactory{agent: &stubAgent{result: &agent.InvocationResult{Response: "ok"}}}
		h := New(factory, nil, testLogger())

		resp := h.Handle(context.Background(), Request{Message: "Hello"})

		body, ok := resp.Body.(SuccessBody)
		require.True(t, ok)
		assert.Nil(t, body.SessionID)
	})

	t.Run("missing usage defaults metric counts to zero", func(t *testing.T) {
		factory := &stubFactory{agent: &stubAgent{result: &agent.InvocationResult{Response: "ok", LatencyMs: 7}}}
		h := New(factory, nil, testLogger())

		resp := h.Handle(context.Background(), Request{Message: "Hello"})

		body, ok := resp.Body.(SuccessBody)
		require.True(t, ok)
		assert.Equal(t, 0, body.Metrics.InputTokens)
		assert.Equal(t, 0, body.Metrics.OutputTokens)
		assert.Equal(t, int64(7), body.Metrics.LatencyMs)
	})

	t.Run("agent construction failure returns 500 with the error text", func(t *testing.T) {
		factory := &stubFactory{err: fmt.Errorf("model claude-x requires ANTHROPIC_API_KEY")}
		h := New(factory, nil, testLogger())

		resp := h.Handle(context.Background(), Request{Message: "Hello"})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, ErrorBody{Error: "model claude-x requires ANTHROPIC_API_KEY"}, resp.Body)
	})

	t.Run("invocation failure returns 500 with the error text", func(t *testing.T) {
		factory := &stubFactory{agent: &stubAgent{err: fmt.Errorf("upstream unavailable")}}
		h := New(factory, nil, testLogger())

		resp := h.Handle(context.Background(), Request{Message: "Hello"})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, ErrorBody{Error: "upstream unavailable"}, resp.Body)
	})
}
