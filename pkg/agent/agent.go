package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/internal/metrics"
	"github.com/harun/tanya/pkg/memory"
	"github.com/harun/tanya/pkg/tools"
)

// maxToolTurns bounds the tool execution loop.
const maxToolTurns = 10

// Agent is a transient, per-invocation composition of a model binding,
// a system prompt, the tool registry, and an optional session memory
// binding. It holds no state that outlives Invoke.
type Agent struct {
	provider     LLMProvider
	model        config.ModelConfig
	systemPrompt string
	registry     *tools.Registry
	session      *memory.Session
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// Session returns the memory session binding, or nil when memory is
// disabled.
func (a *Agent) Session() *memory.Session {
	return a.session
}

// Invoke runs the agent synchronously on one user message: a single
// attempt, no retries; any timeout policy belongs to the caller's
// context. The model decides which tools to call and how often; this
// layer only executes them and feeds results back, up to maxToolTurns.
func (a *Agent) Invoke(ctx context.Context, message string) (*InvocationResult, error) {
	start := time.Now()

	systemPrompt := a.systemPrompt
	if a.session != nil {
		// Memory retrieval is best effort: a failed read degrades
		// context, a failed write would silently break continuity.
		memCtx, err := a.session.Context(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Failed to load memory context")
		} else if memCtx != "" {
			systemPrompt = fmt.Sprintf("%s\n\n%s", systemPrompt, memCtx)
		}
	}

	messages := []Message{
		{Role: "user", Content: message},
	}

	response, allToolCalls, err := a.runToolLoop(ctx, systemPrompt, messages)
	if err != nil {
		return nil, err
	}

	if a.session != nil {
		if err := a.session.Append(ctx, "user", message); err != nil {
			a.recordMemoryAppendError()
			return nil, err
		}
		if err := a.session.Append(ctx, "assistant", response.Content); err != nil {
			a.recordMemoryAppendError()
			return nil, err
		}
	}

	result := &InvocationResult{
		Response:  response.Content,
		ToolCalls: allToolCalls,
		Usage:     response.Usage,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if a.session != nil {
		result.SessionID = a.session.SessionID()
	}
	return result, nil
}

// runToolLoop calls the model, executing requested tools and feeding
// results back until the model answers with text or the turn budget
// runs out. Usage is accumulated across turns.
func (a *Agent) runToolLoop(ctx context.Context, systemPrompt string, messages []Message) (*LLMResponse, []ToolCall, error) {
	toolSpecs := a.buildToolSpecs()
	allToolCalls := []ToolCall{}
	accumulated := &TokenUsage{}

	for turn := 0; turn < maxToolTurns; turn++ {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		response, err := a.provider.Call(ctx, LLMRequest{
			Model:        a.model.ID,
			Messages:     messages,
			Tools:        toolSpecs,
			Temperature:  a.model.Temperature,
			MaxTokens:    a.model.MaxTokens,
			SystemPrompt: systemPrompt,
		})
		if err != nil {
			return nil, nil, err
		}

		if response.Usage != nil {
			accumulated.InputTokens += response.Usage.InputTokens
			accumulated.OutputTokens += response.Usage.OutputTokens
		}

		if len(response.ToolCalls) == 0 {
			response.Usage = accumulated
			return response, allToolCalls, nil
		}

		messages = append(messages, Message{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		for _, toolCall := range response.ToolCalls {
			messages = append(messages, Message{
				Role:       "tool",
				Content:    a.executeTool(ctx, toolCall),
				ToolCallID: toolCall.ID,
			})
		}

		allToolCalls = append(allToolCalls, response.ToolCalls...)
	}

	return nil, nil, fmt.Errorf("maximum tool execution turns exceeded")
}

func (a *Agent) buildToolSpecs() []ToolSpec {
	defs := a.registry.List()
	specs := make([]ToolSpec, 0, len(defs))
	for _, def := range defs {
		specs = append(specs, ToolSpec{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: tools.InputSchema(*def),
		})
	}
	return specs
}

// executeTool runs one tool call and renders the result for the model.
// Tool failures are reported back to the model rather than aborting
// the invocation.
func (a *Agent) executeTool(ctx context.Context, call ToolCall) string {
	result := a.registry.Execute(ctx, call.Name, call.Parameters)

	if a.metrics != nil {
		status := "success"
		if result.Error != "" {
			status = "error"
			a.metrics.ToolExecutionErrorsTotal.WithLabelValues(call.Name).Inc()
		}
		a.metrics.ToolExecutionsTotal.WithLabelValues(call.Name, status).Inc()
	}

	if result.Error != "" {
		return result.Error
	}

	switch out := result.Output.(type) {
	case string:
		return out
	default:
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Sprintf("%v", out)
		}
		return string(data)
	}
}

func (a *Agent) recordMemoryAppendError() {
	if a.metrics != nil {
		a.metrics.MemoryAppendErrors.Inc()
	}
}
