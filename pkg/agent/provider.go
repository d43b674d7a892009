package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/harun/tanya/internal/config"
)

// LLMProvider is an interface for LLM API providers.
type LLMProvider interface {
	// Call makes an LLM API call.
	Call(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Provider returns the provider name.
	Provider() string
}

// LLMRequest contains the request parameters for one model call.
type LLMRequest struct {
	Model        string
	Messages     []Message
	Tools        []ToolSpec
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// LLMResponse contains the response from the model.
type LLMResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// NewProvider selects a provider from the model identifier prefix and
// builds it with the matching credential.
func NewProvider(modelID string, ai config.AIConfig) (LLMProvider, error) {
	switch {
	case strings.HasPrefix(modelID, "claude"):
		if ai.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("model %s requires ANTHROPIC_API_KEY", modelID)
		}
		return NewAnthropicProvider(ai.AnthropicAPIKey), nil
	case strings.HasPrefix(modelID, "gpt") || isOSeriesModel(modelID):
		if ai.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("model %s requires OPENAI_API_KEY", modelID)
		}
		return NewOpenAIProvider(ai.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported model: %s", modelID)
	}
}

// isOSeriesModel matches OpenAI reasoning models (o1, o3-mini, ...)
// without capturing every model id that merely starts with "o".
func isOSeriesModel(modelID string) bool {
	return len(modelID) >= 2 && modelID[0] == 'o' && modelID[1] >= '0' && modelID[1] <= '9'
}
