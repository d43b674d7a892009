package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/tanya/internal/config"
)

// RegisterBuiltins registers the tenant tool set. The set is closed:
// the agent sees exactly these three tools.
func RegisterBuiltins(registry *Registry, cfg *config.Config, logger zerolog.Logger) error {
	defs := []Definition{
		tenantInfoTool(cfg),
		storePreferenceTool(logger),
		currentTimeTool(),
	}

	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", def.Name, err)
		}
	}
	return nil
}

// tenantInfoTool reports the tenant identity resolved at startup.
// Deterministic within a process: the config is read-only.
func tenantInfoTool(cfg *config.Config) Definition {
	return Definition{
		Name: "get_tenant_info",
		Description: "Get information about the current tenant. " +
			"Use this tool when the user asks about their account, tenant, or organisation details.",
		Parameters: []Parameter{},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{
				"tenant_id":    cfg.Tenant.ID,
				"environment":  cfg.Tenant.Environment,
				"region":       cfg.Tenant.Region,
				"capabilities": []string{"chat", "memory", "tools"},
				"tier":         cfg.Tenant.Tier,
			}, nil
		},
	}
}

// storePreferenceTool is a template stub: it logs and acknowledges
// without persisting. Real deployments replace the handler with a
// durable write to the memory service.
func storePreferenceTool(logger zerolog.Logger) Definition {
	return Definition{
		Name: "store_user_preference",
		Description: "Store a user preference for future reference. " +
			"Use this tool when the user explicitly states a preference they want remembered, " +
			"such as communication style, topics of interest, or formatting preferences.",
		Parameters: []Parameter{
			{
				Name:        "preference_type",
				Type:        "string",
				Description: "Category of preference (e.g., \"communication_style\", \"topic_interest\", \"format_preference\")",
				Required:    true,
			},
			{
				Name:        "preference_value",
				Type:        "string",
				Description: "The preference value to store",
				Required:    true,
			},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			prefType, _ := params["preference_type"].(string)
			prefValue, _ := params["preference_value"].(string)

			logger.Info().
				Str("preference_type", prefType).
				Str("preference_value", prefValue).
				Msg("Storing preference")

			return fmt.Sprintf("Noted: I'll remember your %s preference.", prefType), nil
		},
	}
}

// currentTimeTool returns the wall clock as an ISO 8601 string.
func currentTimeTool() Definition {
	return Definition{
		Name: "get_current_time",
		Description: "Get the current date and time. " +
			"Use this tool when the user asks about the current time, date, or needs time-based context.",
		Parameters: []Parameter{},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return time.Now().Format(time.RFC3339), nil
		},
	}
}
