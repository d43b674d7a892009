package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/internal/logger"
	"github.com/harun/tanya/pkg/agent"
	"github.com/harun/tanya/pkg/memory"
	"github.com/harun/tanya/pkg/tools"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent locally",
	Long: `Start a local REPL against a freshly configured agent. Useful for
developing prompts and tools without deploying. Type 'quit' to exit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(logger.Config{
		Level:     level,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()
	zl := log.GetZerolog()

	registry := tools.NewRegistry(zl)
	if err := tools.RegisterBuiltins(registry, cfg, zl); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	prompts, err := agent.NewPromptStore(cfg.SystemPromptFile, zl)
	if err != nil {
		return fmt.Errorf("failed to load system prompt: %w", err)
	}

	var memClient *memory.Client
	if cfg.Memory.MemoryID != "" {
		memClient = memory.NewClient(cfg.Memory.Endpoint, cfg.Tenant.Region, zl)
		probe := memory.NewProbe(memClient, cfg, nil, zl)
		probe.Refresh(cmd.Context())
	}

	factory, err := agent.NewFactory(agent.FactoryConfig{
		Config:       cfg,
		Registry:     registry,
		Prompts:      prompts,
		MemoryClient: memClient,
		Logger:       zl,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent factory: %w", err)
	}

	ag, err := factory.New("", "")
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	fmt.Printf("Tanya - %s\n", cfg.Tenant.ID)
	fmt.Printf("Environment: %s\n", cfg.Tenant.Environment)
	fmt.Printf("Model: %s\n", cfg.Model.ID)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Println("Type 'quit' to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil
		case "":
			continue
		}

		result, err := ag.Invoke(cmd.Context(), input)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		fmt.Printf("\nAgent: %s\n\n", result.Response)
	}

	fmt.Println("Goodbye!")
	return scanner.Err()
}
