package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upb/llm-gateway/app"
	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/models"
)

var (
	tierFlag   string
	systemFlag string
	noSanitize bool
)

var rootCmd = &cobra.Command{
	Use:           "llm-gateway",
	Short:         "Tiered LLM completion gateway",
	Long:          "llm-gateway sends prompts through configured model tiers with retry and fallback.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tierFlag, "tier", "", "model tier to use (primary, fast, deep)")
	rootCmd.PersistentFlags().StringVar(&systemFlag, "system", "", "system prompt")
	rootCmd.PersistentFlags().BoolVar(&noSanitize, "no-sanitize", false, "skip prompt sanitization")

	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(completeJSONCmd)
}

// setup loads configuration from the environment and wires the dependency graph.
func setup(ctx context.Context) (*app.Dependencies, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return app.NewDependencies(ctx, cfg, logger)
}

// readPrompt returns the prompt from args, or stdin when no args are given.
func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	return prompt, nil
}

func parseTier(s string) (models.Tier, error) {
	if s == "" {
		return "", nil
	}
	tier := models.Tier(s)
	if !tier.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return tier, nil
}
