package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/internal/observability"
	"github.com/upb/llm-gateway/services/gateway"
	"github.com/upb/llm-gateway/services/prompt"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/services/providers/gemini"
	"github.com/upb/llm-gateway/services/providers/openai"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Registry  *providers.Registry
	Sanitizer *prompt.Service
	Gateway   *gateway.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initProviders(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.initSanitizer(cfg)

	if err := deps.initGateway(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize gateway: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// openAIPrefixes covers the chat and reasoning model families served
// through the chat-completions API.
var openAIPrefixes = []string{"gpt-", "o1", "o3", "o4"}

var geminiPrefixes = []string{"gemini-"}

// initProviders builds the provider registry from the configured credentials.
// Tier models are routed to providers by model-family prefix, so only
// providers with credentials get registered.
func (d *Dependencies) initProviders(ctx context.Context, cfg *config.Config) error {
	registry := providers.NewRegistry()

	if cfg.Providers.OpenAI.APIKey != "" {
		adapter := openai.NewAdapter(openai.Config{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
			Models:  modelsForPrefixes(cfg, openAIPrefixes),
		})
		if err := registry.RegisterProvider(adapter); err != nil {
			return err
		}
		for _, prefix := range openAIPrefixes {
			if err := registry.RegisterModelPrefix(prefix, adapter.Name()); err != nil {
				return err
			}
		}
		d.Logger.Info("registered OpenAI provider")
	}

	if cfg.Providers.Gemini.APIKey != "" {
		adapter, err := gemini.NewAdapter(ctx, gemini.Config{
			APIKey: cfg.Providers.Gemini.APIKey,
			Models: modelsForPrefixes(cfg, geminiPrefixes),
		})
		if err != nil {
			return fmt.Errorf("gemini adapter: %w", err)
		}
		if err := registry.RegisterProvider(adapter); err != nil {
			return err
		}
		for _, prefix := range geminiPrefixes {
			if err := registry.RegisterModelPrefix(prefix, adapter.Name()); err != nil {
				return err
			}
		}
		d.Logger.Info("registered Gemini provider")
	}

	if len(registry.ListProviders()) == 0 {
		d.Logger.Warn("no LLM providers configured")
	}

	d.Registry = registry
	return nil
}

func (d *Dependencies) initSanitizer(cfg *config.Config) {
	d.Sanitizer = prompt.NewService(prompt.Config{
		MaxLength: cfg.Sanitizer.MaxLength,
	}, d.Logger)
}

func (d *Dependencies) initGateway(cfg *config.Config) error {
	tiers := cfg.TierConfig()
	if err := tiers.Validate(); err != nil {
		return fmt.Errorf("tier configuration: %w", err)
	}

	d.Gateway = gateway.NewService(tiers, d.Registry, gateway.Config{
		MaxRetries:      cfg.Gateway.MaxRetries,
		BackoffBase:     cfg.Gateway.BackoffBase,
		AttemptTimeout:  cfg.Gateway.AttemptTimeout,
		MaxOutputTokens: cfg.Gateway.MaxOutputTokens,
	}, d.Logger)
	d.Logger.Info("gateway initialized",
		zap.Int("max_retries", cfg.Gateway.MaxRetries),
		zap.Duration("backoff_base", cfg.Gateway.BackoffBase))
	return nil
}

// modelsForPrefixes returns the configured tier models served by a provider,
// selected by model-family prefix.
func modelsForPrefixes(cfg *config.Config, prefixes []string) []string {
	var models []string
	for _, model := range cfg.Gateway.Models {
		for _, prefix := range prefixes {
			if strings.HasPrefix(model, prefix) {
				models = append(models, model)
				break
			}
		}
	}
	return models
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")
	_ = d.Logger.Sync()
	return nil
}

// NewLogger builds the application logger from observability config.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
}
