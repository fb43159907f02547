package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Gateway: config.GatewayConfig{
			Models: map[models.Tier]string{
				models.TierPrimary: "gpt-4o",
				models.TierFast:    "gpt-4o-mini",
				models.TierDeep:    "gemini-2.5-pro",
			},
			Chains:          models.DefaultTierConfig().Chains,
			MaxRetries:      3,
			BackoffBase:     time.Second,
			AttemptTimeout:  60 * time.Second,
			MaxOutputTokens: 2048,
		},
		Sanitizer: config.SanitizerConfig{MaxLength: 8000},
		Observability: config.ObservabilityConfig{
			LogLevel:  "error",
			LogFormat: "json",
		},
	}
}

func TestNewDependencies(t *testing.T) {
	t.Run("wires gateway and sanitizer without providers", func(t *testing.T) {
		cfg := testConfig()
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(context.Background(), cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, deps)

		assert.NotNil(t, deps.Gateway)
		assert.NotNil(t, deps.Sanitizer)
		assert.NotNil(t, deps.Registry)
		assert.Empty(t, deps.Registry.ListProviders())
	})

	t.Run("registers openai provider when configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.Providers.OpenAI.APIKey = "sk-test"
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(context.Background(), cfg, logger)
		require.NoError(t, err)

		assert.Contains(t, deps.Registry.ListProviders(), "openai")

		provider, err := deps.Registry.GetProviderForModel("gpt-4o")
		require.NoError(t, err)
		assert.Equal(t, "openai", provider.Name())

		// Prefix routing covers tier models not listed individually.
		provider, err = deps.Registry.GetProviderForModel("gpt-4o-mini")
		require.NoError(t, err)
		assert.Equal(t, "openai", provider.Name())
	})

	t.Run("routes every default tier model with an openai key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("MODEL_PRIMARY", "")
		t.Setenv("MODEL_FAST", "")
		t.Setenv("MODEL_DEEP", "")
		t.Setenv("TIER_CONFIG_FILE", "")

		cfg, err := config.New()
		require.NoError(t, err)

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		// Out of the box every tier must reach a provider, including the
		// deep tier's reasoning model.
		for tier, model := range cfg.Gateway.Models {
			provider, err := deps.Registry.GetProviderForModel(model)
			require.NoError(t, err, "tier %s model %s has no provider", tier, model)
			assert.Equal(t, "openai", provider.Name())
		}
	})

	t.Run("rejects broken tier configuration", func(t *testing.T) {
		cfg := testConfig()
		delete(cfg.Gateway.Models, models.TierDeep)
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(context.Background(), cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "tier configuration")
	})
}

func TestModelsForPrefixes(t *testing.T) {
	cfg := testConfig()

	openAIModels := modelsForPrefixes(cfg, openAIPrefixes)
	assert.ElementsMatch(t, []string{"gpt-4o", "gpt-4o-mini"}, openAIModels)

	geminiModels := modelsForPrefixes(cfg, geminiPrefixes)
	assert.ElementsMatch(t, []string{"gemini-2.5-pro"}, geminiModels)

	cfg.Gateway.Models[models.TierDeep] = "o1"
	assert.Contains(t, modelsForPrefixes(cfg, openAIPrefixes), "o1")
}

func TestClose(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)

	deps, err := NewDependencies(context.Background(), cfg, logger)
	require.NoError(t, err)

	assert.NoError(t, deps.Close(context.Background()))
}
