package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/upb/llm-gateway/models"
)

// Config represents the complete gateway configuration. It is constructed
// once at process startup and treated as read-only afterwards.
type Config struct {
	Environment   string
	Gateway       GatewayConfig
	Providers     ProvidersConfig
	Sanitizer     SanitizerConfig
	Observability ObservabilityConfig
}

// GatewayConfig holds tier routing and retry configuration.
type GatewayConfig struct {
	// Models maps each tier to the concrete model identifier it resolves to.
	Models map[models.Tier]string

	// Chains maps each tier to its ordered fallback chain.
	Chains map[models.Tier][]models.Tier

	// MaxRetries is the number of additional attempts after the first
	// failure within one tier.
	MaxRetries int `validate:"gte=0,lte=10"`

	// BackoffBase is the delay before the first retry, doubled on each
	// subsequent retry. No jitter is applied.
	BackoffBase time.Duration `validate:"gt=0"`

	// AttemptTimeout is the hard wall-clock timeout for a single provider
	// call. There is no overall deadline across a fallback sequence;
	// callers needing one must impose it themselves.
	AttemptTimeout time.Duration `validate:"gt=0"`

	// MaxOutputTokens is the default output cap when a request leaves it unset.
	MaxOutputTokens int `validate:"gt=0"`
}

// ProvidersConfig holds LLM provider configurations.
type ProvidersConfig struct {
	OpenAI OpenAIConfig
	Gemini GeminiConfig
}

// OpenAIConfig holds OpenAI-compatible provider configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// GeminiConfig holds Gemini provider configuration.
type GeminiConfig struct {
	APIKey string
}

// SanitizerConfig holds defaults for untrusted-text sanitization.
type SanitizerConfig struct {
	// MaxLength is the default hard cap applied when a caller passes no limit.
	MaxLength int `validate:"gt=0"`
}

// ObservabilityConfig holds logging configuration.
type ObservabilityConfig struct {
	LogLevel  string `validate:"required,oneof=debug info warn error"`
	LogFormat string `validate:"required,oneof=json text"`
}

// tierFile is the YAML shape of the optional tier configuration file.
type tierFile struct {
	Tiers map[string]struct {
		Model    string   `yaml:"model"`
		Fallback []string `yaml:"fallback"`
	} `yaml:"tiers"`
	Retry struct {
		MaxRetries  *int           `yaml:"max_retries"`
		BackoffBase *time.Duration `yaml:"backoff_base"`
	} `yaml:"retry"`
	AttemptTimeout *time.Duration `yaml:"attempt_timeout"`
}

// New creates a Config by loading environment variables and, when
// TIER_CONFIG_FILE is set, merging the YAML tier file on top of the
// environment-derived defaults.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	tierCfg := models.DefaultTierConfig()
	tierCfg.Models = map[models.Tier]string{
		models.TierPrimary: getEnv("MODEL_PRIMARY", "gpt-4o"),
		models.TierFast:    getEnv("MODEL_FAST", "gpt-4o-mini"),
		models.TierDeep:    getEnv("MODEL_DEEP", "o1"),
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Gateway: GatewayConfig{
			Models:          tierCfg.Models,
			Chains:          tierCfg.Chains,
			MaxRetries:      getEnvAsInt("GATEWAY_MAX_RETRIES", 3),
			BackoffBase:     getEnvAsDuration("GATEWAY_BACKOFF_BASE", 1*time.Second),
			AttemptTimeout:  getEnvAsDuration("GATEWAY_ATTEMPT_TIMEOUT", 60*time.Second),
			MaxOutputTokens: getEnvAsInt("GATEWAY_MAX_OUTPUT_TOKENS", 2048),
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			Gemini: GeminiConfig{
				APIKey: getEnv("GEMINI_API_KEY", ""),
			},
		},
		Sanitizer: SanitizerConfig{
			MaxLength: getEnvAsInt("SANITIZER_MAX_LENGTH", 8000),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if path := getEnv("TIER_CONFIG_FILE", ""); path != "" {
		if err := cfg.mergeTierFile(path); err != nil {
			return nil, fmt.Errorf("failed to load tier config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// mergeTierFile overlays a YAML tier file onto the current configuration.
func (c *Config) mergeTierFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file tierFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for name, entry := range file.Tiers {
		tier := models.Tier(name)
		if !tier.Valid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownTier, name)
		}
		if entry.Model != "" {
			c.Gateway.Models[tier] = entry.Model
		}
		if entry.Fallback != nil {
			chain := make([]models.Tier, len(entry.Fallback))
			for i, f := range entry.Fallback {
				chain[i] = models.Tier(f)
			}
			c.Gateway.Chains[tier] = chain
		}
	}

	if file.Retry.MaxRetries != nil {
		c.Gateway.MaxRetries = *file.Retry.MaxRetries
	}
	if file.Retry.BackoffBase != nil {
		c.Gateway.BackoffBase = *file.Retry.BackoffBase
	}
	if file.AttemptTimeout != nil {
		c.Gateway.AttemptTimeout = *file.AttemptTimeout
	}

	return nil
}

// Validate checks field constraints and tier configuration invariants.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return c.TierConfig().Validate()
}

// TierConfig builds the immutable tier configuration consumed by the gateway.
func (c *Config) TierConfig() *models.TierConfig {
	return &models.TierConfig{
		Models: c.Gateway.Models,
		Chains: c.Gateway.Chains,
	}
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
