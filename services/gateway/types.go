package gateway

import (
	"time"

	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/providers"
)

// CompletionRequest describes one gateway call. It is created and consumed
// within a single Complete/CompleteJSON invocation and never persisted.
type CompletionRequest struct {
	// Prompt is the assembled user prompt. Untrusted fields must be
	// sanitized before assembly.
	Prompt string

	// SystemPrompt holds optional system instructions.
	SystemPrompt string

	// Tier is the requested quality/cost class. When unset, Complete
	// defaults to the primary tier and CompleteJSON to the fast tier.
	Tier models.Tier

	// Temperature controls randomness.
	Temperature float64

	// MaxOutputTokens caps the response length; zero uses the configured
	// default.
	MaxOutputTokens int

	// Timeout is the hard per-attempt wall-clock timeout; zero uses the
	// configured default. No deadline spans the whole fallback sequence.
	Timeout time.Duration

	// JSONOnly constrains provider output to one JSON value.
	JSONOnly bool
}

// CompletionResult is the successful outcome of a gateway call.
type CompletionResult struct {
	// Text is the raw completion text.
	Text string

	// Tier is the tier that actually served the call. It differs from the
	// requested tier when fallback occurred.
	Tier models.Tier

	// Model is the concrete model identifier that served the call.
	Model string

	// Elapsed is the total wall-clock time of the gateway call, including
	// retries and fallback.
	Elapsed time.Duration

	// Usage holds token counts when the provider reported them.
	Usage providers.Usage
}

// Config holds the gateway's retry and attempt settings.
type Config struct {
	// MaxRetries is the number of additional attempts after the first
	// failure within one tier.
	MaxRetries int

	// BackoffBase is the delay before the first retry, doubled per retry.
	BackoffBase time.Duration

	// AttemptTimeout bounds a single provider call.
	AttemptTimeout time.Duration

	// MaxOutputTokens is the default response cap.
	MaxOutputTokens int
}

// DefaultConfig returns the reference gateway configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BackoffBase:     1 * time.Second,
		AttemptTimeout:  60 * time.Second,
		MaxOutputTokens: 2048,
	}
}
