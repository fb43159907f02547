package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/llm-gateway/internal/extract"
	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/providers"
)

// Service is the single trust boundary through which feature modules obtain
// text or structured data from an external language-model provider. It
// routes a request's tier through the fallback plan, bounds each attempt
// with a timeout and retries, and surfaces a typed failure when everything
// is exhausted.
//
// A Service runs entirely on the calling goroutine: the only suspension
// points are the provider round-trip and the backoff sleep. It holds no
// mutable state, so one instance serves concurrent callers.
type Service struct {
	tiers    *models.TierConfig
	registry *providers.Registry
	config   Config
	retry    retryPolicy
	logger   *zap.Logger
}

// NewService creates a gateway service. The tier configuration must have
// been validated at startup and is treated as immutable.
func NewService(tiers *models.TierConfig, registry *providers.Registry, config Config, logger *zap.Logger) *Service {
	return &Service{
		tiers:    tiers,
		registry: registry,
		config:   config,
		retry: retryPolicy{
			maxRetries:  config.MaxRetries,
			backoffBase: config.BackoffBase,
			sleep:       defaultSleep,
			logger:      logger,
		},
		logger: logger,
	}
}

// Complete runs one completion through the fallback plan. Tiers are
// attempted strictly in plan order, each under the retry policy; the first
// success returns immediately with the serving tier recorded. When every
// planned tier is exhausted the call fails with an all-tiers-exhausted
// error wrapping the last underlying failure.
func (s *Service) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	requested := req.Tier
	if requested == "" {
		requested = models.TierPrimary
	}
	if !requested.Valid() {
		return nil, NewConfigError(fmt.Sprintf("invalid tier %q", requested), models.ErrUnknownTier)
	}

	start := time.Now()
	plan := s.tiers.Plan(requested)

	s.logger.Debug("starting completion",
		zap.String("requested_tier", requested.String()),
		zap.Int("planned_tiers", len(plan)))

	var lastErr error
	for _, tier := range plan {
		model, err := s.tiers.Resolve(tier)
		if err != nil {
			// A configuration defect, not a runtime condition: fail
			// immediately instead of advancing the plan.
			return nil, NewConfigError(fmt.Sprintf("cannot resolve tier %q", tier), err)
		}

		provider, err := s.registry.GetProviderForModel(model)
		if err != nil {
			return nil, NewConfigError(fmt.Sprintf("no provider for model %q", model), err)
		}

		resp, err := s.retry.run(ctx, tier, model, func(attemptCtx context.Context) (*providers.ChatResponse, error) {
			return s.invoke(attemptCtx, provider, model, req)
		})
		if err == nil {
			if tier != requested {
				s.logger.Warn("completion served by fallback tier",
					zap.String("requested_tier", requested.String()),
					zap.String("serving_tier", tier.String()),
					zap.String("model", model))
			}
			return &CompletionResult{
				Text:    resp.Text,
				Tier:    tier,
				Model:   model,
				Elapsed: time.Since(start),
				Usage:   resp.Usage,
			}, nil
		}
		lastErr = err

		s.logger.Warn("tier exhausted, advancing fallback plan",
			zap.String("tier", tier.String()),
			zap.String("model", model),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, NewAllTiersExhausted(lastErr)
}

// CompleteJSON runs a structured completion and parses the output as one
// JSON value. Unless the caller sets a tier, extraction requests default to
// the cheapest tier. A parse failure is terminal for the call: the
// successful text already consumed the fallback mechanism, so no further
// tier is attempted.
func (s *Service) CompleteJSON(ctx context.Context, req *CompletionRequest) (any, error) {
	result, err := s.completeStructured(ctx, req, "")
	if err != nil {
		return nil, err
	}

	value, err := extract.Value(result.Text)
	if err != nil {
		s.logger.Warn("structured output parse failed",
			zap.String("tier", result.Tier.String()),
			zap.String("model", result.Model),
			zap.Error(err))
		return nil, NewInvalidStructuredOutput(err, result.Text)
	}
	return value, nil
}

// CompleteJSONInto runs a structured completion whose system instructions
// carry the JSON schema reflected from v, then decodes the extracted JSON
// into v.
func (s *Service) CompleteJSONInto(ctx context.Context, req *CompletionRequest, v any) error {
	instructions, err := schemaInstructions(v)
	if err != nil {
		return NewConfigError("cannot build schema instructions", err)
	}

	result, err := s.completeStructured(ctx, req, instructions)
	if err != nil {
		return err
	}

	raw, err := extract.JSON(result.Text)
	if err != nil {
		return NewInvalidStructuredOutput(err, result.Text)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return NewInvalidStructuredOutput(err, result.Text)
	}
	return nil
}

// completeStructured composes Complete with the structured-output flag and
// the fast-tier default, optionally appending extra system instructions.
func (s *Service) completeStructured(ctx context.Context, req *CompletionRequest, extraSystem string) (*CompletionResult, error) {
	structured := *req
	if structured.Tier == "" {
		structured.Tier = models.TierFast
	}
	structured.JSONOnly = true
	if extraSystem != "" {
		if structured.SystemPrompt != "" {
			structured.SystemPrompt += "\n\n" + extraSystem
		} else {
			structured.SystemPrompt = extraSystem
		}
	}
	return s.Complete(ctx, &structured)
}

// invoke issues one timed provider call. Every failure cause (network
// error, provider error, timeout) surfaces as the uniform provider
// failure type. On success an observability record is emitted with the
// model, elapsed time, and token counts when reported.
func (s *Service) invoke(ctx context.Context, provider providers.Provider, model string, req *CompletionRequest) (*providers.ChatResponse, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.config.AttemptTimeout
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxOutputTokens
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := provider.ChatCompletion(attemptCtx, &providers.ChatRequest{
		Model:       model,
		Messages:    providers.SystemAndUser(req.SystemPrompt, req.Prompt),
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		JSONOnly:    req.JSONOnly,
	})
	elapsed := time.Since(start)

	if err != nil {
		var provErr *providers.ProviderError
		if !errors.As(err, &provErr) {
			err = providers.NewProviderError(provider.Name(), "UNKNOWN", "completion failed", 0, err)
		}
		return nil, err
	}

	s.logger.Info("completion served",
		zap.String("invocation_id", uuid.NewString()),
		zap.String("model", model),
		zap.Duration("elapsed", elapsed),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp, nil
}
