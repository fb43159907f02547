package gemini

import (
	"context"
	"fmt"
	"time"

	genai "google.golang.org/genai"

	"github.com/upb/llm-gateway/services/providers"
)

// Config holds Gemini provider configuration.
type Config struct {
	APIKey string

	// Models lists the model identifiers served through this adapter.
	Models []string
}

// Adapter implements the Provider interface on top of the official genai
// client. One ChatCompletion call is one GenerateContent round-trip; the
// caller's context enforces the attempt timeout.
type Adapter struct {
	client *genai.Client
	models map[string]bool
}

// NewAdapter creates a new Gemini adapter.
func NewAdapter(ctx context.Context, config Config) (*Adapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	models := make(map[string]bool, len(config.Models))
	for _, m := range config.Models {
		models[m] = true
	}

	return &Adapter{client: client, models: models}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return "gemini"
}

// ValidateModel checks if a model is served by this adapter.
func (a *Adapter) ValidateModel(model string) error {
	if !a.models[model] {
		return fmt.Errorf("%w: %s", providers.ErrModelNotSupported, model)
	}
	return nil
}

// ListModels returns the configured model identifiers.
func (a *Adapter) ListModels() []string {
	models := make([]string, 0, len(a.models))
	for m := range a.models {
		models = append(models, m)
	}
	return models
}

// ChatCompletion performs a chat completion request.
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONOnly {
		cfg.ResponseMIMEType = "application/json"
	}

	var userText string
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			cfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: msg.Content}},
			}
		default:
			userText = msg.Content
		}
	}

	resp, err := a.client.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: userText}}}}, cfg)
	if err != nil {
		code := "API_ERROR"
		if ctx.Err() != nil {
			code = "TIMEOUT"
		}
		return nil, providers.NewProviderError(a.Name(), code, "generate content failed", 0, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "no candidates in response", 0, nil)
	}

	out := &providers.ChatResponse{
		Model:    req.Model,
		Provider: a.Name(),
		Text:     resp.Candidates[0].Content.Parts[0].Text,
		Created:  time.Now(),
	}
	if resp.UsageMetadata != nil {
		out.Usage = providers.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}
