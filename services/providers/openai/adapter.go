package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/llm-gateway/services/providers"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config holds OpenAI-compatible endpoint configuration.
type Config struct {
	APIKey  string
	BaseURL string

	// Models lists the model identifiers served through this adapter.
	Models []string
}

// Adapter implements the Provider interface for OpenAI-compatible
// chat-completion endpoints. It performs exactly one HTTP round-trip per
// ChatCompletion call; the caller's context enforces the attempt timeout
// and the gateway owns retries.
type Adapter struct {
	config     Config
	httpClient *http.Client
	models     map[string]bool
}

// NewAdapter creates a new OpenAI adapter.
func NewAdapter(config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	models := make(map[string]bool, len(config.Models))
	for _, m := range config.Models {
		models[m] = true
	}

	return &Adapter{
		config:     config,
		httpClient: &http.Client{},
		models:     models,
	}
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return "openai"
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

// chatCompletionRequest is the wire request body.
type chatCompletionRequest struct {
	Model          string               `json:"model"`
	Messages       []providers.Message  `json:"messages"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	Temperature    float64              `json:"temperature,omitempty"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatCompletionResponse is the wire response body.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// ChatCompletion performs a chat completion request.
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	body := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONOnly {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "MARSHAL_ERROR", "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/chat/completions", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "REQUEST_ERROR", "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		code := "HTTP_ERROR"
		if ctx.Err() != nil {
			code = "TIMEOUT"
		}
		return nil, providers.NewProviderError(a.Name(), code, "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "READ_ERROR", "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.errorFromStatus(httpResp.StatusCode, respBody)
	}

	var apiResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR", "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "no choices in response", httpResp.StatusCode, nil)
	}

	return &providers.ChatResponse{
		Model:    apiResp.Model,
		Provider: a.Name(),
		Text:     apiResp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     apiResp.Usage.PromptTokens,
			CompletionTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:      apiResp.Usage.TotalTokens,
		},
		Created: time.Now(),
	}, nil
}

// errorFromStatus maps a non-200 response to the uniform failure type.
func (a *Adapter) errorFromStatus(statusCode int, body []byte) *providers.ProviderError {
	message := "provider returned an error"
	var apiResp chatCompletionResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
		message = apiResp.Error.Message
	}

	code := "API_ERROR"
	switch {
	case statusCode == http.StatusUnauthorized:
		code = "AUTH_ERROR"
	case statusCode == http.StatusTooManyRequests:
		code = "RATE_LIMIT"
	case statusCode >= 500:
		code = "SERVER_ERROR"
	}

	return providers.NewProviderError(a.Name(), code, message, statusCode, nil)
}
