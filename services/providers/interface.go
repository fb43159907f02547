package providers

import (
	"context"
	"fmt"
	"time"
)

// Provider is the unified boundary to an external language-model vendor.
// One ChatCompletion call is one logical provider attempt; timeouts are
// enforced by the caller through the context.
type Provider interface {
	// Name returns the provider name (e.g., "openai", "gemini").
	Name() string

	// ChatCompletion performs a single chat completion request.
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ValidateModel checks if a model is served by this provider.
	ValidateModel(model string) error

	// ListModels returns the model identifiers this provider serves.
	ListModels() []string
}

// ChatRequest represents a unified chat completion request.
type ChatRequest struct {
	// Model identifier (e.g., "gpt-4o", "gemini-2.5-pro").
	Model string `json:"model"`

	// Messages in the conversation: an optional system message followed
	// by one user message holding the assembled prompt.
	Messages []Message `json:"messages"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// JSONOnly constrains the output to exactly one JSON value when the
	// provider supports it.
	JSONOnly bool `json:"-"`
}

// Message represents a single role-tagged message.
type Message struct {
	// Role is "system" or "user".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatResponse represents a unified chat completion response.
type ChatResponse struct {
	// Model that produced the completion.
	Model string `json:"model"`

	// Provider that handled the request.
	Provider string `json:"provider"`

	// Text is the completion content.
	Text string `json:"text"`

	// Usage statistics, zero-valued when the provider reports none.
	Usage Usage `json:"usage"`

	// Created timestamp.
	Created time.Time `json:"created"`
}

// Usage represents token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// SystemAndUser builds the message sequence for one attempt: the optional
// system instructions followed by the user prompt.
func SystemAndUser(systemPrompt, prompt string) []Message {
	msgs := make([]Message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	}
	return append(msgs, Message{Role: "user", Content: prompt})
}

// ProviderError is the uniform failure type for provider attempts. Network
// errors, provider-side errors, and timeouts all surface through it; the
// gateway retries every cause identically and does not classify them.
type ProviderError struct {
	// Provider that generated the error.
	Provider string

	// Code is a short machine-readable cause (e.g., "HTTP_ERROR", "TIMEOUT").
	Code string

	// Message is the human-readable description.
	Message string

	// StatusCode is the HTTP status code, when applicable.
	StatusCode int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error.
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
