package providers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a minimal Provider for registry tests.
type stubProvider struct {
	name   string
	models []string
}

func (p *stubProvider) Name() string        { return p.name }
func (p *stubProvider) ListModels() []string { return p.models }

func (p *stubProvider) ValidateModel(model string) error {
	for _, m := range p.models {
		if m == model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotSupported, model)
}

func (p *stubProvider) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Model: req.Model, Provider: p.name, Text: "ok"}, nil
}

func TestRegistry_RegisterProvider(t *testing.T) {
	reg := NewRegistry()
	p := &stubProvider{name: "openai", models: []string{"gpt-4o", "gpt-4o-mini"}}

	require.NoError(t, reg.RegisterProvider(p))

	assert.ErrorIs(t, reg.RegisterProvider(p), ErrProviderAlreadyRegistered)
	assert.Error(t, reg.RegisterProvider(nil))
	assert.Error(t, reg.RegisterProvider(&stubProvider{name: ""}))
}

func TestRegistry_GetProviderForModel(t *testing.T) {
	reg := NewRegistry()
	openai := &stubProvider{name: "openai", models: []string{"gpt-4o"}}
	gemini := &stubProvider{name: "gemini", models: []string{"gemini-2.5-pro"}}
	require.NoError(t, reg.RegisterProvider(openai))
	require.NoError(t, reg.RegisterProvider(gemini))

	p, err := reg.GetProviderForModel("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = reg.GetProviderForModel("mystery-model")
	assert.ErrorIs(t, err, ErrModelNotSupported)
}

func TestRegistry_PrefixMatching(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterProvider(&stubProvider{name: "openai", models: []string{"gpt-4o"}}))
	require.NoError(t, reg.RegisterModelPrefix("gpt-", "openai"))

	p, err := reg.GetProviderForModel("gpt-5-preview")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	assert.ErrorIs(t, reg.RegisterModelPrefix("claude-", "anthropic"), ErrProviderNotFound)
}

func TestRegistry_GetProvider(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterProvider(&stubProvider{name: "openai"}))

	p, err := reg.GetProvider("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = reg.GetProvider("gemini")
	assert.ErrorIs(t, err, ErrProviderNotFound)

	assert.ElementsMatch(t, []string{"openai"}, reg.ListProviders())
}

func TestProviderError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewProviderError("openai", "HTTP_ERROR", "request failed", 0, cause)

	assert.Equal(t, "openai: request failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewProviderError("gemini", "TIMEOUT", "deadline exceeded", 0, nil)
	assert.Equal(t, "gemini: deadline exceeded", bare.Error())
}

func TestSystemAndUser(t *testing.T) {
	msgs := SystemAndUser("be terse", "hello")
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: "system", Content: "be terse"}, msgs[0])
	assert.Equal(t, Message{Role: "user", Content: "hello"}, msgs[1])

	msgs = SystemAndUser("", "hello")
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}
