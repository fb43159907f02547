package gateway

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a gateway error.
type ErrorType string

const (
	// ErrorTypeExhausted means every tier in the fallback plan failed.
	ErrorTypeExhausted ErrorType = "all_tiers_exhausted"

	// ErrorTypeStructuredOutput means a successful completion could not be
	// parsed as a single JSON value.
	ErrorTypeStructuredOutput ErrorType = "invalid_structured_output"

	// ErrorTypeConfig means the request hit a configuration defect, such
	// as an unmapped tier. Never retried.
	ErrorTypeConfig ErrorType = "configuration"
)

// excerptLength bounds parser messages and raw-text excerpts carried in
// error details.
const excerptLength = 200

// GatewayError is the typed error crossing the gateway boundary. Callers
// branch on Type via the IsX helpers rather than matching strings.
type GatewayError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]any
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is: two gateway errors match on Type.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewAllTiersExhausted creates the terminal error returned when every
// planned tier has exhausted its retries, wrapping the last underlying
// failure.
func NewAllTiersExhausted(lastErr error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeExhausted,
		Message: "all tiers exhausted",
		Err:     lastErr,
	}
}

// NewInvalidStructuredOutput creates the terminal error for a completion
// that could not be parsed as one JSON value. The parser message and a
// raw-text excerpt are truncated for diagnosis.
func NewInvalidStructuredOutput(parseErr error, rawText string) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeStructuredOutput,
		Message: truncate(parseErr.Error(), excerptLength),
		Err:     parseErr,
		Details: map[string]any{
			"raw_text": truncate(rawText, excerptLength),
		},
	}
}

// NewConfigError creates a fatal configuration error.
func NewConfigError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// IsAllTiersExhausted checks if an error is a tier-exhaustion error.
func IsAllTiersExhausted(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Type == ErrorTypeExhausted
}

// IsInvalidStructuredOutput checks if an error is a structured-output
// parse failure.
func IsInvalidStructuredOutput(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Type == ErrorTypeStructuredOutput
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Type == ErrorTypeConfig
}

// truncate caps s at n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
