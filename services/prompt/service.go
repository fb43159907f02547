package prompt

import (
	"go.uber.org/zap"

	intprompt "github.com/upb/llm-gateway/internal/prompt"
)

// Config holds sanitization defaults.
type Config struct {
	// MaxLength is the hard cap applied when a caller passes no limit.
	MaxLength int
}

// DefaultConfig returns the default sanitization configuration.
func DefaultConfig() Config {
	return Config{MaxLength: 8000}
}

// Service sanitizes untrusted text before it is interpolated into prompts.
// It is a stateless facade over the sanitization pipeline; a single
// instance is safe for concurrent use.
type Service struct {
	config Config
	logger *zap.Logger
}

// NewService creates a sanitizer service.
func NewService(config Config, logger *zap.Logger) *Service {
	if config.MaxLength <= 0 {
		config.MaxLength = DefaultConfig().MaxLength
	}
	return &Service{config: config, logger: logger}
}

// Sanitize cleans untrusted text and returns it with a report of what
// matched. maxLength caps the output length; zero or negative falls back
// to the configured default. contextLabel names the untrusted field for
// logs only; it never changes the output. Sanitize never fails.
func (s *Service) Sanitize(text string, maxLength int, contextLabel string) (string, intprompt.Report) {
	if maxLength <= 0 {
		maxLength = s.config.MaxLength
	}

	cleaned, report := intprompt.Sanitize(text, maxLength)

	if len(report.Tags) > 0 {
		fields := []zap.Field{
			zap.String("context", contextLabel),
			zap.Int("original_length", report.OriginalLength),
			zap.Int("chars_removed", report.CharsRemoved),
			zap.Bool("truncated", report.Truncated),
		}
		for _, tag := range report.Tags {
			fields = append(fields, zap.Int("matched_"+tag.Category, tag.Count))
		}
		s.logger.Warn("sanitized untrusted text", fields...)
	}

	return cleaned, report
}
