package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/providers"
)

// sleepFunc suspends only the calling goroutine for the backoff duration,
// aborting early when the context is done. Tests substitute a recorder.
type sleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryPolicy drives one tier's attempts: up to maxRetries additional
// attempts after the first failure, with exponential backoff starting at
// backoffBase and doubling per retry, no jitter. All failure causes are
// retried identically; the gateway does not classify retryable causes.
type retryPolicy struct {
	maxRetries  int
	backoffBase time.Duration
	sleep       sleepFunc
	logger      *zap.Logger
}

// run executes attempt until it succeeds or the retry budget is spent.
// A success at any attempt short-circuits immediately with no further
// waits. The returned error is the last attempt's failure.
func (p *retryPolicy) run(
	ctx context.Context,
	tier models.Tier,
	model string,
	attempt func(context.Context) (*providers.ChatResponse, error),
) (*providers.ChatResponse, error) {
	var lastErr error

	for i := 0; i <= p.maxRetries; i++ {
		if i > 0 {
			backoff := p.backoffBase << (i - 1)
			p.logger.Debug("backing off before retry",
				zap.String("tier", tier.String()),
				zap.String("model", model),
				zap.Int("attempt", i+1),
				zap.Duration("backoff", backoff))
			if err := p.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		resp, err := attempt(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		p.logger.Warn("completion attempt failed",
			zap.String("tier", tier.String()),
			zap.String("model", model),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", p.maxRetries+1),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}

	return nil, lastErr
}
