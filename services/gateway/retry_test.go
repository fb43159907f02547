package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/providers"
)

// sleepRecorder captures backoff durations without sleeping.
type sleepRecorder struct {
	slept []time.Duration
	err   error
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.slept = append(r.slept, d)
	return r.err
}

func newTestRetryPolicy(maxRetries int, rec *sleepRecorder) *retryPolicy {
	return &retryPolicy{
		maxRetries:  maxRetries,
		backoffBase: 1 * time.Second,
		sleep:       rec.sleep,
		logger:      zap.NewNop(),
	}
}

func TestRetryPolicy_SuccessShortCircuits(t *testing.T) {
	rec := &sleepRecorder{}
	policy := newTestRetryPolicy(3, rec)

	attempts := 0
	resp, err := policy.run(context.Background(), models.TierPrimary, "gpt-4o",
		func(ctx context.Context) (*providers.ChatResponse, error) {
			attempts++
			return &providers.ChatResponse{Text: "ok"}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, rec.slept, "a successful attempt performs no further wait")
}

func TestRetryPolicy_BackoffSequence(t *testing.T) {
	rec := &sleepRecorder{}
	policy := newTestRetryPolicy(3, rec)

	attempts := 0
	_, err := policy.run(context.Background(), models.TierPrimary, "gpt-4o",
		func(ctx context.Context) (*providers.ChatResponse, error) {
			attempts++
			return nil, errors.New("boom")
		})

	require.Error(t, err)
	assert.Equal(t, 4, attempts, "initial attempt plus three retries")
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}, rec.slept, "exponential backoff without jitter")
}

func TestRetryPolicy_SuccessAfterFailures(t *testing.T) {
	rec := &sleepRecorder{}
	policy := newTestRetryPolicy(3, rec)

	attempts := 0
	resp, err := policy.run(context.Background(), models.TierFast, "gpt-4o-mini",
		func(ctx context.Context) (*providers.ChatResponse, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return &providers.ChatResponse{Text: "recovered"}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Text)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, rec.slept)
}

func TestRetryPolicy_ReturnsLastError(t *testing.T) {
	rec := &sleepRecorder{}
	policy := newTestRetryPolicy(1, rec)

	first := errors.New("first failure")
	last := errors.New("last failure")
	calls := 0
	_, err := policy.run(context.Background(), models.TierDeep, "o1",
		func(ctx context.Context) (*providers.ChatResponse, error) {
			calls++
			if calls == 1 {
				return nil, first
			}
			return nil, last
		})

	assert.ErrorIs(t, err, last)
}

func TestRetryPolicy_CancelledDuringBackoff(t *testing.T) {
	rec := &sleepRecorder{err: context.Canceled}
	policy := newTestRetryPolicy(3, rec)

	attempts := 0
	_, err := policy.run(context.Background(), models.TierPrimary, "gpt-4o",
		func(ctx context.Context) (*providers.ChatResponse, error) {
			attempts++
			return nil, errors.New("boom")
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts, "no attempt after a cancelled backoff")
}

func TestRetryPolicy_ZeroRetries(t *testing.T) {
	rec := &sleepRecorder{}
	policy := newTestRetryPolicy(0, rec)

	attempts := 0
	_, err := policy.run(context.Background(), models.TierFast, "gpt-4o-mini",
		func(ctx context.Context) (*providers.ChatResponse, error) {
			attempts++
			return nil, errors.New("boom")
		})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, rec.slept)
}
