package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subburn/internal/retry"
	"subburn/internal/services"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatus() int { return int(s) }

func recordingPolicy(sleeps *[]time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	var sleeps []time.Duration
	res := retry.Do(context.Background(), recordingPolicy(&sleeps), func(context.Context) (string, error) {
		return "ok", nil
	})
	assert.Equal(t, retry.Success, res.Outcome)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, sleeps)
}

func TestDoRetriesTransientWithDoublingBackoff(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	res := retry.Do(context.Background(), recordingPolicy(&sleeps), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, statusErr(429)
		}
		return 42, nil
	})
	require.Equal(t, retry.Success, res.Outcome)
	assert.Equal(t, 42, res.Value)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestDoExhaustionIsSoftFailure(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	res := retry.Do(context.Background(), recordingPolicy(&sleeps), func(context.Context) (int, error) {
		calls++
		return 0, services.Wrap(services.ErrTransient, "images", "generate", "server busy", nil)
	})
	assert.Equal(t, retry.SoftFailure, res.Outcome)
	assert.Equal(t, 3, calls)
	assert.Len(t, sleeps, 2)
	assert.ErrorIs(t, res.Err, services.ErrTransient)
}

func TestDoMalformedIsImmediateSoftFailure(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	res := retry.Do(context.Background(), recordingPolicy(&sleeps), func(context.Context) (int, error) {
		calls++
		return 0, services.Wrap(services.ErrMalformed, "images", "generate", "no url", nil)
	})
	assert.Equal(t, retry.SoftFailure, res.Outcome)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestDoNonRetriableProviderErrorIsSoftFailure(t *testing.T) {
	var sleeps []time.Duration
	res := retry.Do(context.Background(), recordingPolicy(&sleeps), func(context.Context) (int, error) {
		return 0, statusErr(400)
	})
	assert.Equal(t, retry.SoftFailure, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, sleeps)
}

func TestDoConfigurationErrorIsFatal(t *testing.T) {
	var sleeps []time.Duration
	res := retry.Do(context.Background(), recordingPolicy(&sleeps), func(context.Context) (int, error) {
		return 0, services.MissingCredential("image generation")
	})
	assert.Equal(t, retry.Fatal, res.Outcome)
	assert.Empty(t, sleeps)
}

func TestDoCancelledContextIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := retry.Policy{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	res := retry.Do(ctx, policy, func(context.Context) (int, error) {
		return 0, statusErr(503)
	})
	assert.Equal(t, retry.Fatal, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestDoBackoffCapsAtMaxDelay(t *testing.T) {
	var sleeps []time.Duration
	policy := recordingPolicy(&sleeps)
	policy.MaxAttempts = 5
	policy.MaxDelay = 3 * time.Second
	retry.Do(context.Background(), policy, func(context.Context) (int, error) {
		return 0, errors.New("connection reset by peer")
	})
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}, sleeps)
}

func TestDoInvokesOnRetry(t *testing.T) {
	var sleeps []time.Duration
	policy := recordingPolicy(&sleeps)
	var attempts []int
	policy.OnRetry = func(attempt int, _ time.Duration, _ error) { attempts = append(attempts, attempt) }
	retry.Do(context.Background(), policy, func(context.Context) (int, error) {
		return 0, statusErr(500)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestIsRetriable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", statusErr(429), true},
		{"408", statusErr(408), true},
		{"503", statusErr(503), true},
		{"400", statusErr(400), false},
		{"401", statusErr(401), false},
		{"transient marker", services.Wrap(services.ErrTransient, "", "", "x", nil), true},
		{"malformed marker", services.Wrap(services.ErrMalformed, "", "", "timeout", nil), false},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"rate limit text", errors.New("Rate limit reached for requests"), true},
		{"plain", errors.New("content policy violation"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, retry.IsRetriable(tc.err))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", retry.Success.String())
	assert.Equal(t, "soft_failure", retry.SoftFailure.String())
	assert.Equal(t, "fatal", retry.Fatal.String())
}
