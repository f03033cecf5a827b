package retry

import (
	"context"
	"errors"
	"time"

	"subburn/internal/ratelimit"
	"subburn/internal/services"
)

const (
	MaxRetries        = 3
	InitialRetryDelay = time.Second
	MaxRetryDelay     = 60 * time.Second
)

// Outcome classifies how a unit of work ended.
type Outcome int

const (
	Success Outcome = iota
	SoftFailure
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case SoftFailure:
		return "soft_failure"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Policy bounds the number of attempts and the delay between them.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Sleep        func(context.Context, time.Duration) error
	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns three attempts starting at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  MaxRetries,
		InitialDelay: InitialRetryDelay,
		MaxDelay:     MaxRetryDelay,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = MaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = InitialRetryDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = MaxRetryDelay
	}
	if p.Sleep == nil {
		p.Sleep = ratelimit.SleepWithContext
	}
	return p
}

// Result carries the value and classification of a Do call.
type Result[T any] struct {
	Value    T
	Outcome  Outcome
	Err      error
	Attempts int
}

// Do invokes fn until it succeeds, fails permanently, or exhausts the policy.
// A retriable error sleeps for the current delay, which doubles after each
// attempt up to MaxDelay.
func Do[T any](ctx context.Context, policy Policy, fn func(context.Context) (T, error)) Result[T] {
	policy = policy.normalized()
	delay := policy.InitialDelay
	var zero T

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result[T]{Value: zero, Outcome: Fatal, Err: err, Attempts: attempt - 1}
		}
		value, err := fn(ctx)
		if err == nil {
			return Result[T]{Value: value, Outcome: Success, Attempts: attempt}
		}

		outcome := Classify(ctx, err)
		if outcome != SoftFailure || !IsRetriable(err) || attempt >= policy.MaxAttempts {
			return Result[T]{Value: zero, Outcome: outcome, Err: err, Attempts: attempt}
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt, delay, err)
		}
		if sleepErr := policy.Sleep(ctx, delay); sleepErr != nil {
			return Result[T]{Value: zero, Outcome: Fatal, Err: sleepErr, Attempts: attempt}
		}
		delay *= 2
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
}

// Classify maps a non-nil error to the outcome it produces when it is final.
// Cancellation of ctx and configuration errors are fatal; everything else
// degrades to a soft failure.
func Classify(ctx context.Context, err error) Outcome {
	if err == nil {
		return Success
	}
	if ctx != nil && ctx.Err() != nil {
		return Fatal
	}
	if errors.Is(err, context.Canceled) {
		return Fatal
	}
	if services.IsFatal(err) {
		return Fatal
	}
	return SoftFailure
}
