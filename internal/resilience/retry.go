package resilience

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/apperr"
)

// Policy describes how one kind of call site retries.
type Policy struct {
	MaxRetries    uint64
	InitialDelay  time.Duration
	BackoffFactor float64
	// Retryable decides whether an error earns another attempt.
	// Defaults to apperr.IsRetryable.
	Retryable func(error) bool
}

// Executor runs operations under a Policy.
type Executor struct {
	policy   Policy
	log      *logrus.Entry
	newTimer func() backoff.Timer
}

func NewExecutor(policy Policy, log *logrus.Entry) *Executor {
	if policy.Retryable == nil {
		policy.Retryable = apperr.IsRetryable
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = 1
	}
	return &Executor{policy: policy, log: log}
}

func (e *Executor) Policy() Policy { return e.policy }

func (e *Executor) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.policy.InitialDelay
	b.Multiplier = e.policy.BackoffFactor
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, e.policy.MaxRetries), ctx)
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// policy is exhausted. Exhaustion yields *apperr.ServiceUnavailableError.
func (e *Executor) Do(ctx context.Context, name string, op func(context.Context) error) error {
	log := e.log.WithField("operation", name)
	attempts := 0
	var lastErr error

	attempt := func() error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || !e.policy.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		log.WithFields(logrus.Fields{
			"attempt": attempts,
			"delay":   delay.String(),
			"error":   err.Error(),
		}).Warn("attempt failed, retrying")
	}

	var timer backoff.Timer
	if e.newTimer != nil {
		timer = e.newTimer()
	}
	err := backoff.RetryNotifyWithTimer(attempt, e.backOff(ctx), notify, timer)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case lastErr == nil, !e.policy.Retryable(lastErr):
		return err
	}

	log.WithFields(logrus.Fields{
		"attempts": attempts,
		"error":    lastErr.Error(),
	}).Error("retries exhausted")
	return &apperr.ServiceUnavailableError{
		Operation: name,
		Attempts:  attempts,
		Message:   lastErr.Error(),
	}
}
