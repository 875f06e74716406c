package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-insights-go/internal/apperr"
)

// recordingTimer fires immediately and remembers every requested delay.
type recordingTimer struct {
	c      chan time.Time
	delays []time.Duration
}

func (t *recordingTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func newTestExecutor(policy Policy) (*Executor, *recordingTimer, *test.Hook) {
	log, hook := test.NewNullLogger()
	e := NewExecutor(policy, logrus.NewEntry(log))
	timer := &recordingTimer{c: make(chan time.Time, 1)}
	e.newTimer = func() backoff.Timer { return timer }
	return e, timer, hook
}

func transient(msg string) error {
	return &apperr.TransientError{Dependency: "speech", Err: errors.New(msg)}
}

func TestExecutorExhaustsAfterMaxRetriesPlusOne(t *testing.T) {
	e, timer, hook := newTestExecutor(Policy{MaxRetries: 3, InitialDelay: time.Second, BackoffFactor: 2})

	calls := 0
	err := e.Do(context.Background(), "transcription", func(context.Context) error {
		calls++
		return transient("connection reset")
	})

	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, timer.delays)

	var unavailable *apperr.ServiceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 4, unavailable.Attempts)
	assert.Contains(t, unavailable.Message, "connection reset")

	var leaked *apperr.TransientError
	assert.False(t, errors.As(err, &leaked), "original error type must not leak")

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 3, warnings)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestExecutorSucceedsAfterTransientFailures(t *testing.T) {
	e, timer, _ := newTestExecutor(Policy{MaxRetries: 3, InitialDelay: 10 * time.Millisecond, BackoffFactor: 3})

	calls := 0
	err := e.Do(context.Background(), "analysis", func(context.Context) error {
		calls++
		if calls < 3 {
			return transient("503")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 30 * time.Millisecond}, timer.delays)
}

func TestExecutorDoesNotRetryPermanentErrors(t *testing.T) {
	e, timer, _ := newTestExecutor(Policy{MaxRetries: 3, InitialDelay: time.Second, BackoffFactor: 2})

	invalid := &apperr.ValidationError{Field: "transcript", Reason: "must not be empty"}
	calls := 0
	err := e.Do(context.Background(), "analysis", func(context.Context) error {
		calls++
		return invalid
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, invalid, err)
	assert.Empty(t, timer.delays)
}

func TestExecutorPassesCircuitOpenThrough(t *testing.T) {
	e, _, _ := newTestExecutor(Policy{MaxRetries: 3, InitialDelay: time.Second, BackoffFactor: 2})

	calls := 0
	err := e.Do(context.Background(), "scoring", func(context.Context) error {
		calls++
		return &apperr.CircuitOpenError{Dependency: "generation"}
	})

	assert.Equal(t, 1, calls)
	var open *apperr.CircuitOpenError
	assert.ErrorAs(t, err, &open)
}

func TestExecutorCustomPredicate(t *testing.T) {
	e, _, _ := newTestExecutor(Policy{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1,
		Retryable:     func(error) bool { return true },
	})

	calls := 0
	err := e.Do(context.Background(), "anything", func(context.Context) error {
		calls++
		return errors.New("plain")
	})

	assert.Equal(t, 3, calls)
	var unavailable *apperr.ServiceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestExecutorStopsOnCancellation(t *testing.T) {
	log, _ := test.NewNullLogger()
	e := NewExecutor(Policy{MaxRetries: 5, InitialDelay: time.Hour, BackoffFactor: 2}, logrus.NewEntry(log))

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- e.Do(ctx, "transcription", func(context.Context) error {
			calls++
			return transient("timeout")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not observe cancellation")
	}
}
