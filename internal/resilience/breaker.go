package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/apperr"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailureThreshold is the failure count that opens a closed breaker
	FailureThreshold uint32
	// RecoveryTimeout is how long the breaker stays open before allowing a trial call
	RecoveryTimeout time.Duration
	// OnStateChange is called, under the breaker lock, whenever the state changes
	OnStateChange func(name string, from State, to State)
}

// Snapshot is a point-in-time copy of a breaker's state.
type Snapshot struct {
	Dependency       string    `json:"dependency"`
	State            string    `json:"state"`
	FailureCount     uint32    `json:"failure_count"`
	FailureThreshold uint32    `json:"failure_threshold"`
	RecoveryTimeout  float64   `json:"recovery_timeout_seconds"`
	LastFailure      time.Time `json:"last_failure_time,omitzero"`
}

// Breaker guards one external dependency. The zero value is not usable; use NewBreaker.
type Breaker struct {
	name     string
	settings Settings
	log      *logrus.Entry
	now      func() time.Time

	mu          sync.Mutex
	state       State
	failures    uint32
	lastFailure time.Time
	trial       bool
}

func NewBreaker(name string, settings Settings, log *logrus.Entry) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.RecoveryTimeout == 0 {
		settings.RecoveryTimeout = 60 * time.Second
	}
	return &Breaker{
		name:     name,
		settings: settings,
		log:      log.WithField("dependency", name),
		now:      time.Now,
		state:    StateClosed,
	}
}

func (b *Breaker) Name() string { return b.name }

// State returns the stored state. An open breaker whose timeout has elapsed
// still reports open until the next call performs the transition.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Dependency:       b.name,
		State:            b.state.String(),
		FailureCount:     b.failures,
		FailureThreshold: b.settings.FailureThreshold,
		RecoveryTimeout:  b.settings.RecoveryTimeout.Seconds(),
		LastFailure:      b.lastFailure,
	}
}

// Call runs op if the breaker admits it. Failures come back as
// *apperr.DependencyError, rejections as *apperr.CircuitOpenError.
func (b *Breaker) Call(ctx context.Context, op func(context.Context) error) error {
	trial, err := b.beforeCall()
	if err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.afterCall(trial, false)
			panic(e)
		}
	}()

	err = op(ctx)
	if err != nil && ctx.Err() != nil {
		// the caller gave up; says nothing about the dependency
		b.release(trial)
		return &apperr.DependencyError{Dependency: b.name, Err: err}
	}
	b.afterCall(trial, err == nil)
	if err != nil {
		return &apperr.DependencyError{Dependency: b.name, Err: err}
	}
	return nil
}

func (b *Breaker) beforeCall() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		elapsed := b.now().Sub(b.lastFailure)
		if elapsed < b.settings.RecoveryTimeout {
			return false, &apperr.CircuitOpenError{
				Dependency: b.name,
				RetryAfter: b.settings.RecoveryTimeout - elapsed,
			}
		}
		b.setState(StateHalfOpen)
		b.trial = true
		return true, nil
	case StateHalfOpen:
		if b.trial {
			return false, &apperr.CircuitOpenError{Dependency: b.name}
		}
		b.trial = true
		return true, nil
	default:
		return false, nil
	}
}

// release frees a half-open trial slot without recording an outcome.
func (b *Breaker) release(trial bool) {
	if !trial {
		return
	}
	b.mu.Lock()
	b.trial = false
	b.mu.Unlock()
}

func (b *Breaker) afterCall(trial bool, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if trial {
		b.trial = false
	}
	if success {
		b.failures = 0
		if trial && b.state == StateHalfOpen {
			b.setState(StateClosed)
		}
		return
	}

	b.failures++
	b.lastFailure = b.now()
	switch {
	case trial && b.state == StateHalfOpen:
		b.setState(StateOpen)
	case b.state == StateClosed && b.failures >= b.settings.FailureThreshold:
		b.setState(StateOpen)
	}
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state

	entry := b.log.WithFields(logrus.Fields{
		"from":          prev.String(),
		"to":            state.String(),
		"failure_count": b.failures,
	})
	if state == StateOpen {
		entry.WithField("recovery_timeout", b.settings.RecoveryTimeout.String()).Error("circuit breaker opened")
	} else {
		entry.Info("circuit breaker state changed")
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
