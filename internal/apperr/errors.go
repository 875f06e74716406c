// Package apperr holds the error taxonomy shared by the pipeline, its
// external clients and the HTTP layer.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Class is the caller-facing category of a terminal error.
type Class int

const (
	ClassInternal Class = iota
	ClassValidation
	ClassUnavailable
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// ValidationError reports malformed or empty input to a stage. Never retried.
type ValidationError struct {
	Field  string
	Reason string
	// TooLarge marks size-limit violations so the HTTP layer can answer 413.
	TooLarge bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TransientError is a network, timeout or HTTP failure talking to a dependency.
type TransientError struct {
	Dependency string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Dependency, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Dependency, e.Err)
}

func (e *TransientError) Unwrap() error   { return e.Err }
func (e *TransientError) Retryable() bool { return true }

// DependencyError is how a circuit breaker reports a failed call. It keeps the
// retry classification of the error it wraps.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s failed: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error   { return e.Err }
func (e *DependencyError) Retryable() bool { return IsRetryable(e.Err) }

// CircuitOpenError is returned without calling the dependency.
type CircuitOpenError struct {
	Dependency string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s, service temporarily unavailable (retry in %s)",
		e.Dependency, e.RetryAfter.Round(time.Second))
}

func (e *CircuitOpenError) Retryable() bool { return false }

// ServiceUnavailableError is the terminal error of an exhausted retry loop.
// It deliberately does not unwrap: only the message of the last failure survives.
type ServiceUnavailableError struct {
	Operation string
	Attempts  int
	Message   string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %s", e.Operation, e.Attempts, e.Message)
}

// ParseError reports malformed structured output from the generation service.
type ParseError struct {
	Payload string
	Err     error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse structured output: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// CleanupError reports a failed secure-delete pass.
type CleanupError struct {
	Path string
	Pass int
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("secure delete pass %d on %s: %v", e.Pass, e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

// StageError is the single terminal error of a failed pipeline run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a retryable tag. A bare context
// deadline counts as retryable because per-call timeouts surface that way.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var tagged interface{ Retryable() bool }
	if errors.As(err, &tagged) {
		return tagged.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Classify maps an error onto the class the caller sees.
func Classify(err error) Class {
	var (
		validation  *ValidationError
		open        *CircuitOpenError
		unavailable *ServiceUnavailableError
		transient   *TransientError
	)
	switch {
	case err == nil:
		return ClassInternal
	case errors.As(err, &validation):
		return ClassValidation
	case errors.As(err, &open), errors.As(err, &unavailable), errors.As(err, &transient):
		return ClassUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return ClassUnavailable
	default:
		return ClassInternal
	}
}

// SafeMessage returns text fit for a client: no wrapped causes, no internals.
func SafeMessage(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var open *CircuitOpenError
	if errors.As(err, &open) {
		return fmt.Sprintf("%s service temporarily unavailable", open.Dependency)
	}
	switch Classify(err) {
	case ClassUnavailable:
		var stage *StageError
		if errors.As(err, &stage) {
			return fmt.Sprintf("external service unavailable during %s", stage.Stage)
		}
		return "external service unavailable"
	default:
		return "internal server error"
	}
}
