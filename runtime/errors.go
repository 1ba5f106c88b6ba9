package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arbiterlabs/arbiter/op"
)

// Sentinel errors, grounded in eventloop/loop.go's ErrLoop* idiom.
var (
	// ErrIterationBudgetExhausted is returned by Start when an iteration
	// takes more scheduling points than its WithMaxStepsPerIter cap.
	ErrIterationBudgetExhausted = errors.New("runtime: iteration budget exhausted")

	// ErrRunNotStarted names the error for an operation attempted before
	// the runtime's iteration has begun; no function in this module
	// returns it.
	ErrRunNotStarted = errors.New("runtime: iteration has not started")
)

// DeadlockError reports spec.md §7's "Deadlock" class: every operation
// is Blocked and none is Delayed.
type DeadlockError struct {
	Waiting []WaitingOperation
}

// WaitingOperation names one operation that was blocked at the point of
// a deadlock report.
type WaitingOperation struct {
	Name   string
	Status op.Status
}

func (e *DeadlockError) Error() string {
	names := make([]string, 0, len(e.Waiting))
	for _, w := range e.Waiting {
		names = append(names, fmt.Sprintf("%s (%s)", w.Name, w.Status))
	}
	return fmt.Sprintf("Deadlock detected. %s are waiting to acquire a resource that is held by another task, but neither can be resumed.", strings.Join(names, ", "))
}

// LivenessError reports spec.md §7's "Liveness violation" class.
type LivenessError struct {
	MonitorName string
	StateName   string
}

func (e *LivenessError) Error() string {
	return fmt.Sprintf("Liveness bug: monitor '%s' in hot state '%s' at end of execution", e.MonitorName, e.StateName)
}

// UncontrolledConcurrencyError reports spec.md §7's
// "UncontrolledConcurrency" class: an awaitable or thread the runtime
// doesn't control was encountered outside fuzzing-fallback mode.
type UncontrolledConcurrencyError struct {
	Detail string
}

func (e *UncontrolledConcurrencyError) Error() string {
	return fmt.Sprintf("Uncontrolled task or thread is trying to wait for an uncontrolled awaiter: %s", e.Detail)
}

// AssertionError reports spec.md §7's "Programmer-visible assertion
// failure" class.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string { return e.Message }

// UnhandledExceptionError reports spec.md §7's "Unhandled exception in
// handler" class, wrapping the original panic/error.
type UnhandledExceptionError struct {
	OperationName string
	Cause         error
}

func (e *UnhandledExceptionError) Error() string {
	return fmt.Sprintf("unhandled exception in %s: %v", e.OperationName, e.Cause)
}

func (e *UnhandledExceptionError) Unwrap() error { return e.Cause }

// ConfigError reports spec.md §7's "Configuration error" class; rejected
// at startup, never mid-iteration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Message }
