package apperr

import "fmt"

// OperationError describes an infrastructure-level failure (a database
// round-trip, a broker publish, a cache call) with enough context to
// diagnose it from logs without leaking that context to HTTP clients.
type OperationError struct {
	Operation string
	Component string
	Resource  string
	Cause     error
}

func (e *OperationError) Error() string {
	switch {
	case e.Component != "" && e.Resource != "":
		return fmt.Sprintf("failed to %s, component: %s, resource: %s, cause: %v", e.Operation, e.Component, e.Resource, e.Cause)
	case e.Component != "" && e.Cause != nil:
		return fmt.Sprintf("failed to %s, component: %s, cause: %v", e.Operation, e.Component, e.Cause)
	case e.Component != "":
		return fmt.Sprintf("failed to %s, component: %s", e.Operation, e.Component)
	case e.Cause != nil:
		return fmt.Sprintf("failed to %s, cause: %v", e.Operation, e.Cause)
	default:
		return fmt.Sprintf("failed to %s", e.Operation)
	}
}

func (e *OperationError) Unwrap() error { return e.Cause }

// FailedTo reports a failed single action. With a nil cause it returns a
// minimal OperationError; with a cause it returns a plain error reading
// "failed to <action>: <cause>" that wraps cause.
func FailedTo(action string, cause error) error {
	if cause == nil {
		return &OperationError{Operation: action}
	}
	return fmt.Errorf("failed to %s: %w", action, cause)
}

// FailedToWithDetails builds a fully-populated OperationError for logging
// call sites that know the component/resource involved.
func FailedToWithDetails(operation, component, resource string, cause error) error {
	return &OperationError{Operation: operation, Component: component, Resource: resource, Cause: cause}
}

// Wrapf wraps err with additional context, returning nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", err)
}
