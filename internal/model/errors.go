package model

import "fmt"

// ParameterError marks a schema violation or missing required
// configuration (a bad URL, an unset loop mode, a negative timeout).
// It surfaces as a 4xx at the API boundary.
type ParameterError struct {
	Field   string
	Message string
}

func (e *ParameterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewParameterError(field, message string) *ParameterError {
	return &ParameterError{Field: field, Message: message}
}

// NotFoundError marks a reference to a missing case, environment, tag or
// task.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func NewNotFoundError(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// StepExecutionErrorKind classifies a StepExecutionError for callers that
// need to tell transport failures from script or assertion failures.
type StepExecutionErrorKind string

const (
	ErrKindNetwork   StepExecutionErrorKind = "network"
	ErrKindTimeout   StepExecutionErrorKind = "timeout"
	ErrKindUnknown   StepExecutionErrorKind = "unknown"
	ErrKindScript    StepExecutionErrorKind = "script"
	ErrKindAssertion StepExecutionErrorKind = "assertion"
)

// StepExecutionError is the error kind raised by a step executor: a
// transport error, a JSON parse failure, a failing assertion count, a
// script error, or a sandbox violation. Its propagation is governed by
// the enclosing loop's on_error strategy.
type StepExecutionError struct {
	Kind    StepExecutionErrorKind
	Message string
	Err     error
}

func (e *StepExecutionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

func NewStepExecutionError(kind StepExecutionErrorKind, message string, cause error) *StepExecutionError {
	return &StepExecutionError{Kind: kind, Message: message, Err: cause}
}
