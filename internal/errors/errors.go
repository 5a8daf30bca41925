package errors

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the simulator can surface. Each kind maps
// to one sentinel so callers can match with errors.Is.
type Kind string

const (
	// KindDataUnavailable - the provider cannot supply the requested series.
	KindDataUnavailable Kind = "DATA_UNAVAILABLE"
	// KindInsufficientData - the plan's date range is not covered by the series.
	KindInsufficientData Kind = "INSUFFICIENT_DATA"
	// KindInvalidParameter - malformed plan or run configuration.
	KindInvalidParameter Kind = "INVALID_PARAMETER"
	// KindInvalidWindow - the sampler was given an infeasible range.
	KindInvalidWindow Kind = "INVALID_WINDOW"
	// KindInvalidTrajectory - metrics requested on an empty trajectory.
	KindInvalidTrajectory Kind = "INVALID_TRAJECTORY"
)

// Sentinels for errors.Is matching.
var (
	ErrDataUnavailable   = errors.New("data unavailable")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidWindow     = errors.New("invalid window")
	ErrInvalidTrajectory = errors.New("invalid trajectory")
)

// SimError is a categorized simulator error carrying the component and
// operation that produced it.
type SimError struct {
	Kind       Kind
	Component  string
	Operation  string
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *SimError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Kind, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Kind, e.Component, e.Operation, e.Message)
}

// Unwrap exposes both the wrapped cause and the kind sentinel, so
// errors.Is(err, ErrInsufficientData) works on wrapped chains.
func (e *SimError) Unwrap() []error {
	out := []error{sentinel(e.Kind)}
	if e.Underlying != nil {
		out = append(out, e.Underlying)
	}
	return out
}

func sentinel(k Kind) error {
	switch k {
	case KindDataUnavailable:
		return ErrDataUnavailable
	case KindInsufficientData:
		return ErrInsufficientData
	case KindInvalidParameter:
		return ErrInvalidParameter
	case KindInvalidWindow:
		return ErrInvalidWindow
	case KindInvalidTrajectory:
		return ErrInvalidTrajectory
	default:
		return nil
	}
}

// New creates a categorized error.
func New(kind Kind, component, operation, format string, args ...any) *SimError {
	return &SimError{
		Kind:      kind,
		Component: component,
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Wrap attaches categorization to an existing error. Returns nil for nil.
func Wrap(err error, kind Kind, component, operation string) *SimError {
	if err == nil {
		return nil
	}
	return &SimError{
		Kind:       kind,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// Typed constructors used at the call sites.

func NewDataUnavailable(component, operation, format string, args ...any) *SimError {
	return New(KindDataUnavailable, component, operation, format, args...)
}

func NewInsufficientData(component, operation, format string, args ...any) *SimError {
	return New(KindInsufficientData, component, operation, format, args...)
}

func NewInvalidParameter(component, operation, format string, args ...any) *SimError {
	return New(KindInvalidParameter, component, operation, format, args...)
}

func NewInvalidWindow(component, operation, format string, args ...any) *SimError {
	return New(KindInvalidWindow, component, operation, format, args...)
}

func NewInvalidTrajectory(component, operation, format string, args ...any) *SimError {
	return New(KindInvalidTrajectory, component, operation, format, args...)
}
