package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup and stepping.
var (
	// ErrConfig indicates a configuration rejected at startup.
	ErrConfig = errors.New("plife: invalid configuration")

	// ErrColorIndex indicates a colour class outside [0, K).
	ErrColorIndex = errors.New("plife: colour class out of range")

	// ErrDegenerateGeometry indicates two coincident particles. The engine
	// never returns it from a step; coincident pairs are skipped and counted.
	ErrDegenerateGeometry = errors.New("plife: coincident particles")

	// ErrTimestep indicates a negative or non-finite dt.
	ErrTimestep = errors.New("plife: invalid timestep")

	// ErrInvalidState indicates a particle with a NaN or Inf component.
	ErrInvalidState = errors.New("plife: invalid state (NaN or Inf detected)")
)

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

// NewConfigError builds a ConfigError for field with the offending value.
func NewConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrConfig.Error(), e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// StepError wraps a stepping failure with the tick it happened on.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
