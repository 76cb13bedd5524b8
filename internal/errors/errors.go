// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrNoData         = errors.New("no data returned")
	ErrRateLimited    = errors.New("rate limited")
	ErrTimeout        = errors.New("operation timed out")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrStageNotFound  = errors.New("pipeline stage not found")
	ErrNotAuthorized  = errors.New("user not authorized")
	ErrCooldownActive = errors.New("cooldown active")
)

// InsufficientDataError is returned when a price series is too short for
// indicator computation. Callers must not fabricate indicator values on
// this failure.
type InsufficientDataError struct {
	Symbol   string
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s (need %d+ trading days, got %d)",
		e.Symbol, e.Required, e.Got)
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(symbol string, required, got int) *InsufficientDataError {
	return &InsufficientDataError{Symbol: symbol, Required: required, Got: got}
}

// DataUnavailableError marks a failure to obtain real data. It serializes
// to a structured object with a DATA_UNAVAILABLE flag that LLM-based
// callers key off to refuse speculation.
type DataUnavailableError struct {
	Symbol string
	Reason string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data unavailable for %s: %s: %v", e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("data unavailable for %s: %s", e.Symbol, e.Reason)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// NewDataUnavailableError creates a new DataUnavailableError.
func NewDataUnavailableError(symbol, reason string, err error) *DataUnavailableError {
	return &DataUnavailableError{Symbol: symbol, Reason: reason, Err: err}
}

// MarshalJSON renders the error in the wire format consumed by report
// agents: an error message, the DATA_UNAVAILABLE flag, and an instruction
// not to invent numbers.
func (e *DataUnavailableError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error           string `json:"error"`
		Symbol          string `json:"symbol,omitempty"`
		DataUnavailable bool   `json:"DATA_UNAVAILABLE"`
		Message         string `json:"message"`
	}{
		Error:           e.Error(),
		Symbol:          e.Symbol,
		DataUnavailable: true,
		Message:         fmt.Sprintf("FAILED to fetch data for %s. Do NOT guess values.", e.Symbol),
	})
}

// AgentError represents an error from a pipeline stage.
type AgentError struct {
	StageName string
	Operation string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("stage error [%s] %s: %v", e.StageName, e.Operation, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new AgentError.
func NewAgentError(stageName, operation string, err error) *AgentError {
	return &AgentError{StageName: stageName, Operation: operation, Err: err}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IsDataUnavailable reports whether err (or anything it wraps) marks
// unavailable data.
func IsDataUnavailable(err error) bool {
	var due *DataUnavailableError
	return errors.As(err, &due)
}

// IsInsufficientData reports whether err is an insufficient-data failure.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}
