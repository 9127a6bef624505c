/*
errors.go - Centralized error types for the report engine

ERROR CATEGORIES:
  1. Configuration errors - invalid option values, rejected before compile
  2. Data integrity errors - conditions that abort an export outright
     (never a partial file)
  3. Render errors - programming errors in generator dispatch

Entries outside the configured range or excluded by filters are NOT errors;
they are dropped silently (expected filtering).
*/
package report

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is the base for all option validation failures.
	ErrInvalidConfiguration = errors.New("invalid report configuration")

	// ErrDataIntegrity is the base for conditions that abort generation.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrLessThanZeroReportableDays is returned when hours must move off
	// avoided days but no receiving day exists. Aborting beats silently
	// dropping booked hours.
	ErrLessThanZeroReportableDays = errors.New("less than zero reportable days")

	// ErrUnknownReportKind is returned when Generate is called for a kind
	// the generator does not understand. This is a programming error: the
	// registry is supposed to dispatch via Understands first.
	ErrUnknownReportKind = errors.New("generator does not understand report kind")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError reports an invalid option value.
type ConfigurationError struct {
	Option string
	Value  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid value %q for option %q", e.Value, e.Option)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// NewConfigurationError builds a ConfigurationError for an option/value pair.
func NewConfigurationError(option, value string) *ConfigurationError {
	return &ConfigurationError{Option: option, Value: value}
}

// DataIntegrityError wraps a fatal export condition with a user-facing
// message. The export is aborted; no partial file is ever emitted.
type DataIntegrityError struct {
	Cause   error
	Message string
}

func (e *DataIntegrityError) Error() string {
	return e.Message
}

func (e *DataIntegrityError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrDataIntegrity
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsDataIntegrity returns true for conditions that abort an export.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrDataIntegrity) ||
		errors.Is(err, ErrLessThanZeroReportableDays)
}
