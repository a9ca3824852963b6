package helpers

import (
	"fmt"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MacroObserverError struct {
	Message string
	Cause   error
}

func (e *MacroObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MacroObserverError) Unwrap() error {
	return e.Cause
}

// Distinct error types mirroring the failure taxonomy: a credential problem
// is fatal at startup, an anchor problem is fatal for one render cycle, a
// series problem only removes that series, a cache problem degrades to a
// direct fetch, a validation problem rejects the operator input.
type CredentialError struct{ MacroObserverError }
type AnchorError struct{ MacroObserverError }
type SeriesError struct{ MacroObserverError }
type CacheError struct{ MacroObserverError }
type ValidationError struct{ MacroObserverError }

// -----------------------------------------------------------------------------

func NewCredentialError(message string) *CredentialError {
	return &CredentialError{MacroObserverError{Message: message}}
}

func NewAnchorError(name string, cause error) *AnchorError {
	return &AnchorError{MacroObserverError{
		Message: fmt.Sprintf("anchor series %q unavailable, no usable table can be built", name),
		Cause:   cause,
	}}
}

func NewSeriesError(code string, cause error) *SeriesError {
	return &SeriesError{MacroObserverError{
		Message: fmt.Sprintf("series %s unavailable", code),
		Cause:   cause,
	}}
}

func NewCacheError(message string, cause error) *CacheError {
	return &CacheError{MacroObserverError{Message: message, Cause: cause}}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{MacroObserverError{Message: message}}
}
