package engine

import (
	"errors"
	"fmt"
)

// RegistrationError reports misuse during world setup.
//
// Registration never partially applies: when an error is returned the
// registries are unchanged.
type RegistrationError struct {
	// Code identifies the error category.
	Code RegistrationErrorCode

	// Name is the entity prefix, atom name or formula id involved.
	Name string

	// Message is a human-readable description.
	Message string
}

// RegistrationErrorCode categorizes registration errors.
type RegistrationErrorCode string

const (
	// ErrCodeDuplicateEntity indicates an entity prefix was registered twice.
	ErrCodeDuplicateEntity RegistrationErrorCode = "DUPLICATE_ENTITY"

	// ErrCodeDuplicateAtom indicates an atom name was registered twice.
	ErrCodeDuplicateAtom RegistrationErrorCode = "DUPLICATE_ATOM"

	// ErrCodeDuplicateFormula indicates a formula id was registered twice.
	ErrCodeDuplicateFormula RegistrationErrorCode = "DUPLICATE_FORMULA"

	// ErrCodeInvalidName indicates an empty or malformed name.
	ErrCodeInvalidName RegistrationErrorCode = "INVALID_NAME"

	// ErrCodeUnknownOwner indicates a formula names an owner that was never registered.
	ErrCodeUnknownOwner RegistrationErrorCode = "UNKNOWN_OWNER"
)

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRegistrationError(code RegistrationErrorCode, name, format string, args ...any) *RegistrationError {
	return &RegistrationError{Code: code, Name: name, Message: fmt.Sprintf(format, args...)}
}

// IsRegistrationError returns true if err is a RegistrationError with the given code.
// Uses errors.As to handle wrapped errors.
func IsRegistrationError(err error, code RegistrationErrorCode) bool {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsDuplicate returns true if err reports an already-registered entity, atom
// or formula.
func IsDuplicate(err error) bool {
	var re *RegistrationError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Code {
	case ErrCodeDuplicateEntity, ErrCodeDuplicateAtom, ErrCodeDuplicateFormula:
		return true
	}
	return false
}

// OscillationError is returned in fixpoint mode when repeated sweeps revisit
// a world-state already seen during the same external event. Rules whose
// consequents flip the same facts back and forth never converge.
//
// The current node is left wherever the last completed sweep put it.
type OscillationError struct {
	Fact        string // The externally reported fact that started the event
	Fingerprint string // Fingerprint of the revisited state
	Sweeps      int    // Sweeps completed before the repeat was seen
}

// Error implements the error interface.
func (e *OscillationError) Error() string {
	return fmt.Sprintf("report %s: rule set oscillates after %d sweeps (state %.12s revisited)",
		e.Fact, e.Sweeps, e.Fingerprint)
}

// IsOscillationError returns true if the error is an OscillationError.
// Uses errors.As to handle wrapped errors.
func IsOscillationError(err error) bool {
	var oe *OscillationError
	return errors.As(err, &oe)
}
