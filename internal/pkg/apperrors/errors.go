package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrConflict = errors.New("resource conflict")

	ErrInvalidTerm = errors.New("term must be a positive number of months")

	ErrInvalidAmount = errors.New("amount must be greater than zero")

	ErrAlreadyPaid = errors.New("installment is already paid")

	ErrPersistence = errors.New("persistence failure")

	// ErrPartialFailure means the loan request was stored but its schedule was not.
	ErrPartialFailure = errors.New("loan request stored without schedule")

	// ErrTotalFailure means nothing about the submission was stored.
	ErrTotalFailure = errors.New("loan request not stored")

	// ErrScheduleNotPersisted is returned by stores that committed the request row
	// but failed to write its installments.
	ErrScheduleNotPersisted = errors.New("schedule not persisted")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

// PersistenceError reports a failed loan submission write. RequestID is set
// only when Partial is true, since only then does the request exist.
type PersistenceError struct {
	Partial   bool
	RequestID string
	Cause     error
}

func (e *PersistenceError) Error() string {
	if e.Partial {
		return fmt.Sprintf("loan request %s stored without schedule: %v", e.RequestID, e.Cause)
	}
	return fmt.Sprintf("loan request not stored: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() []error {
	kind := ErrTotalFailure
	if e.Partial {
		kind = ErrPartialFailure
	}
	return []error{ErrPersistence, kind, e.Cause}
}

func NewPersistenceError(cause error, requestID string) error {
	if errors.Is(cause, ErrScheduleNotPersisted) {
		return &PersistenceError{Partial: true, RequestID: requestID, Cause: cause}
	}
	return &PersistenceError{Cause: cause}
}
