// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound       = errors.New("trade not found")
	ErrPlaybookNotFound    = errors.New("playbook not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrDataNotFound        = errors.New("data not found")
	ErrStorage             = errors.New("storage error")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrInputValidation     = errors.New("input validation failed")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInputValidation.
func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StorageError represents a failure of a persistence backend.
type StorageError struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error [%s] %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error [%s] %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, op, key string, err error) *StorageError {
	return &StorageError{
		Backend: backend,
		Op:      op,
		Key:     key,
		Err:     err,
	}
}

// NotFoundError names the missing entity alongside its sentinel.
type NotFoundError struct {
	Kind string
	ID   string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// TradeNotFound returns a NotFoundError for a trade id.
func TradeNotFound(id string) error {
	return &NotFoundError{Kind: "trade", ID: id, Err: ErrTradeNotFound}
}

// PlaybookNotFound returns a NotFoundError for a playbook id.
func PlaybookNotFound(id string) error {
	return &NotFoundError{Kind: "playbook", ID: id, Err: ErrPlaybookNotFound}
}

// ChallengeNotFound returns a NotFoundError for a challenge id.
func ChallengeNotFound(id string) error {
	return &NotFoundError{Kind: "challenge", ID: id, Err: ErrChallengeNotFound}
}

// AchievementNotFound returns a NotFoundError for an achievement id.
func AchievementNotFound(id string) error {
	return &NotFoundError{Kind: "achievement", ID: id, Err: ErrAchievementNotFound}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTradeNotFound) ||
		errors.Is(err, ErrPlaybookNotFound) ||
		errors.Is(err, ErrChallengeNotFound) ||
		errors.Is(err, ErrAchievementNotFound) ||
		errors.Is(err, ErrDataNotFound)
}
