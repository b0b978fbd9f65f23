package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrCategoryRequired    = errors.New("category is required")
	ErrPaymentModeRequired = errors.New("payment mode is required")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTime         = errors.New("invalid time, expected HH:MM")
	ErrInvalidMonth        = errors.New("invalid month, expected YYYY-MM")

	ErrEmailRequired       = errors.New("email is required")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrPasswordRequired    = errors.New("password is required")
	ErrPasswordTooShort    = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong     = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	ErrCredentialsRequired = errors.New("email and password are required")

	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrUserNotFound       = errors.New("user not found")

	ErrStorageNotConfigured = errors.New("storage target not configured")
	ErrAuthNotConfigured    = errors.New("JWT_SECRET not configured or too short (use at least 16 characters)")
)

var validationErrors = []error{
	ErrInvalidAmount,
	ErrCategoryRequired,
	ErrPaymentModeRequired,
	ErrInvalidDate,
	ErrInvalidTime,
	ErrInvalidMonth,
	ErrEmailRequired,
	ErrInvalidEmail,
	ErrPasswordRequired,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrCredentialsRequired,
}

// IsValidation reports whether err is caused by bad user input.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// StorageErrorKind classifies failures of the external store.
type StorageErrorKind int

const (
	StorageUnavailable StorageErrorKind = iota + 1
	StorageRangeNotFound
)

func (k StorageErrorKind) String() string {
	switch k {
	case StorageUnavailable:
		return "unavailable"
	case StorageRangeNotFound:
		return "range_not_found"
	default:
		return "unknown"
	}
}

// StorageError wraps an upstream storage failure with its classification.
type StorageError struct {
	Kind  StorageErrorKind
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
