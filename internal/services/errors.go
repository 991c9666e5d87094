package services

import (
	"errors"
	"fmt"

	"cafe/internal/repositories"
)

// Domain errors. Handlers map them to HTTP statuses with errors.Is / errors.As.
var (
	ErrUserNotFound       = errors.New("cannot find user in the database")
	ErrItemNotFound       = errors.New("item not found in checkout basket")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CredentialsError is a failed login. Field is "email" when no account
// matched and "password" when the password was wrong.
type CredentialsError struct {
	Field string
}

func (e *CredentialsError) Error() string { return ErrInvalidCredentials.Error() }

func (e *CredentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

// StorageError wraps a persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func userLookupError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return storageError(op, err)
}
