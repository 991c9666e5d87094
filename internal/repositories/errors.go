package repositories

import "errors"

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when a user with the same email is already stored.
var ErrDuplicateEmail = errors.New("email already registered")
