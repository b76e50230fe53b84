package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLockHeld indicates a concurrent workflow holds the resource lock.
	ErrLockHeld = errors.New("resource is locked by another operation")
)
