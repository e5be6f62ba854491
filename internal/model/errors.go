package model

import "errors"

var (
	// User related errors
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
	ErrDuplicateSiret = errors.New("siret already in use")

	// Token related errors
	ErrRefreshRejected = errors.New("refresh token rejected")

	// Resource errors shared by the domain repositories
	ErrNotFound = errors.New("resource not found")

	// Access control
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)
