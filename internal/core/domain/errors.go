package domain

import "errors"

var (
	// ErrAuthenticationFailed covers both an unknown email and a wrong
	// password at login. Callers must not tell the two apart.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("access forbidden")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("invalid role")
	// ErrPasswordTooLong is returned for passwords over 72 bytes, the most
	// bcrypt can hash.
	ErrPasswordTooLong = errors.New("password too long")
	ErrNotMaster       = errors.New("user is not a master")
)
