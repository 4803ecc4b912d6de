package services

import "errors"

// Sentinel errors for explicit error handling
// These errors allow callers to distinguish between different failure modes
// using errors.Is() instead of string matching. All of them collapse to a
// single generic unauthorized response at the HTTP boundary; the distinction
// exists for diagnostics only.

var (
	// ErrUserNotFound indicates no user exists for the given email
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates a wrong password or unknown user
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrKeyNotFound indicates the requested API key does not exist
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyInvalid indicates the presented API key failed validation
	ErrKeyInvalid = errors.New("invalid api key")

	// ErrDenied indicates the key exists but belongs to another owner
	ErrDenied = errors.New("not authorized for this key")

	// ErrTokenMalformed indicates the token could not be parsed
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenSignature indicates the token signature does not match
	ErrTokenSignature = errors.New("bad token signature")

	// ErrTokenExpired indicates the token is past its expiry
	ErrTokenExpired = errors.New("token expired")
)
