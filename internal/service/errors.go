package service

import "errors"

var (
	// ErrInvalidInput marks malformed input (missing required field).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized marks a bad credential: wrong magic-link secret,
	// invalid/expired/inactive API token, invalid/expired JWT. Every
	// authentication failure collapses here so callers learn nothing.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an absent record or one owned by someone else;
	// the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks a failed OAuth provider call or a profile with
	// no usable email.
	ErrUpstream = errors.New("upstream provider error")
	// ErrMisconfigured marks fatal startup configuration problems.
	ErrMisconfigured = errors.New("auth config invalid")
)
