package domain

import "errors"

var (
	// ErrUnauthenticated means no caller identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller is authenticated but not entitled
	// to the requested transition.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the transition is not legal from the
	// entity's current state.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrAlreadySettled means the referral has already been marked paid.
	ErrAlreadySettled = errors.New("referral already settled")
	// ErrValidation means the input failed schema validation.
	ErrValidation = errors.New("validation error")

	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrStorageUnavailable = errors.New("database is unavailable")
	ErrBrokerUnavailable  = errors.New("message broker is unavailable")
)
