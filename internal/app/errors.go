package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidDeleteMode  = errors.New("invalid delete mode")
	ErrInvalidMove        = errors.New("invalid move")
	ErrInvalidQuery       = errors.New("invalid query")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("collaborator not configured")
)
