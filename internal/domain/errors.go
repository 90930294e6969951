package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrInvalidSprintStatus = errors.New("invalid sprint status")
	ErrInvalidColumnID     = errors.New("invalid column id")
	ErrInvalidPatch        = errors.New("invalid patch")
	ErrUnknownField        = errors.New("unknown field")
)
