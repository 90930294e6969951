package common

import (
	"errors"

	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnauthorized reports a missing or rejected bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// validationErrors lists the sentinels that describe bad caller input.
var validationErrors = []error{
	ErrInvalidRequest,
	app.ErrInvalidDeleteMode,
	app.ErrInvalidQuery,
	domain.ErrInvalidID,
	domain.ErrInvalidName,
	domain.ErrInvalidTitle,
	domain.ErrInvalidPriority,
	domain.ErrInvalidEmail,
	domain.ErrInvalidSprintStatus,
	domain.ErrInvalidColumnID,
	domain.ErrInvalidPatch,
	domain.ErrUnknownField,
}

// IsValidationError reports whether err describes bad caller input.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
