package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes for generated identifiers.
const (
	ColumnIDPrefix     = "col-"
	CardIDPrefix       = "card-"
	AttachmentIDPrefix = "att-"
)

// NewID returns prefix followed by a random UUID without dashes.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
