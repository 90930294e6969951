package common

import (
	"context"

	"github.com/hylla/taskcollab/internal/auth"
)

// identityKey scopes the request identity in a context.
type identityKey struct{}

// WithIdentity returns ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// ActorName returns a display name for audit fields such as created_by.
func ActorName(ctx context.Context, fallback string) string {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return fallback
	}
	if id.Name != "" {
		return id.Name
	}
	if id.Email != "" {
		return id.Email
	}
	return fallback
}
