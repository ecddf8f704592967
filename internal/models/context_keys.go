package models

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// IdentityContextKey stores the *Identity resolved by a guard.
	IdentityContextKey contextKey = "identity"
)

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext extracts the identity stored by a guard.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(*Identity)
	return id, ok && id != nil
}
