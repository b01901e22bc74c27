// Package auth contains the authentication core: password hashing, session token
// issuance and verification, and the middleware that turns a bearer token into a
// request-scoped Identity.
//
// This file, `context.go`, deals with carrying the verified identity inside the
// request's context.Context so downstream handlers never re-parse the token.
package auth

import (
	"context"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContextWithIdentity returns a copy of ctx carrying id.
func NewContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity attached by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
