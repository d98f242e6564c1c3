// Package auth validates inbound JWTs and exposes the caller's identity to
// handlers. Token issuance belongs to the external identity provider; this
// package only verifies and extracts.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role names carried in JWT claims and checked by RequireRole.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller. ActorID binds the user to their
// clinical record: a doctor's doctor id or a patient's patient id. Admins
// carry no actor binding.
type Identity struct {
	UserID  uuid.UUID
	Role    string
	ActorID uuid.UUID
}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// HasRole reports whether the identity carries the given role.
func (id Identity) HasRole(role string) bool {
	return id.Role == role
}
