package persistence

import "context"

// Role Datasource role of the current logical call.
// READ routes to the replica, WRITE to the primary. The role travels in the
// context of the call instead of ambient per-goroutine state, so it cannot
// leak into the next request handled by a reused goroutine: a derived
// context dies with its call.
type Role string

const (
	RoleRead  Role = "READ"
	RoleWrite Role = "WRITE"
)

// roleKey is the context key for the datasource role
type roleKey struct{}

// WithRole returns a new context carrying the given datasource role
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext retrieves the datasource role; defaults to WRITE
func RoleFromContext(ctx context.Context) Role {
	if role, ok := ctx.Value(roleKey{}).(Role); ok {
		return role
	}
	return RoleWrite
}

// RoleValue retrieves the datasource role without applying the default
func RoleValue(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleKey{}).(Role)
	return role, ok
}
