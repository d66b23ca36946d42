// Package identity defines the caller-identity contract consumed by the
// engine. Every operation receives an explicit actor — there is no ambient
// session state.
package identity

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Role is the closed set of caller roles known to the engine.
type Role string

const (
	// RoleOwner is the account that owns a letter or subscription.
	RoleOwner Role = "owner"
	// RoleStaff reviews and manages letters for any account.
	RoleStaff Role = "staff"
	// RolePartner issues discount codes and earns commission. Partners have
	// no letter-management rights.
	RolePartner Role = "partner"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleStaff, RolePartner:
		return true
	}
	return false
}

// Identity is a verified caller.
type Identity struct {
	AccountID id.AccountID `json:"account_id"`
	Role      Role         `json:"role"`
}

// Resolver turns opaque caller credentials into a verified Identity.
// Implementations live outside the engine (API gateway, auth service).
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// ResolverFunc is an adapter to use a plain function as a Resolver.
type ResolverFunc func(ctx context.Context, token string) (Identity, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}
