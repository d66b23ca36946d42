package letter

import "github.com/xraph/letterpress/identity"

// transitions is the legal-transition table. For each (from, to) pair it
// lists the roles permitted to apply the move. Absence of a pair means the
// move is illegal for everyone; absence of a role means the move is
// forbidden for that caller. Partners are never granted letter rights.
var transitions = map[Status]map[Status][]identity.Role{
	StatusDraft: {
		StatusSubmitted: {identity.RoleOwner, identity.RoleStaff},
		StatusCancelled: {identity.RoleOwner, identity.RoleStaff},
	},
	StatusSubmitted: {
		StatusInReview:  {identity.RoleStaff},
		StatusCancelled: {identity.RoleStaff},
	},
	StatusInReview: {
		StatusApproved:  {identity.RoleStaff},
		StatusSubmitted: {identity.RoleStaff},
		StatusCancelled: {identity.RoleStaff},
	},
	StatusApproved: {
		// Owners trigger completion through the delivery action.
		StatusCompleted: {identity.RoleStaff, identity.RoleOwner},
		StatusInReview:  {identity.RoleStaff},
	},
	StatusCancelled: {
		StatusSubmitted: {identity.RoleOwner, identity.RoleStaff},
	},
	// StatusCompleted has no outgoing transitions.
}

// CanTransition reports whether the move from one status to another is
// legal for any role.
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// RoleAllowed reports whether the given role may apply the move. It returns
// false for legal moves the role is not granted, and for illegal moves.
func RoleAllowed(from, to Status, role identity.Role) bool {
	for _, r := range transitions[from][to] {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from the given status by
// the given role, in no particular order.
func AllowedTargets(from Status, role identity.Role) []Status {
	var out []Status
	for to := range transitions[from] {
		if RoleAllowed(from, to, role) {
			out = append(out, to)
		}
	}
	return out
}
