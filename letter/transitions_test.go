package letter_test

import (
	"testing"

	"github.com/xraph/letterpress/identity"
	"github.com/xraph/letterpress/letter"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from letter.Status
		to   letter.Status
		want bool
	}{
		{"draft to submitted", letter.StatusDraft, letter.StatusSubmitted, true},
		{"draft to cancelled", letter.StatusDraft, letter.StatusCancelled, true},
		{"draft to approved", letter.StatusDraft, letter.StatusApproved, false},
		{"submitted to in_review", letter.StatusSubmitted, letter.StatusInReview, true},
		{"submitted to completed", letter.StatusSubmitted, letter.StatusCompleted, false},
		{"in_review to approved", letter.StatusInReview, letter.StatusApproved, true},
		{"in_review back to submitted", letter.StatusInReview, letter.StatusSubmitted, true},
		{"approved to completed", letter.StatusApproved, letter.StatusCompleted, true},
		{"approved back to in_review", letter.StatusApproved, letter.StatusInReview, true},
		{"cancelled resubmission", letter.StatusCancelled, letter.StatusSubmitted, true},
		{"cancelled to in_review", letter.StatusCancelled, letter.StatusInReview, false},
		{"completed is terminal", letter.StatusCompleted, letter.StatusApproved, false},
		{"completed to in_review", letter.StatusCompleted, letter.StatusInReview, false},
		{"no self transition", letter.StatusSubmitted, letter.StatusSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := letter.CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name string
		from letter.Status
		to   letter.Status
		role identity.Role
		want bool
	}{
		{"owner submits own draft", letter.StatusDraft, letter.StatusSubmitted, identity.RoleOwner, true},
		{"owner cannot start review", letter.StatusSubmitted, letter.StatusInReview, identity.RoleOwner, false},
		{"staff starts review", letter.StatusSubmitted, letter.StatusInReview, identity.RoleStaff, true},
		{"staff approves", letter.StatusInReview, letter.StatusApproved, identity.RoleStaff, true},
		{"owner cannot approve", letter.StatusInReview, letter.StatusApproved, identity.RoleOwner, false},
		{"owner delivery completes", letter.StatusApproved, letter.StatusCompleted, identity.RoleOwner, true},
		{"owner cannot reopen review", letter.StatusApproved, letter.StatusInReview, identity.RoleOwner, false},
		{"owner resubmits after cancel", letter.StatusCancelled, letter.StatusSubmitted, identity.RoleOwner, true},
		{"partner has no letter rights", letter.StatusDraft, letter.StatusSubmitted, identity.RolePartner, false},
		{"partner cannot complete", letter.StatusApproved, letter.StatusCompleted, identity.RolePartner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := letter.RoleAllowed(tt.from, tt.to, tt.role); got != tt.want {
				t.Errorf("RoleAllowed(%s, %s, %s) = %v, want %v", tt.from, tt.to, tt.role, got, tt.want)
			}
		})
	}
}

func TestPartnerNeverAllowed(t *testing.T) {
	all := []letter.Status{
		letter.StatusDraft, letter.StatusSubmitted, letter.StatusInReview,
		letter.StatusApproved, letter.StatusCompleted, letter.StatusCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			if letter.RoleAllowed(from, to, identity.RolePartner) {
				t.Errorf("partner unexpectedly allowed %s -> %s", from, to)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if !letter.StatusCompleted.Terminal() {
		t.Error("completed should be terminal")
	}
	if letter.StatusCancelled.Terminal() {
		t.Error("cancelled is resubmittable, not terminal")
	}
	if got := letter.AllowedTargets(letter.StatusCompleted, identity.RoleStaff); len(got) != 0 {
		t.Errorf("completed should have no targets, got %v", got)
	}
}
