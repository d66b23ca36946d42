package plan

import (
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/types"
)

// Status is the plan catalog state.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Period is the subscription term granted by a plan.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodOneOff  Period = "one_off" // no expiry
)

// Plan is a purchasable subscription tier: a price, a letter-credit
// allotment, and a term.
type Plan struct {
	types.Entity
	ID            id.PlanID   `json:"id"`
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description,omitempty"`
	Price         types.Money `json:"price"`
	LetterCredits int         `json:"letter_credits"`
	Period        Period      `json:"period"`
	Status        Status      `json:"status"`
}

// ListOpts filters plan listings.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
