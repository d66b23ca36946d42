package subscription

import (
	"time"

	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/types"
)

// Status is the subscription lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Subscription is created once per checkout. The letter-credit allotment is
// set at creation from the plan; downstream letter creation decrements the
// credits outside this engine.
type Subscription struct {
	types.Entity
	ID             id.SubscriptionID `json:"id"`
	AccountID      id.AccountID      `json:"account_id"`
	PlanID         id.PlanID         `json:"plan_id"`
	Status         Status            `json:"status"`
	OriginalAmount types.Money       `json:"original_amount"`
	DiscountAmount types.Money       `json:"discount_amount"`
	FinalAmount    types.Money       `json:"final_amount"` // original - discount, never negative
	UsageID        id.UsageID        `json:"usage_id,omitempty"`
	LetterCredits  int               `json:"letter_credits"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
}

// ListOpts filters subscription listings.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
