package discount

import (
	"strings"
	"time"

	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/types"
)

// Code is a partner-issued discount token. The usage counter is only ever
// incremented by the redemption ledger, under a compare-and-swap on its
// previous value.
type Code struct {
	types.Entity
	ID             id.CodeID    `json:"id"`
	Code           string       `json:"code"` // normalized uppercase
	PartnerID      id.AccountID `json:"partner_id"`
	Percentage     int          `json:"percentage"`
	TimesRedeemed  int          `json:"times_redeemed"`
	MaxRedemptions int          `json:"max_redemptions"` // 0 = unlimited
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
	Active         bool         `json:"active"`
}

// Normalize canonicalizes a user-supplied code string: trimmed and
// uppercased. Lookups and storage always use the normalized form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Expired reports whether the code has an expiry in the past relative to now.
func (c *Code) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Exhausted reports whether the usage cap has been reached.
func (c *Code) Exhausted() bool {
	return c.MaxRedemptions > 0 && c.TimesRedeemed >= c.MaxRedemptions
}

// Usage is the immutable record of one redemption. The commission is
// computed from the pre-discount charge, so partner earnings do not depend
// on the size of the discount they extended.
type Usage struct {
	types.Entity
	ID         id.UsageID   `json:"id"`
	CodeID     id.CodeID    `json:"code_id"`
	AccountID  id.AccountID `json:"account_id"`
	PartnerID  id.AccountID `json:"partner_id"` // denormalized from the code
	Charge     types.Money  `json:"charge"`     // before discount
	Discount   types.Money  `json:"discount"`
	Commission types.Money  `json:"commission"`
}

// ListOpts filters code and usage listings.
type ListOpts struct {
	Active bool
	Limit  int
	Offset int
}
