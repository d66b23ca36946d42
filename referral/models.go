// Package referral tracks partner reward points. Exactly one entry is
// written per successful discount redemption, inside the same atomic unit
// as the subscription and usage record.
package referral

import (
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/types"
)

// SourceRedemption tags points earned through a discount-code redemption.
const SourceRedemption = "redemption"

// PointsEntry is an immutable reward record for a partner.
type PointsEntry struct {
	types.Entity
	ID        id.PointsID  `json:"id"`
	PartnerID id.AccountID `json:"partner_id"`
	Points    int          `json:"points"`
	Source    string       `json:"source"`
	UsageID   id.UsageID   `json:"usage_id"` // the triggering usage record
}
