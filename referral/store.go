package referral

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Store is the referral persistence contract. Entries are inserted by the
// redemption ledger's atomic unit; only reads are exposed here.
type Store interface {
	ListPoints(ctx context.Context, partnerID id.AccountID) ([]*PointsEntry, error)
	TotalPoints(ctx context.Context, partnerID id.AccountID) (int, error)
}
