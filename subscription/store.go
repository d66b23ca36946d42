package subscription

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Store is the subscription persistence contract. Creation happens inside
// the redemption ledger's atomic unit, so only reads are exposed here.
type Store interface {
	Get(ctx context.Context, subID id.SubscriptionID) (*Subscription, error)
	GetActive(ctx context.Context, accountID id.AccountID) (*Subscription, error)
	List(ctx context.Context, accountID id.AccountID, opts ListOpts) ([]*Subscription, error)
}
