package letter

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Store is the letter persistence contract. The unified store.Store
// interface embeds these methods; this narrow interface exists for
// components that only touch letters.
type Store interface {
	Get(ctx context.Context, letterID id.LetterID) (*Letter, error)
	List(ctx context.Context, accountID id.AccountID, opts ListOpts) ([]*Letter, error)
}
