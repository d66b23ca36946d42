package discount

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Store is the discount persistence contract.
type Store interface {
	CreateCode(ctx context.Context, c *Code) error
	GetCode(ctx context.Context, code string) (*Code, error)
	GetCodeByID(ctx context.Context, codeID id.CodeID) (*Code, error)
	ListCodes(ctx context.Context, partnerID id.AccountID, opts ListOpts) ([]*Code, error)
	ListUsages(ctx context.Context, partnerID id.AccountID, opts ListOpts) ([]*Usage, error)
}
