package plan

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Store is the plan persistence contract.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, planID id.PlanID) (*Plan, error)
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	List(ctx context.Context, opts ListOpts) ([]*Plan, error)
	Archive(ctx context.Context, planID id.PlanID) error
}
