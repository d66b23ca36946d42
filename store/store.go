package store

import (
	"context"

	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/plan"
	"github.com/xraph/letterpress/referral"
	"github.com/xraph/letterpress/subscription"
	"github.com/xraph/letterpress/timeline"
)

// Redemption bundles every write of one discount redemption. CommitRedemption
// persists all of it or none of it: the usage record, the subscription it
// pays for, the partner points entry, and the code's usage-counter increment.
// ExpectedUses is the counter value observed during validation; the increment
// is a compare-and-swap against it, so two racing redemptions of the same
// code cannot both commit against the same observation.
type Redemption struct {
	Usage        *discount.Usage
	Subscription *subscription.Subscription
	Points       *referral.PointsEntry
	CodeID       id.CodeID
	ExpectedUses int
}

// Transition bundles one letter status change. ApplyTransition persists the
// status update and the timeline event together, compare-and-swapped on the
// status observed by the caller. When Content is non-empty it is written in
// the same unit, so a draft is never persisted without its status advance.
type Transition struct {
	LetterID id.LetterID
	From     letter.Status
	To       letter.Status
	Content  string
	Event    *timeline.Event
}

// Store is the unified storage interface for all Letterpress entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Letter methods
	CreateLetter(ctx context.Context, l *letter.Letter, first *timeline.Event) error
	GetLetter(ctx context.Context, letterID id.LetterID) (*letter.Letter, error)
	ListLetters(ctx context.Context, accountID id.AccountID, opts letter.ListOpts) ([]*letter.Letter, error)
	ApplyTransition(ctx context.Context, tr Transition) (*letter.Letter, error)
	StoreDraft(ctx context.Context, letterID id.LetterID, content string) error

	// Timeline methods
	ListEvents(ctx context.Context, letterID id.LetterID) ([]*timeline.Event, error)

	// Discount code methods
	CreateCode(ctx context.Context, c *discount.Code) error
	GetCode(ctx context.Context, code string) (*discount.Code, error)
	GetCodeByID(ctx context.Context, codeID id.CodeID) (*discount.Code, error)
	ListCodes(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Code, error)
	UpdateCode(ctx context.Context, c *discount.Code) error
	DeactivateCodes(ctx context.Context, partnerID id.AccountID) (int, error)
	ListUsages(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Usage, error)

	// Redemption ledger methods
	CommitRedemption(ctx context.Context, r Redemption) error

	// Subscription methods
	GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error)
	GetActiveSubscription(ctx context.Context, accountID id.AccountID) (*subscription.Subscription, error)
	ListSubscriptions(ctx context.Context, accountID id.AccountID, opts subscription.ListOpts) ([]*subscription.Subscription, error)

	// Referral points methods
	ListPoints(ctx context.Context, partnerID id.AccountID) ([]*referral.PointsEntry, error)
	TotalPoints(ctx context.Context, partnerID id.AccountID) (int, error)

	// Plan methods
	CreatePlan(ctx context.Context, p *plan.Plan) error
	GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error)
	GetPlanBySlug(ctx context.Context, slug string) (*plan.Plan, error)
	ListPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.Plan, error)
	ArchivePlan(ctx context.Context, planID id.PlanID) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
