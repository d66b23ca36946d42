package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/plan"
	"github.com/xraph/letterpress/referral"
	lpstore "github.com/xraph/letterpress/store"
	"github.com/xraph/letterpress/subscription"
	"github.com/xraph/letterpress/timeline"
)

// Collection name constants.
const (
	colLetters       = "letterpress_letters"
	colEvents        = "letterpress_events"
	colCodes         = "letterpress_codes"
	colUsages        = "letterpress_usages"
	colSubscriptions = "letterpress_subscriptions"
	colPoints        = "letterpress_points"
	colPlans         = "letterpress_plans"
)

// compile-time interface check
var _ lpstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all letterpress collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("letterpress/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Letter Store ====================

func (s *Store) CreateLetter(ctx context.Context, l *letter.Letter, first *timeline.Event) error {
	m := toLetterModel(l)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("letterpress/mongo: create letter: %w", err)
	}

	if first == nil {
		return nil
	}
	if _, err := s.mdb.NewInsert(toEventModel(first)).Exec(ctx); err != nil {
		// Compensate: no letter without its creation event.
		_, _ = s.mdb.NewDelete((*letterModel)(nil)). //nolint:errcheck // best-effort compensation
								Filter(bson.M{"_id": l.ID.String()}).
								Exec(ctx)
		return fmt.Errorf("letterpress/mongo: create letter event: %w", err)
	}
	return nil
}

func (s *Store) GetLetter(ctx context.Context, letterID id.LetterID) (*letter.Letter, error) {
	var m letterModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": letterID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrLetterNotFound
		}
		return nil, fmt.Errorf("letterpress/mongo: get letter: %w", err)
	}
	return fromLetterModel(&m)
}

func (s *Store) ListLetters(ctx context.Context, accountID id.AccountID, opts letter.ListOpts) ([]*letter.Letter, error) {
	var models []letterModel

	filter := bson.M{"account_id": accountID.String()}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if !opts.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": opts.Since}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list letters: %w", err)
	}

	result := make([]*letter.Letter, len(models))
	for i := range models {
		l, err := fromLetterModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = l
	}
	return result, nil
}

// ApplyTransition swaps the letter's status with a compare-and-swap on the
// status the caller observed, then appends the timeline event. A swap that
// matches zero documents means a concurrent transition won.
func (s *Store) ApplyTransition(ctx context.Context, tr lpstore.Transition) (*letter.Letter, error) {
	t := now()
	update := s.mdb.NewUpdate((*letterModel)(nil)).
		Filter(bson.M{"_id": tr.LetterID.String(), "status": string(tr.From)}).
		Set("status", string(tr.To)).
		Set("updated_at", t)
	if tr.Content != "" {
		update = update.Set("content", tr.Content)
	}

	res, err := update.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("letterpress/mongo: apply transition: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, gerr := s.GetLetter(ctx, tr.LetterID); gerr != nil {
			return nil, gerr
		}
		return nil, letterpress.ErrTransitionConflict
	}

	if tr.Event != nil {
		if _, err := s.mdb.NewInsert(toEventModel(tr.Event)).Exec(ctx); err != nil {
			// Compensate: revert the swap so no status change exists
			// without its event.
			_, _ = s.mdb.NewUpdate((*letterModel)(nil)). //nolint:errcheck // best-effort compensation
									Filter(bson.M{"_id": tr.LetterID.String(), "status": string(tr.To)}).
									Set("status", string(tr.From)).
									Set("updated_at", now()).
									Exec(ctx)
			return nil, fmt.Errorf("letterpress/mongo: append transition event: %w", err)
		}
	}

	return s.GetLetter(ctx, tr.LetterID)
}

func (s *Store) StoreDraft(ctx context.Context, letterID id.LetterID, content string) error {
	res, err := s.mdb.NewUpdate((*letterModel)(nil)).
		Filter(bson.M{"_id": letterID.String()}).
		Set("content", content).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("letterpress/mongo: store draft: %w", err)
	}
	if res.MatchedCount() == 0 {
		return letterpress.ErrLetterNotFound
	}
	return nil
}

// ==================== Timeline Store ====================

func (s *Store) ListEvents(ctx context.Context, letterID id.LetterID) ([]*timeline.Event, error) {
	var models []eventModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"letter_id": letterID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list events: %w", err)
	}

	result := make([]*timeline.Event, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Discount Store ====================

func (s *Store) CreateCode(ctx context.Context, c *discount.Code) error {
	m := toCodeModel(c)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("letterpress/mongo: create code: %w", err)
	}
	return nil
}

func (s *Store) GetCode(ctx context.Context, code string) (*discount.Code, error) {
	var m codeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"code": code}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrCodeNotFound
		}
		return nil, fmt.Errorf("letterpress/mongo: get code: %w", err)
	}
	return fromCodeModel(&m)
}

func (s *Store) GetCodeByID(ctx context.Context, codeID id.CodeID) (*discount.Code, error) {
	var m codeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": codeID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrCodeNotFound
		}
		return nil, fmt.Errorf("letterpress/mongo: get code by id: %w", err)
	}
	return fromCodeModel(&m)
}

func (s *Store) ListCodes(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Code, error) {
	var models []codeModel

	filter := bson.M{"partner_id": partnerID.String()}
	if opts.Active {
		filter["active"] = true
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list codes: %w", err)
	}

	result := make([]*discount.Code, len(models))
	for i := range models {
		c, err := fromCodeModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) UpdateCode(ctx context.Context, c *discount.Code) error {
	m := toCodeModel(c)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("letterpress/mongo: update code: %w", err)
	}
	if res.MatchedCount() == 0 {
		return letterpress.ErrCodeNotFound
	}
	return nil
}

func (s *Store) DeactivateCodes(ctx context.Context, partnerID id.AccountID) (int, error) {
	res, err := s.mdb.NewUpdate((*codeModel)(nil)).
		Filter(bson.M{"partner_id": partnerID.String(), "active": true}).
		Set("active", false).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("letterpress/mongo: deactivate codes: %w", err)
	}
	return int(res.ModifiedCount()), nil
}

func (s *Store) ListUsages(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Usage, error) {
	var models []usageModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"partner_id": partnerID.String()}).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list usages: %w", err)
	}

	result := make([]*discount.Usage, len(models))
	for i := range models {
		u, err := fromUsageModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = u
	}
	return result, nil
}

// ==================== Redemption Ledger ====================

// CommitRedemption performs the all-or-nothing redemption write. The code
// counter bump is compare-and-swapped on the observed count, serializing
// concurrent redemptions of the same code; each following insert carries a
// compensating rollback of everything before it, so a partial unit is never
// left behind.
func (s *Store) CommitRedemption(ctx context.Context, r lpstore.Redemption) error {
	res, err := s.mdb.NewUpdate((*codeModel)(nil)).
		Filter(bson.M{"_id": r.CodeID.String(), "times_redeemed": r.ExpectedUses}).
		Set("times_redeemed", r.ExpectedUses+1).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("letterpress/mongo: commit redemption: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, gerr := s.GetCodeByID(ctx, r.CodeID); gerr != nil {
			return gerr
		}
		return letterpress.ErrRedemptionConflict
	}

	rollbackCounter := func() {
		_, _ = s.mdb.NewUpdate((*codeModel)(nil)). //nolint:errcheck // best-effort compensation
								Filter(bson.M{"_id": r.CodeID.String(), "times_redeemed": r.ExpectedUses + 1}).
								Set("times_redeemed", r.ExpectedUses).
								Set("updated_at", now()).
								Exec(ctx)
	}

	if _, err := s.mdb.NewInsert(toUsageModel(r.Usage)).Exec(ctx); err != nil {
		rollbackCounter()
		return fmt.Errorf("letterpress/mongo: insert usage: %w", err)
	}
	rollbackUsage := func() {
		_, _ = s.mdb.NewDelete((*usageModel)(nil)). //nolint:errcheck // best-effort compensation
								Filter(bson.M{"_id": r.Usage.ID.String()}).
								Exec(ctx)
	}

	if _, err := s.mdb.NewInsert(toSubscriptionModel(r.Subscription)).Exec(ctx); err != nil {
		rollbackUsage()
		rollbackCounter()
		return fmt.Errorf("letterpress/mongo: insert subscription: %w", err)
	}

	if r.Points != nil {
		if _, err := s.mdb.NewInsert(toPointsModel(r.Points)).Exec(ctx); err != nil {
			_, _ = s.mdb.NewDelete((*subscriptionModel)(nil)). //nolint:errcheck // best-effort compensation
										Filter(bson.M{"_id": r.Subscription.ID.String()}).
										Exec(ctx)
			rollbackUsage()
			rollbackCounter()
			return fmt.Errorf("letterpress/mongo: insert points: %w", err)
		}
	}

	return nil
}

// ==================== Subscription Store ====================

func (s *Store) GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": subID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("letterpress/mongo: get subscription: %w", err)
	}
	return fromSubscriptionModel(&m)
}

func (s *Store) GetActiveSubscription(ctx context.Context, accountID id.AccountID) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"account_id": accountID.String(),
			"status":     string(subscription.StatusActive),
			"$or": bson.A{
				bson.M{"expires_at": bson.M{"$exists": false}},
				bson.M{"expires_at": nil},
				bson.M{"expires_at": bson.M{"$gt": now()}},
			},
		}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("letterpress/mongo: get active subscription: %w", err)
	}
	return fromSubscriptionModel(&m)
}

func (s *Store) ListSubscriptions(ctx context.Context, accountID id.AccountID, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	var models []subscriptionModel

	filter := bson.M{"account_id": accountID.String()}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list subscriptions: %w", err)
	}

	result := make([]*subscription.Subscription, len(models))
	for i := range models {
		sub, err := fromSubscriptionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sub
	}
	return result, nil
}

// ==================== Referral Store ====================

func (s *Store) ListPoints(ctx context.Context, partnerID id.AccountID) ([]*referral.PointsEntry, error) {
	var models []pointsModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"partner_id": partnerID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list points: %w", err)
	}

	result := make([]*referral.PointsEntry, len(models))
	for i := range models {
		p, err := fromPointsModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) TotalPoints(ctx context.Context, partnerID id.AccountID) (int, error) {
	pipeline := bson.A{
		bson.M{
			"$match": bson.M{"partner_id": partnerID.String()},
		},
		bson.M{
			"$group": bson.M{
				"_id":   nil,
				"total": bson.M{"$sum": "$points"},
			},
		},
	}

	cursor, err := s.mdb.Collection(colPoints).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("letterpress/mongo: total points: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("letterpress/mongo: total points decode: %w", err)
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// ==================== Plan Store ====================

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("letterpress/mongo: create plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error) {
	var m planModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": planID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrPlanNotFound
		}
		return nil, fmt.Errorf("letterpress/mongo: get plan: %w", err)
	}
	return fromPlanModel(&m)
}

func (s *Store) GetPlanBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	var m planModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"slug": slug}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, letterpress.ErrPlanNotFound
		}
		return nil, fmt.Errorf("letterpress/mongo: get plan by slug: %w", err)
	}
	return fromPlanModel(&m)
}

func (s *Store) ListPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.Plan, error) {
	var models []planModel

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("letterpress/mongo: list plans: %w", err)
	}

	result := make([]*plan.Plan, len(models))
	for i := range models {
		p, err := fromPlanModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) ArchivePlan(ctx context.Context, planID id.PlanID) error {
	res, err := s.mdb.NewUpdate((*planModel)(nil)).
		Filter(bson.M{"_id": planID.String()}).
		Set("status", string(plan.StatusArchived)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("letterpress/mongo: archive plan: %w", err)
	}
	if res.MatchedCount() == 0 {
		return letterpress.ErrPlanNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all letterpress collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colLetters: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colEvents: {
			{Keys: bson.D{{Key: "letter_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colCodes: {
			{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "partner_id", Value: 1}}},
		},
		colUsages: {
			{Keys: bson.D{{Key: "partner_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "code_id", Value: 1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colPoints: {
			{Keys: bson.D{{Key: "partner_id", Value: 1}}},
			{
				Keys:    bson.D{{Key: "usage_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colPlans: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
}
