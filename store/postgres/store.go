package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

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

// compile-time interface check
var _ lpstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("letterpress/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("letterpress/postgres: migration failed: %w", err)
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
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	if first == nil {
		return nil
	}
	if _, err := s.pg.NewInsert(toEventModel(first)).Exec(ctx); err != nil {
		// Compensate: no letter without its creation event.
		_, _ = s.pg.NewDelete((*letterModel)(nil)). //nolint:errcheck // best-effort compensation
								Where("id = $1", l.ID.String()).
								Exec(ctx)
		return err
	}
	return nil
}

func (s *Store) GetLetter(ctx context.Context, letterID id.LetterID) (*letter.Letter, error) {
	m := new(letterModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", letterID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrLetterNotFound
		}
		return nil, err
	}
	return fromLetterModel(m)
}

func (s *Store) ListLetters(ctx context.Context, accountID id.AccountID, opts letter.ListOpts) ([]*letter.Letter, error) {
	var models []letterModel
	q := s.pg.NewSelect(&models).Where("account_id = $1", accountID.String())

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if !opts.Since.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("created_at >= $%d", argIdx), opts.Since)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
// matches zero rows means a concurrent transition won.
func (s *Store) ApplyTransition(ctx context.Context, tr lpstore.Transition) (*letter.Letter, error) {
	t := now()
	q := s.pg.NewUpdate((*letterModel)(nil)).
		Set("status = $1", string(tr.To)).
		Set("updated_at = $2", t)
	if tr.Content != "" {
		q = q.Set("content = $3", tr.Content).
			Where("id = $4", tr.LetterID.String()).
			Where("status = $5", string(tr.From))
	} else {
		q = q.Where("id = $3", tr.LetterID.String()).
			Where("status = $4", string(tr.From))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, gerr := s.GetLetter(ctx, tr.LetterID); gerr != nil {
			return nil, gerr
		}
		return nil, letterpress.ErrTransitionConflict
	}

	if tr.Event != nil {
		if _, err := s.pg.NewInsert(toEventModel(tr.Event)).Exec(ctx); err != nil {
			// Compensate: revert the swap so no status change exists
			// without its event.
			_, _ = s.pg.NewUpdate((*letterModel)(nil)). //nolint:errcheck // best-effort compensation
									Set("status = $1", string(tr.From)).
									Set("updated_at = $2", now()).
									Where("id = $3", tr.LetterID.String()).
									Where("status = $4", string(tr.To)).
									Exec(ctx)
			return nil, err
		}
	}

	return s.GetLetter(ctx, tr.LetterID)
}

func (s *Store) StoreDraft(ctx context.Context, letterID id.LetterID, content string) error {
	res, err := s.pg.NewUpdate((*letterModel)(nil)).
		Set("content = $1", content).
		Set("updated_at = $2", now()).
		Where("id = $3", letterID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return letterpress.ErrLetterNotFound
	}
	return nil
}

// ==================== Timeline Store ====================

func (s *Store) ListEvents(ctx context.Context, letterID id.LetterID) ([]*timeline.Event, error) {
	var models []eventModel
	err := s.pg.NewSelect(&models).
		Where("letter_id = $1", letterID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCode(ctx context.Context, code string) (*discount.Code, error) {
	m := new(codeModel)
	err := s.pg.NewSelect(m).
		Where("code = $1", code).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrCodeNotFound
		}
		return nil, err
	}
	return fromCodeModel(m)
}

func (s *Store) GetCodeByID(ctx context.Context, codeID id.CodeID) (*discount.Code, error) {
	m := new(codeModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", codeID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrCodeNotFound
		}
		return nil, err
	}
	return fromCodeModel(m)
}

func (s *Store) ListCodes(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Code, error) {
	var models []codeModel
	q := s.pg.NewSelect(&models).Where("partner_id = $1", partnerID.String())

	if opts.Active {
		q = q.Where("active = $2", true)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return letterpress.ErrCodeNotFound
	}
	return nil
}

func (s *Store) DeactivateCodes(ctx context.Context, partnerID id.AccountID) (int, error) {
	res, err := s.pg.NewUpdate((*codeModel)(nil)).
		Set("active = $1", false).
		Set("updated_at = $2", now()).
		Where("partner_id = $3", partnerID.String()).
		Where("active = $4", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (s *Store) ListUsages(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Usage, error) {
	var models []usageModel
	q := s.pg.NewSelect(&models).Where("partner_id = $1", partnerID.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
// counter increment is compare-and-swapped first, serializing concurrent
// redemptions of the same code; each following insert carries a compensating
// rollback of everything before it, so a partial unit is never left behind.
func (s *Store) CommitRedemption(ctx context.Context, r lpstore.Redemption) error {
	res, err := s.pg.NewUpdate((*codeModel)(nil)).
		Set("times_redeemed = times_redeemed + 1").
		Set("updated_at = $1", now()).
		Where("id = $2", r.CodeID.String()).
		Where("times_redeemed = $3", r.ExpectedUses).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, gerr := s.GetCodeByID(ctx, r.CodeID); gerr != nil {
			return gerr
		}
		return letterpress.ErrRedemptionConflict
	}

	rollbackCounter := func() {
		_, _ = s.pg.NewUpdate((*codeModel)(nil)). //nolint:errcheck // best-effort compensation
								Set("times_redeemed = times_redeemed - 1").
								Set("updated_at = $1", now()).
								Where("id = $2", r.CodeID.String()).
								Exec(ctx)
	}

	if _, err := s.pg.NewInsert(toUsageModel(r.Usage)).Exec(ctx); err != nil {
		rollbackCounter()
		return err
	}
	rollbackUsage := func() {
		_, _ = s.pg.NewDelete((*usageModel)(nil)). //nolint:errcheck // best-effort compensation
								Where("id = $1", r.Usage.ID.String()).
								Exec(ctx)
	}

	if _, err := s.pg.NewInsert(toSubscriptionModel(r.Subscription)).Exec(ctx); err != nil {
		rollbackUsage()
		rollbackCounter()
		return err
	}

	if r.Points != nil {
		if _, err := s.pg.NewInsert(toPointsModel(r.Points)).Exec(ctx); err != nil {
			_, _ = s.pg.NewDelete((*subscriptionModel)(nil)). //nolint:errcheck // best-effort compensation
										Where("id = $1", r.Subscription.ID.String()).
										Exec(ctx)
			rollbackUsage()
			rollbackCounter()
			return err
		}
	}

	return nil
}

// ==================== Subscription Store ====================

func (s *Store) GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	m := new(subscriptionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", subID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return fromSubscriptionModel(m)
}

func (s *Store) GetActiveSubscription(ctx context.Context, accountID id.AccountID) (*subscription.Subscription, error) {
	m := new(subscriptionModel)
	err := s.pg.NewSelect(m).
		Where("account_id = $1", accountID.String()).
		Where("status = $2", string(subscription.StatusActive)).
		Where("(expires_at IS NULL OR expires_at > $3)", now()).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrNoActiveSubscription
		}
		return nil, err
	}
	return fromSubscriptionModel(m)
}

func (s *Store) ListSubscriptions(ctx context.Context, accountID id.AccountID, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	q := s.pg.NewSelect(&models).Where("account_id = $1", accountID.String())

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	err := s.pg.NewSelect(&models).
		Where("partner_id = $1", partnerID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	var total int
	err := s.pg.NewRaw(`
		SELECT COALESCE(SUM(points), 0) FROM letterpress_points
		WHERE partner_id = $1
	`, partnerID.String()).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ==================== Plan Store ====================

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error) {
	m := new(planModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", planID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrPlanNotFound
		}
		return nil, err
	}
	return fromPlanModel(m)
}

func (s *Store) GetPlanBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	m := new(planModel)
	err := s.pg.NewSelect(m).
		Where("slug = $1", slug).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, letterpress.ErrPlanNotFound
		}
		return nil, err
	}
	return fromPlanModel(m)
}

func (s *Store) ListPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.Plan, error) {
	var models []planModel
	q := s.pg.NewSelect(&models)

	if opts.Status != "" {
		q = q.Where("status = $1", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate((*planModel)(nil)).
		Set("status = $1", string(plan.StatusArchived)).
		Set("updated_at = $2", now()).
		Where("id = $3", planID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return letterpress.ErrPlanNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
