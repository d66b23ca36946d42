package letterpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/draft"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/identity"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/notify"
	"github.com/xraph/letterpress/plan"
	"github.com/xraph/letterpress/plugin"
	"github.com/xraph/letterpress/referral"
	"github.com/xraph/letterpress/store"
	"github.com/xraph/letterpress/subscription"
	"github.com/xraph/letterpress/timeline"
	"github.com/xraph/letterpress/types"
)

// Letterpress is the main document-generation engine.
type Letterpress struct {
	store     store.Store
	plugins   *plugin.Registry
	logger    *slog.Logger
	generator draft.Generator
	notifier  notify.Sender
	resolver  identity.Resolver

	// Background workers
	notifyBuffer chan notify.Message
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	// Configuration
	commissionBps       int
	pointsPerRedemption int
	generationTimeout   time.Duration
}

// New creates a new Letterpress instance.
func New(s store.Store, opts ...Option) *Letterpress {
	lp := &Letterpress{
		store:               s,
		plugins:             plugin.NewRegistry(),
		logger:              slog.Default(),
		notifier:            notify.Discard,
		notifyBuffer:        make(chan notify.Message, 1000),
		stopChan:            make(chan struct{}),
		commissionBps:       1000, // 10% of the pre-discount charge
		pointsPerRedemption: 1,
		generationTimeout:   30 * time.Second,
	}

	for _, opt := range opts {
		opt(lp)
	}

	return lp
}

// Option configures a Letterpress instance.
type Option func(*Letterpress)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(lp *Letterpress) {
		lp.logger = logger
		lp.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(lp *Letterpress) {
		_ = lp.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithGenerator sets the external text-generation call.
func WithGenerator(g draft.Generator) Option {
	return func(lp *Letterpress) {
		lp.generator = g
	}
}

// WithNotifier sets the notification sender.
func WithNotifier(n notify.Sender) Option {
	return func(lp *Letterpress) {
		lp.notifier = n
	}
}

// WithIdentityResolver sets the caller-identity resolver.
func WithIdentityResolver(r identity.Resolver) Option {
	return func(lp *Letterpress) {
		lp.resolver = r
	}
}

// WithCommissionRate sets the partner commission rate in basis points.
func WithCommissionRate(bps int) Option {
	return func(lp *Letterpress) {
		lp.commissionBps = bps
	}
}

// WithPointsPerRedemption sets the referral points awarded per redemption.
func WithPointsPerRedemption(points int) Option {
	return func(lp *Letterpress) {
		lp.pointsPerRedemption = points
	}
}

// WithGenerationTimeout bounds the external generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(lp *Letterpress) {
		lp.generationTimeout = d
	}
}

// Start begins background workers.
func (lp *Letterpress) Start(ctx context.Context) error {
	// Migrate database
	if err := lp.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	lp.plugins.EmitInit(ctx, lp)

	// Start notification dispatch worker
	lp.wg.Add(1)
	go lp.notifyWorker(ctx)

	lp.logger.Info("letterpress started",
		"commission_bps", lp.commissionBps,
		"generation_timeout", lp.generationTimeout,
	)

	return nil
}

// Stop shuts down the Letterpress engine. Safe to call more than once;
// calls after the first are no-ops.
func (lp *Letterpress) Stop() error {
	var err error
	lp.stopOnce.Do(func() {
		close(lp.stopChan)
		lp.wg.Wait()

		ctx := context.Background()
		lp.plugins.EmitShutdown(ctx)

		err = lp.store.Close()
	})
	return err
}

// Resolve turns caller credentials into a verified identity.
func (lp *Letterpress) Resolve(ctx context.Context, token string) (identity.Identity, error) {
	if lp.resolver == nil {
		return identity.Identity{}, ErrUnauthorized
	}
	return lp.resolver.Resolve(ctx, token)
}

// ──────────────────────────────────────────────────
// Draft Generation Pipeline
// ──────────────────────────────────────────────────

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Letter  *letter.Letter `json:"letter"`
	Content string         `json:"content"`
}

// Submit runs the draft pipeline: create or re-enter a letter, build the
// prompt, invoke generation, and advance the letter to approved with the
// content persisted in the same unit as the status change.
//
// A generation failure or timeout leaves the letter pinned in its
// pre-generation status with no content written, so the caller can resubmit
// the same letter without creating a duplicate.
func (lp *Letterpress) Submit(ctx context.Context, req draft.Request, actor identity.Identity) (*SubmitResult, error) {
	if lp.generator == nil {
		return nil, ErrNoGenerator
	}
	if req.Matter == "" {
		return nil, ValidationError{Field: "matter", Message: "must not be empty"}
	}
	if actor.Role == identity.RolePartner {
		return nil, ErrForbidden
	}

	var l *letter.Letter
	if req.LetterID == "" {
		// New letter: created directly in submitted, with the creation
		// transition as its first timeline event.
		l = &letter.Letter{
			Entity:     types.NewEntity(),
			ID:         id.NewLetterID(),
			AccountID:  actor.AccountID,
			Type:       req.Type,
			Subject:    req.Subject,
			Matter:     req.Matter,
			Resolution: req.Resolution,
			Sender:     req.Sender,
			Recipient:  req.Recipient,
			Tone:       req.Tone,
			Priority:   req.Priority,
			Status:     letter.StatusSubmitted,
		}
		if l.Priority == "" {
			l.Priority = letter.PriorityNormal
		}

		first := &timeline.Event{
			Entity:   types.NewEntity(),
			ID:       id.NewEventID(),
			LetterID: l.ID,
			From:     letter.StatusDraft,
			To:       letter.StatusSubmitted,
			ActorID:  actor.AccountID,
			Note:     "letter received",
		}
		if err := lp.store.CreateLetter(ctx, l, first); err != nil {
			return nil, err
		}
		lp.plugins.EmitLetterCreated(ctx, l)
	} else {
		letterID, err := id.ParseLetterID(req.LetterID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		l, err = lp.store.GetLetter(ctx, letterID)
		if err != nil {
			return nil, err
		}

		switch l.Status {
		case letter.StatusInReview:
			// Already pinned here by an earlier generation failure; the
			// same letter resumes in place, no extra transition.
			if actor.Role == identity.RoleOwner && l.AccountID != actor.AccountID {
				return nil, ErrForbidden
			}
		case letter.StatusDraft:
			// A saved draft enters the pipeline the same way a fresh
			// submission does.
			l, err = lp.Transition(ctx, letterID, letter.StatusSubmitted, actor, "letter submitted")
			if err != nil {
				return nil, err
			}
		default:
			// Any other resubmission moves into in_review before generation.
			l, err = lp.Transition(ctx, letterID, letter.StatusInReview, actor, "drafting started")
			if err != nil {
				return nil, err
			}
		}
	}

	prompt := draft.BuildPrompt(req)

	start := time.Now()
	content, err := lp.generate(ctx, prompt)
	if err != nil {
		lp.logger.Warn("draft generation failed",
			"letter_id", l.ID.String(),
			"status", l.Status,
			"error", err,
		)
		lp.plugins.EmitGenerationFailed(ctx, l.ID.String(), err)
		return nil, err
	}

	// Content and the advance to approved commit as one unit: no draft
	// without a status change, no status change without the draft.
	event := &timeline.Event{
		Entity:   types.NewEntity(),
		ID:       id.NewEventID(),
		LetterID: l.ID,
		From:     l.Status,
		To:       letter.StatusApproved,
		ActorID:  actor.AccountID,
		Note:     "draft generated",
	}
	updated, err := lp.store.ApplyTransition(ctx, store.Transition{
		LetterID: l.ID,
		From:     l.Status,
		To:       letter.StatusApproved,
		Content:  content,
		Event:    event,
	})
	if err != nil {
		if errors.Is(err, ErrTransitionConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	lp.plugins.EmitLetterTransition(ctx, updated, string(event.From), string(event.To), actor.AccountID.String())
	lp.plugins.EmitDraftGenerated(ctx, updated, time.Since(start))

	return &SubmitResult{Letter: updated, Content: content}, nil
}

// generate invokes the external generation call bounded by the configured
// timeout. Timeouts and failures are both recoverable; no content is
// persisted on either.
func (lp *Letterpress) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, lp.generationTimeout)
	defer cancel()

	content, err := lp.generator.Generate(genCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || genCtx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if content == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return content, nil
}

// CreateDraft creates a letter in draft, outside the generation pipeline,
// so the request can be edited before it is submitted. No timeline event is
// recorded until the draft enters the pipeline.
func (lp *Letterpress) CreateDraft(ctx context.Context, req draft.Request, actor identity.Identity) (*letter.Letter, error) {
	if req.Matter == "" {
		return nil, ValidationError{Field: "matter", Message: "must not be empty"}
	}
	if actor.Role == identity.RolePartner {
		return nil, ErrForbidden
	}

	l := &letter.Letter{
		Entity:     types.NewEntity(),
		ID:         id.NewLetterID(),
		AccountID:  actor.AccountID,
		Type:       req.Type,
		Subject:    req.Subject,
		Matter:     req.Matter,
		Resolution: req.Resolution,
		Sender:     req.Sender,
		Recipient:  req.Recipient,
		Tone:       req.Tone,
		Priority:   req.Priority,
		Status:     letter.StatusDraft,
	}
	if l.Priority == "" {
		l.Priority = letter.PriorityNormal
	}

	if err := lp.store.CreateLetter(ctx, l, nil); err != nil {
		return nil, err
	}
	lp.plugins.EmitLetterCreated(ctx, l)
	return l, nil
}

// SaveDraft updates the content of a letter still in draft. Owners edit
// their own drafts; staff can edit any.
func (lp *Letterpress) SaveDraft(ctx context.Context, letterID id.LetterID, content string, actor identity.Identity) error {
	l, err := lp.store.GetLetter(ctx, letterID)
	if err != nil {
		return err
	}
	if l.Status != letter.StatusDraft {
		return ErrInvalidTransition
	}
	if actor.Role == identity.RolePartner {
		return ErrForbidden
	}
	if actor.Role == identity.RoleOwner && l.AccountID != actor.AccountID {
		return ErrForbidden
	}
	return lp.store.StoreDraft(ctx, letterID, content)
}

// ──────────────────────────────────────────────────
// Letter Status State Machine
// ──────────────────────────────────────────────────

// Transition applies one status change. The target must be legal from the
// letter's current status and granted to the actor's role. The status update
// and its timeline event commit as one unit; a concurrent transition that
// invalidates the observed status fails the same way an illegal move does.
func (lp *Letterpress) Transition(ctx context.Context, letterID id.LetterID, target letter.Status, actor identity.Identity, note string) (*letter.Letter, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}
	// Partners have no letter-management rights at all.
	if actor.Role == identity.RolePartner {
		return nil, ErrForbidden
	}

	l, err := lp.store.GetLetter(ctx, letterID)
	if err != nil {
		return nil, err
	}

	if !letter.CanTransition(l.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, target)
	}
	if !letter.RoleAllowed(l.Status, target, actor.Role) {
		return nil, fmt.Errorf("%w: role %s may not apply %s -> %s", ErrForbidden, actor.Role, l.Status, target)
	}

	event := &timeline.Event{
		Entity:   types.NewEntity(),
		ID:       id.NewEventID(),
		LetterID: letterID,
		From:     l.Status,
		To:       target,
		ActorID:  actor.AccountID,
		Note:     note,
	}
	updated, err := lp.store.ApplyTransition(ctx, store.Transition{
		LetterID: letterID,
		From:     l.Status,
		To:       target,
		Event:    event,
	})
	if err != nil {
		// The observed status was stale: a concurrent transition won the
		// race. The loser is rejected like any other illegal move.
		if errors.Is(err, ErrTransitionConflict) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, target)
		}
		return nil, err
	}

	lp.plugins.EmitLetterTransition(ctx, updated, string(event.From), string(event.To), actor.AccountID.String())

	return updated, nil
}

// History returns the letter's timeline events ordered by timestamp
// ascending. Folding the events over the initial status reproduces the
// letter's stored status.
func (lp *Letterpress) History(ctx context.Context, letterID id.LetterID) ([]*timeline.Event, error) {
	if _, err := lp.store.GetLetter(ctx, letterID); err != nil {
		return nil, err
	}
	return lp.store.ListEvents(ctx, letterID)
}

// GetLetter retrieves a letter by ID.
func (lp *Letterpress) GetLetter(ctx context.Context, letterID id.LetterID) (*letter.Letter, error) {
	return lp.store.GetLetter(ctx, letterID)
}

// ListLetters lists an account's letters.
func (lp *Letterpress) ListLetters(ctx context.Context, accountID id.AccountID, opts letter.ListOpts) ([]*letter.Letter, error) {
	return lp.store.ListLetters(ctx, accountID, opts)
}

// ──────────────────────────────────────────────────
// Discount Validator
// ──────────────────────────────────────────────────

// ValidateCode checks a code string without mutating anything. On success it
// returns the stored code, including its percentage and owning partner.
func (lp *Letterpress) ValidateCode(ctx context.Context, code string) (*discount.Code, error) {
	return lp.validateCode(ctx, code, id.Nil)
}

func (lp *Letterpress) validateCode(ctx context.Context, code string, accountID id.AccountID) (*discount.Code, error) {
	c, err := lp.store.GetCode(ctx, discount.Normalize(code))
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, ErrCodeInactive
	}
	if c.Expired(time.Now()) {
		return nil, ErrCodeExpired
	}
	if c.Exhausted() {
		return nil, ErrCodeExhausted
	}
	if err := lp.plugins.ValidateCode(ctx, c, accountID.String()); err != nil {
		return nil, err
	}
	return c, nil
}

// ──────────────────────────────────────────────────
// Commission Ledger
// ──────────────────────────────────────────────────

// RedeemRequest is one checkout with a discount code.
type RedeemRequest struct {
	Code      string       `json:"code"`
	AccountID id.AccountID `json:"account_id"`
	PlanID    id.PlanID    `json:"plan_id,omitempty"`
	Charge    types.Money  `json:"charge"` // pre-discount amount
}

// RedeemResult is returned after a committed redemption.
type RedeemResult struct {
	Subscription   *subscription.Subscription `json:"subscription"`
	Usage          *discount.Usage            `json:"usage"`
	TotalAmount    types.Money                `json:"total_amount"`
	DiscountAmount types.Money                `json:"discount_amount"`
	FinalAmount    types.Money                `json:"final_amount"`
}

// Redeem turns a validated code into a subscription, a usage record, a
// counter increment, and a partner points entry, all-or-nothing. The
// commission is computed on the pre-discount charge. Notifications go out
// only after the unit commits and never affect the result.
func (lp *Letterpress) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	if !req.Charge.IsPositive() {
		return nil, ErrInvalidAmount
	}

	code, err := lp.validateCode(ctx, req.Code, req.AccountID)
	if err != nil {
		lp.plugins.EmitRedemptionFailed(ctx, discount.Normalize(req.Code), err)
		return nil, err
	}

	// A percentage at or above 100 zeroes the final amount; the discount is
	// capped at the charge so amounts never go negative.
	discountAmt := req.Charge.Percent(code.Percentage).Min(req.Charge)
	commissionAmt := req.Charge.BasisPoints(lp.commissionBps)
	finalAmt := req.Charge.Subtract(discountAmt)

	var (
		credits   int
		expiresAt *time.Time
	)
	if !req.PlanID.IsNil() {
		p, err := lp.store.GetPlan(ctx, req.PlanID)
		if err != nil {
			return nil, err
		}
		if p.Status == plan.StatusArchived {
			return nil, ErrPlanArchived
		}
		credits = p.LetterCredits
		expiresAt = periodExpiry(p.Period, time.Now())
	}

	usage := &discount.Usage{
		Entity:     types.NewEntity(),
		ID:         id.NewUsageID(),
		CodeID:     code.ID,
		AccountID:  req.AccountID,
		PartnerID:  code.PartnerID,
		Charge:     req.Charge,
		Discount:   discountAmt,
		Commission: commissionAmt,
	}
	sub := &subscription.Subscription{
		Entity:         types.NewEntity(),
		ID:             id.NewSubscriptionID(),
		AccountID:      req.AccountID,
		PlanID:         req.PlanID,
		Status:         subscription.StatusActive,
		OriginalAmount: req.Charge,
		DiscountAmount: discountAmt,
		FinalAmount:    finalAmt,
		UsageID:        usage.ID,
		LetterCredits:  credits,
		ExpiresAt:      expiresAt,
	}
	points := &referral.PointsEntry{
		Entity:    types.NewEntity(),
		ID:        id.NewPointsID(),
		PartnerID: code.PartnerID,
		Points:    lp.pointsPerRedemption,
		Source:    referral.SourceRedemption,
		UsageID:   usage.ID,
	}

	err = lp.store.CommitRedemption(ctx, store.Redemption{
		Usage:        usage,
		Subscription: sub,
		Points:       points,
		CodeID:       code.ID,
		ExpectedUses: code.TimesRedeemed,
	})
	if err != nil {
		if errors.Is(err, ErrRedemptionConflict) {
			// A concurrent redemption advanced the counter between
			// validation and commit. Re-read to report the right failure.
			if fresh, ferr := lp.store.GetCodeByID(ctx, code.ID); ferr == nil && fresh.Exhausted() {
				err = ErrCodeExhausted
			}
			lp.plugins.EmitRedemptionFailed(ctx, code.Code, err)
			return nil, err
		}

		lp.logger.Error("redemption ledger write failed",
			"code", code.Code,
			"account_id", req.AccountID.String(),
			"error", err,
		)
		lp.plugins.EmitRedemptionFailed(ctx, code.Code, err)
		return nil, ErrLedgerFailed
	}

	lp.plugins.EmitCodeRedeemed(ctx, usage, sub)
	lp.plugins.EmitPointsAwarded(ctx, points)

	// Post-commit, best-effort. A dropped or failed notification never
	// unwinds the committed ledger unit.
	lp.enqueueNotification(notify.Message{
		To:      req.AccountID.String(),
		Subject: "Subscription confirmed",
		Body: fmt.Sprintf("Your code %s saved you %s. Amount charged: %s.",
			code.Code, discountAmt, finalAmt),
	})
	lp.enqueueNotification(notify.Message{
		To:      code.PartnerID.String(),
		Subject: "Commission earned",
		Body: fmt.Sprintf("Code %s was redeemed. Your commission: %s.",
			code.Code, commissionAmt),
	})

	return &RedeemResult{
		Subscription:   sub,
		Usage:          usage,
		TotalAmount:    req.Charge,
		DiscountAmount: discountAmt,
		FinalAmount:    finalAmt,
	}, nil
}

// periodExpiry returns the subscription expiry for a plan period, or nil for
// one-off plans.
func periodExpiry(p plan.Period, now time.Time) *time.Time {
	var exp time.Time
	switch p {
	case plan.PeriodMonthly:
		exp = now.AddDate(0, 1, 0)
	case plan.PeriodYearly:
		exp = now.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &exp
}

// ──────────────────────────────────────────────────
// Partner Code Management
// ──────────────────────────────────────────────────

// CreateCode registers a partner discount code. The code string is
// normalized before storage so lookups are case-insensitive.
func (lp *Letterpress) CreateCode(ctx context.Context, c *discount.Code) error {
	c.Code = discount.Normalize(c.Code)
	if c.Code == "" {
		return ValidationError{Field: "code", Message: "must not be empty"}
	}
	if c.Percentage <= 0 {
		return ValidationError{Field: "percentage", Message: "must be positive"}
	}
	if c.PartnerID.IsNil() {
		return ValidationError{Field: "partner_id", Message: "must be set"}
	}
	if c.ID.IsNil() {
		c.ID = id.NewCodeID()
	}
	c.Entity = types.NewEntity()
	c.Active = true
	c.TimesRedeemed = 0

	if err := lp.store.CreateCode(ctx, c); err != nil {
		return err
	}

	lp.plugins.EmitCodeCreated(ctx, c)
	return nil
}

// GetCode retrieves a code by its normalized string without validation.
func (lp *Letterpress) GetCode(ctx context.Context, code string) (*discount.Code, error) {
	return lp.store.GetCode(ctx, discount.Normalize(code))
}

// ListCodes lists a partner's codes.
func (lp *Letterpress) ListCodes(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Code, error) {
	return lp.store.ListCodes(ctx, partnerID, opts)
}

// ListUsages lists a partner's redemption records.
func (lp *Letterpress) ListUsages(ctx context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Usage, error) {
	return lp.store.ListUsages(ctx, partnerID, opts)
}

// SuspendPartner deactivates all of a partner's codes. Deactivation stops
// further redemptions but leaves usage history and earned points untouched.
// Returns the number of codes deactivated.
func (lp *Letterpress) SuspendPartner(ctx context.Context, partnerID id.AccountID) (int, error) {
	count, err := lp.store.DeactivateCodes(ctx, partnerID)
	if err != nil {
		return 0, err
	}

	lp.logger.Info("partner codes deactivated",
		"partner_id", partnerID.String(),
		"count", count,
	)
	return count, nil
}

// ──────────────────────────────────────────────────
// Referral Points
// ──────────────────────────────────────────────────

// ListPoints lists a partner's points entries.
func (lp *Letterpress) ListPoints(ctx context.Context, partnerID id.AccountID) ([]*referral.PointsEntry, error) {
	return lp.store.ListPoints(ctx, partnerID)
}

// TotalPoints returns a partner's points balance.
func (lp *Letterpress) TotalPoints(ctx context.Context, partnerID id.AccountID) (int, error) {
	return lp.store.TotalPoints(ctx, partnerID)
}

// ──────────────────────────────────────────────────
// Plan Management
// ──────────────────────────────────────────────────

// CreatePlan creates a purchasable plan.
func (lp *Letterpress) CreatePlan(ctx context.Context, p *plan.Plan) error {
	if p.ID.IsNil() {
		p.ID = id.NewPlanID()
	}
	p.Entity = types.NewEntity()
	if p.Status == "" {
		p.Status = plan.StatusActive
	}

	if err := lp.store.CreatePlan(ctx, p); err != nil {
		return err
	}

	lp.plugins.EmitPlanCreated(ctx, p)
	return nil
}

// GetPlan retrieves a plan by ID.
func (lp *Letterpress) GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error) {
	return lp.store.GetPlan(ctx, planID)
}

// GetPlanBySlug retrieves a plan by slug.
func (lp *Letterpress) GetPlanBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	return lp.store.GetPlanBySlug(ctx, slug)
}

// ListPlans lists plans.
func (lp *Letterpress) ListPlans(ctx context.Context, opts plan.ListOpts) ([]*plan.Plan, error) {
	return lp.store.ListPlans(ctx, opts)
}

// ArchivePlan removes a plan from sale without touching subscriptions.
func (lp *Letterpress) ArchivePlan(ctx context.Context, planID id.PlanID) error {
	return lp.store.ArchivePlan(ctx, planID)
}

// ──────────────────────────────────────────────────
// Subscriptions
// ──────────────────────────────────────────────────

// GetSubscription retrieves a subscription by ID.
func (lp *Letterpress) GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	return lp.store.GetSubscription(ctx, subID)
}

// GetActiveSubscription retrieves an account's active subscription.
func (lp *Letterpress) GetActiveSubscription(ctx context.Context, accountID id.AccountID) (*subscription.Subscription, error) {
	return lp.store.GetActiveSubscription(ctx, accountID)
}

// ListSubscriptions lists an account's subscriptions.
func (lp *Letterpress) ListSubscriptions(ctx context.Context, accountID id.AccountID, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	return lp.store.ListSubscriptions(ctx, accountID, opts)
}

// ──────────────────────────────────────────────────
// Notification dispatch
// ──────────────────────────────────────────────────

// enqueueNotification hands a message to the dispatch worker without
// blocking. A full buffer drops the message with a log line.
func (lp *Letterpress) enqueueNotification(msg notify.Message) {
	select {
	case lp.notifyBuffer <- msg:
	default:
		lp.logger.Warn("notification buffer full, dropping message",
			"to", msg.To,
			"subject", msg.Subject,
		)
	}
}

// notifyWorker delivers queued notifications until Stop, then drains what
// is left in the buffer.
func (lp *Letterpress) notifyWorker(ctx context.Context) {
	defer lp.wg.Done()

	for {
		select {
		case <-lp.stopChan:
			for {
				select {
				case msg := <-lp.notifyBuffer:
					lp.deliver(ctx, msg)
				default:
					return
				}
			}

		case msg := <-lp.notifyBuffer:
			lp.deliver(ctx, msg)
		}
	}
}

func (lp *Letterpress) deliver(ctx context.Context, msg notify.Message) {
	if err := lp.notifier.Send(ctx, msg); err != nil {
		lp.logger.Warn("notification dispatch failed",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err,
		)
		lp.plugins.EmitNotificationFailed(ctx, msg.To, msg.Subject, err)
		return
	}

	lp.plugins.EmitNotificationSent(ctx, msg.To, msg.Subject)
}
