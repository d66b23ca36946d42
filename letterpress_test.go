package letterpress_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/draft"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/identity"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/notify"
	"github.com/xraph/letterpress/store"
	"github.com/xraph/letterpress/store/memory"
	"github.com/xraph/letterpress/timeline"
	"github.com/xraph/letterpress/types"
)

func okGenerator(content string) draft.Generator {
	return draft.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		return content, nil
	})
}

func newTestEngine(t *testing.T, opts ...letterpress.Option) (*letterpress.Letterpress, *memory.Store) {
	t.Helper()

	s := memory.New()
	base := []letterpress.Option{
		letterpress.WithGenerator(okGenerator("Dear Sir or Madam,")),
	}
	lp := letterpress.New(s, append(base, opts...)...)

	if err := lp.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = lp.Stop() })

	return lp, s
}

func owner() identity.Identity {
	return identity.Identity{AccountID: id.NewAccountID(), Role: identity.RoleOwner}
}

func staff() identity.Identity {
	return identity.Identity{AccountID: id.NewAccountID(), Role: identity.RoleStaff}
}

func seedCode(t *testing.T, s *memory.Store, c *discount.Code) *discount.Code {
	t.Helper()

	if c.ID.IsNil() {
		c.ID = id.NewCodeID()
	}
	if c.PartnerID.IsNil() {
		c.PartnerID = id.NewAccountID()
	}
	c.Entity = types.NewEntity()
	c.Code = discount.Normalize(c.Code)
	if err := s.CreateCode(context.Background(), c); err != nil {
		t.Fatalf("seed code: %v", err)
	}
	return c
}

// ──────────────────────────────────────────────────
// Draft pipeline
// ──────────────────────────────────────────────────

func TestSubmitNewLetter(t *testing.T) {
	lp, _ := newTestEngine(t)
	ctx := context.Background()
	actor := owner()

	result, err := lp.Submit(ctx, draft.Request{
		Type:      "demand",
		Subject:   "Unpaid invoice",
		Matter:    "unpaid invoice",
		Sender:    letter.Party{Name: "Ada"},
		Recipient: letter.Party{Name: "Bert"},
	}, actor)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.Letter.Status != letter.StatusApproved {
		t.Errorf("status = %s, want %s", result.Letter.Status, letter.StatusApproved)
	}
	if result.Content != "Dear Sir or Madam," {
		t.Errorf("content = %q", result.Content)
	}
	if !result.Letter.HasContent() {
		t.Error("letter content not persisted")
	}

	events, err := lp.History(ctx, result.Letter.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("timeline has %d events, want 2", len(events))
	}
	if events[0].To != letter.StatusSubmitted || events[1].To != letter.StatusApproved {
		t.Errorf("event targets = %s, %s", events[0].To, events[1].To)
	}

	// Replaying the timeline reproduces the stored status.
	if got := timeline.Replay(letter.StatusDraft, events); got != result.Letter.Status {
		t.Errorf("replayed status = %s, stored = %s", got, result.Letter.Status)
	}
}

func TestSubmitGenerationFailure(t *testing.T) {
	lp, _ := newTestEngine(t, letterpress.WithGenerator(
		draft.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("model unavailable")
		}),
	))
	ctx := context.Background()
	actor := owner()

	_, err := lp.Submit(ctx, draft.Request{
		Matter:    "noise complaint",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	if !errors.Is(err, letterpress.ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}

	// The letter was created but is pinned pre-generation with no content,
	// so resubmission continues with the same letter.
	letters, err := lp.ListLetters(ctx, actor.AccountID, letter.ListOpts{})
	if err != nil {
		t.Fatalf("ListLetters: %v", err)
	}
	if len(letters) != 1 {
		t.Fatalf("got %d letters, want 1", len(letters))
	}
	if letters[0].Status != letter.StatusSubmitted {
		t.Errorf("status = %s, want %s", letters[0].Status, letter.StatusSubmitted)
	}
	if letters[0].HasContent() {
		t.Error("content persisted despite generation failure")
	}
}

func TestSubmitGenerationTimeout(t *testing.T) {
	lp, _ := newTestEngine(t,
		letterpress.WithGenerationTimeout(20*time.Millisecond),
		letterpress.WithGenerator(draft.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})),
	)
	ctx := context.Background()
	actor := owner()

	// First create a letter that survives generation failure in submitted.
	_, err := lp.Submit(ctx, draft.Request{
		Matter:    "late delivery",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	if !errors.Is(err, letterpress.ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}

	letters, err := lp.ListLetters(ctx, actor.AccountID, letter.ListOpts{})
	if err != nil {
		t.Fatalf("ListLetters: %v", err)
	}
	l := letters[0]

	// Resubmitting the existing letter moves it to in_review first; on
	// timeout it stays there with no content.
	reviewer := staff()
	_, err = lp.Submit(ctx, draft.Request{
		LetterID:  l.ID.String(),
		Matter:    "late delivery",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, reviewer)
	if !errors.Is(err, letterpress.ErrGenerationTimeout) {
		t.Fatalf("resubmit err = %v, want ErrGenerationTimeout", err)
	}

	got, err := lp.GetLetter(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetLetter: %v", err)
	}
	if got.Status != letter.StatusInReview {
		t.Errorf("status = %s, want %s", got.Status, letter.StatusInReview)
	}
	if got.HasContent() {
		t.Error("content persisted despite timeout")
	}
}

func TestSubmitRetryFromInReview(t *testing.T) {
	// Fails the first two generation calls, then recovers.
	var calls int
	flaky := draft.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.New("model unavailable")
		}
		return "Dear Sir or Madam,", nil
	})

	lp, _ := newTestEngine(t, letterpress.WithGenerator(flaky))
	ctx := context.Background()
	reviewer := staff()

	req := draft.Request{
		Matter:    "unpaid invoice",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}

	// First attempt leaves the letter pinned in submitted.
	_, err := lp.Submit(ctx, req, reviewer)
	if !errors.Is(err, letterpress.ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	letters, err := lp.ListLetters(ctx, reviewer.AccountID, letter.ListOpts{})
	if err != nil {
		t.Fatalf("ListLetters: %v", err)
	}
	req.LetterID = letters[0].ID.String()

	// Resubmission moves to in_review and fails again, pinning it there.
	_, err = lp.Submit(ctx, req, reviewer)
	if !errors.Is(err, letterpress.ErrGeneration) {
		t.Fatalf("resubmit err = %v, want ErrGeneration", err)
	}
	got, err := lp.GetLetter(ctx, letters[0].ID)
	if err != nil {
		t.Fatalf("GetLetter: %v", err)
	}
	if got.Status != letter.StatusInReview {
		t.Fatalf("status = %s, want %s", got.Status, letter.StatusInReview)
	}

	// The same letter id retries from in_review without a transition and
	// completes the pipeline.
	result, err := lp.Submit(ctx, req, reviewer)
	if err != nil {
		t.Fatalf("retry from in_review: %v", err)
	}
	if result.Letter.Status != letter.StatusApproved {
		t.Errorf("status = %s, want %s", result.Letter.Status, letter.StatusApproved)
	}
	if !result.Letter.HasContent() {
		t.Error("letter content not persisted")
	}

	events, err := lp.History(ctx, result.Letter.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("timeline has %d events, want 3", len(events))
	}
	if got := timeline.Replay(letter.StatusDraft, events); got != result.Letter.Status {
		t.Errorf("replayed status = %s, stored = %s", got, result.Letter.Status)
	}
}

func TestDraftEditThenSubmit(t *testing.T) {
	lp, _ := newTestEngine(t)
	ctx := context.Background()
	actor := owner()

	l, err := lp.CreateDraft(ctx, draft.Request{
		Matter:    "security deposit",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if l.Status != letter.StatusDraft {
		t.Fatalf("status = %s, want %s", l.Status, letter.StatusDraft)
	}

	if err := lp.SaveDraft(ctx, l.ID, "working notes", actor); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := lp.GetLetter(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetLetter: %v", err)
	}
	if got.Content != "working notes" {
		t.Errorf("content = %q", got.Content)
	}

	// Another owner cannot edit someone else's draft.
	if err := lp.SaveDraft(ctx, l.ID, "hijacked", owner()); !errors.Is(err, letterpress.ErrForbidden) {
		t.Fatalf("SaveDraft as other owner: err = %v, want ErrForbidden", err)
	}

	// Submitting the draft enters the pipeline and runs it to approved.
	result, err := lp.Submit(ctx, draft.Request{
		LetterID:  l.ID.String(),
		Matter:    "security deposit",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	if err != nil {
		t.Fatalf("Submit draft: %v", err)
	}
	if result.Letter.Status != letter.StatusApproved {
		t.Errorf("status = %s, want %s", result.Letter.Status, letter.StatusApproved)
	}

	events, err := lp.History(ctx, l.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("timeline has %d events, want 2", len(events))
	}
	if events[0].To != letter.StatusSubmitted || events[1].To != letter.StatusApproved {
		t.Errorf("event targets = %s, %s", events[0].To, events[1].To)
	}
	if got := timeline.Replay(letter.StatusDraft, events); got != result.Letter.Status {
		t.Errorf("replayed status = %s, stored = %s", got, result.Letter.Status)
	}
}

func TestSubmitPartnerForbidden(t *testing.T) {
	lp, _ := newTestEngine(t)

	partner := identity.Identity{AccountID: id.NewAccountID(), Role: identity.RolePartner}
	_, err := lp.Submit(context.Background(), draft.Request{
		Matter:    "anything",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, partner)
	if !errors.Is(err, letterpress.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

// ──────────────────────────────────────────────────
// Status state machine
// ──────────────────────────────────────────────────

func TestTransitionTerminal(t *testing.T) {
	lp, _ := newTestEngine(t)
	ctx := context.Background()
	actor := owner()

	result, err := lp.Submit(ctx, draft.Request{
		Matter:    "unpaid invoice",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// approved -> completed by the owner (delivery action).
	l, err := lp.Transition(ctx, result.Letter.ID, letter.StatusCompleted, actor, "delivered")
	if err != nil {
		t.Fatalf("Transition to completed: %v", err)
	}
	if l.Status != letter.StatusCompleted {
		t.Fatalf("status = %s", l.Status)
	}

	before, _ := lp.History(ctx, l.ID)

	// completed -> approved is illegal for everyone.
	_, err = lp.Transition(ctx, l.ID, letter.StatusApproved, staff(), "")
	if !errors.Is(err, letterpress.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	// Status unchanged and no event appended.
	got, _ := lp.GetLetter(ctx, l.ID)
	if got.Status != letter.StatusCompleted {
		t.Errorf("status mutated to %s after rejected transition", got.Status)
	}
	after, _ := lp.History(ctx, l.ID)
	if len(after) != len(before) {
		t.Errorf("event appended for rejected transition: %d -> %d", len(before), len(after))
	}
}

func TestTransitionRoleGating(t *testing.T) {
	lp, _ := newTestEngine(t, letterpress.WithGenerator(
		draft.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("skip generation")
		}),
	))
	ctx := context.Background()
	actor := owner()

	// Leaves the letter in submitted.
	_, _ = lp.Submit(ctx, draft.Request{
		Matter:    "x",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	letters, _ := lp.ListLetters(ctx, actor.AccountID, letter.ListOpts{})
	l := letters[0]

	// submitted -> in_review is staff-only.
	_, err := lp.Transition(ctx, l.ID, letter.StatusInReview, actor, "")
	if !errors.Is(err, letterpress.ErrForbidden) {
		t.Fatalf("owner err = %v, want ErrForbidden", err)
	}

	// Partners are rejected regardless of transition validity.
	partner := identity.Identity{AccountID: id.NewAccountID(), Role: identity.RolePartner}
	_, err = lp.Transition(ctx, l.ID, letter.StatusInReview, partner, "")
	if !errors.Is(err, letterpress.ErrForbidden) {
		t.Fatalf("partner err = %v, want ErrForbidden", err)
	}

	if _, err := lp.Transition(ctx, l.ID, letter.StatusInReview, staff(), ""); err != nil {
		t.Fatalf("staff transition: %v", err)
	}
}

func TestTransitionCancelResubmit(t *testing.T) {
	lp, _ := newTestEngine(t, letterpress.WithGenerator(
		draft.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("skip generation")
		}),
	))
	ctx := context.Background()
	actor := owner()

	_, _ = lp.Submit(ctx, draft.Request{
		Matter:    "x",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	}, actor)
	letters, _ := lp.ListLetters(ctx, actor.AccountID, letter.ListOpts{})
	l := letters[0]

	reviewer := staff()
	if _, err := lp.Transition(ctx, l.ID, letter.StatusCancelled, reviewer, "withdrawn"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := lp.Transition(ctx, l.ID, letter.StatusSubmitted, actor, "resubmitted"); err != nil {
		t.Fatalf("resubmit from cancelled: %v", err)
	}

	events, _ := lp.History(ctx, l.ID)
	if got := timeline.Replay(letter.StatusDraft, events); got != letter.StatusSubmitted {
		t.Errorf("replayed status = %s, want submitted", got)
	}
}

// ──────────────────────────────────────────────────
// Discount validation and redemption
// ──────────────────────────────────────────────────

func TestRedeem(t *testing.T) {
	lp, s := newTestEngine(t)
	ctx := context.Background()

	code := seedCode(t, s, &discount.Code{
		Code:           "SAVE20",
		Percentage:     20,
		TimesRedeemed:  4,
		MaxRedemptions: 5,
		Active:         true,
	})

	account := id.NewAccountID()
	res, err := lp.Redeem(ctx, letterpress.RedeemRequest{
		Code:      "save20", // case-insensitive
		AccountID: account,
		Charge:    types.USD(10000),
	})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	if !res.DiscountAmount.Equal(types.USD(2000)) {
		t.Errorf("discount = %s, want $20.00", res.DiscountAmount)
	}
	if !res.FinalAmount.Equal(types.USD(8000)) {
		t.Errorf("final = %s, want $80.00", res.FinalAmount)
	}
	if !res.FinalAmount.Add(res.DiscountAmount).Equal(res.TotalAmount) {
		t.Error("final + discount != charge")
	}

	// Commission is 10% of the pre-discount charge by default.
	if !res.Usage.Commission.Equal(types.USD(1000)) {
		t.Errorf("commission = %s, want $10.00", res.Usage.Commission)
	}

	fresh, err := lp.GetCode(ctx, "SAVE20")
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if fresh.TimesRedeemed != 5 {
		t.Errorf("counter = %d, want 5", fresh.TimesRedeemed)
	}

	// Exactly one points entry per usage record.
	points, err := lp.ListPoints(ctx, code.PartnerID)
	if err != nil {
		t.Fatalf("ListPoints: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points entries, want 1", len(points))
	}
	if points[0].UsageID != res.Usage.ID {
		t.Error("points entry does not reference the usage record")
	}

	sub, err := lp.GetActiveSubscription(ctx, account)
	if err != nil {
		t.Fatalf("GetActiveSubscription: %v", err)
	}
	if !sub.FinalAmount.Equal(types.USD(8000)) {
		t.Errorf("subscription final = %s", sub.FinalAmount)
	}
}

func TestRedeemExhausted(t *testing.T) {
	lp, s := newTestEngine(t)
	ctx := context.Background()

	code := seedCode(t, s, &discount.Code{
		Code:           "SAVE20",
		Percentage:     20,
		TimesRedeemed:  5,
		MaxRedemptions: 5,
		Active:         true,
	})

	_, err := lp.Redeem(ctx, letterpress.RedeemRequest{
		Code:      "SAVE20",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(10000),
	})
	if !errors.Is(err, letterpress.ErrCodeExhausted) {
		t.Fatalf("err = %v, want ErrCodeExhausted", err)
	}

	usages, _ := lp.ListUsages(ctx, code.PartnerID, discount.ListOpts{})
	if len(usages) != 0 {
		t.Errorf("got %d usage records, want 0", len(usages))
	}
	points, _ := lp.ListPoints(ctx, code.PartnerID)
	if len(points) != 0 {
		t.Errorf("got %d points entries, want 0", len(points))
	}
}

func TestRedeemExpired(t *testing.T) {
	lp, s := newTestEngine(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	code := seedCode(t, s, &discount.Code{
		Code:       "OLDCODE",
		Percentage: 10,
		ExpiresAt:  &past,
		Active:     true,
	})

	account := id.NewAccountID()
	_, err := lp.Redeem(ctx, letterpress.RedeemRequest{
		Code:      "OLDCODE",
		AccountID: account,
		Charge:    types.USD(5000),
	})
	if !errors.Is(err, letterpress.ErrCodeExpired) {
		t.Fatalf("err = %v, want ErrCodeExpired", err)
	}

	if _, err := lp.GetActiveSubscription(ctx, account); !errors.Is(err, letterpress.ErrNoActiveSubscription) {
		t.Errorf("subscription created for rejected redemption: %v", err)
	}
	usages, _ := lp.ListUsages(ctx, code.PartnerID, discount.ListOpts{})
	if len(usages) != 0 {
		t.Errorf("got %d usage records, want 0", len(usages))
	}
}

func TestRedeemZeroCharge(t *testing.T) {
	lp, s := newTestEngine(t)

	seedCode(t, s, &discount.Code{Code: "SAVE20", Percentage: 20, Active: true})

	_, err := lp.Redeem(context.Background(), letterpress.RedeemRequest{
		Code:      "SAVE20",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(0),
	})
	if !errors.Is(err, letterpress.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestRedeemFullDiscount(t *testing.T) {
	lp, s := newTestEngine(t)

	// Percentages at or above 100 zero the final amount, never negative.
	seedCode(t, s, &discount.Code{Code: "FREE150", Percentage: 150, Active: true})

	res, err := lp.Redeem(context.Background(), letterpress.RedeemRequest{
		Code:      "FREE150",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(10000),
	})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !res.FinalAmount.IsZero() {
		t.Errorf("final = %s, want $0.00", res.FinalAmount)
	}
	if !res.DiscountAmount.Equal(types.USD(10000)) {
		t.Errorf("discount = %s, want capped at charge", res.DiscountAmount)
	}
}

func TestRedeemInactiveCode(t *testing.T) {
	lp, s := newTestEngine(t)

	seedCode(t, s, &discount.Code{Code: "GONE", Percentage: 10, Active: false})

	_, err := lp.Redeem(context.Background(), letterpress.RedeemRequest{
		Code:      "GONE",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(5000),
	})
	if !errors.Is(err, letterpress.ErrCodeInactive) {
		t.Fatalf("err = %v, want ErrCodeInactive", err)
	}
}

// failingStore simulates a mid-unit persistence failure: the atomic commit
// fails as a whole, as a real transaction abort would.
type failingStore struct {
	*memory.Store
}

func (f *failingStore) CommitRedemption(_ context.Context, _ store.Redemption) error {
	return errors.New("disk full")
}

func TestRedeemRollback(t *testing.T) {
	mem := memory.New()
	lp := letterpress.New(&failingStore{Store: mem})
	if err := lp.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer lp.Stop()

	ctx := context.Background()
	code := seedCode(t, mem, &discount.Code{Code: "SAVE20", Percentage: 20, Active: true})

	account := id.NewAccountID()
	_, err := lp.Redeem(ctx, letterpress.RedeemRequest{
		Code:      "SAVE20",
		AccountID: account,
		Charge:    types.USD(10000),
	})
	if !errors.Is(err, letterpress.ErrLedgerFailed) {
		t.Fatalf("err = %v, want ErrLedgerFailed", err)
	}

	// No partial state: counter, usages, points, and subscriptions untouched.
	fresh, _ := mem.GetCode(ctx, "SAVE20")
	if fresh.TimesRedeemed != 0 {
		t.Errorf("counter = %d, want 0", fresh.TimesRedeemed)
	}
	usages, _ := mem.ListUsages(ctx, code.PartnerID, discount.ListOpts{})
	if len(usages) != 0 {
		t.Errorf("got %d usage records, want 0", len(usages))
	}
	points, _ := mem.ListPoints(ctx, code.PartnerID)
	if len(points) != 0 {
		t.Errorf("got %d points entries, want 0", len(points))
	}
	if _, err := mem.GetActiveSubscription(ctx, account); !errors.Is(err, letterpress.ErrNoActiveSubscription) {
		t.Errorf("subscription persisted despite rollback: %v", err)
	}
}

func TestConcurrentRedemptionLastSlot(t *testing.T) {
	lp, s := newTestEngine(t)
	ctx := context.Background()

	seedCode(t, s, &discount.Code{
		Code:           "LAST1",
		Percentage:     10,
		TimesRedeemed:  4,
		MaxRedemptions: 5,
		Active:         true,
	})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = lp.Redeem(ctx, letterpress.RedeemRequest{
				Code:      "LAST1",
				AccountID: id.NewAccountID(),
				Charge:    types.USD(10000),
			})
		}(i)
	}
	wg.Wait()

	var ok, exhausted int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, letterpress.ErrCodeExhausted):
			exhausted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || exhausted != 1 {
		t.Fatalf("got %d successes, %d exhausted; want 1 and 1", ok, exhausted)
	}

	fresh, _ := lp.GetCode(ctx, "LAST1")
	if fresh.TimesRedeemed != 5 {
		t.Errorf("counter = %d, want exactly 5", fresh.TimesRedeemed)
	}
}

// ──────────────────────────────────────────────────
// Partner management and notifications
// ──────────────────────────────────────────────────

func TestSuspendPartnerCascade(t *testing.T) {
	lp, _ := newTestEngine(t)
	ctx := context.Background()

	partnerID := id.NewAccountID()
	for _, code := range []string{"P1", "P2"} {
		if err := lp.CreateCode(ctx, &discount.Code{
			Code:       code,
			PartnerID:  partnerID,
			Percentage: 10,
		}); err != nil {
			t.Fatalf("CreateCode %s: %v", code, err)
		}
	}

	count, err := lp.SuspendPartner(ctx, partnerID)
	if err != nil {
		t.Fatalf("SuspendPartner: %v", err)
	}
	if count != 2 {
		t.Errorf("deactivated %d codes, want 2", count)
	}

	_, err = lp.Redeem(ctx, letterpress.RedeemRequest{
		Code:      "P1",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(5000),
	})
	if !errors.Is(err, letterpress.ErrCodeInactive) {
		t.Fatalf("err = %v, want ErrCodeInactive", err)
	}
}

func TestNotificationsBestEffort(t *testing.T) {
	var mu sync.Mutex
	var sent []notify.Message

	lp, s := newTestEngine(t, letterpress.WithNotifier(
		notify.SenderFunc(func(_ context.Context, msg notify.Message) error {
			mu.Lock()
			sent = append(sent, msg)
			mu.Unlock()
			return nil
		}),
	))
	ctx := context.Background()

	seedCode(t, s, &discount.Code{Code: "SAVE20", Percentage: 20, Active: true})

	if _, err := lp.Redeem(ctx, letterpress.RedeemRequest{
		Code:      "SAVE20",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(10000),
	}); err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	// Stop drains the dispatch buffer.
	if err := lp.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(sent) != 2 {
		t.Fatalf("got %d notifications, want 2 (subscriber + partner)", len(sent))
	}
}

func TestStopIdempotent(t *testing.T) {
	lp, _ := newTestEngine(t)

	if err := lp.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// A second Stop (the cleanup hook calls it too) is a no-op.
	if err := lp.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestNotificationFailureSwallowed(t *testing.T) {
	lp, s := newTestEngine(t, letterpress.WithNotifier(
		notify.SenderFunc(func(_ context.Context, _ notify.Message) error {
			return errors.New("smtp down")
		}),
	))

	seedCode(t, s, &discount.Code{Code: "SAVE20", Percentage: 20, Active: true})

	// The committed redemption is reported as a success even though every
	// notification fails.
	if _, err := lp.Redeem(context.Background(), letterpress.RedeemRequest{
		Code:      "SAVE20",
		AccountID: id.NewAccountID(),
		Charge:    types.USD(10000),
	}); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
}

func TestValidateCodePure(t *testing.T) {
	lp, s := newTestEngine(t)
	ctx := context.Background()

	seedCode(t, s, &discount.Code{Code: "CHECK", Percentage: 15, Active: true})

	c, err := lp.ValidateCode(ctx, "  check ")
	if err != nil {
		t.Fatalf("ValidateCode: %v", err)
	}
	if c.Percentage != 15 {
		t.Errorf("percentage = %d", c.Percentage)
	}

	// Validation never mutates.
	fresh, _ := lp.GetCode(ctx, "CHECK")
	if fresh.TimesRedeemed != 0 {
		t.Errorf("counter mutated by validation: %d", fresh.TimesRedeemed)
	}

	if _, err := lp.ValidateCode(ctx, "NOSUCH"); !errors.Is(err, letterpress.ErrCodeNotFound) {
		t.Errorf("err = %v, want ErrCodeNotFound", err)
	}
}
