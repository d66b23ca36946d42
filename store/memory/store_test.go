package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/referral"
	"github.com/xraph/letterpress/store"
	"github.com/xraph/letterpress/subscription"
	"github.com/xraph/letterpress/timeline"
	"github.com/xraph/letterpress/types"
)

func newLetter(accountID id.AccountID, status letter.Status) *letter.Letter {
	return &letter.Letter{
		Entity:    types.NewEntity(),
		ID:        id.NewLetterID(),
		AccountID: accountID,
		Matter:    "test matter",
		Status:    status,
	}
}

func event(letterID id.LetterID, from, to letter.Status) *timeline.Event {
	return &timeline.Event{
		Entity:   types.NewEntity(),
		ID:       id.NewEventID(),
		LetterID: letterID,
		From:     from,
		To:       to,
		ActorID:  id.NewAccountID(),
	}
}

func TestApplyTransitionCAS(t *testing.T) {
	s := New()
	ctx := context.Background()

	l := newLetter(id.NewAccountID(), letter.StatusSubmitted)
	if err := s.CreateLetter(ctx, l, event(l.ID, letter.StatusDraft, letter.StatusSubmitted)); err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}

	// First writer observes submitted and wins.
	if _, err := s.ApplyTransition(ctx, store.Transition{
		LetterID: l.ID,
		From:     letter.StatusSubmitted,
		To:       letter.StatusInReview,
		Event:    event(l.ID, letter.StatusSubmitted, letter.StatusInReview),
	}); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// Second writer still holds the stale observation and loses.
	_, err := s.ApplyTransition(ctx, store.Transition{
		LetterID: l.ID,
		From:     letter.StatusSubmitted,
		To:       letter.StatusCancelled,
		Event:    event(l.ID, letter.StatusSubmitted, letter.StatusCancelled),
	})
	if !errors.Is(err, letterpress.ErrTransitionConflict) {
		t.Fatalf("err = %v, want ErrTransitionConflict", err)
	}

	// Loser appended no event.
	events, _ := s.ListEvents(ctx, l.ID)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	got, _ := s.GetLetter(ctx, l.ID)
	if got.Status != letter.StatusInReview {
		t.Errorf("status = %s, want in_review", got.Status)
	}
}

func TestApplyTransitionWithContent(t *testing.T) {
	s := New()
	ctx := context.Background()

	l := newLetter(id.NewAccountID(), letter.StatusSubmitted)
	if err := s.CreateLetter(ctx, l, nil); err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}

	updated, err := s.ApplyTransition(ctx, store.Transition{
		LetterID: l.ID,
		From:     letter.StatusSubmitted,
		To:       letter.StatusApproved,
		Content:  "Dear Sir,",
		Event:    event(l.ID, letter.StatusSubmitted, letter.StatusApproved),
	})
	if err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if updated.Content != "Dear Sir," {
		t.Errorf("content = %q", updated.Content)
	}
}

func TestGetLetterReturnsSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	l := newLetter(id.NewAccountID(), letter.StatusDraft)
	_ = s.CreateLetter(ctx, l, nil)

	got, _ := s.GetLetter(ctx, l.ID)
	got.Status = letter.StatusCompleted // mutate the copy

	again, _ := s.GetLetter(ctx, l.ID)
	if again.Status != letter.StatusDraft {
		t.Error("stored letter mutated through a returned snapshot")
	}
}

func TestCommitRedemptionCAS(t *testing.T) {
	s := New()
	ctx := context.Background()

	partnerID := id.NewAccountID()
	code := &discount.Code{
		Entity:         types.NewEntity(),
		ID:             id.NewCodeID(),
		Code:           "CAS1",
		PartnerID:      partnerID,
		Percentage:     10,
		TimesRedeemed:  0,
		MaxRedemptions: 5,
		Active:         true,
	}
	if err := s.CreateCode(ctx, code); err != nil {
		t.Fatalf("CreateCode: %v", err)
	}

	redemption := func(expected int) store.Redemption {
		usage := &discount.Usage{
			Entity:    types.NewEntity(),
			ID:        id.NewUsageID(),
			CodeID:    code.ID,
			AccountID: id.NewAccountID(),
			PartnerID: partnerID,
			Charge:    types.USD(1000),
		}
		return store.Redemption{
			Usage: usage,
			Subscription: &subscription.Subscription{
				Entity:    types.NewEntity(),
				ID:        id.NewSubscriptionID(),
				AccountID: usage.AccountID,
				Status:    subscription.StatusActive,
				UsageID:   usage.ID,
			},
			Points: &referral.PointsEntry{
				Entity:    types.NewEntity(),
				ID:        id.NewPointsID(),
				PartnerID: partnerID,
				Points:    1,
				Source:    referral.SourceRedemption,
				UsageID:   usage.ID,
			},
			CodeID:       code.ID,
			ExpectedUses: expected,
		}
	}

	if err := s.CommitRedemption(ctx, redemption(0)); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// Same observation replayed: the counter moved on, so the swap fails
	// and nothing from the losing unit lands.
	err := s.CommitRedemption(ctx, redemption(0))
	if !errors.Is(err, letterpress.ErrRedemptionConflict) {
		t.Fatalf("err = %v, want ErrRedemptionConflict", err)
	}

	fresh, _ := s.GetCode(ctx, "CAS1")
	if fresh.TimesRedeemed != 1 {
		t.Errorf("counter = %d, want 1", fresh.TimesRedeemed)
	}
	points, _ := s.ListPoints(ctx, partnerID)
	if len(points) != 1 {
		t.Errorf("got %d points entries, want 1", len(points))
	}
	usages, _ := s.ListUsages(ctx, partnerID, discount.ListOpts{})
	if len(usages) != 1 {
		t.Errorf("got %d usage records, want 1", len(usages))
	}
}

func TestDeactivateCodes(t *testing.T) {
	s := New()
	ctx := context.Background()

	partnerID := id.NewAccountID()
	other := id.NewAccountID()
	for i, p := range []id.AccountID{partnerID, partnerID, other} {
		c := &discount.Code{
			Entity:     types.NewEntity(),
			ID:         id.NewCodeID(),
			Code:       discount.Normalize("CODE" + string(rune('A'+i))),
			PartnerID:  p,
			Percentage: 10,
			Active:     true,
		}
		if err := s.CreateCode(ctx, c); err != nil {
			t.Fatalf("CreateCode: %v", err)
		}
	}

	count, err := s.DeactivateCodes(ctx, partnerID)
	if err != nil {
		t.Fatalf("DeactivateCodes: %v", err)
	}
	if count != 2 {
		t.Errorf("deactivated %d, want 2", count)
	}

	// The other partner's code is untouched.
	remaining, _ := s.ListCodes(ctx, other, discount.ListOpts{Active: true})
	if len(remaining) != 1 {
		t.Errorf("other partner has %d active codes, want 1", len(remaining))
	}
}
