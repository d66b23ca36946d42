package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/plan"
	"github.com/xraph/letterpress/referral"
	"github.com/xraph/letterpress/store"
	"github.com/xraph/letterpress/subscription"
	"github.com/xraph/letterpress/timeline"
)

type Store struct {
	mu sync.RWMutex

	// Letter storage
	letters map[string]*letter.Letter
	events  map[string][]*timeline.Event // keyed by letter ID, append-only

	// Discount storage
	codes  map[string]*discount.Code // keyed by normalized code string
	usages []*discount.Usage

	// Subscription storage
	subscriptions map[string]*subscription.Subscription

	// Referral storage
	points []*referral.PointsEntry

	// Plan storage
	plans map[string]*plan.Plan
}

func New() *Store {
	return &Store{
		letters:       make(map[string]*letter.Letter),
		events:        make(map[string][]*timeline.Event),
		codes:         make(map[string]*discount.Code),
		usages:        make([]*discount.Usage, 0),
		subscriptions: make(map[string]*subscription.Subscription),
		points:        make([]*referral.PointsEntry, 0),
		plans:         make(map[string]*plan.Plan),
	}
}

// Letter Store implementation
func (s *Store) CreateLetter(_ context.Context, l *letter.Letter, first *timeline.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.letters[l.ID.String()]; exists {
		return letterpress.ErrAlreadyExists
	}
	s.letters[l.ID.String()] = cloneLetter(l)
	if first != nil {
		s.events[l.ID.String()] = append(s.events[l.ID.String()], first)
	}
	return nil
}

func (s *Store) GetLetter(_ context.Context, letterID id.LetterID) (*letter.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.letters[letterID.String()]; ok {
		return cloneLetter(l), nil
	}
	return nil, letterpress.ErrLetterNotFound
}

func (s *Store) ListLetters(_ context.Context, accountID id.AccountID, opts letter.ListOpts) ([]*letter.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*letter.Letter, 0)
	for _, l := range s.letters {
		if l.AccountID != accountID {
			continue
		}
		if opts.Status != "" && l.Status != opts.Status {
			continue
		}
		if !opts.Since.IsZero() && l.CreatedAt.Before(opts.Since) {
			continue
		}
		result = append(result, cloneLetter(l))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// ApplyTransition swaps the letter's status and appends the timeline event
// under one lock. A status that no longer matches tr.From means a concurrent
// writer won; the caller decides how to surface that.
func (s *Store) ApplyTransition(_ context.Context, tr store.Transition) (*letter.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.letters[tr.LetterID.String()]
	if !ok {
		return nil, letterpress.ErrLetterNotFound
	}
	if l.Status != tr.From {
		return nil, letterpress.ErrTransitionConflict
	}

	l.Status = tr.To
	if tr.Content != "" {
		l.Content = tr.Content
	}
	l.Touch()
	if tr.Event != nil {
		s.events[tr.LetterID.String()] = append(s.events[tr.LetterID.String()], tr.Event)
	}
	return cloneLetter(l), nil
}

func (s *Store) StoreDraft(_ context.Context, letterID id.LetterID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.letters[letterID.String()]
	if !ok {
		return letterpress.ErrLetterNotFound
	}
	l.Content = content
	l.Touch()
	return nil
}

// Timeline Store implementation
func (s *Store) ListEvents(_ context.Context, letterID id.LetterID) ([]*timeline.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[letterID.String()]
	result := make([]*timeline.Event, len(events))
	copy(result, events)
	return result, nil
}

// Discount Store implementation
func (s *Store) CreateCode(_ context.Context, c *discount.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[c.Code]; exists {
		return letterpress.ErrAlreadyExists
	}
	s.codes[c.Code] = c
	return nil
}

func (s *Store) GetCode(_ context.Context, code string) (*discount.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.codes[code]; ok {
		return cloneCode(c), nil
	}
	return nil, letterpress.ErrCodeNotFound
}

func (s *Store) GetCodeByID(_ context.Context, codeID id.CodeID) (*discount.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.codes {
		if c.ID == codeID {
			return cloneCode(c), nil
		}
	}
	return nil, letterpress.ErrCodeNotFound
}

func (s *Store) ListCodes(_ context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*discount.Code, 0)
	for _, c := range s.codes {
		if c.PartnerID != partnerID {
			continue
		}
		if opts.Active && !c.Active {
			continue
		}
		result = append(result, cloneCode(c))
	}
	return result, nil
}

func (s *Store) UpdateCode(_ context.Context, c *discount.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[c.Code]; !exists {
		return letterpress.ErrCodeNotFound
	}
	s.codes[c.Code] = c
	return nil
}

func (s *Store) DeactivateCodes(_ context.Context, partnerID id.AccountID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, c := range s.codes {
		if c.PartnerID == partnerID && c.Active {
			c.Active = false
			c.Touch()
			count++
		}
	}
	return count, nil
}

func (s *Store) ListUsages(_ context.Context, partnerID id.AccountID, opts discount.ListOpts) ([]*discount.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*discount.Usage, 0)
	for _, u := range s.usages {
		if u.PartnerID == partnerID {
			result = append(result, u)
		}
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// CommitRedemption writes the usage record, the subscription, and the points
// entry, and increments the code's counter, all under one lock. The counter
// increment is compare-and-swapped against r.ExpectedUses so two racing
// redemptions of the last slot cannot both land.
func (s *Store) CommitRedemption(_ context.Context, r store.Redemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code *discount.Code
	for _, c := range s.codes {
		if c.ID == r.CodeID {
			code = c
			break
		}
	}
	if code == nil {
		return letterpress.ErrCodeNotFound
	}
	if code.TimesRedeemed != r.ExpectedUses {
		return letterpress.ErrRedemptionConflict
	}

	code.TimesRedeemed++
	code.Touch()
	s.usages = append(s.usages, r.Usage)
	s.subscriptions[r.Subscription.ID.String()] = r.Subscription
	if r.Points != nil {
		s.points = append(s.points, r.Points)
	}
	return nil
}

// Subscription Store implementation
func (s *Store) GetSubscription(_ context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, ok := s.subscriptions[subID.String()]; ok {
		return sub, nil
	}
	return nil, letterpress.ErrSubscriptionNotFound
}

func (s *Store) GetActiveSubscription(_ context.Context, accountID id.AccountID) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	for _, sub := range s.subscriptions {
		if sub.AccountID == accountID && sub.Status == subscription.StatusActive {
			if sub.ExpiresAt == nil || now.Before(*sub.ExpiresAt) {
				return sub, nil
			}
		}
	}
	return nil, letterpress.ErrNoActiveSubscription
}

func (s *Store) ListSubscriptions(_ context.Context, accountID id.AccountID, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.AccountID == accountID {
			if opts.Status == "" || sub.Status == opts.Status {
				result = append(result, sub)
			}
		}
	}
	return result, nil
}

// Referral Store implementation
func (s *Store) ListPoints(_ context.Context, partnerID id.AccountID) ([]*referral.PointsEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*referral.PointsEntry, 0)
	for _, p := range s.points {
		if p.PartnerID == partnerID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) TotalPoints(_ context.Context, partnerID id.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, p := range s.points {
		if p.PartnerID == partnerID {
			total += p.Points
		}
	}
	return total, nil
}

// Plan Store implementation
func (s *Store) CreatePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID.String()]; exists {
		return letterpress.ErrAlreadyExists
	}
	s.plans[p.ID.String()] = p
	return nil
}

func (s *Store) GetPlan(_ context.Context, planID id.PlanID) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.plans[planID.String()]; ok {
		return p, nil
	}
	return nil, letterpress.ErrPlanNotFound
}

func (s *Store) GetPlanBySlug(_ context.Context, slug string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, letterpress.ErrPlanNotFound
}

func (s *Store) ListPlans(_ context.Context, opts plan.ListOpts) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*plan.Plan, 0)
	for _, p := range s.plans {
		if opts.Status == "" || p.Status == opts.Status {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) ArchivePlan(_ context.Context, planID id.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, exists := s.plans[planID.String()]; exists {
		p.Status = plan.StatusArchived
		return nil
	}
	return letterpress.ErrPlanNotFound
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Letters and codes are returned as copies so callers cannot bypass the
// compare-and-swap paths by mutating stored state directly.
func cloneLetter(l *letter.Letter) *letter.Letter {
	c := *l
	if l.Metadata != nil {
		c.Metadata = make(map[string]string, len(l.Metadata))
		for k, v := range l.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func cloneCode(c *discount.Code) *discount.Code {
	cp := *c
	return &cp
}
