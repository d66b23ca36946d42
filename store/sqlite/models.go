package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/letterpress/discount"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/plan"
	"github.com/xraph/letterpress/referral"
	"github.com/xraph/letterpress/subscription"
	"github.com/xraph/letterpress/timeline"
	"github.com/xraph/letterpress/types"
)

// SQLite stores JSON blobs as TEXT; otherwise the models mirror the
// PostgreSQL backend.

// ==================== Letter models ====================

type letterModel struct {
	grove.BaseModel `grove:"table:letterpress_letters"`

	ID         string            `grove:"id,pk"`
	AccountID  string            `grove:"account_id"`
	ReviewerID string            `grove:"reviewer_id"`
	Type       string            `grove:"type"`
	Subject    string            `grove:"subject"`
	Matter     string            `grove:"matter"`
	Resolution string            `grove:"resolution"`
	Sender     json.RawMessage   `grove:"sender"`
	Recipient  json.RawMessage   `grove:"recipient"`
	Tone       string            `grove:"tone"`
	Priority   string            `grove:"priority"`
	Status     string            `grove:"status"`
	Content    string            `grove:"content"`
	Metadata   map[string]string `grove:"metadata"`
	CreatedAt  time.Time         `grove:"created_at"`
	UpdatedAt  time.Time         `grove:"updated_at"`
}

func toLetterModel(l *letter.Letter) *letterModel {
	sender, _ := json.Marshal(l.Sender)       //nolint:errcheck // best-effort
	recipient, _ := json.Marshal(l.Recipient) //nolint:errcheck // best-effort

	return &letterModel{
		ID:         l.ID.String(),
		AccountID:  l.AccountID.String(),
		ReviewerID: l.ReviewerID.String(),
		Type:       l.Type,
		Subject:    l.Subject,
		Matter:     l.Matter,
		Resolution: l.Resolution,
		Sender:     sender,
		Recipient:  recipient,
		Tone:       string(l.Tone),
		Priority:   string(l.Priority),
		Status:     string(l.Status),
		Content:    l.Content,
		Metadata:   l.Metadata,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func fromLetterModel(m *letterModel) (*letter.Letter, error) {
	letterID, err := id.ParseLetterID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	var reviewerID id.AccountID
	if m.ReviewerID != "" {
		reviewerID, err = id.ParseAccountID(m.ReviewerID)
		if err != nil {
			return nil, err
		}
	}

	var sender, recipient letter.Party
	if len(m.Sender) > 0 {
		_ = json.Unmarshal(m.Sender, &sender) //nolint:errcheck // best-effort
	}
	if len(m.Recipient) > 0 {
		_ = json.Unmarshal(m.Recipient, &recipient) //nolint:errcheck // best-effort
	}

	return &letter.Letter{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         letterID,
		AccountID:  accountID,
		ReviewerID: reviewerID,
		Type:       m.Type,
		Subject:    m.Subject,
		Matter:     m.Matter,
		Resolution: m.Resolution,
		Sender:     sender,
		Recipient:  recipient,
		Tone:       letter.Tone(m.Tone),
		Priority:   letter.Priority(m.Priority),
		Status:     letter.Status(m.Status),
		Content:    m.Content,
		Metadata:   m.Metadata,
	}, nil
}

// ==================== Timeline Event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:letterpress_events"`

	ID         string    `grove:"id,pk"`
	LetterID   string    `grove:"letter_id"`
	FromStatus string    `grove:"from_status"`
	ToStatus   string    `grove:"to_status"`
	ActorID    string    `grove:"actor_id"`
	Note       string    `grove:"note"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toEventModel(e *timeline.Event) *eventModel {
	return &eventModel{
		ID:         e.ID.String(),
		LetterID:   e.LetterID.String(),
		FromStatus: string(e.From),
		ToStatus:   string(e.To),
		ActorID:    e.ActorID.String(),
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func fromEventModel(m *eventModel) (*timeline.Event, error) {
	eventID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	letterID, err := id.ParseLetterID(m.LetterID)
	if err != nil {
		return nil, err
	}
	actorID, err := id.ParseAccountID(m.ActorID)
	if err != nil {
		return nil, err
	}

	return &timeline.Event{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       eventID,
		LetterID: letterID,
		From:     letter.Status(m.FromStatus),
		To:       letter.Status(m.ToStatus),
		ActorID:  actorID,
		Note:     m.Note,
	}, nil
}

// ==================== Discount Code models ====================

type codeModel struct {
	grove.BaseModel `grove:"table:letterpress_codes"`

	ID             string     `grove:"id,pk"`
	Code           string     `grove:"code"`
	PartnerID      string     `grove:"partner_id"`
	Percentage     int        `grove:"percentage"`
	TimesRedeemed  int        `grove:"times_redeemed"`
	MaxRedemptions int        `grove:"max_redemptions"`
	ExpiresAt      *time.Time `grove:"expires_at"`
	Active         bool       `grove:"active"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toCodeModel(c *discount.Code) *codeModel {
	return &codeModel{
		ID:             c.ID.String(),
		Code:           c.Code,
		PartnerID:      c.PartnerID.String(),
		Percentage:     c.Percentage,
		TimesRedeemed:  c.TimesRedeemed,
		MaxRedemptions: c.MaxRedemptions,
		ExpiresAt:      c.ExpiresAt,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func fromCodeModel(m *codeModel) (*discount.Code, error) {
	codeID, err := id.ParseCodeID(m.ID)
	if err != nil {
		return nil, err
	}
	partnerID, err := id.ParseAccountID(m.PartnerID)
	if err != nil {
		return nil, err
	}

	return &discount.Code{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             codeID,
		Code:           m.Code,
		PartnerID:      partnerID,
		Percentage:     m.Percentage,
		TimesRedeemed:  m.TimesRedeemed,
		MaxRedemptions: m.MaxRedemptions,
		ExpiresAt:      m.ExpiresAt,
		Active:         m.Active,
	}, nil
}

// ==================== Discount Usage models ====================

type usageModel struct {
	grove.BaseModel `grove:"table:letterpress_usages"`

	ID                 string    `grove:"id,pk"`
	CodeID             string    `grove:"code_id"`
	AccountID          string    `grove:"account_id"`
	PartnerID          string    `grove:"partner_id"`
	ChargeCents        int64     `grove:"charge_cents"`
	ChargeCurrency     string    `grove:"charge_currency"`
	DiscountCents      int64     `grove:"discount_cents"`
	DiscountCurrency   string    `grove:"discount_currency"`
	CommissionCents    int64     `grove:"commission_cents"`
	CommissionCurrency string    `grove:"commission_currency"`
	CreatedAt          time.Time `grove:"created_at"`
	UpdatedAt          time.Time `grove:"updated_at"`
}

func toUsageModel(u *discount.Usage) *usageModel {
	return &usageModel{
		ID:                 u.ID.String(),
		CodeID:             u.CodeID.String(),
		AccountID:          u.AccountID.String(),
		PartnerID:          u.PartnerID.String(),
		ChargeCents:        u.Charge.Amount,
		ChargeCurrency:     u.Charge.Currency,
		DiscountCents:      u.Discount.Amount,
		DiscountCurrency:   u.Discount.Currency,
		CommissionCents:    u.Commission.Amount,
		CommissionCurrency: u.Commission.Currency,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func fromUsageModel(m *usageModel) (*discount.Usage, error) {
	usageID, err := id.ParseUsageID(m.ID)
	if err != nil {
		return nil, err
	}
	codeID, err := id.ParseCodeID(m.CodeID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}
	partnerID, err := id.ParseAccountID(m.PartnerID)
	if err != nil {
		return nil, err
	}

	return &discount.Usage{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         usageID,
		CodeID:     codeID,
		AccountID:  accountID,
		PartnerID:  partnerID,
		Charge:     types.Money{Amount: m.ChargeCents, Currency: m.ChargeCurrency},
		Discount:   types.Money{Amount: m.DiscountCents, Currency: m.DiscountCurrency},
		Commission: types.Money{Amount: m.CommissionCents, Currency: m.CommissionCurrency},
	}, nil
}

// ==================== Subscription models ====================

type subscriptionModel struct {
	grove.BaseModel `grove:"table:letterpress_subscriptions"`

	ID               string     `grove:"id,pk"`
	AccountID        string     `grove:"account_id"`
	PlanID           string     `grove:"plan_id"`
	Status           string     `grove:"status"`
	OriginalCents    int64      `grove:"original_cents"`
	OriginalCurrency string     `grove:"original_currency"`
	DiscountCents    int64      `grove:"discount_cents"`
	DiscountCurrency string     `grove:"discount_currency"`
	FinalCents       int64      `grove:"final_cents"`
	FinalCurrency    string     `grove:"final_currency"`
	UsageID          string     `grove:"usage_id"`
	LetterCredits    int        `grove:"letter_credits"`
	ExpiresAt        *time.Time `grove:"expires_at"`
	CreatedAt        time.Time  `grove:"created_at"`
	UpdatedAt        time.Time  `grove:"updated_at"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:               s.ID.String(),
		AccountID:        s.AccountID.String(),
		PlanID:           s.PlanID.String(),
		Status:           string(s.Status),
		OriginalCents:    s.OriginalAmount.Amount,
		OriginalCurrency: s.OriginalAmount.Currency,
		DiscountCents:    s.DiscountAmount.Amount,
		DiscountCurrency: s.DiscountAmount.Currency,
		FinalCents:       s.FinalAmount.Amount,
		FinalCurrency:    s.FinalAmount.Currency,
		UsageID:          s.UsageID.String(),
		LetterCredits:    s.LetterCredits,
		ExpiresAt:        s.ExpiresAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func fromSubscriptionModel(m *subscriptionModel) (*subscription.Subscription, error) {
	subID, err := id.ParseSubscriptionID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	var planID id.PlanID
	if m.PlanID != "" {
		planID, err = id.ParsePlanID(m.PlanID)
		if err != nil {
			return nil, err
		}
	}
	var usageID id.UsageID
	if m.UsageID != "" {
		usageID, err = id.ParseUsageID(m.UsageID)
		if err != nil {
			return nil, err
		}
	}

	return &subscription.Subscription{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             subID,
		AccountID:      accountID,
		PlanID:         planID,
		Status:         subscription.Status(m.Status),
		OriginalAmount: types.Money{Amount: m.OriginalCents, Currency: m.OriginalCurrency},
		DiscountAmount: types.Money{Amount: m.DiscountCents, Currency: m.DiscountCurrency},
		FinalAmount:    types.Money{Amount: m.FinalCents, Currency: m.FinalCurrency},
		UsageID:        usageID,
		LetterCredits:  m.LetterCredits,
		ExpiresAt:      m.ExpiresAt,
	}, nil
}

// ==================== Referral Points models ====================

type pointsModel struct {
	grove.BaseModel `grove:"table:letterpress_points"`

	ID        string    `grove:"id,pk"`
	PartnerID string    `grove:"partner_id"`
	Points    int       `grove:"points"`
	Source    string    `grove:"source"`
	UsageID   string    `grove:"usage_id"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toPointsModel(p *referral.PointsEntry) *pointsModel {
	return &pointsModel{
		ID:        p.ID.String(),
		PartnerID: p.PartnerID.String(),
		Points:    p.Points,
		Source:    p.Source,
		UsageID:   p.UsageID.String(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPointsModel(m *pointsModel) (*referral.PointsEntry, error) {
	pointsID, err := id.ParsePointsID(m.ID)
	if err != nil {
		return nil, err
	}
	partnerID, err := id.ParseAccountID(m.PartnerID)
	if err != nil {
		return nil, err
	}
	usageID, err := id.ParseUsageID(m.UsageID)
	if err != nil {
		return nil, err
	}

	return &referral.PointsEntry{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        pointsID,
		PartnerID: partnerID,
		Points:    m.Points,
		Source:    m.Source,
		UsageID:   usageID,
	}, nil
}

// ==================== Plan models ====================

type planModel struct {
	grove.BaseModel `grove:"table:letterpress_plans"`

	ID            string    `grove:"id,pk"`
	Name          string    `grove:"name"`
	Slug          string    `grove:"slug"`
	Description   string    `grove:"description"`
	PriceCents    int64     `grove:"price_cents"`
	PriceCurrency string    `grove:"price_currency"`
	LetterCredits int       `grove:"letter_credits"`
	Period        string    `grove:"period"`
	Status        string    `grove:"status"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toPlanModel(p *plan.Plan) *planModel {
	return &planModel{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		PriceCents:    p.Price.Amount,
		PriceCurrency: p.Price.Currency,
		LetterCredits: p.LetterCredits,
		Period:        string(p.Period),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromPlanModel(m *planModel) (*plan.Plan, error) {
	planID, err := id.ParsePlanID(m.ID)
	if err != nil {
		return nil, err
	}

	return &plan.Plan{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            planID,
		Name:          m.Name,
		Slug:          m.Slug,
		Description:   m.Description,
		Price:         types.Money{Amount: m.PriceCents, Currency: m.PriceCurrency},
		LetterCredits: m.LetterCredits,
		Period:        plan.Period(m.Period),
		Status:        plan.Status(m.Status),
	}, nil
}
