package mongo

import (
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

// ==================== Letter models ====================

type letterModel struct {
	grove.BaseModel `grove:"table:letterpress_letters"`

	ID         string            `grove:"id,pk"       bson:"_id"`
	AccountID  string            `grove:"account_id"  bson:"account_id"`
	ReviewerID string            `grove:"reviewer_id" bson:"reviewer_id"`
	Type       string            `grove:"type"        bson:"type"`
	Subject    string            `grove:"subject"     bson:"subject"`
	Matter     string            `grove:"matter"      bson:"matter"`
	Resolution string            `grove:"resolution"  bson:"resolution"`
	Sender     partyModel        `grove:"sender"      bson:"sender"`
	Recipient  partyModel        `grove:"recipient"   bson:"recipient"`
	Tone       string            `grove:"tone"        bson:"tone"`
	Priority   string            `grove:"priority"    bson:"priority"`
	Status     string            `grove:"status"      bson:"status"`
	Content    string            `grove:"content"     bson:"content"`
	Metadata   map[string]string `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt  time.Time         `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time         `grove:"updated_at"  bson:"updated_at"`
}

type partyModel struct {
	Name    string `bson:"name"`
	Company string `bson:"company,omitempty"`
	Address string `bson:"address,omitempty"`
	Email   string `bson:"email,omitempty"`
}

func toPartyModel(p letter.Party) partyModel {
	return partyModel{
		Name:    p.Name,
		Company: p.Company,
		Address: p.Address,
		Email:   p.Email,
	}
}

func fromPartyModel(m partyModel) letter.Party {
	return letter.Party{
		Name:    m.Name,
		Company: m.Company,
		Address: m.Address,
		Email:   m.Email,
	}
}

func toLetterModel(l *letter.Letter) *letterModel {
	return &letterModel{
		ID:         l.ID.String(),
		AccountID:  l.AccountID.String(),
		ReviewerID: l.ReviewerID.String(),
		Type:       l.Type,
		Subject:    l.Subject,
		Matter:     l.Matter,
		Resolution: l.Resolution,
		Sender:     toPartyModel(l.Sender),
		Recipient:  toPartyModel(l.Recipient),
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
		Sender:     fromPartyModel(m.Sender),
		Recipient:  fromPartyModel(m.Recipient),
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

	ID         string    `grove:"id,pk"       bson:"_id"`
	LetterID   string    `grove:"letter_id"   bson:"letter_id"`
	FromStatus string    `grove:"from_status" bson:"from_status"`
	ToStatus   string    `grove:"to_status"   bson:"to_status"`
	ActorID    string    `grove:"actor_id"    bson:"actor_id"`
	Note       string    `grove:"note"        bson:"note"`
	CreatedAt  time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"  bson:"updated_at"`
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

	ID             string     `grove:"id,pk"           bson:"_id"`
	Code           string     `grove:"code"            bson:"code"`
	PartnerID      string     `grove:"partner_id"      bson:"partner_id"`
	Percentage     int        `grove:"percentage"      bson:"percentage"`
	TimesRedeemed  int        `grove:"times_redeemed"  bson:"times_redeemed"`
	MaxRedemptions int        `grove:"max_redemptions" bson:"max_redemptions"`
	ExpiresAt      *time.Time `grove:"expires_at"      bson:"expires_at,omitempty"`
	Active         bool       `grove:"active"          bson:"active"`
	CreatedAt      time.Time  `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"      bson:"updated_at"`
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

	ID         string     `grove:"id,pk"      bson:"_id"`
	CodeID     string     `grove:"code_id"    bson:"code_id"`
	AccountID  string     `grove:"account_id" bson:"account_id"`
	PartnerID  string     `grove:"partner_id" bson:"partner_id"`
	Charge     moneyModel `grove:"charge"     bson:"charge"`
	Discount   moneyModel `grove:"discount"   bson:"discount"`
	Commission moneyModel `grove:"commission" bson:"commission"`
	CreatedAt  time.Time  `grove:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `grove:"updated_at" bson:"updated_at"`
}

type moneyModel struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func toMoneyModel(m types.Money) moneyModel {
	return moneyModel{Amount: m.Amount, Currency: m.Currency}
}

func fromMoneyModel(m moneyModel) types.Money {
	return types.Money{Amount: m.Amount, Currency: m.Currency}
}

func toUsageModel(u *discount.Usage) *usageModel {
	return &usageModel{
		ID:         u.ID.String(),
		CodeID:     u.CodeID.String(),
		AccountID:  u.AccountID.String(),
		PartnerID:  u.PartnerID.String(),
		Charge:     toMoneyModel(u.Charge),
		Discount:   toMoneyModel(u.Discount),
		Commission: toMoneyModel(u.Commission),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
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
		Charge:     fromMoneyModel(m.Charge),
		Discount:   fromMoneyModel(m.Discount),
		Commission: fromMoneyModel(m.Commission),
	}, nil
}

// ==================== Subscription models ====================

type subscriptionModel struct {
	grove.BaseModel `grove:"table:letterpress_subscriptions"`

	ID             string     `grove:"id,pk"           bson:"_id"`
	AccountID      string     `grove:"account_id"      bson:"account_id"`
	PlanID         string     `grove:"plan_id"         bson:"plan_id"`
	Status         string     `grove:"status"          bson:"status"`
	OriginalAmount moneyModel `grove:"original_amount" bson:"original_amount"`
	DiscountAmount moneyModel `grove:"discount_amount" bson:"discount_amount"`
	FinalAmount    moneyModel `grove:"final_amount"    bson:"final_amount"`
	UsageID        string     `grove:"usage_id"        bson:"usage_id"`
	LetterCredits  int        `grove:"letter_credits"  bson:"letter_credits"`
	ExpiresAt      *time.Time `grove:"expires_at"      bson:"expires_at,omitempty"`
	CreatedAt      time.Time  `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"      bson:"updated_at"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:             s.ID.String(),
		AccountID:      s.AccountID.String(),
		PlanID:         s.PlanID.String(),
		Status:         string(s.Status),
		OriginalAmount: toMoneyModel(s.OriginalAmount),
		DiscountAmount: toMoneyModel(s.DiscountAmount),
		FinalAmount:    toMoneyModel(s.FinalAmount),
		UsageID:        s.UsageID.String(),
		LetterCredits:  s.LetterCredits,
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
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
		OriginalAmount: fromMoneyModel(m.OriginalAmount),
		DiscountAmount: fromMoneyModel(m.DiscountAmount),
		FinalAmount:    fromMoneyModel(m.FinalAmount),
		UsageID:        usageID,
		LetterCredits:  m.LetterCredits,
		ExpiresAt:      m.ExpiresAt,
	}, nil
}

// ==================== Referral Points models ====================

type pointsModel struct {
	grove.BaseModel `grove:"table:letterpress_points"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	PartnerID string    `grove:"partner_id" bson:"partner_id"`
	Points    int       `grove:"points"     bson:"points"`
	Source    string    `grove:"source"     bson:"source"`
	UsageID   string    `grove:"usage_id"   bson:"usage_id"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
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

	ID            string     `grove:"id,pk"          bson:"_id"`
	Name          string     `grove:"name"           bson:"name"`
	Slug          string     `grove:"slug"           bson:"slug"`
	Description   string     `grove:"description"    bson:"description"`
	Price         moneyModel `grove:"price"          bson:"price"`
	LetterCredits int        `grove:"letter_credits" bson:"letter_credits"`
	Period        string     `grove:"period"         bson:"period"`
	Status        string     `grove:"status"         bson:"status"`
	CreatedAt     time.Time  `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time  `grove:"updated_at"     bson:"updated_at"`
}

func toPlanModel(p *plan.Plan) *planModel {
	return &planModel{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         toMoneyModel(p.Price),
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
		Price:         fromMoneyModel(m.Price),
		LetterCredits: m.LetterCredits,
		Period:        plan.Period(m.Period),
		Status:        plan.Status(m.Status),
	}, nil
}
