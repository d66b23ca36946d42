package letter

import (
	"time"

	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/types"
)

// Status is the closed set of letter lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusInReview, StatusApproved,
		StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave this status.
// Cancelled letters can still be resubmitted, so only completed is terminal.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Priority is the urgency level of a letter request.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Tone controls the register of the generated draft.
type Tone string

const (
	ToneFormal   Tone = "formal"
	ToneFirm     Tone = "firm"
	ToneAmicable Tone = "amicable"
)

// Party is a structured sender or recipient block.
type Party struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Letter is a document-generation request tracked through its lifecycle.
// Letters are never physically deleted — cancellation is a terminal-ish
// status, not removal.
type Letter struct {
	types.Entity
	ID         id.LetterID       `json:"id"`
	AccountID  id.AccountID      `json:"account_id"`
	ReviewerID id.AccountID      `json:"reviewer_id,omitempty"`
	Type       string            `json:"type"` // e.g. "demand", "cease_desist", "complaint"
	Subject    string            `json:"subject"`
	Matter     string            `json:"matter"`
	Resolution string            `json:"resolution,omitempty"`
	Sender     Party             `json:"sender"`
	Recipient  Party             `json:"recipient"`
	Tone       Tone              `json:"tone,omitempty"`
	Priority   Priority          `json:"priority"`
	Status     Status            `json:"status"`
	Content    string            `json:"content,omitempty"` // empty until a draft is produced
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// HasContent reports whether a draft has been produced for this letter.
func (l *Letter) HasContent() bool { return l.Content != "" }

// ListOpts filters letter listings.
type ListOpts struct {
	Status Status
	Since  time.Time
	Limit  int
	Offset int
}
