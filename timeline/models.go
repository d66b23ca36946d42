// Package timeline holds the append-only audit log of letter status
// changes. Events are never mutated or deleted; replaying a letter's events
// in order reproduces its current status.
package timeline

import (
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/types"
)

// Event records one accepted status transition.
type Event struct {
	types.Entity
	ID       id.EventID    `json:"id"`
	LetterID id.LetterID   `json:"letter_id"`
	From     letter.Status `json:"from"`
	To       letter.Status `json:"to"`
	ActorID  id.AccountID  `json:"actor_id"`
	Note     string        `json:"note,omitempty"`
}

// Replay folds an ordered event sequence over an initial status and returns
// the resulting status. Used to verify the timeline-consistency invariant.
func Replay(initial letter.Status, events []*Event) letter.Status {
	current := initial
	for _, e := range events {
		current = e.To
	}
	return current
}
