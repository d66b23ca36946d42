package timeline

import (
	"context"

	"github.com/xraph/letterpress/id"
)

// Store is the timeline persistence contract. Events are appended by the
// same atomic unit that updates the owning letter; this interface exposes
// only reads.
type Store interface {
	// ListEvents returns all events for a letter ordered by creation time
	// ascending.
	ListEvents(ctx context.Context, letterID id.LetterID) ([]*Event, error)
}
