package letterpress_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/draft"
	"github.com/xraph/letterpress/id"
	"github.com/xraph/letterpress/identity"
	"github.com/xraph/letterpress/letter"
	"github.com/xraph/letterpress/store/memory"
	"github.com/xraph/letterpress/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize the engine with a stub generator
		lp := letterpress.New(store,
			letterpress.WithLogger(slog.Default()),
			letterpress.WithGenerator(draft.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
				return "Dear Sir or Madam,", nil
			})),
			letterpress.WithGenerationTimeout(10*time.Second),
		)

		// Start the engine
		ctx := context.Background()
		if err := lp.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer lp.Stop()

		owner := identity.Identity{
			AccountID: id.NewAccountID(),
			Role:      identity.RoleOwner,
		}

		// Submit a letter through the draft pipeline
		result, err := lp.Submit(ctx, draft.Request{
			Type:      "demand",
			Subject:   "Unpaid invoice",
			Matter:    "Invoice #4711 remains unpaid after 90 days.",
			Sender:    letter.Party{Name: "Ada Example", Company: "Example Ltd"},
			Recipient: letter.Party{Name: "Bert Debtor"},
			Tone:      letter.ToneFirm,
		}, owner)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Letter %s drafted: %q\n", result.Letter.ID, result.Content)

		// Inspect the audit trail
		events, err := lp.History(ctx, result.Letter.ID)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Timeline has %d events\n", len(events))
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.USD(10000)  // $100.00
		_ = types.EUR(9900)   // €99.00
		_ = types.Zero("usd") // $0.00

		// Arithmetic
		m1 := types.USD(10000)
		m2 := types.USD(2000)
		_ = m1.Subtract(m2)      // $80.00
		_ = m1.Percent(20)       // $20.00
		_ = m1.BasisPoints(1000) // $10.00

		// Comparison
		if m2.LessThan(m1) {
			// m2 is less than m1
		}

		// Formatting
		_ = m1.String()      // "$100.00"
		_ = m1.FormatMajor() // "100.00"
	})
}
