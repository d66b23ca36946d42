// Package letterpress provides a composable document-generation and referral
// engine for Go applications.
//
// Letterpress is designed as a library, not a service. Import it directly into
// your Go application and wire your own transport on top. It provides:
//
//   - A role-gated letter lifecycle state machine with an append-only timeline
//   - A draft pipeline that prompts an external text-generation call and
//     persists the result atomically with the status advance
//   - A discount-redemption ledger with all-or-nothing commit semantics
//   - Partner commission and referral points accounting
//   - Best-effort notification dispatch decoupled from the critical path
//
// # Quick Start
//
// Create an engine instance with your preferred store:
//
//	import (
//	    "github.com/xraph/letterpress"
//	    "github.com/xraph/letterpress/store/postgres"
//	)
//
//	// Initialize store
//	store, err := postgres.New(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine
//	lp := letterpress.New(store,
//	    letterpress.WithGenerator(myGenerator),
//	    letterpress.WithNotifier(myMailer),
//	)
//
//	// Start the engine (runs migrations, begins background workers)
//	if err := lp.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer lp.Stop()
//
// # Core Concepts
//
// Letters move through a fixed lifecycle:
//
//	draft -> submitted -> in_review -> approved -> completed
//
// with cancellation and resubmission side paths. Every accepted transition
// appends exactly one timeline event; replaying a letter's events reproduces
// its stored status.
//
// Submitting a letter runs the whole draft pipeline:
//
//	result, err := lp.Submit(ctx, draft.Request{
//	    Type:   "demand",
//	    Matter: "unpaid invoice",
//	    Sender: letter.Party{Name: "Ada Example"},
//	    Recipient: letter.Party{Name: "Bert Debtor"},
//	}, actor)
//
// Redeeming a discount code commits a subscription, a usage record, the
// code's counter increment, and a partner points entry as one unit:
//
//	res, err := lp.Redeem(ctx, letterpress.RedeemRequest{
//	    Code:      "SAVE20",
//	    AccountID: accountID,
//	    Charge:    letterpress.USD(10000),
//	})
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest
// currency unit (cents for USD, pence for GBP, etc). Commissions are
// expressed in basis points and computed on the pre-discount charge.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	ltr_01h2xcejqtf2nbrexx3vqjhp41   // Letter ID
//	code_01h2xcejqtf2nbrexx3vqjhp41  // Discount code ID
//	sub_01h455vb4pex5vsknk084sn02q   // Subscription ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package letterpress
