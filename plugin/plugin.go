// Package plugin provides an extensible plugin system for Letterpress.
// Plugins can hook into lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Letter lifecycle hooks
// ──────────────────────────────────────────────────

// OnLetterCreated is called when a new letter is created.
type OnLetterCreated interface {
	Plugin
	OnLetterCreated(ctx context.Context, letter interface{}) error
}

// OnLetterTransition is called after a status transition commits.
type OnLetterTransition interface {
	Plugin
	OnLetterTransition(ctx context.Context, letter interface{}, from, to, actorID string) error
}

// OnDraftGenerated is called when a draft is generated and persisted.
type OnDraftGenerated interface {
	Plugin
	OnDraftGenerated(ctx context.Context, letter interface{}, elapsed time.Duration) error
}

// OnGenerationFailed is called when the external generation call fails or
// times out. The letter is left in its pre-generation status.
type OnGenerationFailed interface {
	Plugin
	OnGenerationFailed(ctx context.Context, letterID string, err error) error
}

// ──────────────────────────────────────────────────
// Referral/ledger hooks
// ──────────────────────────────────────────────────

// OnCodeCreated is called when a partner creates a discount code.
type OnCodeCreated interface {
	Plugin
	OnCodeCreated(ctx context.Context, code interface{}) error
}

// OnCodeRedeemed is called after a redemption's atomic unit commits.
type OnCodeRedeemed interface {
	Plugin
	OnCodeRedeemed(ctx context.Context, usage interface{}, sub interface{}) error
}

// OnRedemptionFailed is called when a redemption is rejected or rolled back.
type OnRedemptionFailed interface {
	Plugin
	OnRedemptionFailed(ctx context.Context, code string, err error) error
}

// OnPointsAwarded is called when a referral points entry is written.
type OnPointsAwarded interface {
	Plugin
	OnPointsAwarded(ctx context.Context, entry interface{}) error
}

// ──────────────────────────────────────────────────
// Plan hooks
// ──────────────────────────────────────────────────

// OnPlanCreated is called when a new plan is created.
type OnPlanCreated interface {
	Plugin
	OnPlanCreated(ctx context.Context, plan interface{}) error
}

// ──────────────────────────────────────────────────
// Notification hooks
// ──────────────────────────────────────────────────

// OnNotificationSent is called after a notification is delivered.
type OnNotificationSent interface {
	Plugin
	OnNotificationSent(ctx context.Context, to, subject string) error
}

// OnNotificationFailed is called when a notification cannot be delivered.
// Notification failures never abort committed work.
type OnNotificationFailed interface {
	Plugin
	OnNotificationFailed(ctx context.Context, to, subject string, err error) error
}

// ──────────────────────────────────────────────────
// Code validators
// ──────────────────────────────────────────────────

// CodeValidator provides custom discount-code validation logic, run after
// the built-in checks pass.
type CodeValidator interface {
	Plugin
	ValidateCode(ctx context.Context, code interface{}, accountID string) error
}
