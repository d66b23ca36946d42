// Package audithook bridges Letterpress lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import an
// audit module directly. Callers inject a RecorderFunc adapter that bridges
// to their audit backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/letterpress/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnLetterCreated      = (*Extension)(nil)
	_ plugin.OnLetterTransition   = (*Extension)(nil)
	_ plugin.OnDraftGenerated     = (*Extension)(nil)
	_ plugin.OnGenerationFailed   = (*Extension)(nil)
	_ plugin.OnCodeCreated        = (*Extension)(nil)
	_ plugin.OnCodeRedeemed       = (*Extension)(nil)
	_ plugin.OnRedemptionFailed   = (*Extension)(nil)
	_ plugin.OnPointsAwarded      = (*Extension)(nil)
	_ plugin.OnPlanCreated        = (*Extension)(nil)
	_ plugin.OnNotificationFailed = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not depend on a
// concrete audit module — callers inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Letterpress lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Letter lifecycle hooks
// ──────────────────────────────────────────────────

// OnLetterCreated implements plugin.OnLetterCreated.
func (e *Extension) OnLetterCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionLetterCreated, SeverityInfo, OutcomeSuccess,
		ResourceLetter, "", CategoryLifecycle, nil,
		"event", "letter_created",
	)
}

// OnLetterTransition implements plugin.OnLetterTransition.
func (e *Extension) OnLetterTransition(ctx context.Context, _ interface{}, from, to, actorID string) error {
	return e.record(ctx, ActionLetterTransition, SeverityInfo, OutcomeSuccess,
		ResourceLetter, "", CategoryLifecycle, nil,
		"from", from,
		"to", to,
		"actor_id", actorID,
	)
}

// OnDraftGenerated implements plugin.OnDraftGenerated.
func (e *Extension) OnDraftGenerated(ctx context.Context, _ interface{}, elapsed time.Duration) error {
	return e.record(ctx, ActionDraftGenerated, SeverityInfo, OutcomeSuccess,
		ResourceLetter, "", CategoryGeneration, nil,
		"event", "draft_generated",
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnGenerationFailed implements plugin.OnGenerationFailed.
func (e *Extension) OnGenerationFailed(ctx context.Context, letterID string, err error) error {
	return e.record(ctx, ActionDraftFailed, SeverityError, OutcomeFailure,
		ResourceLetter, letterID, CategoryGeneration, err,
		"letter_id", letterID,
	)
}

// ──────────────────────────────────────────────────
// Redemption lifecycle hooks
// ──────────────────────────────────────────────────

// OnCodeCreated implements plugin.OnCodeCreated.
func (e *Extension) OnCodeCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionCodeCreated, SeverityInfo, OutcomeSuccess,
		ResourceCode, "", CategoryLedger, nil,
		"event", "code_created",
	)
}

// OnCodeRedeemed implements plugin.OnCodeRedeemed.
func (e *Extension) OnCodeRedeemed(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionCodeRedeemed, SeverityInfo, OutcomeSuccess,
		ResourceRedemption, "", CategoryLedger, nil,
		"event", "code_redeemed",
	)
}

// OnRedemptionFailed implements plugin.OnRedemptionFailed.
func (e *Extension) OnRedemptionFailed(ctx context.Context, code string, err error) error {
	return e.record(ctx, ActionRedemptionFailed, SeverityWarning, OutcomeFailure,
		ResourceRedemption, code, CategoryLedger, err,
		"code", code,
	)
}

// OnPointsAwarded implements plugin.OnPointsAwarded.
func (e *Extension) OnPointsAwarded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionPointsAwarded, SeverityInfo, OutcomeSuccess,
		ResourcePoints, "", CategoryLedger, nil,
		"event", "points_awarded",
	)
}

// ──────────────────────────────────────────────────
// Plan lifecycle hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (e *Extension) OnPlanCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionPlanCreated, SeverityInfo, OutcomeSuccess,
		ResourcePlan, "", CategoryBilling, nil,
		"event", "plan_created",
	)
}

// ──────────────────────────────────────────────────
// Notification hooks
// ──────────────────────────────────────────────────

// OnNotificationFailed implements plugin.OnNotificationFailed.
func (e *Extension) OnNotificationFailed(ctx context.Context, to, subject string, err error) error {
	return e.record(ctx, ActionNotificationFailed, SeverityWarning, OutcomeFailure,
		ResourceNotification, "", CategoryNotification, err,
		"to", to,
		"subject", subject,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
