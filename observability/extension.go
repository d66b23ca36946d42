// Package observability provides a metrics extension for Letterpress that
// records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/letterpress/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnLetterCreated      = (*MetricsExtension)(nil)
	_ plugin.OnLetterTransition   = (*MetricsExtension)(nil)
	_ plugin.OnDraftGenerated     = (*MetricsExtension)(nil)
	_ plugin.OnGenerationFailed   = (*MetricsExtension)(nil)
	_ plugin.OnCodeCreated        = (*MetricsExtension)(nil)
	_ plugin.OnCodeRedeemed       = (*MetricsExtension)(nil)
	_ plugin.OnRedemptionFailed   = (*MetricsExtension)(nil)
	_ plugin.OnPointsAwarded      = (*MetricsExtension)(nil)
	_ plugin.OnPlanCreated        = (*MetricsExtension)(nil)
	_ plugin.OnNotificationSent   = (*MetricsExtension)(nil)
	_ plugin.OnNotificationFailed = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Letterpress plugin to automatically track engine metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Letter metrics
	LetterCreated     Counter
	LetterTransitions Counter
	DraftGenerated    Counter
	DraftLatency      Histogram
	GenerationFailed  Counter

	// Redemption metrics
	CodeCreated      Counter
	CodeRedeemed     Counter
	RedemptionFailed Counter
	PointsAwarded    Counter

	// Plan metrics
	PlanCreated Counter

	// Notification metrics
	NotificationSent   Counter
	NotificationFailed Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Letter metrics
		LetterCreated:     factory.Counter("letterpress.letter.created"),
		LetterTransitions: factory.Counter("letterpress.letter.transitions"),
		DraftGenerated:    factory.Counter("letterpress.draft.generated"),
		DraftLatency:      factory.Histogram("letterpress.draft.latency_ms"),
		GenerationFailed:  factory.Counter("letterpress.draft.failed"),

		// Redemption metrics
		CodeCreated:      factory.Counter("letterpress.code.created"),
		CodeRedeemed:     factory.Counter("letterpress.code.redeemed"),
		RedemptionFailed: factory.Counter("letterpress.redemption.failed"),
		PointsAwarded:    factory.Counter("letterpress.points.awarded"),

		// Plan metrics
		PlanCreated: factory.Counter("letterpress.plan.created"),

		// Notification metrics
		NotificationSent:   factory.Counter("letterpress.notification.sent"),
		NotificationFailed: factory.Counter("letterpress.notification.failed"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Letter lifecycle hooks
// ──────────────────────────────────────────────────

// OnLetterCreated implements plugin.OnLetterCreated.
func (m *MetricsExtension) OnLetterCreated(_ context.Context, _ interface{}) error {
	m.LetterCreated.Inc()
	return nil
}

// OnLetterTransition implements plugin.OnLetterTransition.
func (m *MetricsExtension) OnLetterTransition(_ context.Context, _ interface{}, _, _, _ string) error {
	m.LetterTransitions.Inc()
	return nil
}

// OnDraftGenerated implements plugin.OnDraftGenerated.
func (m *MetricsExtension) OnDraftGenerated(_ context.Context, _ interface{}, elapsed time.Duration) error {
	m.DraftGenerated.Inc()
	m.DraftLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// OnGenerationFailed implements plugin.OnGenerationFailed.
func (m *MetricsExtension) OnGenerationFailed(_ context.Context, _ string, _ error) error {
	m.GenerationFailed.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Redemption lifecycle hooks
// ──────────────────────────────────────────────────

// OnCodeCreated implements plugin.OnCodeCreated.
func (m *MetricsExtension) OnCodeCreated(_ context.Context, _ interface{}) error {
	m.CodeCreated.Inc()
	return nil
}

// OnCodeRedeemed implements plugin.OnCodeRedeemed.
func (m *MetricsExtension) OnCodeRedeemed(_ context.Context, _, _ interface{}) error {
	m.CodeRedeemed.Inc()
	return nil
}

// OnRedemptionFailed implements plugin.OnRedemptionFailed.
func (m *MetricsExtension) OnRedemptionFailed(_ context.Context, _ string, _ error) error {
	m.RedemptionFailed.Inc()
	return nil
}

// OnPointsAwarded implements plugin.OnPointsAwarded.
func (m *MetricsExtension) OnPointsAwarded(_ context.Context, _ interface{}) error {
	m.PointsAwarded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Plan lifecycle hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (m *MetricsExtension) OnPlanCreated(_ context.Context, _ interface{}) error {
	m.PlanCreated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Notification hooks
// ──────────────────────────────────────────────────

// OnNotificationSent implements plugin.OnNotificationSent.
func (m *MetricsExtension) OnNotificationSent(_ context.Context, _, _ string) error {
	m.NotificationSent.Inc()
	return nil
}

// OnNotificationFailed implements plugin.OnNotificationFailed.
func (m *MetricsExtension) OnNotificationFailed(_ context.Context, _, _ string, _ error) error {
	m.NotificationFailed.Inc()
	return nil
}
