package audithook

// Action constants for audit events.
const (
	// Letter actions
	ActionLetterCreated    = "letter.created"
	ActionLetterTransition = "letter.transition"
	ActionDraftGenerated   = "draft.generated"
	ActionDraftFailed      = "draft.failed"

	// Redemption actions
	ActionCodeCreated      = "code.created"
	ActionCodeRedeemed     = "code.redeemed"
	ActionRedemptionFailed = "redemption.failed"
	ActionPointsAwarded    = "points.awarded"

	// Plan actions
	ActionPlanCreated = "plan.created"

	// Notification actions
	ActionNotificationSent   = "notification.sent"
	ActionNotificationFailed = "notification.failed"
)

// Resource constants for audit events.
const (
	ResourceLetter       = "letter"
	ResourceCode         = "code"
	ResourceRedemption   = "redemption"
	ResourcePoints       = "points"
	ResourcePlan         = "plan"
	ResourceNotification = "notification"
)

// Category constants for audit events.
const (
	CategoryLifecycle    = "lifecycle"
	CategoryGeneration   = "generation"
	CategoryLedger       = "ledger"
	CategoryBilling      = "billing"
	CategoryNotification = "notification"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
