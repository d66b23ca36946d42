package letterpress

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("letterpress: not found")
	ErrAlreadyExists = errors.New("letterpress: already exists")
	ErrInvalidInput  = errors.New("letterpress: invalid input")
	ErrUnauthorized  = errors.New("letterpress: unauthorized")
	ErrForbidden     = errors.New("letterpress: forbidden")

	// Letter errors
	ErrLetterNotFound    = errors.New("letterpress: letter not found")
	ErrInvalidTransition = errors.New("letterpress: invalid status transition")
	ErrLetterCompleted   = errors.New("letterpress: letter already completed")
	ErrInvalidStatus     = errors.New("letterpress: unknown letter status")

	// Generation errors
	ErrGeneration        = errors.New("letterpress: draft generation failed")
	ErrGenerationTimeout = errors.New("letterpress: draft generation timed out")
	ErrNoGenerator       = errors.New("letterpress: no generator configured")

	// Discount code errors
	ErrCodeNotFound  = errors.New("letterpress: discount code not found")
	ErrCodeExpired   = errors.New("letterpress: discount code expired")
	ErrCodeExhausted = errors.New("letterpress: discount code redemptions exhausted")
	ErrCodeInactive  = errors.New("letterpress: discount code inactive")
	ErrInvalidAmount = errors.New("letterpress: invalid charge amount")

	// Ledger errors
	ErrLedgerFailed       = errors.New("letterpress: redemption ledger write failed")
	ErrRedemptionConflict = errors.New("letterpress: concurrent redemption conflict")
	ErrTransitionConflict = errors.New("letterpress: concurrent transition conflict")

	// Plan errors
	ErrPlanNotFound = errors.New("letterpress: plan not found")
	ErrPlanArchived = errors.New("letterpress: plan is archived")

	// Subscription errors
	ErrSubscriptionNotFound = errors.New("letterpress: subscription not found")
	ErrNoActiveSubscription = errors.New("letterpress: no active subscription")

	// Store errors
	ErrStoreNotReady   = errors.New("letterpress: store not ready")
	ErrStoreClosed     = errors.New("letterpress: store is closed")
	ErrMigrationFailed = errors.New("letterpress: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("letterpress: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrLetterNotFound) ||
		errors.Is(err, ErrCodeNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound)
}

// IsValidationError returns true if the error is a field validation failure.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsCodeRejected returns true if the error is a discount validation failure
// (invalid, expired, or exhausted code, or a bad charge amount). These are
// surfaced verbatim and never retried.
func IsCodeRejected(err error) bool {
	return errors.Is(err, ErrCodeNotFound) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrCodeExhausted) ||
		errors.Is(err, ErrCodeInactive) ||
		errors.Is(err, ErrInvalidAmount)
}

// IsRetryable returns true if the error is temporary and the operation can
// be retried by the caller without risking duplicate state. Generation
// failures are retryable because the letter is left pinned in its
// pre-generation status with no content persisted.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGeneration) ||
		errors.Is(err, ErrGenerationTimeout) ||
		errors.Is(err, ErrStoreNotReady)
}
