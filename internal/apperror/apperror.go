// Package apperror defines the failure taxonomy shared by every ledger
// operation. Each failure is a sentinel compared with errors.Is.
package apperror

import "errors"

// Kind groups failures by the condition that triggered them.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindUnauthorized   Kind = "unauthorized"
	KindValidation     Kind = "validation"
	KindState          Kind = "state"
	KindResource       Kind = "resource"
	KindInfrastructure Kind = "infrastructure"
)

// Error is a typed failure carrying only its code and kind.
type Error struct {
	Code string
	Kind Kind
}

func (e *Error) Error() string { return e.Code }

// New declares a sentinel failure.
func New(kind Kind, code string) *Error {
	return &Error{Code: code, Kind: kind}
}

var (
	ErrPageNotFound          = New(KindNotFound, "page_not_found")
	ErrProductNotFound       = New(KindNotFound, "product_not_found")
	ErrPaymentIntentNotFound = New(KindNotFound, "payment_intent_not_found")
	ErrTransactionNotFound   = New(KindNotFound, "transaction_not_found")
	ErrMilestoneNotFound     = New(KindNotFound, "milestone_not_found")

	ErrNotPageOwner = New(KindUnauthorized, "not_page_owner")

	ErrInvalidHandle     = New(KindValidation, "invalid_handle")
	ErrInvalidRole       = New(KindValidation, "invalid_role")
	ErrInvalidAmount     = New(KindValidation, "invalid_amount")
	ErrInvalidExpiration = New(KindValidation, "invalid_expiration")

	ErrPageNotActive          = New(KindState, "page_not_active")
	ErrProductNotActive       = New(KindState, "product_not_active")
	ErrCampaignNotActive      = New(KindState, "campaign_not_active")
	ErrPaymentIntentInactive  = New(KindState, "payment_intent_inactive")
	ErrPaymentIntentExpired   = New(KindState, "payment_intent_expired")
	ErrPaymentIntentMaxUsages = New(KindState, "payment_intent_max_usages")
	ErrHandleAlreadyTaken     = New(KindState, "handle_already_taken")

	ErrInsufficientFunds = New(KindResource, "insufficient_funds")
	ErrTransferFailed    = New(KindResource, "transfer_failed")

	// ErrPlatformNotInitialized means the store was opened without running
	// platform initialization.
	ErrPlatformNotInitialized = New(KindInfrastructure, "platform_not_initialized")
)

// KindOf classifies err. Errors outside the taxonomy report
// KindInfrastructure and false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindInfrastructure, false
}

// CodeOf returns the failure code of err, or "error" for errors outside the
// taxonomy.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "error"
}
