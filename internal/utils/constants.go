package utils

const (
	StatusSuccess = "success"
	StatusError   = "error"

	DefaultTimeZone = "UTC"
)

// API error messages
const (
	ErrInternalServer   = "An internal server error occurred"
	ErrUnauthorized     = "Authentication required"
	ErrForbidden        = "You do not have permission to perform this action"
	ErrValidationFailed = "Validation failed"
)

// Entitlement denial reasons surfaced to the calling UI.
const (
	ReasonNoActiveSubscription = "No active subscription. Please subscribe to a plan to add resources."
	ReasonDriverLimitReached   = "Driver limit reached for your current plan. Please upgrade to add more drivers."
	ReasonVehicleLimitReached  = "Vehicle limit reached for your current plan. Please upgrade to add more vehicles."
)
