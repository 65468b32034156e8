package service

import "errors"

// Error taxonomy for the ingestion path. Validation errors stop processing
// before any store access; store errors may be retried by the caller.
var (
	// ErrValidation wraps any problem with the inbound request itself.
	ErrValidation = errors.New("validation failed")

	// ErrMissingEvent indicates the request carried no event body.
	ErrMissingEvent = errors.New("event is required")

	// ErrMissingUserID indicates no authenticated user was supplied.
	ErrMissingUserID = errors.New("user id is required")

	// ErrStoreUnavailable wraps a failed read or write against the event or
	// insight store. Retrying the whole call is safe but not idempotent:
	// inserts that already succeeded are not rolled back.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoHistory is returned by the rolling statistics calculator when no
	// events exist to aggregate. Callers must treat it as "rule does not
	// apply", never as a zero value.
	ErrNoHistory = errors.New("no history available")
)

// IsValidation reports whether err belongs to the validation category.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMissingEvent) ||
		errors.Is(err, ErrMissingUserID)
}
