package apierror

// Error type URIs following the urn:circadia:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:circadia:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:circadia:error:not_found"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:circadia:error:unauthorized"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:circadia:error:internal"

	// TypeStoreUnavailable indicates an event/insight store read or write
	// failed; the whole ingestion call may be retried (503)
	TypeStoreUnavailable = "urn:circadia:error:store_unavailable"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:circadia:error:bad_request"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation       = "Validation Error"
	TitleNotFound         = "Resource Not Found"
	TitleUnauthorized     = "Authentication Required"
	TitleInternal         = "Internal Server Error"
	TitleStoreUnavailable = "Store Unavailable"
	TitleBadRequest       = "Bad Request"
)
