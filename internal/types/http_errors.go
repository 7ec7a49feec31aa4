package types

// PublicHTTPError is the wire form of all error responses.
type PublicHTTPError struct {
	Code   *int64  `json:"status"`
	Type   *string `json:"type"`
	Title  *string `json:"title"`
	Detail string  `json:"detail,omitempty"`
}

// PublicHTTPValidationError extends PublicHTTPError with per-field details.
type PublicHTTPValidationError struct {
	PublicHTTPError
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}

// HTTPValidationErrorDetail names one invalid request field.
type HTTPValidationErrorDetail struct {
	Key   *string `json:"key"`
	In    *string `json:"in"`
	Error *string `json:"error"`
}

// Well-known public error types.
const (
	PublicHTTPErrorTypeGeneric          = "generic"
	PublicHTTPErrorTypeChainUnsupported = "CHAIN_UNSUPPORTED"
	PublicHTTPErrorTypeSponsorship      = "SPONSORSHIP_REJECTED"
	PublicHTTPErrorTypeUpstream         = "UPSTREAM_UNAVAILABLE"
	PublicHTTPErrorTypeRecordLost       = "SUBMITTED_RECORD_LOST"
)
