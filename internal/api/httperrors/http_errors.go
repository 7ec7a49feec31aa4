package httperrors

import (
	"fmt"
	"net/http"

	"github.com/go-openapi/swag"

	"github/smartkit/relay/internal/types"
)

// HTTPError wraps the public error payload and implements error so handlers
// can return it directly. The echo error handler serializes it.
type HTTPError struct {
	types.PublicHTTPError
	Internal       error
	AdditionalData map[string]interface{}
}

// NewHTTPError creates an HTTPError with the given public fields.
func NewHTTPError(code int, errorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  swag.Int64(int64(code)),
			Type:  swag.String(errorType),
			Title: swag.String(title),
		},
	}
}

// NewHTTPErrorWithDetail creates an HTTPError carrying an extra public detail
// string and an internal error for logging.
func NewHTTPErrorWithDetail(code int, errorType, title, detail string, internal error) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:   swag.Int64(int64(code)),
			Type:   swag.String(errorType),
			Title:  swag.String(title),
			Detail: detail,
		},
		Internal: internal,
	}
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %d (%s): %s, %v", *e.Code, *e.Type, *e.Title, e.Internal)
	}
	return fmt.Sprintf("HTTPError %d (%s): %s", *e.Code, *e.Type, *e.Title)
}

// HTTPValidationError extends HTTPError with per-field validation details.
type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal error
}

// NewHTTPValidationError creates an HTTPValidationError with the given public
// fields and details.
func NewHTTPValidationError(code int, errorType, title string, validationErrors []*types.HTTPValidationErrorDetail) *HTTPValidationError {
	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError: types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  swag.String(errorType),
				Title: swag.String(title),
			},
			ValidationErrors: validationErrors,
		},
	}
}

func (e *HTTPValidationError) Error() string {
	return fmt.Sprintf("HTTPValidationError %d (%s): %s (%d fields)", *e.Code, *e.Type, *e.Title, len(e.ValidationErrors))
}

var (
	ErrNotFoundWallet      = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeGeneric, "Wallet not found.")
	ErrNotFoundTransaction = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeGeneric, "Transaction not found.")
	ErrUnauthorizedAPIKey  = NewHTTPError(http.StatusUnauthorized, types.PublicHTTPErrorTypeGeneric, "Missing or invalid API key.")
	ErrBadRequestChain     = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeChainUnsupported, "Chain is not supported.")
)
