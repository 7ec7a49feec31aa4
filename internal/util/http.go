package util

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api/httperrors"
	"github/smartkit/relay/internal/types"
)

// BindAndValidateBody binds the request body into v, mapping bind failures
// onto a public validation error.
func BindAndValidateBody(c echo.Context, v interface{}) error {
	binder, ok := c.Echo().Binder.(*echo.DefaultBinder)
	if !ok {
		return echo.ErrInternalServerError
	}

	if err := binder.BindBody(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind request body")
		return httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			"Malformed request body",
			nil,
		)
	}

	return nil
}

// ValidateAndReturn writes v as the JSON response with the given status.
func ValidateAndReturn(c echo.Context, status int, v interface{}) error {
	return c.JSON(status, v)
}
