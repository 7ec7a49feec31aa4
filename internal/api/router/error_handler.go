package router

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/api/httperrors"
	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/types"
	"github/smartkit/relay/internal/util"
)

// HTTPErrorHandlerWithConfig maps every error the handlers and the pipeline
// can return onto a public error payload.
func HTTPErrorHandlerWithConfig(s *api.Server) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		log := util.LogFromEchoContext(c)

		var (
			code    int
			payload interface{}
		)

		var httpErr *httperrors.HTTPError
		var validationErr *httperrors.HTTPValidationError
		var echoErr *echo.HTTPError
		var relayValidation *relay.ValidationError
		var sponsorship *relay.SponsorshipError
		var persistence *relay.PersistenceError
		var upstream *relay.UpstreamError

		switch {
		case errors.As(err, &httpErr):
			code = int(swag.Int64Value(httpErr.Code))
			payload = httpErr.PublicHTTPError

		case errors.As(err, &validationErr):
			code = int(swag.Int64Value(validationErr.Code))
			payload = validationErr.PublicHTTPValidationError

		case errors.As(err, &relayValidation):
			code = http.StatusBadRequest
			payload = types.PublicHTTPValidationError{
				PublicHTTPError: types.PublicHTTPError{
					Code:  swag.Int64(http.StatusBadRequest),
					Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
					Title: swag.String("Request validation failed"),
				},
				ValidationErrors: []*types.HTTPValidationErrorDetail{
					{
						Key:   swag.String(relayValidation.Field),
						In:    swag.String("body"),
						Error: swag.String(relayValidation.Reason),
					},
				},
			}

		case errors.Is(err, relay.ErrWalletNotFound):
			code = http.StatusNotFound
			payload = httperrors.ErrNotFoundWallet.PublicHTTPError

		case errors.Is(err, relay.ErrTransactionNotFound):
			code = http.StatusNotFound
			payload = httperrors.ErrNotFoundTransaction.PublicHTTPError

		case errors.Is(err, relay.ErrChainNotSupported):
			code = http.StatusBadRequest
			payload = httperrors.ErrBadRequestChain.PublicHTTPError

		case errors.As(err, &sponsorship):
			log.Warn().Err(err).Msg("Paymaster rejected sponsorship")
			code = http.StatusBadGateway
			payload = types.PublicHTTPError{
				Code:  swag.Int64(http.StatusBadGateway),
				Type:  swag.String(types.PublicHTTPErrorTypeSponsorship),
				Title: swag.String("Gas sponsorship was rejected. Retry without sponsorship or review the sponsorship policy."),
			}

		case errors.As(err, &persistence):
			// The operation is on its way to chain but has no local record.
			log.Error().Err(err).Str("op_hash", persistence.OpHash).Msg("Submitted operation lost its record")
			code = http.StatusInternalServerError
			payload = types.PublicHTTPError{
				Code:   swag.Int64(http.StatusInternalServerError),
				Type:   swag.String(types.PublicHTTPErrorTypeRecordLost),
				Title:  swag.String("Operation was submitted but could not be recorded."),
				Detail: persistence.OpHash,
			}

		case errors.As(err, &upstream):
			log.Warn().Err(err).Str("service", upstream.Service).Msg("Upstream request failed")
			code = http.StatusBadGateway
			payload = types.PublicHTTPError{
				Code:  swag.Int64(http.StatusBadGateway),
				Type:  swag.String(types.PublicHTTPErrorTypeUpstream),
				Title: swag.String("An upstream service is unavailable."),
			}

		case errors.As(err, &echoErr):
			code = echoErr.Code
			title, ok := echoErr.Message.(string)
			if !ok {
				title = http.StatusText(echoErr.Code)
			}
			payload = types.PublicHTTPError{
				Code:  swag.Int64(int64(echoErr.Code)),
				Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
				Title: swag.String(title),
			}

		default:
			log.Error().Err(err).Msg("Unhandled error")
			code = http.StatusInternalServerError
			payload = types.PublicHTTPError{
				Code:  swag.Int64(http.StatusInternalServerError),
				Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
				Title: swag.String(http.StatusText(http.StatusInternalServerError)),
			}
		}

		if writeErr := c.JSON(code, payload); writeErr != nil {
			log.Error().Err(writeErr).Msg("Failed to write error response")
		}
	}
}
