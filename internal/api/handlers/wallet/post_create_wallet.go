package wallet

import (
	"net/http"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/api/httperrors"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/types"
	"github/smartkit/relay/internal/util"
)

func PostCreateWalletRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallets.POST("", postCreateWalletHandler(s))
}

func postCreateWalletHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}
		log := util.LogFromContext(ctx)

		var body types.PostCreateWalletPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if strings.TrimSpace(body.UserIDValue()) == "" {
			return httperrors.NewHTTPValidationError(
				http.StatusBadRequest,
				types.PublicHTTPErrorTypeGeneric,
				"userId is required",
				[]*types.HTTPValidationErrorDetail{
					{
						Key:   swag.String("userId"),
						In:    swag.String("body"),
						Error: swag.String("required"),
					},
				},
			)
		}

		wallet, err := s.Relay.CreateWallet(ctx, projectID, body.UserIDValue())
		if err != nil {
			log.Debug().Err(err).Msg("Failed to create wallet")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newWalletResponse(wallet))
	}
}
