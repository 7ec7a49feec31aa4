package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/util"
)

func GetWalletRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallets.GET("/:address", getWalletHandler(s))
}

func getWalletHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}

		wallet, err := s.Relay.GetWallet(ctx, projectID, c.Param("address"))
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Msg("Failed to get wallet")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newWalletResponse(wallet))
	}
}
