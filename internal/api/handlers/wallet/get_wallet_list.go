package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/util"
)

func GetWalletListRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallets.GET("", getWalletListHandler(s))
}

func getWalletListHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}

		wallets, err := s.Relay.ListWallets(ctx, projectID)
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Msg("Failed to list wallets")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newWalletListResponse(wallets))
	}
}
