package transaction

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/util"
)

func GetTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transactions.GET("/:hash", getTransactionHandler(s))
}

func getTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}

		tx, err := s.Relay.GetTransaction(ctx, projectID, c.Param("hash"))
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Msg("Failed to get transaction")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newTransactionResponse(tx))
	}
}
