package transaction

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/util"
)

func GetTransactionListRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transactions.GET("", getTransactionListHandler(s))
}

func getTransactionListHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}

		txs, err := s.Relay.ListTransactions(ctx, projectID, c.QueryParam("wallet"))
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Msg("Failed to list transactions")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newTransactionListResponse(txs))
	}
}
