package transaction

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/types"
	"github/smartkit/relay/internal/util"
)

func PostSendTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transactions.POST("/send", postSendTransactionHandler(s))
}

func postSendTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}
		log := util.LogFromContext(ctx)

		var body types.PostSendTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tx, err := s.Relay.SendTransaction(ctx, projectID, toSendRequest(&body))
		if err != nil {
			log.Debug().Err(err).Msg("Failed to send transaction")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newTransactionResponse(tx))
	}
}
