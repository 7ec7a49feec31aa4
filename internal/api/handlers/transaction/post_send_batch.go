package transaction

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/types"
	"github/smartkit/relay/internal/util"
)

func PostSendBatchRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transactions.POST("/batch", postSendBatchHandler(s))
}

func postSendBatchHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}
		log := util.LogFromContext(ctx)

		var body types.PostSendBatchPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tx, err := s.Relay.SendBatch(ctx, projectID, toBatchRequest(&body))
		if err != nil {
			log.Debug().Err(err).Msg("Failed to send batch")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newTransactionResponse(tx))
	}
}
