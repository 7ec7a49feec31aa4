package project

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/util"
)

func GetStatsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Project.GET("/stats", getStatsHandler(s))
}

func getStatsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		projectID := auth.ProjectFromContext(ctx)
		if projectID == "" {
			return echo.ErrUnauthorized
		}

		stats, err := s.Relay.GetStats(ctx, projectID)
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Msg("Failed to get project stats")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, newStatsResponse(stats))
	}
}
