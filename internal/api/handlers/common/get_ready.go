package common

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/util"
)

const statusNotReady = 521

// GetReadyRoute is the readiness probe. Ready means all components are wired
// and the database answers a ping.
func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(statusNotReady, "Not ready.")
		}

		ctx := c.Request().Context()
		if err := s.DB.PingContext(ctx); err != nil {
			util.LogFromContext(ctx).Warn().Err(err).Msg("Database ping failed during readiness check")
			return c.String(statusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
