package common

import (
	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
)

// GetMetricsRoute exposes the Prometheus registry on the management group.
func GetMetricsRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/metrics", echo.WrapHandler(s.Metrics.HTTPHandler()))
}
