package common

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
)

// GetHealthyRoute is the liveness probe. It only proves the process can
// answer HTTP, nothing about its dependencies.
func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

func getHealthyHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "OK.")
	}
}
