package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/api/handlers"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/util"
)

// Init builds the echo instance, its middleware chain, and the route groups,
// then attaches all routes.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.Logger.SetOutput(&echoLogAdapter{})

	s.Echo.HTTPErrorHandler = HTTPErrorHandlerWithConfig(s)

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(middleware.Recover())
	}
	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(middleware.RequestID())
	}
	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(requestLogger())
	}
	if s.Config.Echo.EnableCORSMiddleware {
		s.Echo.Use(middleware.CORS())
	}

	s.Router = &api.Router{
		Routes: nil, // filled by handlers.AttachAllRoutes

		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),

		APIV1Wallets: s.Echo.Group("/api/v1/wallets",
			auth.APIKeyMiddleware(s.Store, s.Config.Relay.APIKeySecret)),
		APIV1Transactions: s.Echo.Group("/api/v1/transactions",
			auth.APIKeyMiddleware(s.Store, s.Config.Relay.APIKeySecret)),
		APIV1Project: s.Echo.Group("/api/v1",
			auth.APIKeyMiddleware(s.Store, s.Config.Relay.APIKeySecret)),
	}

	handlers.AttachAllRoutes(s)
}

// requestLogger injects a request-scoped logger into the request context and
// writes one line per completed request.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			l := log.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()

			c.SetRequest(req.WithContext(util.WithLogger(req.Context(), l)))

			err := next(c)

			l.Debug().Int("status", c.Response().Status).Msg("Request handled")

			return err
		}
	}
}

// echoLogAdapter routes echo's own log output through zerolog.
type echoLogAdapter struct{}

func (a *echoLogAdapter) Write(p []byte) (int, error) {
	log.Debug().Msg(string(p))
	return len(p), nil
}
