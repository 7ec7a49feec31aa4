package util

import (
	"context"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog instance. Unknown levels fall back
// to debug.
func InitLogger(level string, prettyPrintConsole bool) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(parsed)

	log.Logger = log.With().Timestamp().Logger()
	if prettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// LogFromContext returns a request-specific zerolog instance if one was
// attached to the context, falling back to the global logger otherwise.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}
	return l
}

// LogFromEchoContext returns the request-specific zerolog instance of the
// current echo request.
func LogFromEchoContext(c echo.Context) *zerolog.Logger {
	return LogFromContext(c.Request().Context())
}

// WithLogger attaches a logger to the context, retrievable via LogFromContext.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
