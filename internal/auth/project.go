package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api/httperrors"
	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/util"
)

type contextKey int

const projectIDKey contextKey = iota

// APIKeyHeader carries the project API key on every authenticated request.
const APIKeyHeader = "X-API-Key"

// HashAPIKey digests a raw project API key with the server secret. Only the
// digest is ever stored or compared, never the raw key.
func HashAPIKey(secret, apiKey string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(apiKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// ProjectFromContext returns the authenticated project id, or empty if the
// request was not authenticated.
func ProjectFromContext(ctx context.Context) string {
	id, _ := ctx.Value(projectIDKey).(string)
	return id
}

// WithProject returns a context carrying the given project id, for tests and
// background work acting on behalf of a project.
func WithProject(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectIDKey, projectID)
}

// APIKeyMiddleware authenticates requests by project API key. The key comes
// from the X-API-Key header or an Authorization bearer token.
func APIKeyMiddleware(store relay.Store, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				authorization := c.Request().Header.Get(echo.HeaderAuthorization)
				apiKey = strings.TrimPrefix(authorization, "Bearer ")
			}
			if apiKey == "" {
				return httperrors.ErrUnauthorizedAPIKey
			}

			ctx := c.Request().Context()

			projectID, err := store.ResolveAPIKey(ctx, HashAPIKey(secret, apiKey))
			if err != nil {
				util.LogFromContext(ctx).Debug().Err(err).Msg("API key resolution failed")
				return httperrors.ErrUnauthorizedAPIKey
			}

			c.SetRequest(c.Request().WithContext(WithProject(ctx, projectID)))

			return next(c)
		}
	}
}
