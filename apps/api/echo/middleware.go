package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
)

// sessionMiddleware resolves the session of every request.
// Missing, invalid or expired tokens resolve to a fresh LoggedOut session.
func sessionMiddleware(conf *core.Config, svc *dashboard.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var id string
			if raw := requestToken(ctx); raw != "" {
				if claims, err := parseToken(conf, raw); err == nil {
					id = claims.Subject
				}
			}
			s, err := svc.Session(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(contextSessionKey, s)
			return next(ctx)
		}
	}
}

// loginRequired redirects anonymous browsers back to the login page.
func loginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getContextSession(ctx).IsAuthenticated() {
			return ctx.Redirect(http.StatusSeeOther, "/")
		}
		return next(ctx)
	}
}

// authRequired rejects anonymous API calls.
func authRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getContextSession(ctx).IsAuthenticated() {
			return errUnauthorized
		}
		return next(ctx)
	}
}

// bodyLimit formats n bytes for middleware.BodyLimit.
func bodyLimit(n int64) string {
	return strconv.FormatInt(n, 10)
}
