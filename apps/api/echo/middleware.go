package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const contextTokenKey = "token"

// bearerTokenMiddleware stores the `Authorization: Bearer` token, if any, for the handlers.
// Rejecting a missing or invalid token is left to the access gate.
func bearerTokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			ctx.Set(contextTokenKey, strings.TrimSpace(token))
		}
		return next(ctx)
	}
}

func token(ctx echo.Context) string {
	tok, _ := ctx.Get(contextTokenKey).(string)
	return tok
}
