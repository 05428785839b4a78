package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"carrinex/internal/common"
	"carrinex/internal/models"
	"carrinex/internal/services"
)

// SessionCookieName is the cookie fallback for browser page navigation;
// API clients send the token as a bearer header.
const SessionCookieName = "session_token"

// ExtractToken pulls the raw session token from the Authorization header
// or the session cookie. Empty string means signed out.
func ExtractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != authHeader {
			return token
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionLoader builds the lazy session decoder handed to the gateway.
func SessionLoader(c echo.Context, authSvc services.AuthService) func() *models.SessionClaims {
	return func() *models.SessionClaims {
		token := ExtractToken(c)
		if token == "" {
			return nil
		}
		claims, err := authSvc.ParseSession(token)
		if err != nil {
			return nil
		}
		return claims
	}
}

// RequireSession guards API routes: a valid session token is mandatory
// and the subject id plus authority set land in the request context.
func RequireSession(authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, err := authSvc.ParseSession(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.AuthorityKey, claims.Authority)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireAuthority gates an API route on the session authority set.
// Mount after RequireSession.
func RequireAuthority(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authority, ok := common.GetAuthorityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			claims := models.SessionClaims{Authority: authority}
			if !claims.HasAuthority(required) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
