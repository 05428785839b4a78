package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"carrinex/internal/gateway"
	"carrinex/internal/services"
)

// Gateway applies the access gateway's pass/redirect decision to every
// request before any handler runs.
func Gateway(g *gateway.Gateway, authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			decision := g.Decide(req.URL.Path, req.URL.RawQuery, SessionLoader(c, authSvc))
			if decision.Pass {
				return next(c)
			}

			target := decision.Target
			if decision.PreserveQuery && req.URL.RawQuery != "" {
				target += "?" + req.URL.RawQuery
			}
			return c.Redirect(http.StatusFound, target)
		}
	}
}
