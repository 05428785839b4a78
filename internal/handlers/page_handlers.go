package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"carrinex/internal/routes"
)

// PageResponse is the minimal page payload: the gateway has already made
// the access decision by the time this handler runs, so it only serves
// the route's display metadata.
type PageResponse struct {
	Path        string `json:"path"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PageHandler serves display metadata for every enumerated page route.
func PageHandler(table *routes.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		if path == routes.OnboardingPath {
			return c.JSON(http.StatusOK, PageResponse{
				Path:  path,
				Key:   "onboarding",
				Title: "Willkommen bei Carrinex",
			})
		}

		rule, ok := table.PageRule(path)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "Page not found")
		}
		return c.JSON(http.StatusOK, PageResponse{
			Path:        path,
			Key:         rule.Key,
			Title:       rule.Meta.Title,
			Description: rule.Meta.Description,
		})
	}
}
