package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/phonebook/internal/handler"
)

// registerSystemRoutes registers endpoints that are not part of the phonebook itself.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, metrics http.Handler) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(metrics))

	// openapi.json and openapi.html
	r.Static("/static", handler.DocsDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
