// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/deppfellow/phonebook/internal/middleware"
	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/server"
)

// NewRouter builds the echo instance with every middleware and route.
//
// Order matters: tracing must start the transaction before the context
// enhancer reads its trace ids, and the request logger needs the
// enhanced logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// "/api/persons/" resolves like "/api/persons".
	router.Pre(echoMiddleware.RemoveTrailingSlash())

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Metrics.Middleware(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.BodyDump(),
		middlewares.Global.Recover(),
	)

	// The front-end build is served ahead of the routes and falls through
	// to them when no file matches.
	if s.Config.StaticDirExists() {
		router.Use(echoMiddleware.StaticWithConfig(echoMiddleware.StaticConfig{
			Root: s.Config.Server.StaticDir,
		}))
	}

	registerSystemRoutes(router, h, middlewares.Metrics.Handler())

	api := router.Group("/api")
	registerContactRoutes(api, h)

	router.GET("/info", handler.HandleHTML(
		h.Contact.Handler,
		h.Contact.Info,
		http.StatusOK,
		&model.InfoRequest{},
	))

	return router
}
