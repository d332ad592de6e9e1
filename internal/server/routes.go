package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/server/api"
	"github.com/looplj/ecagate/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Validation *api.ValidationHandlers
	System     *api.SystemHandlers
}

func SetupRoutes(server *Server, handlers Handlers) {
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithMetrics())

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	base := server.Group(server.Config.BasePath, middleware.WithTimeout(server.Config.RequestTimeout))
	{
		base.GET("/health", handlers.System.Health)
		base.GET("/build-info", handlers.System.BuildInfo)
		base.POST("/eca", handlers.Validation.Validate)
	}

	adminGroup := base.Group("/admin", middleware.WithAdminToken(server.Config.AdminToken))
	{
		adminGroup.POST("/cache/refresh", handlers.System.RefreshCaches)
	}
}
