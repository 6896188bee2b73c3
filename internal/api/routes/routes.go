// Package routes defines the HTTP routes for the chat gateway.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vahan-ai/chat-gateway/internal/api/handlers"
	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	ChatHandler      *handlers.ChatHandler
	SessionHandler   *handlers.SessionHandler
	DocumentsHandler *handlers.DocumentsHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	// Health check routes (no auth required)
	r.GET("/health", cfg.HealthHandler.Health)
	r.GET("/ready", cfg.HealthHandler.Ready)
	r.GET("/live", cfg.HealthHandler.Live)

	// API documentation
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", cfg.AuthHandler.Signup)
			auth.POST("/login", cfg.AuthHandler.Login)
		}

		// The chat socket authorizes on the open connection rather than
		// through the HTTP middleware.
		v1.GET("/chat", cfg.ChatHandler.Chat)

		protected := v1.Group("")
		protected.Use(cfg.AuthMiddleware.Authenticate())
		{
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
			protected.GET("/session_id", cfg.SessionHandler.NewSession)

			protected.POST("/documents", cfg.DocumentsHandler.Upload)
			protected.GET("/documents", cfg.DocumentsHandler.List)

			protected.GET("/metrics", cfg.MetricsHandler.Summary)
			protected.GET("/metrics/sessions/:sessionId", cfg.MetricsHandler.Session)
			protected.GET("/metrics/series/:name", cfg.MetricsHandler.Series)
		}
	}

	r.NoRoute(middleware.NotFound())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware, corsCfg middleware.CORSConfig) {
	r.Use(middleware.NewCORSMiddleware(corsCfg))
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	Setup(r, cfg)
}
