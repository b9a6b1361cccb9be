package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scoutlabs/venturescout-backend/internal/handlers"
	"github.com/scoutlabs/venturescout-backend/internal/middleware"
	"github.com/scoutlabs/venturescout-backend/internal/platform/envutil"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	ChatHandler    *handlers.ChatHandler
	SessionHandler *handlers.SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := strings.Split(envutil.String("CORS_ALLOW_ORIGINS", "http://localhost:3000"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Chat works anonymously; identity only unlocks persistence.
		api.POST("/chat", cfg.AuthMiddleware.OptionalAuth(), cfg.ChatHandler.Chat)

		sessions := api.Group("/sessions")
		sessions.Use(cfg.AuthMiddleware.RequireAuth())
		{
			sessions.POST("", cfg.SessionHandler.Create)
			sessions.GET("", cfg.SessionHandler.List)
			sessions.GET("/:id", cfg.SessionHandler.Get)
			sessions.POST("/:id/select", cfg.SessionHandler.Select)
		}
	}

	return router
}
