package router

import (
	"time"

	"github.com/contactbook/api/config"
	"github.com/contactbook/api/internal/handler"
	"github.com/contactbook/api/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	contactHandler *handler.ContactHandler
	healthHandler  *handler.HealthHandler

	authMw *middleware.AuthMiddleware
	Config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	contact *handler.ContactHandler,
	health *handler.HealthHandler,
	authMw *middleware.AuthMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		userHandler:    user,
		contactHandler: contact,
		healthHandler:  health,
		authMw:         authMw,
		Config:         config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second))

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.contactRoutes(v1)
		}
	}

	return router
}
