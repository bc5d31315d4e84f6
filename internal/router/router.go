package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tagsy/tagsy-backend/config"
	"github.com/tagsy/tagsy-backend/internal/app/controller"
	"github.com/tagsy/tagsy-backend/internal/middleware"
	"github.com/tagsy/tagsy-backend/internal/websocket"
)

type Router struct {
	tagController         *controller.TagController
	eventController       *controller.EventController
	maintenanceController *controller.MaintenanceController
	hub                   *websocket.Hub
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	tagController *controller.TagController,
	eventController *controller.EventController,
	maintenanceController *controller.MaintenanceController,
	hub *websocket.Hub,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		tagController:         tagController,
		eventController:       eventController,
		maintenanceController: maintenanceController,
		hub:                   hub,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Tagsy engine is running",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	{
		servers := v1.Group("/servers/:server_id")
		{
			servers.GET("/tags", r.tagController.ListTags)
			servers.POST("/tags", r.tagController.AddTag)
			servers.POST("/tags/commit", r.tagController.CommitTag)
			servers.GET("/tags/:tag", r.tagController.GetTag)
			servers.PUT("/tags/:tag", r.tagController.UpdateTag)
			servers.DELETE("/tags/:tag", r.tagController.RemoveTag)
			servers.POST("/tags/:tag/reset", r.tagController.ResetTag)
		}

		events := v1.Group("/events")
		{
			events.POST("/message", r.eventController.HandleMessage)
		}

		maintenance := v1.Group("/maintenance")
		maintenance.Use(r.authMiddleware.RequireOwner())
		{
			maintenance.GET("/export", r.maintenanceController.Export)
			maintenance.POST("/export/archive", r.maintenanceController.Archive)
		}
	}

	// Gateway shards hold a long-lived event stream here.
	router.GET("/ws", r.authMiddleware.Authenticate(), websocket.ServeWS(r.hub))

	return router
}
