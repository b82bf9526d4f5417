package events

import (
	"ingrezzi/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse published events
	publicEvents := router.Group("/events")
	publicEvents.Use(middleware.OptionalAuth())
	{
		publicEvents.GET("", controller.GetAllEvents)
		publicEvents.GET("/upcoming", controller.GetUpcomingEvents)
		publicEvents.GET("/:eventId", controller.GetEvent)
	}

	// Organizer routes - event management requires an organizer account
	organizerEvents := router.Group("/organizer/events")
	organizerEvents.Use(middleware.JWTAuth(), middleware.RequireOrganizer())
	{
		organizerEvents.POST("", controller.CreateEvent)
		organizerEvents.GET("", controller.GetMyEvents)
		organizerEvents.PUT("/:eventId", controller.UpdateEvent)
		organizerEvents.DELETE("/:eventId", controller.DeleteEvent)
	}
}
