package tickets

import (
	"ingrezzi/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller) {
	// Attendee routes - purchasing and viewing own tickets
	userTickets := router.Group("/tickets")
	userTickets.Use(middleware.JWTAuth())
	{
		userTickets.POST("", controller.IssueTicket)
		userTickets.GET("/my", controller.GetMyTickets)
		userTickets.GET("/:ticketId", controller.GetTicket)
	}

	// Organizer routes - per-event ticket listings and stats
	organizerTickets := router.Group("/organizer/events/:eventId/tickets")
	organizerTickets.Use(middleware.JWTAuth(), middleware.RequireOrganizer())
	{
		organizerTickets.GET("", controller.GetEventTickets)
		organizerTickets.GET("/stats", controller.GetEventTicketStats)
	}
}
