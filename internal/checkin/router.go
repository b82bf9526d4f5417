package checkin

import (
	"ingrezzi/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCheckinRoutes(router *gin.RouterGroup, controller Controller) {
	// Any authenticated user may hit the redeem endpoint; per-event access
	// is decided by the authorization resolver inside the engine.
	checkins := router.Group("/checkin")
	checkins.Use(middleware.JWTAuth())
	{
		checkins.POST("/redeem", controller.Redeem)
		checkins.GET("/events/:eventId/recent", controller.RecentCheckins)
	}
}
