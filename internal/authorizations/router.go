package authorizations

import (
	"ingrezzi/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAuthorizationRoutes(router *gin.RouterGroup, controller Controller) {
	// Grant management is organizer-only; the service re-checks that the
	// caller owns the specific event.
	grants := router.Group("/organizer/events/:eventId/authorizations")
	grants.Use(middleware.JWTAuth(), middleware.RequireOrganizer())
	{
		grants.POST("", controller.CreateGrant)
		grants.GET("", controller.ListGrants)
	}

	revoke := router.Group("/organizer/authorizations")
	revoke.Use(middleware.JWTAuth(), middleware.RequireOrganizer())
	{
		revoke.DELETE("/:grantId", controller.RevokeGrant)
	}
}
