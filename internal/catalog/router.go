package catalog

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse the catalog
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)      // GET /api/v1/events - Browse all events
		publicEvents.GET("/:eventId", controller.GetEvent) // GET /api/v1/events/:eventId - Get event details
	}
}
