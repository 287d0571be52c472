package selection

import (
	"github.com/gin-gonic/gin"
)

// SetupSelectionRoutes registers ticket picking. The handoff to checkout,
// POST /selections/:selectionId/checkout, is registered by the checkout module.
func SetupSelectionRoutes(router *gin.RouterGroup, controller Controller) {
	router.POST("/events/:eventId/selections", controller.StartSelection) // POST /api/v1/events/:eventId/selections

	selections := router.Group("/selections")
	{
		selections.GET("/:selectionId", controller.GetSelection)                                // GET /api/v1/selections/:selectionId
		selections.DELETE("/:selectionId", controller.DiscardSelection)                         // DELETE /api/v1/selections/:selectionId
		selections.PUT("/:selectionId/categories/:categoryId", controller.SetQuantity)          // PUT /api/v1/selections/:selectionId/categories/:categoryId
		selections.POST("/:selectionId/categories/:categoryId/increment", controller.Increment) // POST .../increment
	}
}
