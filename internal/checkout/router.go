package checkout

import (
	"github.com/gin-gonic/gin"
)

func SetupCheckoutRoutes(router *gin.RouterGroup, controller Controller) {
	router.POST("/selections/:selectionId/checkout", controller.StartCheckout) // POST /api/v1/selections/:selectionId/checkout

	checkouts := router.Group("/checkouts")
	{
		checkouts.GET("/:checkoutId", controller.GetCheckout)             // GET /api/v1/checkouts/:checkoutId
		checkouts.DELETE("/:checkoutId", controller.CancelCheckout)       // DELETE /api/v1/checkouts/:checkoutId
		checkouts.PATCH("/:checkoutId/billing", controller.UpdateBilling) // PATCH /api/v1/checkouts/:checkoutId/billing
		checkouts.POST("/:checkoutId/validate", controller.ValidateCheckout)
		checkouts.POST("/:checkoutId/submit", controller.SubmitCheckout) // POST /api/v1/checkouts/:checkoutId/submit
	}
}
