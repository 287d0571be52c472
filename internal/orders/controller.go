package orders

import (
	"net/http"

	"tikiti/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetOrder(c *gin.Context)
}

type controller struct {
	recorder Recorder
}

func NewController(recorder Recorder) Controller {
	return &controller{recorder: recorder}
}

// GetOrder godoc
// @Summary      Get an order
// @Description  Read-back of a submitted order for the confirmation page
// @Tags         orders
// @Produce      json
// @Param        orderId  path  string  true  "Order ID"
// @Success      200  {object}  response.StandardApiResponse{data=Order}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /orders/{orderId} [get]
func (ctrl *controller) GetOrder(c *gin.Context) {
	order, err := ctrl.recorder.GetByID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Order retrieved successfully", order, nil)
}

func SetupOrderRoutes(router *gin.RouterGroup, controller Controller) {
	router.GET("/orders/:orderId", controller.GetOrder) // GET /api/v1/orders/:orderId
}
