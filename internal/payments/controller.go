package payments

import (
	"net/http"

	"tikiti/internal/shared/utils/response"
	"tikiti/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CallbackRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=completed failed"`
	Reason    string `json:"reason" binding:"max=500"`
}

type CallbackResponse struct {
	Delivered bool `json:"delivered"`
}

type Controller interface {
	Callback(c *gin.Context)
}

type controller struct {
	hub *Settlements
	log *logger.Logger
}

func NewController(hub *Settlements, log *logger.Logger) Controller {
	return &controller{hub: hub, log: log}
}

// Callback godoc
// @Summary      Payment provider callback
// @Description  Settles a pending payment. Delivered is false when no attempt was waiting yet or the reference is not the acknowledged one.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body  CallbackRequest  true  "Settlement"
// @Success      200  {object}  response.StandardApiResponse{data=CallbackResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /payments/callback [post]
func (ctrl *controller) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid callback payload", nil, err.Error())
		return
	}

	ctrl.log.LogPaymentCallback(c.Request.Context(), req.OrderID, req.Reference, req.Status)
	delivered := ctrl.hub.Resolve(Settlement{
		OrderID:   req.OrderID,
		Reference: req.Reference,
		Status:    SettlementStatus(req.Status),
		Reason:    req.Reason,
	})

	response.RespondJSON(c, "success", http.StatusOK, "Callback accepted", CallbackResponse{Delivered: delivered}, nil)
}

func SetupPaymentRoutes(router *gin.RouterGroup, controller Controller) {
	payments := router.Group("/payments")
	{
		payments.POST("/callback", controller.Callback) // POST /api/v1/payments/callback - Provider settlement
	}
}
