package checkout

import (
	"net/http"

	"tikiti/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	StartCheckout(c *gin.Context)
	GetCheckout(c *gin.Context)
	UpdateBilling(c *gin.Context)
	ValidateCheckout(c *gin.Context)
	SubmitCheckout(c *gin.Context)
	CancelCheckout(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// StartCheckout godoc
// @Summary      Hand a selection off to checkout
// @Description  Freezes the selected quantities and prices. The selection stays editable.
// @Tags         checkouts
// @Produce      json
// @Param        selectionId  path  string  true  "Selection ID"
// @Success      201  {object}  response.StandardApiResponse{data=CheckoutResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Failure      422  {object}  response.StandardApiResponse
// @Router       /selections/{selectionId}/checkout [post]
func (ctrl *controller) StartCheckout(c *gin.Context) {
	checkout, err := ctrl.service.OpenFromSelection(c.Request.Context(), c.Param("selectionId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Checkout started", checkout, nil)
}

// GetCheckout godoc
// @Summary      Get a checkout with its order summary and status
// @Tags         checkouts
// @Produce      json
// @Param        checkoutId  path  string  true  "Checkout ID"
// @Success      200  {object}  response.StandardApiResponse{data=CheckoutResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /checkouts/{checkoutId} [get]
func (ctrl *controller) GetCheckout(c *gin.Context) {
	checkout, err := ctrl.service.Get(c.Request.Context(), c.Param("checkoutId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Checkout retrieved successfully", checkout, nil)
}

// UpdateBilling godoc
// @Summary      Update billing details
// @Description  Only the fields present in the body change
// @Tags         checkouts
// @Accept       json
// @Produce      json
// @Param        checkoutId  path  string                true  "Checkout ID"
// @Param        body        body  BillingUpdateRequest  true  "Billing fields"
// @Success      200  {object}  response.StandardApiResponse{data=CheckoutResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /checkouts/{checkoutId}/billing [patch]
func (ctrl *controller) UpdateBilling(c *gin.Context) {
	var req BillingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	checkout, err := ctrl.service.UpdateBilling(c.Request.Context(), c.Param("checkoutId"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Billing details updated", checkout, nil)
}

// ValidateCheckout godoc
// @Summary      Validate billing details without submitting
// @Tags         checkouts
// @Produce      json
// @Param        checkoutId  path  string  true  "Checkout ID"
// @Success      200  {object}  response.StandardApiResponse{data=CheckoutResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Failure      422  {object}  response.StandardApiResponse{errors=[]response.FieldError}
// @Router       /checkouts/{checkoutId}/validate [post]
func (ctrl *controller) ValidateCheckout(c *gin.Context) {
	checkout, err := ctrl.service.Validate(c.Request.Context(), c.Param("checkoutId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Billing details are valid", checkout, nil)
}

// SubmitCheckout godoc
// @Summary      Submit the order
// @Description  Starts payment in the background. Poll the checkout for the outcome. A submit while one is processing is dropped.
// @Tags         checkouts
// @Produce      json
// @Param        checkoutId  path  string  true  "Checkout ID"
// @Success      202  {object}  response.StandardApiResponse{data=SubmitResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Failure      422  {object}  response.StandardApiResponse{errors=[]response.FieldError}
// @Router       /checkouts/{checkoutId}/submit [post]
func (ctrl *controller) SubmitCheckout(c *gin.Context) {
	result, err := ctrl.service.Submit(c.Request.Context(), c.Param("checkoutId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	message := "Order submitted"
	if !result.Accepted {
		message = "Order is already processing"
	}
	response.RespondJSON(c, "success", http.StatusAccepted, message, result, nil)
}

// CancelCheckout godoc
// @Summary      Abandon a checkout
// @Description  Discards the checkout and any payment attempt in flight
// @Tags         checkouts
// @Param        checkoutId  path  string  true  "Checkout ID"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /checkouts/{checkoutId} [delete]
func (ctrl *controller) CancelCheckout(c *gin.Context) {
	if err := ctrl.service.Cancel(c.Request.Context(), c.Param("checkoutId")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Checkout cancelled", nil, nil)
}
