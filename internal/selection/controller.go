package selection

import (
	"net/http"

	"tikiti/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	StartSelection(c *gin.Context)
	GetSelection(c *gin.Context)
	SetQuantity(c *gin.Context)
	Increment(c *gin.Context)
	DiscardSelection(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// StartSelection godoc
// @Summary      Start picking tickets for an event
// @Tags         selections
// @Produce      json
// @Param        eventId  path  string  true  "Event ID"
// @Success      201  {object}  response.StandardApiResponse{data=SelectionResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /events/{eventId}/selections [post]
func (ctrl *controller) StartSelection(c *gin.Context) {
	sel, err := ctrl.service.Start(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Selection started", sel, nil)
}

// GetSelection godoc
// @Summary      Get a selection with line and grand totals
// @Tags         selections
// @Produce      json
// @Param        selectionId  path  string  true  "Selection ID"
// @Success      200  {object}  response.StandardApiResponse{data=SelectionResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /selections/{selectionId} [get]
func (ctrl *controller) GetSelection(c *gin.Context) {
	sel, err := ctrl.service.Get(c.Request.Context(), c.Param("selectionId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Selection retrieved successfully", sel, nil)
}

// SetQuantity godoc
// @Summary      Set the quantity of one category
// @Description  Negative quantities are clamped to zero
// @Tags         selections
// @Accept       json
// @Produce      json
// @Param        selectionId  path  string              true  "Selection ID"
// @Param        categoryId   path  string              true  "Category ID"
// @Param        body         body  SetQuantityRequest  true  "Quantity"
// @Success      200  {object}  response.StandardApiResponse{data=SelectionResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /selections/{selectionId}/categories/{categoryId} [put]
func (ctrl *controller) SetQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	sel, err := ctrl.service.SetQuantity(c.Request.Context(), c.Param("selectionId"), c.Param("categoryId"), *req.Quantity)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Quantity updated", sel, nil)
}

// Increment godoc
// @Summary      Add one ticket of a category
// @Tags         selections
// @Produce      json
// @Param        selectionId  path  string  true  "Selection ID"
// @Param        categoryId   path  string  true  "Category ID"
// @Success      200  {object}  response.StandardApiResponse{data=SelectionResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /selections/{selectionId}/categories/{categoryId}/increment [post]
func (ctrl *controller) Increment(c *gin.Context) {
	sel, err := ctrl.service.Increment(c.Request.Context(), c.Param("selectionId"), c.Param("categoryId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Ticket added", sel, nil)
}

// DiscardSelection godoc
// @Summary      Discard a selection
// @Tags         selections
// @Param        selectionId  path  string  true  "Selection ID"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /selections/{selectionId} [delete]
func (ctrl *controller) DiscardSelection(c *gin.Context) {
	if err := ctrl.service.Discard(c.Request.Context(), c.Param("selectionId")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Selection discarded", nil, nil)
}
