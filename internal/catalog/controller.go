package catalog

import (
	"net/http"

	"tikiti/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetAllEvents(c *gin.Context)
	GetEvent(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetAllEvents godoc
// @Summary      List events
// @Description  Every event with its ticket categories, ordered by date ascending
// @Tags         events
// @Produce      json
// @Success      200  {object}  response.StandardApiResponse{data=[]EventResponse}
// @Router       /events [get]
func (ctrl *controller) GetAllEvents(c *gin.Context) {
	events, err := ctrl.service.ListEvents(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, events[i].ToResponse())
	}
	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", out, nil)
}

// GetEvent godoc
// @Summary      Get event
// @Tags         events
// @Produce      json
// @Param        eventId  path  string  true  "Event ID"
// @Success      200  {object}  response.StandardApiResponse{data=EventResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /events/{eventId} [get]
func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event.ToResponse(), nil)
}
