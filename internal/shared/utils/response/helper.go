package response

import (
	"net/http"

	"tikiti/internal/shared/apperr"
	"tikiti/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a domain error onto the standard envelope. Validation
// errors carry the offending field and code so the client can re-prompt.
func RespondError(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	if ve, ok := apperr.IsValidation(err); ok {
		RespondJSON(c, "error", code, "Validation failed", nil, []FieldError{{Field: ve.Field, Code: string(ve.Code)}})
		return
	}
	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.GetDefault().WithRequestID(c.GetString("request_id")).LogHTTPError(c, err, code)
		message = "Internal server error"
	}
	RespondJSON(c, "error", code, message, nil, nil)
}
