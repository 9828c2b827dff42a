package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/pkg/logger"
)

// envelope is the uniform response body. Success responses carry data,
// failures carry a message and, for validation, a field error map.
type envelope struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	if verr, ok := apperrors.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: "validation failed",
			Errors:  verr.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = "authentication required"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusForbidden
		message = "insufficient permissions"
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		logger.FromContext(c.Request.Context()).Error("Unhandled request error",
			zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, envelope{Success: false, Message: message})
}

// bindJSON decodes the request body, converting malformed JSON into a 400.
func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body"})
		return false
	}
	return true
}
