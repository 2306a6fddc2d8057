package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-board-core/internal/response"
)

// handleServiceError maps a service error to an HTTP status by its code.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case response.ErrCodeNotFound:
			status = http.StatusNotFound
		case response.ErrCodeValidation:
			status = http.StatusBadRequest
		case response.ErrCodeAlreadyExists:
			status = http.StatusConflict
		}
		response.SendError(c, status, appErr.Code, appErr.Message)
		return
	}

	logger.Error("Unhandled service error", zap.Error(err), zap.String("path", c.Request.URL.Path))
	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}
