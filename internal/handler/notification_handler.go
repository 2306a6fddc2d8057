package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-board-core/internal/response"
	"task-board-core/internal/service"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new instance of NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// GetFeed returns the notification feed, newest first.
func (h *NotificationHandler) GetFeed(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.notificationService.Feed(c.Request.Context()))
}

// GetUnreadCount returns the number of unread notifications.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, gin.H{"unread": h.notificationService.UnreadCount()})
}

// MarkRead flips the read flag of one notification.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := pathUUID(c, "notificationId", "Invalid notification ID")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, gin.H{"read": true})
}
