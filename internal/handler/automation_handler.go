package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/response"
	"task-board-core/internal/service"
)

// AutomationHandler serves the automation configuration and manual runs.
type AutomationHandler struct {
	automationService service.AutomationService
	boardService      service.BoardService
	logger            *zap.Logger
}

// NewAutomationHandler creates a new instance of AutomationHandler
func NewAutomationHandler(automationService service.AutomationService, boardService service.BoardService, logger *zap.Logger) *AutomationHandler {
	return &AutomationHandler{automationService: automationService, boardService: boardService, logger: logger}
}

// GetConfig returns the automation document.
func (h *AutomationHandler) GetConfig(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.automationService.Config(c.Request.Context()))
}

// UpdateConfig replaces the automation document.
func (h *AutomationHandler) UpdateConfig(c *gin.Context) {
	var cfg domain.AutomationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.automationService.UpdateConfig(c.Request.Context(), &cfg); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.automationService.Config(c.Request.Context()))
}

// runCardButtonRequest names the card a button press applies to.
type runCardButtonRequest struct {
	ListID uuid.UUID `json:"listId" binding:"required"`
	CardID uuid.UUID `json:"cardId" binding:"required"`
}

// RunCardButton executes a card button against one card.
func (h *AutomationHandler) RunCardButton(c *gin.Context) {
	buttonID, ok := pathUUID(c, "buttonId", "Invalid button ID")
	if !ok {
		return
	}
	var req runCardButtonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	if err := h.automationService.RunCardButton(c.Request.Context(), buttonID, req.ListID, req.CardID); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// RunBoardButton executes a board button against its target list.
func (h *AutomationHandler) RunBoardButton(c *gin.Context) {
	buttonID, ok := pathUUID(c, "buttonId", "Invalid button ID")
	if !ok {
		return
	}

	if err := h.automationService.RunBoardButton(c.Request.Context(), buttonID); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}
