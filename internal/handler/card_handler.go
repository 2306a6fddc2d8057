package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
	"task-board-core/internal/response"
	"task-board-core/internal/service"
)

// CardHandler serves card mutations. All requests arriving over HTTP carry
// the user origin; automated origins only ever enter through the automation
// engine in-process.
type CardHandler struct {
	boardService service.BoardService
	logger       *zap.Logger
}

// NewCardHandler creates a new instance of CardHandler
func NewCardHandler(boardService service.BoardService, logger *zap.Logger) *CardHandler {
	return &CardHandler{boardService: boardService, logger: logger}
}

// CreateCard appends a card to a list.
func (h *CardHandler) CreateCard(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	card, err := h.boardService.CreateCard(c.Request.Context(), listID, &req)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusCreated, card)
}

// UpdateCard merges the supplied fields into a card.
func (h *CardHandler) UpdateCard(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "Invalid card ID")
	if !ok {
		return
	}
	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.UpdateCard(c.Request.Context(), listID, cardID, &req, domain.OriginUser); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// MoveCard moves a card between positions, possibly across lists.
func (h *CardHandler) MoveCard(c *gin.Context) {
	var req dto.MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.MoveCard(c.Request.Context(), &req, domain.OriginUser); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// DeleteCard removes a card permanently.
func (h *CardHandler) DeleteCard(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "Invalid card ID")
	if !ok {
		return
	}

	if err := h.boardService.DeleteCard(c.Request.Context(), listID, cardID); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// PostComment prepends a comment to a card.
func (h *CardHandler) PostComment(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "Invalid card ID")
	if !ok {
		return
	}
	var req dto.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.PostComment(c.Request.Context(), listID, cardID, &req, domain.OriginUser); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// AddChecklist appends an empty checklist to a card.
func (h *CardHandler) AddChecklist(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "Invalid card ID")
	if !ok {
		return
	}
	var req dto.AddChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.AddChecklist(c.Request.Context(), listID, cardID, &req, domain.OriginUser); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// SetChecklistItem adds or patches one checklist item.
func (h *CardHandler) SetChecklistItem(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "Invalid card ID")
	if !ok {
		return
	}
	checklistID, ok := pathUUID(c, "checklistId", "Invalid checklist ID")
	if !ok {
		return
	}
	var req dto.SetChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.SetChecklistItem(c.Request.Context(), listID, cardID, checklistID, &req); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// AddAttachment records an encoded attachment on a card.
func (h *CardHandler) AddAttachment(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "Invalid card ID")
	if !ok {
		return
	}
	var req dto.AttachmentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.AddAttachment(c.Request.Context(), listID, cardID, &req); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// pathUUID parses one path parameter, writing the validation error itself.
func pathUUID(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, message)
		return uuid.Nil, false
	}
	return id, true
}
