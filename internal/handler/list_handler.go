package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-board-core/internal/dto"
	"task-board-core/internal/response"
	"task-board-core/internal/service"
)

// ListHandler serves the board snapshot and list mutations.
type ListHandler struct {
	boardService service.BoardService
	logger       *zap.Logger
}

// NewListHandler creates a new instance of ListHandler
func NewListHandler(boardService service.BoardService, logger *zap.Logger) *ListHandler {
	return &ListHandler{boardService: boardService, logger: logger}
}

// GetBoard returns the full board snapshot.
func (h *ListHandler) GetBoard(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// CreateList creates a new list at the end of the board.
func (h *ListHandler) CreateList(c *gin.Context) {
	var req dto.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	list, err := h.boardService.CreateList(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusCreated, list)
}

// RenameList retitles a list. Unknown lists are a no-op; the caller still
// receives the current board.
func (h *ListHandler) RenameList(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("listId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid list ID")
		return
	}
	var req dto.RenameListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.boardService.RenameList(c.Request.Context(), listID, &req); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}

// DeleteList removes a list and all of its cards.
func (h *ListHandler) DeleteList(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("listId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid list ID")
		return
	}

	if err := h.boardService.DeleteList(c.Request.Context(), listID); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, h.boardService.Board(c.Request.Context()))
}
