package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-board-core/internal/dto"
	"task-board-core/internal/response"
	"task-board-core/internal/service"
)

// VisibilityHandler serves filter evaluation and drop-index mapping.
type VisibilityHandler struct {
	boardService service.BoardService
	logger       *zap.Logger
}

// NewVisibilityHandler creates a new instance of VisibilityHandler
func NewVisibilityHandler(boardService service.BoardService, logger *zap.Logger) *VisibilityHandler {
	return &VisibilityHandler{boardService: boardService, logger: logger}
}

// Visibility computes per-card visibility for the current board under the
// supplied filter.
func (h *VisibilityHandler) Visibility(c *gin.Context) {
	var req dto.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	response.SendSuccess(c, http.StatusOK, h.boardService.Visibility(c.Request.Context(), &req))
}

// DropIndex maps a drop position among visible cards to the full insertion
// index for one list.
func (h *VisibilityHandler) DropIndex(c *gin.Context) {
	listID, ok := pathUUID(c, "listId", "Invalid list ID")
	if !ok {
		return
	}
	var req dto.DropIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	resp, err := h.boardService.DropIndex(c.Request.Context(), listID, &req)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}
