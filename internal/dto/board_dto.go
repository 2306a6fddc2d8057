package dto

import (
	"time"

	"github.com/google/uuid"

	"task-board-core/internal/domain"
)

// CreateListRequest creates a new list appended at the end of the board.
type CreateListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

// RenameListRequest renames an existing list.
type RenameListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

// ListResponse is a list with its cards in board order.
type ListResponse struct {
	ID    uuid.UUID      `json:"listId"`
	Title string         `json:"title"`
	Cards []CardResponse `json:"cards"`
}

// BoardResponse is the full board snapshot handed to the rendering layer
// after every mutation.
type BoardResponse struct {
	Lists       []ListResponse `json:"lists"`
	NextShortID int64          `json:"nextShortId"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// VisibilityRequest asks for per-card visibility under a filter.
type VisibilityRequest struct {
	Filter domain.FilterCriteria `json:"filter"`
}

// VisibilityResponse maps card id to its visibility under the filter.
type VisibilityResponse struct {
	Visibility map[uuid.UUID]bool `json:"visibility"`
	ComputedAt time.Time          `json:"computedAt"`
}

// DropIndexRequest maps a drop position among visible cards to an insertion
// index in the full card sequence of a list.
type DropIndexRequest struct {
	Filter domain.FilterCriteria `json:"filter"`
	// VisibleIndex is the position of the first visible card below the
	// pointer among the currently visible cards; -1 means none qualified.
	VisibleIndex int `json:"visibleIndex"`
}

// DropIndexResponse carries the insertion index among all cards of the list.
type DropIndexResponse struct {
	Index int `json:"index"`
}

// NotificationResponse is one entry of the notification feed.
type NotificationResponse struct {
	ID        uuid.UUID `json:"notificationId"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	CardID    uuid.UUID `json:"cardId"`
	ListID    uuid.UUID `json:"listId"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
