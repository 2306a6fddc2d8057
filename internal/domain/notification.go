package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes why a notification was produced.
type NotificationType string

const (
	NotificationCardUpdated      NotificationType = "CARD_UPDATED"
	NotificationCardMoved        NotificationType = "CARD_MOVED"
	NotificationCommentMentioned NotificationType = "COMMENT_MENTIONED"
	NotificationAddedToCard      NotificationType = "ADDED_TO_CARD"
)

// Notification is derived by the watch subsystem from card diffs. Entries
// are only ever mutated to flip Read; retention is an external concern.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Text      string           `json:"text"`
	CardID    uuid.UUID        `json:"cardId"`
	ListID    uuid.UUID        `json:"listId"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// Member is a known board member, used for mention matching and filters.
type Member struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
