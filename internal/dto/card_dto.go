package dto

import (
	"time"

	"github.com/google/uuid"

	"task-board-core/internal/domain"
)

// CreateCardRequest appends a card to a list.
type CreateCardRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

// UpdateCardRequest merges fields into a card. All fields are optional;
// nil means "leave unchanged". Set fields deduplicate on apply.
type UpdateCardRequest struct {
	Title         *string                `json:"title,omitempty"`
	Description   *string                `json:"description,omitempty"`
	Location      *string                `json:"location,omitempty"`
	DueTimestamp  *time.Time             `json:"dueTimestamp,omitempty"`
	ClearDue      bool                   `json:"clearDue,omitempty"`
	DueComplete   *bool                  `json:"dueComplete,omitempty"`
	StartDate     *time.Time             `json:"startDate,omitempty"`
	ClearStart    bool                   `json:"clearStart,omitempty"`
	AddLabels     []uuid.UUID            `json:"addLabels,omitempty"`
	RemoveLabels  []uuid.UUID            `json:"removeLabels,omitempty"`
	AddMembers    []uuid.UUID            `json:"addMembers,omitempty"`
	RemoveMembers []uuid.UUID            `json:"removeMembers,omitempty"`
	Subscribe     *bool                  `json:"subscribe,omitempty"`
	Cover         *CoverPayload          `json:"cover,omitempty"`
	CustomFields  map[string]interface{} `json:"customFields,omitempty"`
	LinkCards     []uuid.UUID            `json:"linkCards,omitempty"`
	UnlinkCards   []uuid.UUID            `json:"unlinkCards,omitempty"`
}

// CoverPayload replaces the card cover wholesale.
type CoverPayload struct {
	Color    string `json:"color,omitempty"`
	ImageRef string `json:"imageRef,omitempty"`
	Size     string `json:"size,omitempty"`
	Uploaded bool   `json:"uploaded,omitempty"`
}

// MoveCardRequest moves the card at SourceIndex of the source list to
// DestIndex of the destination list.
type MoveCardRequest struct {
	SourceListID uuid.UUID `json:"sourceListId" binding:"required"`
	SourceIndex  int       `json:"sourceIndex"`
	DestListID   uuid.UUID `json:"destListId" binding:"required"`
	DestIndex    int       `json:"destIndex"`
}

// PostCommentRequest prepends a comment to a card.
type PostCommentRequest struct {
	Text        string              `json:"text" binding:"required,min=1"`
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
}

// AddChecklistRequest adds an empty checklist to a card.
type AddChecklistRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

// SetChecklistItemRequest adds or updates a checklist item. A nil ItemID
// adds a new item; otherwise the identified item is patched.
type SetChecklistItemRequest struct {
	ItemID    *uuid.UUID `json:"itemId,omitempty"`
	Text      *string    `json:"text,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// AttachmentPayload is an already-encoded attachment record supplied by the
// file collaborator; the core never inspects PayloadRef.
type AttachmentPayload struct {
	Name       string                `json:"name" binding:"required"`
	Kind       domain.AttachmentKind `json:"kind" binding:"required,oneof=file link"`
	PayloadRef string                `json:"payloadRef,omitempty"`
	PreviewRef string                `json:"previewRef,omitempty"`
}

// CardResponse mirrors the stored card for the rendering layer.
type CardResponse struct {
	ID           uuid.UUID              `json:"cardId"`
	ShortID      int64                  `json:"shortId"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Labels       []uuid.UUID            `json:"labels"`
	Members      []uuid.UUID            `json:"members"`
	Due          domain.DueDate         `json:"due"`
	DueStatus    domain.DueStatus       `json:"dueStatus"`
	StartDate    *time.Time             `json:"startDate,omitempty"`
	Location     string                 `json:"location"`
	Checklists   []domain.Checklist     `json:"checklists"`
	Attachments  []domain.Attachment    `json:"attachments"`
	Cover        domain.Cover           `json:"cover"`
	Subscribers  []uuid.UUID            `json:"subscribers"`
	CustomFields map[string]interface{} `json:"customFields"`
	LinkedCards  []uuid.UUID            `json:"linkedCards"`
	Comments     []domain.Comment       `json:"comments"`
	Activity     []domain.ActivityEntry `json:"activity"`
}
