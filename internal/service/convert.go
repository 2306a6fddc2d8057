package service

import (
	"time"

	"github.com/google/uuid"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
)

// Converters from stored domain state to rendering DTOs. All inputs are
// clones, so the DTOs may reference their collections directly.

func toBoardResponse(lists []*domain.List, nextShortID int64, now time.Time) *dto.BoardResponse {
	out := make([]dto.ListResponse, len(lists))
	for i, list := range lists {
		out[i] = *toListResponse(list, now)
	}
	return &dto.BoardResponse{Lists: out, NextShortID: nextShortID, GeneratedAt: now}
}

func toListResponse(list *domain.List, now time.Time) *dto.ListResponse {
	cards := make([]dto.CardResponse, len(list.Cards))
	for i, card := range list.Cards {
		cards[i] = *toCardResponse(card, now)
	}
	return &dto.ListResponse{ID: list.ID, Title: list.Title, Cards: cards}
}

func toCardResponse(card *domain.Card, now time.Time) *dto.CardResponse {
	return &dto.CardResponse{
		ID:           card.ID,
		ShortID:      card.ShortID,
		Title:        card.Title,
		Description:  card.Description,
		Labels:       card.Labels,
		Members:      card.Members,
		Due:          card.Due,
		DueStatus:    card.Due.Status(now),
		StartDate:    card.StartDate,
		Location:     card.Location,
		Checklists:   card.Checklists,
		Attachments:  card.Attachments,
		Cover:        card.Cover,
		Subscribers:  card.Subscribers,
		CustomFields: card.CustomFields,
		LinkedCards:  card.LinkedCards,
		Comments:     card.Comments,
		Activity:     card.Activity,
	}
}

func toAttachment(payload dto.AttachmentPayload, now time.Time) domain.Attachment {
	return domain.Attachment{
		ID:         uuid.New(),
		Name:       payload.Name,
		Timestamp:  now,
		Kind:       payload.Kind,
		PayloadRef: payload.PayloadRef,
		PreviewRef: payload.PreviewRef,
	}
}

func toAttachments(payloads []dto.AttachmentPayload, now time.Time) []domain.Attachment {
	out := make([]domain.Attachment, len(payloads))
	for i, p := range payloads {
		out[i] = toAttachment(p, now)
	}
	return out
}
