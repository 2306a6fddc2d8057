package service

import (
	"context"

	"github.com/google/uuid"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
	"task-board-core/internal/response"
)

// ApplyAction executes one automation action against one card by re-entering
// the regular mutation methods with the automated origin. Unlike the plain
// mutation API, dangling references come back as errors here so the
// automation engine can skip and count them.
func (s *boardServiceImpl) ApplyAction(ctx context.Context, listID, cardID uuid.UUID, action domain.Action, origin domain.Origin) error {
	if err := action.Validate(); err != nil {
		return response.NewAppError(response.ErrCodeValidation, "Invalid automation action", err.Error())
	}

	// The card may have moved since the triggering event; locate it fresh.
	s.mu.Lock()
	owner, _, index, ok := s.store.FindCardByID(cardID)
	s.mu.Unlock()
	if !ok {
		return response.NewAppError(response.ErrCodeNotFound, "Card no longer exists", "")
	}

	switch action.Type {
	case domain.ActionMoveToList:
		s.mu.Lock()
		target, targetOK := s.store.FindList(action.ListID)
		var destIndex int
		if targetOK {
			destIndex = len(target.Cards)
		}
		s.mu.Unlock()
		if !targetOK {
			return response.NewAppError(response.ErrCodeNotFound, "Target list no longer exists", "")
		}
		return s.MoveCard(ctx, &dto.MoveCardRequest{
			SourceListID: owner.ID,
			SourceIndex:  index,
			DestListID:   action.ListID,
			DestIndex:    destIndex,
		}, origin)

	case domain.ActionSetDueComplete:
		completed := action.Completed
		return s.UpdateCard(ctx, owner.ID, cardID, &dto.UpdateCardRequest{DueComplete: &completed}, origin)

	case domain.ActionAddChecklist:
		return s.AddChecklist(ctx, owner.ID, cardID, &dto.AddChecklistRequest{Title: action.Title}, origin)

	case domain.ActionPostComment:
		return s.PostComment(ctx, owner.ID, cardID, &dto.PostCommentRequest{Text: action.Text}, origin)

	case domain.ActionAddMember:
		if !s.knownMember(action.MemberID) {
			return response.NewAppError(response.ErrCodeNotFound, "Member no longer exists", "")
		}
		return s.UpdateCard(ctx, owner.ID, cardID, &dto.UpdateCardRequest{AddMembers: []uuid.UUID{action.MemberID}}, origin)

	case domain.ActionAddLabel:
		return s.UpdateCard(ctx, owner.ID, cardID, &dto.UpdateCardRequest{AddLabels: []uuid.UUID{action.LabelID}}, origin)

	default:
		return response.NewAppError(response.ErrCodeValidation, "Unknown automation action", string(action.Type))
	}
}

// CardIDsOfList returns the ids of the cards currently in the list, in board
// order. Scheduled commands and board buttons resolve their card set through
// this just before executing.
func (s *boardServiceImpl) CardIDsOfList(listID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.store.FindList(listID)
	if !ok {
		return nil, response.NewAppError(response.ErrCodeNotFound, "Target list no longer exists", "")
	}
	ids := make([]uuid.UUID, len(list.Cards))
	for i, card := range list.Cards {
		ids[i] = card.ID
	}
	return ids, nil
}

func (s *boardServiceImpl) knownMember(memberID uuid.UUID) bool {
	for _, m := range s.members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}
