package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
	"task-board-core/internal/metrics"
	"task-board-core/internal/response"
)

// NotificationService derives watch notifications from before/after card
// diffs. In this single-user model only notifications addressed to the
// acting (configured) user ever materialize; the diff logic runs over the
// full subscriber set so widening it later is contained to the emit check.
type NotificationService interface {
	CardUpdated(before, after *domain.Card, listID uuid.UUID)
	CardMoved(card *domain.Card, fromTitle, toTitle string, listID uuid.UUID)
	CommentPosted(card *domain.Card, comment domain.Comment, listID uuid.UUID)
	Feed(ctx context.Context) []*dto.NotificationResponse
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	UnreadCount() int
}

type notificationServiceImpl struct {
	mu          sync.Mutex
	feed        []*domain.Notification
	currentUser uuid.UUID
	members     []domain.Member
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewNotificationService creates a new instance of NotificationService
func NewNotificationService(currentUser uuid.UUID, members []domain.Member, m *metrics.Metrics, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{
		feed:        []*domain.Notification{},
		currentUser: currentUser,
		members:     members,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// CardUpdated diffs the watched fields (description, due timestamp, due
// completion) and emits one notification per subscriber equal to the acting
// user. It also emits membership notifications when the members set gained
// the acting user.
func (s *notificationServiceImpl) CardUpdated(before, after *domain.Card, listID uuid.UUID) {
	changed := watchedFieldChanges(before, after)
	if len(changed) > 0 {
		text := "Card \"" + after.Title + "\" changed: " + strings.Join(changed, ", ")
		for _, subscriber := range after.Subscribers {
			if subscriber != s.currentUser {
				continue
			}
			s.emit(domain.NotificationCardUpdated, text, after.ID, listID)
		}
	}

	for _, member := range after.Members {
		if member != s.currentUser || domain.InSet(before.Members, member) {
			continue
		}
		s.emit(domain.NotificationAddedToCard, "You were added to card \""+after.Title+"\"", after.ID, listID)
	}
}

// CardMoved notifies subscribers equal to the acting user about a
// cross-list move.
func (s *notificationServiceImpl) CardMoved(card *domain.Card, fromTitle, toTitle string, listID uuid.UUID) {
	for _, subscriber := range card.Subscribers {
		if subscriber != s.currentUser {
			continue
		}
		text := "Card \"" + card.Title + "\" moved from " + fromTitle + " to " + toTitle
		s.emit(domain.NotificationCardMoved, text, card.ID, listID)
	}
}

// CommentPosted scans the comment text for @name mention tokens against the
// known member directory and emits a mention notification when the
// mentioned member is the acting user.
func (s *notificationServiceImpl) CommentPosted(card *domain.Card, comment domain.Comment, listID uuid.UUID) {
	for _, name := range mentionTokens(comment.Text) {
		member, ok := s.memberByName(name)
		if !ok {
			continue
		}
		if member.ID != s.currentUser {
			continue
		}
		text := "You were mentioned on card \"" + card.Title + "\""
		s.emit(domain.NotificationCommentMentioned, text, card.ID, listID)
	}
}

// Feed returns the notification feed, newest first.
func (s *notificationServiceImpl) Feed(ctx context.Context) []*dto.NotificationResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	responses := make([]*dto.NotificationResponse, len(s.feed))
	for i, n := range s.feed {
		responses[i] = &dto.NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Text:      n.Text,
			CardID:    n.CardID,
			ListID:    n.ListID,
			Timestamp: n.Timestamp,
			Read:      n.Read,
		}
	}
	return responses
}

// MarkRead flips the read flag of one notification. Flipping is the only
// mutation a notification ever sees.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.feed {
		if n.ID == notificationID {
			n.Read = true
			return nil
		}
	}
	return response.NewAppError(response.ErrCodeNotFound, "Notification not found", "")
}

// UnreadCount returns the number of unread notifications.
func (s *notificationServiceImpl) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.feed {
		if !n.Read {
			count++
		}
	}
	return count
}

func (s *notificationServiceImpl) emit(kind domain.NotificationType, text string, cardID, listID uuid.UUID) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		Type:      kind,
		Text:      text,
		CardID:    cardID,
		ListID:    listID,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.feed = append([]*domain.Notification{notification}, s.feed...)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IncrementNotification(string(kind))
	}
	s.logger.Debug("Notification emitted",
		zap.String("type", string(kind)),
		zap.String("card_id", cardID.String()),
	)
}

func (s *notificationServiceImpl) memberByName(name string) (domain.Member, bool) {
	for _, m := range s.members {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return domain.Member{}, false
}

// watchedFieldChanges lists the watched fields that differ between the two
// card states.
func watchedFieldChanges(before, after *domain.Card) []string {
	var changed []string
	if before.Description != after.Description {
		changed = append(changed, "description")
	}
	if !equalTimePtr(before.Due.Timestamp, after.Due.Timestamp) {
		changed = append(changed, "due date")
	}
	if before.Due.Completed != after.Due.Completed {
		if after.Due.Completed {
			changed = append(changed, "due date completed")
		} else {
			changed = append(changed, "due date reopened")
		}
	}
	return changed
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// mentionTokens extracts candidate member names from @name tokens in a
// comment. Trailing punctuation is stripped so "@ana," still matches.
func mentionTokens(text string) []string {
	var names []string
	for _, token := range strings.Fields(text) {
		if !strings.HasPrefix(token, "@") || len(token) < 2 {
			continue
		}
		name := strings.TrimRight(token[1:], ".,;:!?")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
