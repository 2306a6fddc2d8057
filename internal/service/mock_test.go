package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
	"task-board-core/internal/repository"
)

// Polling bounds for tests that wait on the background writer.
const (
	testWaitLong = 2 * time.Second
	testWaitTick = 5 * time.Millisecond
)

// Hand-written mocks shared across the service tests.

type cardUpdatedCall struct {
	before *domain.Card
	after  *domain.Card
	listID uuid.UUID
}

type cardMovedCall struct {
	card      *domain.Card
	fromTitle string
	toTitle   string
	listID    uuid.UUID
}

type commentPostedCall struct {
	card    *domain.Card
	comment domain.Comment
	listID  uuid.UUID
}

type mockNotifier struct {
	updated  []cardUpdatedCall
	moved    []cardMovedCall
	comments []commentPostedCall
}

func (m *mockNotifier) CardUpdated(before, after *domain.Card, listID uuid.UUID) {
	m.updated = append(m.updated, cardUpdatedCall{before: before, after: after, listID: listID})
}

func (m *mockNotifier) CardMoved(card *domain.Card, fromTitle, toTitle string, listID uuid.UUID) {
	m.moved = append(m.moved, cardMovedCall{card: card, fromTitle: fromTitle, toTitle: toTitle, listID: listID})
}

func (m *mockNotifier) CommentPosted(card *domain.Card, comment domain.Comment, listID uuid.UUID) {
	m.comments = append(m.comments, commentPostedCall{card: card, comment: comment, listID: listID})
}

func (m *mockNotifier) Feed(ctx context.Context) []*dto.NotificationResponse { return nil }

func (m *mockNotifier) MarkRead(ctx context.Context, notificationID uuid.UUID) error { return nil }

func (m *mockNotifier) UnreadCount() int { return 0 }

type dispatchedEvent struct {
	event  domain.Trigger
	listID uuid.UUID
	cardID uuid.UUID
}

type mockDispatcher struct {
	events []dispatchedEvent
}

func (m *mockDispatcher) Dispatch(ctx context.Context, event domain.Trigger, listID, cardID uuid.UUID) {
	m.events = append(m.events, dispatchedEvent{event: event, listID: listID, cardID: cardID})
}

type mockBroadcaster struct {
	snapshots []*dto.BoardResponse
}

func (m *mockBroadcaster) BroadcastSnapshot(board *dto.BoardResponse) {
	m.snapshots = append(m.snapshots, board)
}

type mockPersister struct {
	docs []*repository.BoardDocument
}

func (m *mockPersister) Enqueue(doc *repository.BoardDocument) {
	m.docs = append(m.docs, doc)
}

// mockSnapshotRepo implements repository.SnapshotRepository with optional
// overrides and call recording. The mutex matters for the persist service
// tests, where the background writer races the assertions.
type mockSnapshotRepo struct {
	mu sync.Mutex

	SaveBoardFunc func(doc *repository.BoardDocument) error

	savedBoards      []*repository.BoardDocument
	saveAttempts     int
	clearCalls       int
	savedAutomations []*domain.AutomationConfig
}

func (m *mockSnapshotRepo) SaveBoard(doc *repository.BoardDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveAttempts++
	if m.SaveBoardFunc != nil {
		if err := m.SaveBoardFunc(doc); err != nil {
			return err
		}
	}
	m.savedBoards = append(m.savedBoards, doc)
	return nil
}

func (m *mockSnapshotRepo) LoadBoard() (*repository.BoardDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.savedBoards) == 0 {
		return nil, nil
	}
	return m.savedBoards[len(m.savedBoards)-1], nil
}

func (m *mockSnapshotRepo) ClearBoard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	m.savedBoards = nil
	return nil
}

func (m *mockSnapshotRepo) SaveAutomation(cfg *domain.AutomationConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedAutomations = append(m.savedAutomations, cfg)
	return nil
}

func (m *mockSnapshotRepo) LoadAutomation() (*domain.AutomationConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.savedAutomations) == 0 {
		cfg := &domain.AutomationConfig{}
		cfg.Normalize()
		return cfg, nil
	}
	return m.savedAutomations[len(m.savedAutomations)-1], nil
}

func (m *mockSnapshotRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.savedBoards)
}

func (m *mockSnapshotRepo) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveAttempts
}

func (m *mockSnapshotRepo) lastSaved() *repository.BoardDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.savedBoards) == 0 {
		return nil
	}
	return m.savedBoards[len(m.savedBoards)-1]
}

func (m *mockSnapshotRepo) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCalls
}
