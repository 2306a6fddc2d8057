package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/metrics"
	"task-board-core/internal/repository"
)

// PersistService writes sanitized board snapshots in the background. Writes
// are latest-wins: if mutations outrun the writer, intermediate snapshots
// are dropped and only the newest one is stored, which is correct because
// every snapshot is complete.
type PersistService interface {
	SnapshotPersister
	Failed() bool
	Close()
}

type persistServiceImpl struct {
	repo    repository.SnapshotRepository
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu      sync.Mutex
	latest  *repository.BoardDocument
	failed  bool
	warned  bool
	closed  bool
	kick    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// NewPersistService starts the background writer goroutine.
func NewPersistService(repo repository.SnapshotRepository, m *metrics.Metrics, logger *zap.Logger) *persistServiceImpl {
	s := &persistServiceImpl{
		repo:    repo,
		metrics: m,
		logger:  logger,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// Enqueue replaces the pending snapshot. Never blocks the mutation path.
func (s *persistServiceImpl) Enqueue(doc *repository.BoardDocument) {
	s.mu.Lock()
	if s.failed || s.closed {
		s.mu.Unlock()
		return
	}
	s.latest = doc
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Failed reports whether persistence has been abandoned for this session.
// The in-memory board keeps working; only durability is lost.
func (s *persistServiceImpl) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Close stops the writer after flushing any pending snapshot.
func (s *persistServiceImpl) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.stopped
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	<-s.stopped
}

func (s *persistServiceImpl) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.kick:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

// flush writes the pending snapshot if there is one.
func (s *persistServiceImpl) flush() {
	s.mu.Lock()
	doc := s.latest
	s.latest = nil
	failed := s.failed
	s.mu.Unlock()

	if doc == nil || failed {
		return
	}
	s.write(doc)
}

// write stores the sanitized document. On failure it warns once, clears the
// stored document to free the core's own storage, and retries exactly once;
// a failed retry abandons persistence for the rest of the session.
func (s *persistServiceImpl) write(doc *repository.BoardDocument) {
	sanitized := SanitizeDocument(doc)

	start := time.Now()
	err := s.repo.SaveBoard(sanitized)
	if s.metrics != nil {
		s.metrics.RecordPersist(time.Since(start), err)
	}
	if err == nil {
		return
	}

	s.mu.Lock()
	alreadyWarned := s.warned
	s.warned = true
	s.mu.Unlock()
	if !alreadyWarned {
		s.logger.Warn("Snapshot write failed, clearing stored document and retrying once", zap.Error(err))
	}

	if clearErr := s.repo.ClearBoard(); clearErr != nil {
		s.logger.Warn("Failed to clear stored document", zap.Error(clearErr))
	}

	start = time.Now()
	retryErr := s.repo.SaveBoard(sanitized)
	if s.metrics != nil {
		s.metrics.RecordPersist(time.Since(start), retryErr)
	}
	if retryErr == nil {
		return
	}

	s.mu.Lock()
	s.failed = true
	s.latest = nil
	s.mu.Unlock()
	s.logger.Error("Snapshot retry failed, persistence abandoned for this session", zap.Error(retryErr))
}

// SanitizeDocument deep-copies the document and strips binary payloads:
// file attachment payload references on cards, checklist items and comments,
// and the image reference of uploaded covers. Link attachments and external
// cover references survive intact.
func SanitizeDocument(doc *repository.BoardDocument) *repository.BoardDocument {
	lists := domain.CloneLists(doc.Lists)
	for _, list := range lists {
		for _, card := range list.Cards {
			sanitizeAttachments(card.Attachments)
			for i := range card.Checklists {
				for j := range card.Checklists[i].Items {
					sanitizeAttachments(card.Checklists[i].Items[j].Attachments)
				}
			}
			for i := range card.Comments {
				sanitizeAttachments(card.Comments[i].Attachments)
			}
			if card.Cover.Uploaded {
				card.Cover.ImageRef = ""
			}
		}
	}
	return &repository.BoardDocument{Lists: lists, NextShortID: doc.NextShortID}
}

func sanitizeAttachments(attachments []domain.Attachment) {
	for i := range attachments {
		attachments[i] = attachments[i].Sanitized()
	}
}

// Rehydrate turns a loaded document into a usable board tree. A nil document
// (first launch or cleared storage) yields an empty board. Collections are
// back-filled to their empty defaults, cards without a shortId get synthetic
// ones, and the counter resumes past the highest id seen so monotonicity
// holds across restarts.
func Rehydrate(doc *repository.BoardDocument) ([]*domain.List, int64) {
	if doc == nil {
		return []*domain.List{}, 1
	}

	lists := doc.Lists
	if lists == nil {
		lists = []*domain.List{}
	}

	var maxShortID int64
	for _, list := range lists {
		if list.Cards == nil {
			list.Cards = []*domain.Card{}
		}
		for _, card := range list.Cards {
			backfillCard(card)
			if card.ShortID > maxShortID {
				maxShortID = card.ShortID
			}
		}
	}
	for _, list := range lists {
		for _, card := range list.Cards {
			if card.ShortID <= 0 {
				maxShortID++
				card.ShortID = maxShortID
			}
		}
	}

	next := maxShortID + 1
	if doc.NextShortID > next {
		next = doc.NextShortID
	}
	return lists, next
}

func backfillCard(card *domain.Card) {
	if card.Labels == nil {
		card.Labels = []uuid.UUID{}
	}
	if card.Members == nil {
		card.Members = []uuid.UUID{}
	}
	if card.Checklists == nil {
		card.Checklists = []domain.Checklist{}
	}
	for i := range card.Checklists {
		if card.Checklists[i].Items == nil {
			card.Checklists[i].Items = []domain.ChecklistItem{}
		}
		for j := range card.Checklists[i].Items {
			if card.Checklists[i].Items[j].Attachments == nil {
				card.Checklists[i].Items[j].Attachments = []domain.Attachment{}
			}
		}
	}
	if card.Attachments == nil {
		card.Attachments = []domain.Attachment{}
	}
	if card.Subscribers == nil {
		card.Subscribers = []uuid.UUID{}
	}
	if card.CustomFields == nil {
		card.CustomFields = map[string]interface{}{}
	}
	if card.LinkedCards == nil {
		card.LinkedCards = []uuid.UUID{}
	}
	if card.Comments == nil {
		card.Comments = []domain.Comment{}
	}
	for i := range card.Comments {
		if card.Comments[i].Attachments == nil {
			card.Comments[i].Attachments = []domain.Attachment{}
		}
	}
	if card.Activity == nil {
		card.Activity = []domain.ActivityEntry{}
	}
}
