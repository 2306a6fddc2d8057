package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
	"task-board-core/internal/metrics"
	"task-board-core/internal/repository"
	"task-board-core/internal/response"
	"task-board-core/internal/store"
)

// BoardService is the mutation API: the sole writer of board state. Every
// operation is atomic from the caller's perspective, and within one call the
// order is fixed: store update, then notification diff, then automation
// trigger dispatch. Missing lists and cards are silent no-ops; in this
// local, single-user model such calls are a caller bug, not a runtime fault.
type BoardService interface {
	Board(ctx context.Context) *dto.BoardResponse
	CreateList(ctx context.Context, req *dto.CreateListRequest) (*dto.ListResponse, error)
	RenameList(ctx context.Context, listID uuid.UUID, req *dto.RenameListRequest) error
	DeleteList(ctx context.Context, listID uuid.UUID) error
	CreateCard(ctx context.Context, listID uuid.UUID, req *dto.CreateCardRequest) (*dto.CardResponse, error)
	UpdateCard(ctx context.Context, listID, cardID uuid.UUID, req *dto.UpdateCardRequest, origin domain.Origin) error
	MoveCard(ctx context.Context, req *dto.MoveCardRequest, origin domain.Origin) error
	DeleteCard(ctx context.Context, listID, cardID uuid.UUID) error
	PostComment(ctx context.Context, listID, cardID uuid.UUID, req *dto.PostCommentRequest, origin domain.Origin) error
	AddChecklist(ctx context.Context, listID, cardID uuid.UUID, req *dto.AddChecklistRequest, origin domain.Origin) error
	SetChecklistItem(ctx context.Context, listID, cardID, checklistID uuid.UUID, req *dto.SetChecklistItemRequest) error
	AddAttachment(ctx context.Context, listID, cardID uuid.UUID, req *dto.AttachmentPayload) error
	Visibility(ctx context.Context, req *dto.VisibilityRequest) *dto.VisibilityResponse
	DropIndex(ctx context.Context, listID uuid.UUID, req *dto.DropIndexRequest) (*dto.DropIndexResponse, error)
}

// TriggerDispatcher receives trigger events emitted by user-originated
// mutations. Implemented by the automation engine.
type TriggerDispatcher interface {
	Dispatch(ctx context.Context, event domain.Trigger, listID, cardID uuid.UUID)
}

// SnapshotBroadcaster pushes the post-mutation board snapshot to the
// rendering layer.
type SnapshotBroadcaster interface {
	BroadcastSnapshot(board *dto.BoardResponse)
}

// SnapshotPersister receives the sanitizable board document after every
// settled mutation. Writes are fire-and-forget; the mutation never waits.
type SnapshotPersister interface {
	Enqueue(doc *repository.BoardDocument)
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	mu          sync.Mutex
	store       *store.BoardStore
	notifier    NotificationService
	automation  TriggerDispatcher
	persister   SnapshotPersister
	broadcaster SnapshotBroadcaster
	members     []domain.Member
	currentUser uuid.UUID
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(
	boardStore *store.BoardStore,
	notifier NotificationService,
	persister SnapshotPersister,
	broadcaster SnapshotBroadcaster,
	currentUser uuid.UUID,
	members []domain.Member,
	m *metrics.Metrics,
	logger *zap.Logger,
) *boardServiceImpl {
	return &boardServiceImpl{
		store:       boardStore,
		notifier:    notifier,
		persister:   persister,
		broadcaster: broadcaster,
		members:     members,
		currentUser: currentUser,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// AttachAutomation wires the trigger dispatcher. Set once during bootstrap;
// the automation engine in turn applies its actions through this service,
// which is why the two cannot be constructed in one shot.
func (s *boardServiceImpl) AttachAutomation(dispatcher TriggerDispatcher) {
	s.automation = dispatcher
}

// Board returns the current board snapshot for re-render.
func (s *boardServiceImpl) Board(ctx context.Context) *dto.BoardResponse {
	s.mu.Lock()
	lists := s.store.Snapshot()
	nextShortID := s.store.PeekShortID()
	s.mu.Unlock()

	return toBoardResponse(lists, nextShortID, s.now())
}

// CreateList appends a new list at the end of the board.
func (s *boardServiceImpl) CreateList(ctx context.Context, req *dto.CreateListRequest) (*dto.ListResponse, error) {
	list := &domain.List{ID: uuid.New(), Title: req.Title, Cards: []*domain.Card{}}

	s.mu.Lock()
	s.store.AppendList(list)
	s.mu.Unlock()

	s.logger.Info("List created", zap.String("list_id", list.ID.String()), zap.String("title", list.Title))
	s.settle("create_list", domain.OriginUser)
	return toListResponse(list, s.now()), nil
}

// RenameList retitles an existing list; a missing list is a no-op.
func (s *boardServiceImpl) RenameList(ctx context.Context, listID uuid.UUID, req *dto.RenameListRequest) error {
	s.mu.Lock()
	list, ok := s.store.FindList(listID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Rename of unknown list ignored", zap.String("list_id", listID.String()))
		return nil
	}
	list.Title = req.Title
	s.mu.Unlock()

	s.settle("rename_list", domain.OriginUser)
	return nil
}

// DeleteList removes a list and all contained cards; a missing list is a
// no-op.
func (s *boardServiceImpl) DeleteList(ctx context.Context, listID uuid.UUID) error {
	s.mu.Lock()
	removed := s.store.RemoveList(listID)
	s.mu.Unlock()

	if !removed {
		s.logger.Debug("Delete of unknown list ignored", zap.String("list_id", listID.String()))
		return nil
	}
	s.logger.Info("List deleted", zap.String("list_id", listID.String()))
	s.settle("delete_list", domain.OriginUser)
	return nil
}

// CreateCard appends a card with the next shortId and default fields.
func (s *boardServiceImpl) CreateCard(ctx context.Context, listID uuid.UUID, req *dto.CreateCardRequest) (*dto.CardResponse, error) {
	s.mu.Lock()
	list, ok := s.store.FindList(listID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Card creation for unknown list ignored", zap.String("list_id", listID.String()))
		return nil, nil
	}
	card := domain.NewCard(uuid.New(), s.store.NextShortID(), req.Title)
	card.Activity = []domain.ActivityEntry{{ID: uuid.New(), Text: "created", CreatedAt: s.now()}}
	list.Cards = append(list.Cards, card)
	snapshot := card.Clone()
	s.mu.Unlock()

	s.logger.Info("Card created",
		zap.String("card_id", card.ID.String()),
		zap.Int64("short_id", card.ShortID),
		zap.String("list_id", listID.String()),
	)
	s.settle("create_card", domain.OriginUser)
	return toCardResponse(snapshot, s.now()), nil
}

// UpdateCard merges the request fields into the card. For user-originated
// calls this is the point where the watch diff runs and label additions
// fire automation triggers; automated calls suppress both, which is the
// recursion-safety valve.
func (s *boardServiceImpl) UpdateCard(ctx context.Context, listID, cardID uuid.UUID, req *dto.UpdateCardRequest, origin domain.Origin) error {
	s.mu.Lock()
	_, card, _, ok := s.store.FindCard(listID, cardID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Update of unknown card ignored", zap.String("card_id", cardID.String()))
		return nil
	}

	before := card.Clone()
	addedLabels, changed := applyCardUpdate(card, req, s.currentUser)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	after := card.Clone()
	s.mu.Unlock()

	if !origin.Automated() {
		s.notifier.CardUpdated(before, after, listID)
		for _, labelID := range addedLabels {
			s.dispatch(ctx, domain.Trigger{Type: domain.TriggerLabelAdded, LabelID: labelID}, listID, cardID)
		}
	}

	s.settle("update_card", origin)
	return nil
}

// MoveCard removes the card at the source coordinates and inserts it at the
// destination, adjusting the destination index for same-list moves where
// the removal shifts subsequent positions. Identical coordinates are a
// complete no-op.
func (s *boardServiceImpl) MoveCard(ctx context.Context, req *dto.MoveCardRequest, origin domain.Origin) error {
	s.mu.Lock()
	src, srcOK := s.store.FindList(req.SourceListID)
	dst, dstOK := s.store.FindList(req.DestListID)
	if !srcOK || !dstOK || req.SourceIndex < 0 || req.SourceIndex >= len(src.Cards) {
		s.mu.Unlock()
		s.logger.Debug("Move with invalid coordinates ignored",
			zap.String("source_list_id", req.SourceListID.String()),
			zap.Int("source_index", req.SourceIndex),
		)
		return nil
	}
	if src.ID == dst.ID && req.SourceIndex == req.DestIndex {
		s.mu.Unlock()
		return nil
	}

	// Two explicit steps: remove, then insert with the adjusted index.
	card := src.Cards[req.SourceIndex]
	src.Cards = append(src.Cards[:req.SourceIndex], src.Cards[req.SourceIndex+1:]...)

	destIndex := req.DestIndex
	if src.ID == dst.ID && req.SourceIndex < destIndex {
		destIndex--
	}
	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(dst.Cards) {
		destIndex = len(dst.Cards)
	}
	dst.Cards = append(dst.Cards, nil)
	copy(dst.Cards[destIndex+1:], dst.Cards[destIndex:])
	dst.Cards[destIndex] = card

	crossList := src.ID != dst.ID
	srcTitle, dstTitle := src.Title, dst.Title
	if crossList && !origin.Automated() {
		entry := domain.ActivityEntry{
			ID:        uuid.New(),
			Text:      "moved from " + srcTitle + " to " + dstTitle,
			CreatedAt: s.now(),
		}
		card.Activity = append([]domain.ActivityEntry{entry}, card.Activity...)
	}
	snapshot := card.Clone()
	s.mu.Unlock()

	if !origin.Automated() {
		if crossList {
			s.notifier.CardMoved(snapshot, srcTitle, dstTitle, dst.ID)
		}
		s.dispatch(ctx, domain.Trigger{Type: domain.TriggerCardMoved, ToListID: dst.ID}, dst.ID, snapshot.ID)
	}

	s.settle("move_card", origin)
	return nil
}

// DeleteCard removes a card permanently. No automation or notification side
// effects; a missing card is a no-op.
func (s *boardServiceImpl) DeleteCard(ctx context.Context, listID, cardID uuid.UUID) error {
	s.mu.Lock()
	list, _, index, ok := s.store.FindCard(listID, cardID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Delete of unknown card ignored", zap.String("card_id", cardID.String()))
		return nil
	}
	list.Cards = append(list.Cards[:index], list.Cards[index+1:]...)
	s.mu.Unlock()

	s.logger.Info("Card deleted", zap.String("card_id", cardID.String()))
	s.settle("delete_card", domain.OriginUser)
	return nil
}

// PostComment prepends a comment. User-originated comments are scanned for
// @mentions; automated ones carry no author and produce no notifications.
func (s *boardServiceImpl) PostComment(ctx context.Context, listID, cardID uuid.UUID, req *dto.PostCommentRequest, origin domain.Origin) error {
	author := s.currentUser
	if origin.Automated() {
		author = uuid.Nil
	}
	comment := domain.Comment{
		ID:          uuid.New(),
		AuthorID:    author,
		Text:        req.Text,
		CreatedAt:   s.now(),
		Attachments: toAttachments(req.Attachments, s.now()),
	}

	s.mu.Lock()
	_, card, _, ok := s.store.FindCard(listID, cardID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Comment on unknown card ignored", zap.String("card_id", cardID.String()))
		return nil
	}
	card.Comments = append([]domain.Comment{comment}, card.Comments...)
	snapshot := card.Clone()
	s.mu.Unlock()

	if !origin.Automated() {
		s.notifier.CommentPosted(snapshot, comment, listID)
	}

	s.settle("post_comment", origin)
	return nil
}

// AddChecklist appends an empty checklist to the card.
func (s *boardServiceImpl) AddChecklist(ctx context.Context, listID, cardID uuid.UUID, req *dto.AddChecklistRequest, origin domain.Origin) error {
	s.mu.Lock()
	_, card, _, ok := s.store.FindCard(listID, cardID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Checklist on unknown card ignored", zap.String("card_id", cardID.String()))
		return nil
	}
	card.Checklists = append(card.Checklists, domain.Checklist{
		ID:    uuid.New(),
		Title: req.Title,
		Items: []domain.ChecklistItem{},
	})
	s.mu.Unlock()

	s.settle("add_checklist", origin)
	return nil
}

// SetChecklistItem adds a new item (nil ItemID) or patches an existing one.
func (s *boardServiceImpl) SetChecklistItem(ctx context.Context, listID, cardID, checklistID uuid.UUID, req *dto.SetChecklistItemRequest) error {
	s.mu.Lock()
	_, card, _, ok := s.store.FindCard(listID, cardID)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	checklist := findChecklist(card, checklistID)
	if checklist == nil {
		s.mu.Unlock()
		s.logger.Debug("Unknown checklist ignored", zap.String("checklist_id", checklistID.String()))
		return nil
	}

	if req.ItemID == nil {
		item := domain.ChecklistItem{ID: uuid.New(), Attachments: []domain.Attachment{}}
		if req.Text != nil {
			item.Text = *req.Text
		}
		if req.Completed != nil {
			item.Completed = *req.Completed
		}
		checklist.Items = append(checklist.Items, item)
	} else {
		for i := range checklist.Items {
			if checklist.Items[i].ID != *req.ItemID {
				continue
			}
			if req.Text != nil {
				checklist.Items[i].Text = *req.Text
			}
			if req.Completed != nil {
				checklist.Items[i].Completed = *req.Completed
			}
			break
		}
	}
	s.mu.Unlock()

	s.settle("set_checklist_item", domain.OriginUser)
	return nil
}

// AddAttachment records an already-encoded attachment on the card. Payload
// encoding is the file collaborator's concern.
func (s *boardServiceImpl) AddAttachment(ctx context.Context, listID, cardID uuid.UUID, req *dto.AttachmentPayload) error {
	s.mu.Lock()
	_, card, _, ok := s.store.FindCard(listID, cardID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("Attachment on unknown card ignored", zap.String("card_id", cardID.String()))
		return nil
	}
	card.Attachments = append(card.Attachments, toAttachment(*req, s.now()))
	s.mu.Unlock()

	s.settle("add_attachment", domain.OriginUser)
	return nil
}

// Visibility computes per-card visibility for the current snapshot under
// the supplied filter.
func (s *boardServiceImpl) Visibility(ctx context.Context, req *dto.VisibilityRequest) *dto.VisibilityResponse {
	s.mu.Lock()
	lists := s.store.Snapshot()
	s.mu.Unlock()

	now := s.now()
	return &dto.VisibilityResponse{
		Visibility: VisibilityMap(lists, req.Filter, now),
		ComputedAt: now,
	}
}

// DropIndex maps a drop position among visible cards to the insertion index
// in the full card sequence of the list.
func (s *boardServiceImpl) DropIndex(ctx context.Context, listID uuid.UUID, req *dto.DropIndexRequest) (*dto.DropIndexResponse, error) {
	s.mu.Lock()
	list, ok := s.store.FindList(listID)
	var cards []*domain.Card
	if ok {
		cards = list.Clone().Cards
	}
	s.mu.Unlock()

	if !ok {
		return nil, response.NewAppError(response.ErrCodeNotFound, "List not found", "")
	}
	visible := make(map[uuid.UUID]bool, len(cards))
	now := s.now()
	for _, card := range cards {
		visible[card.ID] = CardVisible(card, req.Filter, now)
	}
	return &dto.DropIndexResponse{Index: DropIndex(cards, visible, req.VisibleIndex)}, nil
}

// dispatch forwards a trigger to the automation engine if one is attached.
func (s *boardServiceImpl) dispatch(ctx context.Context, event domain.Trigger, listID, cardID uuid.UUID) {
	if s.automation == nil {
		return
	}
	s.automation.Dispatch(ctx, event, listID, cardID)
}

// settle runs after every completed mutation: gauges, snapshot broadcast
// and the fire-and-forget persistence write, in that order. None of these
// block the mutation path.
func (s *boardServiceImpl) settle(operation string, origin domain.Origin) {
	s.mu.Lock()
	lists := s.store.Snapshot()
	listCount := s.store.ListCount()
	cardCount := s.store.CardCount()
	nextShortID := s.store.PeekShortID()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IncrementMutation(operation, string(origin))
		s.metrics.SetBoardTotals(listCount, cardCount)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSnapshot(toBoardResponse(lists, nextShortID, s.now()))
	}
	if s.persister != nil {
		s.persister.Enqueue(&repository.BoardDocument{Lists: lists, NextShortID: nextShortID})
	}
}

// applyCardUpdate merges the request into the card and reports the label
// ids that were actually added plus whether anything changed.
func applyCardUpdate(card *domain.Card, req *dto.UpdateCardRequest, currentUser uuid.UUID) ([]uuid.UUID, bool) {
	changed := false
	var addedLabels []uuid.UUID

	if req.Title != nil && *req.Title != card.Title {
		card.Title = *req.Title
		changed = true
	}
	if req.Description != nil && *req.Description != card.Description {
		card.Description = *req.Description
		changed = true
	}
	if req.Location != nil && *req.Location != card.Location {
		card.Location = *req.Location
		changed = true
	}
	if req.ClearDue {
		if card.Due.Timestamp != nil {
			card.Due.Timestamp = nil
			changed = true
		}
	} else if req.DueTimestamp != nil {
		t := *req.DueTimestamp
		card.Due.Timestamp = &t
		changed = true
	}
	if req.DueComplete != nil && *req.DueComplete != card.Due.Completed {
		card.Due.Completed = *req.DueComplete
		changed = true
	}
	if req.ClearStart {
		if card.StartDate != nil {
			card.StartDate = nil
			changed = true
		}
	} else if req.StartDate != nil {
		t := *req.StartDate
		card.StartDate = &t
		changed = true
	}
	for _, id := range req.AddLabels {
		var added bool
		if card.Labels, added = domain.AddToSet(card.Labels, id); added {
			addedLabels = append(addedLabels, id)
			changed = true
		}
	}
	for _, id := range req.RemoveLabels {
		var removed bool
		if card.Labels, removed = domain.RemoveFromSet(card.Labels, id); removed {
			changed = true
		}
	}
	for _, id := range req.AddMembers {
		var added bool
		if card.Members, added = domain.AddToSet(card.Members, id); added {
			changed = true
		}
	}
	for _, id := range req.RemoveMembers {
		var removed bool
		if card.Members, removed = domain.RemoveFromSet(card.Members, id); removed {
			changed = true
		}
	}
	if req.Subscribe != nil {
		var flipped bool
		if *req.Subscribe {
			card.Subscribers, flipped = domain.AddToSet(card.Subscribers, currentUser)
		} else {
			card.Subscribers, flipped = domain.RemoveFromSet(card.Subscribers, currentUser)
		}
		if flipped {
			changed = true
		}
	}
	if req.Cover != nil {
		card.Cover = domain.Cover{
			Color:    req.Cover.Color,
			ImageRef: req.Cover.ImageRef,
			Size:     req.Cover.Size,
			Uploaded: req.Cover.Uploaded,
		}
		changed = true
	}
	for key, value := range req.CustomFields {
		card.CustomFields[key] = value
		changed = true
	}
	for _, id := range req.LinkCards {
		var added bool
		if card.LinkedCards, added = domain.AddToSet(card.LinkedCards, id); added {
			changed = true
		}
	}
	for _, id := range req.UnlinkCards {
		var removed bool
		if card.LinkedCards, removed = domain.RemoveFromSet(card.LinkedCards, id); removed {
			changed = true
		}
	}

	return addedLabels, changed
}

func findChecklist(card *domain.Card, checklistID uuid.UUID) *domain.Checklist {
	for i := range card.Checklists {
		if card.Checklists[i].ID == checklistID {
			return &card.Checklists[i]
		}
	}
	return nil
}
