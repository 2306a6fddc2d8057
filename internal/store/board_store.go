// Package store holds the canonical board tree. Nothing outside the
// mutation service writes to it; every other component reads deep-copy
// snapshots.
package store

import (
	"github.com/google/uuid"

	"task-board-core/internal/domain"
)

// BoardStore owns the list/card tree and the shortId counter. It is not
// safe for concurrent use on its own; the mutation service serializes
// access.
type BoardStore struct {
	lists       []*domain.List
	nextShortID int64
}

// New returns an empty store with the shortId counter at 1.
func New() *BoardStore {
	return &BoardStore{lists: []*domain.List{}, nextShortID: 1}
}

// Lists exposes the live tree for the mutation service. Callers other than
// the mutation path must use Snapshot.
func (s *BoardStore) Lists() []*domain.List {
	return s.lists
}

// Snapshot returns a deep copy of the tree safe to hand to any reader.
func (s *BoardStore) Snapshot() []*domain.List {
	return domain.CloneLists(s.lists)
}

// NextShortID issues the next card shortId. Values are strictly increasing
// and never reused, even across deletions.
func (s *BoardStore) NextShortID() int64 {
	id := s.nextShortID
	s.nextShortID++
	return id
}

// PeekShortID returns the counter without consuming it.
func (s *BoardStore) PeekShortID() int64 {
	return s.nextShortID
}

// Replace swaps in a rehydrated tree and counter. Used once at startup.
func (s *BoardStore) Replace(lists []*domain.List, nextShortID int64) {
	if lists == nil {
		lists = []*domain.List{}
	}
	s.lists = lists
	if nextShortID > s.nextShortID {
		s.nextShortID = nextShortID
	}
}

// AppendList adds a list at the end, preserving existing order.
func (s *BoardStore) AppendList(l *domain.List) {
	s.lists = append(s.lists, l)
}

// RemoveList deletes the list and all contained cards. Reports whether the
// list existed.
func (s *BoardStore) RemoveList(listID uuid.UUID) bool {
	for i, l := range s.lists {
		if l.ID == listID {
			s.lists = append(s.lists[:i], s.lists[i+1:]...)
			return true
		}
	}
	return false
}

// FindList returns the live list with the given id.
func (s *BoardStore) FindList(listID uuid.UUID) (*domain.List, bool) {
	for _, l := range s.lists {
		if l.ID == listID {
			return l, true
		}
	}
	return nil, false
}

// FindCard locates a card within a specific list, returning the owning
// list, the card and its index.
func (s *BoardStore) FindCard(listID, cardID uuid.UUID) (*domain.List, *domain.Card, int, bool) {
	l, ok := s.FindList(listID)
	if !ok {
		return nil, nil, 0, false
	}
	for i, c := range l.Cards {
		if c.ID == cardID {
			return l, c, i, true
		}
	}
	return nil, nil, 0, false
}

// FindCardByID locates a card anywhere on the board.
func (s *BoardStore) FindCardByID(cardID uuid.UUID) (*domain.List, *domain.Card, int, bool) {
	for _, l := range s.lists {
		for i, c := range l.Cards {
			if c.ID == cardID {
				return l, c, i, true
			}
		}
	}
	return nil, nil, 0, false
}

// CardCount is the total number of cards across all lists.
func (s *BoardStore) CardCount() int {
	n := 0
	for _, l := range s.lists {
		n += len(l.Cards)
	}
	return n
}

// ListCount is the number of lists.
func (s *BoardStore) ListCount() int {
	return len(s.lists)
}
