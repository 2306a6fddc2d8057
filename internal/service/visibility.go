package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"task-board-core/internal/domain"
)

// The visibility engine is a pure derivation over a board snapshot and the
// active filter: no state, same inputs always yield the same map.

// CardVisible reports whether a single card passes the filter at the given
// instant. Dimensions are AND'd; an inactive dimension passes trivially.
func CardVisible(card *domain.Card, filter domain.FilterCriteria, now time.Time) bool {
	if filter.IsZero() {
		return true
	}

	if filter.Keyword != "" {
		keyword := strings.ToLower(filter.Keyword)
		title := strings.ToLower(card.Title)
		description := strings.ToLower(card.Description)
		if !strings.Contains(title, keyword) && !strings.Contains(description, keyword) {
			return false
		}
	}

	if !setDimensionPasses(card.Members, filter.Members) {
		return false
	}

	if !setDimensionPasses(card.Labels, filter.Labels) {
		return false
	}

	if filter.Due != "" && card.Due.Status(now) != filter.Due {
		return false
	}

	return true
}

// setDimensionPasses applies the shared member/label rule: the sentinel
// matches only cards with an empty set, otherwise any overlap passes.
func setDimensionPasses(cardSet, filterSet []uuid.UUID) bool {
	if len(filterSet) == 0 {
		return true
	}
	if domain.InSet(filterSet, domain.NoneSentinel) && len(cardSet) == 0 {
		return true
	}
	for _, id := range filterSet {
		if id == domain.NoneSentinel {
			continue
		}
		if domain.InSet(cardSet, id) {
			return true
		}
	}
	return false
}

// VisibilityMap computes per-card visibility for the whole board snapshot.
func VisibilityMap(lists []*domain.List, filter domain.FilterCriteria, now time.Time) map[uuid.UUID]bool {
	result := make(map[uuid.UUID]bool)
	fastPath := filter.IsZero()
	for _, list := range lists {
		for _, card := range list.Cards {
			if fastPath {
				result[card.ID] = true
			} else {
				result[card.ID] = CardVisible(card, filter, now)
			}
		}
	}
	return result
}

// DropIndex maps a drop position among the visible cards of a list to an
// insertion index in the full card sequence. visibleIndex is the position of
// the first visible card below the pointer among visible cards; a negative
// value (or one past the last visible card) means "insert at list end".
// Hidden cards keep their storage position even though they are not drop
// targets, which is why the two-step mapping exists.
func DropIndex(cards []*domain.Card, visible map[uuid.UUID]bool, visibleIndex int) int {
	if visibleIndex < 0 {
		return len(cards)
	}
	seen := 0
	for fullIndex, card := range cards {
		if !visible[card.ID] {
			continue
		}
		if seen == visibleIndex {
			return fullIndex
		}
		seen++
	}
	return len(cards)
}
