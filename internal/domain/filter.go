package domain

import (
	"time"

	"github.com/google/uuid"
)

// DueStatus is the derived due-date state of a card.
type DueStatus string

const (
	DueNone     DueStatus = "none"
	DueSoon     DueStatus = "due_soon"
	DueOverdue  DueStatus = "overdue"
	DueComplete DueStatus = "complete"
)

// DueSoonWindow is how far ahead of now a due date counts as due-soon.
const DueSoonWindow = 24 * time.Hour

// Status derives the due state at the given instant. Completion takes
// precedence over lateness.
func (d DueDate) Status(now time.Time) DueStatus {
	if d.Timestamp == nil {
		return DueNone
	}
	if d.Completed {
		return DueComplete
	}
	if d.Timestamp.Before(now) {
		return DueOverdue
	}
	if d.Timestamp.Before(now.Add(DueSoonWindow)) {
		return DueSoon
	}
	return DueNone
}

// NoneSentinel stands in a member or label filter set for "cards that have
// none": a card passes the dimension only with an empty member/label set.
var NoneSentinel = uuid.Nil

// FilterCriteria is the active board filter. A zero value matches every
// card. Within a dimension members/labels are OR'd; across dimensions the
// criteria are AND'd.
type FilterCriteria struct {
	Keyword string      `json:"keyword"`
	Members []uuid.UUID `json:"members"`
	Labels  []uuid.UUID `json:"labels"`
	// Due, when non-empty, requires the card's derived status to match
	// exactly.
	Due DueStatus `json:"due,omitempty"`
}

// IsZero reports whether no filter dimension is active.
func (f FilterCriteria) IsZero() bool {
	return f.Keyword == "" && len(f.Members) == 0 && len(f.Labels) == 0 && f.Due == ""
}
