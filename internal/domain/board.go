package domain

import (
	"time"

	"github.com/google/uuid"
)

// List is an ordered board column. It owns its cards exclusively: a card
// belongs to exactly one list at any instant.
type List struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Cards []*Card   `json:"cards"`
}

// Card is the atomic task unit: the unit of movement, filtering and
// automation targeting.
type Card struct {
	ID          uuid.UUID `json:"id"`
	// ShortID is a monotonically increasing integer assigned at creation
	// and never reused, even across deletions.
	ShortID      int64                  `json:"shortId"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Labels       []uuid.UUID            `json:"labels"`
	Members      []uuid.UUID            `json:"members"`
	Due          DueDate                `json:"due"`
	StartDate    *time.Time             `json:"startDate,omitempty"`
	Location     string                 `json:"location"`
	Checklists   []Checklist            `json:"checklists"`
	Attachments  []Attachment           `json:"attachments"`
	Cover        Cover                  `json:"cover"`
	Subscribers  []uuid.UUID            `json:"subscribers"`
	CustomFields map[string]interface{} `json:"customFields"`
	LinkedCards  []uuid.UUID            `json:"linkedCards"`
	// Comments and Activity are newest-first and never reordered after
	// insertion.
	Comments []Comment       `json:"comments"`
	Activity []ActivityEntry `json:"activity"`
}

// DueDate carries an optional due instant and a completion flag.
type DueDate struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Completed bool       `json:"completed"`
}

// Cover is an optional card cover: either a color or an image reference.
// Uploaded marks image covers sourced from an uploaded file; their image
// payload is stripped before persistence.
type Cover struct {
	Color    string `json:"color,omitempty"`
	ImageRef string `json:"imageRef,omitempty"`
	Size     string `json:"size,omitempty"`
	Uploaded bool   `json:"uploaded,omitempty"`
}

type Checklist struct {
	ID    uuid.UUID       `json:"id"`
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

type ChecklistItem struct {
	ID          uuid.UUID    `json:"id"`
	Text        string       `json:"text"`
	Completed   bool         `json:"completed"`
	Attachments []Attachment `json:"attachments"`
}

type Comment struct {
	ID          uuid.UUID    `json:"id"`
	AuthorID    uuid.UUID    `json:"authorId"`
	Text        string       `json:"text"`
	CreatedAt   time.Time    `json:"createdAt"`
	Attachments []Attachment `json:"attachments"`
}

type ActivityEntry struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCard returns a card with the given identity and every collection
// initialized to its empty default.
func NewCard(id uuid.UUID, shortID int64, title string) *Card {
	return &Card{
		ID:           id,
		ShortID:      shortID,
		Title:        title,
		Labels:       []uuid.UUID{},
		Members:      []uuid.UUID{},
		Checklists:   []Checklist{},
		Attachments:  []Attachment{},
		Subscribers:  []uuid.UUID{},
		CustomFields: map[string]interface{}{},
		LinkedCards:  []uuid.UUID{},
		Comments:     []Comment{},
		Activity:     []ActivityEntry{},
	}
}

// AddToSet appends id if absent and reports whether the set changed.
func AddToSet(set []uuid.UUID, id uuid.UUID) ([]uuid.UUID, bool) {
	if InSet(set, id) {
		return set, false
	}
	return append(set, id), true
}

// RemoveFromSet removes id if present and reports whether the set changed.
func RemoveFromSet(set []uuid.UUID, id uuid.UUID) ([]uuid.UUID, bool) {
	for i, v := range set {
		if v == id {
			return append(set[:i], set[i+1:]...), true
		}
	}
	return set, false
}

// InSet reports whether id is a member of set.
func InSet(set []uuid.UUID, id uuid.UUID) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the list and all of its cards.
func (l *List) Clone() *List {
	c := &List{ID: l.ID, Title: l.Title, Cards: make([]*Card, len(l.Cards))}
	for i, card := range l.Cards {
		c.Cards[i] = card.Clone()
	}
	return c
}

// Clone returns a deep copy of the card. Readers outside the mutation path
// only ever see clones, never the stored card.
func (c *Card) Clone() *Card {
	dup := *c
	dup.Labels = append([]uuid.UUID{}, c.Labels...)
	dup.Members = append([]uuid.UUID{}, c.Members...)
	dup.Subscribers = append([]uuid.UUID{}, c.Subscribers...)
	dup.LinkedCards = append([]uuid.UUID{}, c.LinkedCards...)
	dup.Attachments = cloneAttachments(c.Attachments)
	dup.Checklists = make([]Checklist, len(c.Checklists))
	for i, cl := range c.Checklists {
		items := make([]ChecklistItem, len(cl.Items))
		for j, item := range cl.Items {
			items[j] = item
			items[j].Attachments = cloneAttachments(item.Attachments)
		}
		dup.Checklists[i] = Checklist{ID: cl.ID, Title: cl.Title, Items: items}
	}
	dup.Comments = make([]Comment, len(c.Comments))
	for i, cm := range c.Comments {
		dup.Comments[i] = cm
		dup.Comments[i].Attachments = cloneAttachments(cm.Attachments)
	}
	dup.Activity = append([]ActivityEntry{}, c.Activity...)
	dup.CustomFields = make(map[string]interface{}, len(c.CustomFields))
	for k, v := range c.CustomFields {
		dup.CustomFields[k] = v
	}
	if c.StartDate != nil {
		t := *c.StartDate
		dup.StartDate = &t
	}
	if c.Due.Timestamp != nil {
		t := *c.Due.Timestamp
		dup.Due.Timestamp = &t
	}
	return &dup
}

// CloneLists deep-copies a whole board tree.
func CloneLists(lists []*List) []*List {
	out := make([]*List, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}

func cloneAttachments(in []Attachment) []Attachment {
	return append([]Attachment{}, in...)
}
