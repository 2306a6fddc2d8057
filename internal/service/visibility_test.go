package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-board-core/internal/domain"
)

func cardWithDue(title string, due time.Time, completed bool) *domain.Card {
	card := domain.NewCard(uuid.New(), 1, title)
	card.Due = domain.DueDate{Timestamp: &due, Completed: completed}
	return card
}

func TestOverdueFilterExcludesCompletedCards(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)

	overdue := cardWithDue("a", past, false)
	completedLate := cardWithDue("b", past, true)
	noDue := domain.NewCard(uuid.New(), 3, "c")

	filter := domain.FilterCriteria{Due: domain.DueOverdue}
	assert.True(t, CardVisible(overdue, filter, now))
	assert.False(t, CardVisible(completedLate, filter, now), "completion wins over lateness")
	assert.False(t, CardVisible(noDue, filter, now))
}

func TestKeywordMatchesTitleOrDescription(t *testing.T) {
	card := domain.NewCard(uuid.New(), 1, "Deploy service")
	card.Description = "remember the ROLLBACK plan"

	assert.True(t, CardVisible(card, domain.FilterCriteria{Keyword: "deploy"}, time.Now()))
	assert.True(t, CardVisible(card, domain.FilterCriteria{Keyword: "rollback"}, time.Now()))
	assert.False(t, CardVisible(card, domain.FilterCriteria{Keyword: "migrate"}, time.Now()))
}

func TestMemberDimensionWithNoneSentinel(t *testing.T) {
	member := uuid.New()
	withMember := domain.NewCard(uuid.New(), 1, "a")
	withMember.Members = []uuid.UUID{member}
	withoutMember := domain.NewCard(uuid.New(), 2, "b")

	now := time.Now()
	onlyNone := domain.FilterCriteria{Members: []uuid.UUID{domain.NoneSentinel}}
	assert.False(t, CardVisible(withMember, onlyNone, now))
	assert.True(t, CardVisible(withoutMember, onlyNone, now))

	// Sentinel OR a concrete member: both kinds of card pass.
	mixed := domain.FilterCriteria{Members: []uuid.UUID{domain.NoneSentinel, member}}
	assert.True(t, CardVisible(withMember, mixed, now))
	assert.True(t, CardVisible(withoutMember, mixed, now))
}

func TestDimensionsAreANDed(t *testing.T) {
	label := uuid.New()
	card := domain.NewCard(uuid.New(), 1, "tagged")
	card.Labels = []uuid.UUID{label}

	now := time.Now()
	assert.True(t, CardVisible(card, domain.FilterCriteria{Keyword: "tag", Labels: []uuid.UUID{label}}, now))
	assert.False(t, CardVisible(card, domain.FilterCriteria{Keyword: "tag", Labels: []uuid.UUID{uuid.New()}}, now))
	assert.False(t, CardVisible(card, domain.FilterCriteria{Keyword: "other", Labels: []uuid.UUID{label}}, now))
}

func TestVisibilityMapIsDeterministic(t *testing.T) {
	label := uuid.New()
	a := domain.NewCard(uuid.New(), 1, "a")
	a.Labels = []uuid.UUID{label}
	b := domain.NewCard(uuid.New(), 2, "b")
	lists := []*domain.List{{ID: uuid.New(), Title: "l", Cards: []*domain.Card{a, b}}}

	now := time.Now()
	filter := domain.FilterCriteria{Labels: []uuid.UUID{label}}
	first := VisibilityMap(lists, filter, now)
	second := VisibilityMap(lists, filter, now)

	assert.Equal(t, first, second)
	assert.True(t, first[a.ID])
	assert.False(t, first[b.ID])
}

func TestVisibilityMapZeroFilterShowsEverything(t *testing.T) {
	a := domain.NewCard(uuid.New(), 1, "a")
	b := domain.NewCard(uuid.New(), 2, "b")
	lists := []*domain.List{{ID: uuid.New(), Title: "l", Cards: []*domain.Card{a, b}}}

	result := VisibilityMap(lists, domain.FilterCriteria{}, time.Now())
	require.Len(t, result, 2)
	assert.True(t, result[a.ID])
	assert.True(t, result[b.ID])
}

func TestDropIndexSkipsHiddenCards(t *testing.T) {
	a := domain.NewCard(uuid.New(), 1, "a")
	hidden := domain.NewCard(uuid.New(), 2, "h")
	b := domain.NewCard(uuid.New(), 3, "b")
	cards := []*domain.Card{a, hidden, b}
	visible := map[uuid.UUID]bool{a.ID: true, hidden.ID: false, b.ID: true}

	assert.Equal(t, 0, DropIndex(cards, visible, 0))
	assert.Equal(t, 2, DropIndex(cards, visible, 1), "hidden card between the visible ones keeps its slot")
	assert.Equal(t, 3, DropIndex(cards, visible, 2), "past the last visible card means list end")
	assert.Equal(t, 3, DropIndex(cards, visible, -1), "negative means list end")
}

func TestDropIndexAllHidden(t *testing.T) {
	a := domain.NewCard(uuid.New(), 1, "a")
	cards := []*domain.Card{a}
	visible := map[uuid.UUID]bool{a.ID: false}

	assert.Equal(t, 1, DropIndex(cards, visible, 0))
}
