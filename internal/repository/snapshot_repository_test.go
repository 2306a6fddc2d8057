package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"task-board-core/internal/domain"
)

func setupTestRepository(t *testing.T) SnapshotRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to open test database")

	repo, err := NewSnapshotRepository(db)
	require.NoError(t, err)
	return repo
}

func TestBoardDocumentRoundTrip(t *testing.T) {
	repo := setupTestRepository(t)

	due := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	card := domain.NewCard(uuid.New(), 4, "ship it")
	card.Due = domain.DueDate{Timestamp: &due, Completed: true}
	doc := &BoardDocument{
		Lists: []*domain.List{
			{ID: uuid.New(), Title: "Doing", Cards: []*domain.Card{card}},
		},
		NextShortID: 5,
	}

	require.NoError(t, repo.SaveBoard(doc))

	loaded, err := repo.LoadBoard()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Lists, 1)
	assert.Equal(t, "Doing", loaded.Lists[0].Title)
	require.Len(t, loaded.Lists[0].Cards, 1)
	assert.Equal(t, int64(4), loaded.Lists[0].Cards[0].ShortID)
	assert.True(t, loaded.Lists[0].Cards[0].Due.Completed)
	require.NotNil(t, loaded.Lists[0].Cards[0].Due.Timestamp)
	assert.True(t, due.Equal(*loaded.Lists[0].Cards[0].Due.Timestamp))
	assert.Equal(t, int64(5), loaded.NextShortID)
}

func TestSaveBoardOverwritesSingleRow(t *testing.T) {
	repo := setupTestRepository(t)

	require.NoError(t, repo.SaveBoard(&BoardDocument{NextShortID: 1}))
	require.NoError(t, repo.SaveBoard(&BoardDocument{NextShortID: 9}))

	loaded, err := repo.LoadBoard()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(9), loaded.NextShortID)
}

func TestLoadBoardMissing(t *testing.T) {
	repo := setupTestRepository(t)

	loaded, err := repo.LoadBoard()
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing document loads as nil, not as an error")
}

func TestClearBoard(t *testing.T) {
	repo := setupTestRepository(t)

	require.NoError(t, repo.SaveBoard(&BoardDocument{NextShortID: 2}))
	require.NoError(t, repo.ClearBoard())

	loaded, err := repo.LoadBoard()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing an already-empty table is fine.
	require.NoError(t, repo.ClearBoard())
}

func TestAutomationDocumentRoundTrip(t *testing.T) {
	repo := setupTestRepository(t)

	doneList := uuid.New()
	cfg := &domain.AutomationConfig{
		Rules: []domain.AutomationRule{
			{
				ID:      uuid.New(),
				Name:    "complete on done",
				Enabled: true,
				Trigger: domain.Trigger{Type: domain.TriggerCardMoved, ToListID: doneList},
				Action:  domain.NewSetDueCompleteAction(true),
			},
		},
	}
	cfg.Normalize()

	require.NoError(t, repo.SaveAutomation(cfg))

	loaded, err := repo.LoadAutomation()
	require.NoError(t, err)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, doneList, loaded.Rules[0].Trigger.ToListID)
	assert.Equal(t, domain.ActionSetDueComplete, loaded.Rules[0].Action.Type)
	assert.NotNil(t, loaded.ScheduledCommands)
	assert.NotNil(t, loaded.CardButtons)
	assert.NotNil(t, loaded.BoardButtons)
}

func TestLoadAutomationMissingReturnsEmpty(t *testing.T) {
	repo := setupTestRepository(t)

	cfg, err := repo.LoadAutomation()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Rules)
	assert.NotNil(t, cfg.Rules)
}
