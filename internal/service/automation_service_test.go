package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/dto"
)

// automationFixture wires a real board service and a real automation engine
// together, the way bootstrap does, so the trigger round trip is exercised
// end to end.
type automationFixture struct {
	*boardServiceFixture
	automation *automationServiceImpl
	repo       *mockSnapshotRepo
}

func newAutomationFixture(t *testing.T, cfg *domain.AutomationConfig) *automationFixture {
	t.Helper()

	base := newBoardServiceFixture(t)
	repo := &mockSnapshotRepo{}
	automation := NewAutomationService(cfg, base.service, repo, nil, zap.NewNop())
	base.service.AttachAutomation(automation)
	return &automationFixture{boardServiceFixture: base, automation: automation, repo: repo}
}

func TestDoneListRuleCompletesDueDate(t *testing.T) {
	f := newAutomationFixture(t, nil)
	todoID := f.createList(t, "Todo")
	doneID := f.createList(t, "Done")

	require.NoError(t, f.automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		Rules: []domain.AutomationRule{{
			ID:      uuid.New(),
			Name:    "complete on done",
			Enabled: true,
			Trigger: domain.Trigger{Type: domain.TriggerCardMoved, ToListID: doneID},
			Action:  domain.NewSetDueCompleteAction(true),
		}},
	}))

	card := f.createCard(t, todoID, "ship")
	require.NoError(t, f.service.MoveCard(context.Background(), &dto.MoveCardRequest{
		SourceListID: todoID,
		SourceIndex:  0,
		DestListID:   doneID,
		DestIndex:    0,
	}, domain.OriginUser))

	_, stored, _, ok := f.store.FindCard(doneID, card.ID)
	require.True(t, ok)
	assert.True(t, stored.Due.Completed)
}

func TestRuleOnlyFiresForMatchingList(t *testing.T) {
	f := newAutomationFixture(t, nil)
	todoID := f.createList(t, "Todo")
	doingID := f.createList(t, "Doing")
	doneID := f.createList(t, "Done")

	require.NoError(t, f.automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		Rules: []domain.AutomationRule{{
			ID:      uuid.New(),
			Name:    "complete on done",
			Enabled: true,
			Trigger: domain.Trigger{Type: domain.TriggerCardMoved, ToListID: doneID},
			Action:  domain.NewSetDueCompleteAction(true),
		}},
	}))

	card := f.createCard(t, todoID, "ship")
	require.NoError(t, f.service.MoveCard(context.Background(), &dto.MoveCardRequest{
		SourceListID: todoID,
		SourceIndex:  0,
		DestListID:   doingID,
		DestIndex:    0,
	}, domain.OriginUser))

	_, stored, _, ok := f.store.FindCard(doingID, card.ID)
	require.True(t, ok)
	assert.False(t, stored.Due.Completed)
}

func TestAutomationDoesNotCascade(t *testing.T) {
	// Rule 1 reacts to label A by adding label B; rule 2 reacts to label B.
	// The automated addition of B must not fire rule 2.
	labelA := uuid.New()
	labelB := uuid.New()
	cfg := &domain.AutomationConfig{
		Rules: []domain.AutomationRule{
			{
				ID:      uuid.New(),
				Name:    "chain start",
				Enabled: true,
				Trigger: domain.Trigger{Type: domain.TriggerLabelAdded, LabelID: labelA},
				Action:  domain.NewAddLabelAction(labelB),
			},
			{
				ID:      uuid.New(),
				Name:    "chain end",
				Enabled: true,
				Trigger: domain.Trigger{Type: domain.TriggerLabelAdded, LabelID: labelB},
				Action:  domain.NewPostCommentAction("cascaded"),
			},
		},
	}

	f := newAutomationFixture(t, cfg)
	listID := f.createList(t, "Todo")
	card := f.createCard(t, listID, "task")

	require.NoError(t, f.service.UpdateCard(context.Background(), listID, card.ID, &dto.UpdateCardRequest{
		AddLabels: []uuid.UUID{labelA},
	}, domain.OriginUser))

	_, stored, _, ok := f.store.FindCard(listID, card.ID)
	require.True(t, ok)
	assert.ElementsMatch(t, []uuid.UUID{labelA, labelB}, stored.Labels, "rule 1 ran")
	assert.Empty(t, stored.Comments, "rule 2 did not")
}

func TestDisabledRuleDoesNotRun(t *testing.T) {
	label := uuid.New()
	cfg := &domain.AutomationConfig{
		Rules: []domain.AutomationRule{{
			ID:      uuid.New(),
			Name:    "disabled",
			Enabled: false,
			Trigger: domain.Trigger{Type: domain.TriggerLabelAdded, LabelID: label},
			Action:  domain.NewPostCommentAction("should not appear"),
		}},
	}

	f := newAutomationFixture(t, cfg)
	listID := f.createList(t, "Todo")
	card := f.createCard(t, listID, "task")

	require.NoError(t, f.service.UpdateCard(context.Background(), listID, card.ID, &dto.UpdateCardRequest{
		AddLabels: []uuid.UUID{label},
	}, domain.OriginUser))

	_, stored, _, _ := f.store.FindCard(listID, card.ID)
	assert.Empty(t, stored.Comments)
}

func TestDanglingRuleIsSkippedWithoutTouchingBoard(t *testing.T) {
	label := uuid.New()
	cfg := &domain.AutomationConfig{
		Rules: []domain.AutomationRule{{
			ID:      uuid.New(),
			Name:    "move to deleted list",
			Enabled: true,
			Trigger: domain.Trigger{Type: domain.TriggerLabelAdded, LabelID: label},
			Action:  domain.NewMoveToListAction(uuid.New()),
		}},
	}

	f := newAutomationFixture(t, cfg)
	listID := f.createList(t, "Todo")
	card := f.createCard(t, listID, "task")

	// The user mutation itself still succeeds; only the rule is skipped.
	require.NoError(t, f.service.UpdateCard(context.Background(), listID, card.ID, &dto.UpdateCardRequest{
		AddLabels: []uuid.UUID{label},
	}, domain.OriginUser))

	_, stored, _, ok := f.store.FindCard(listID, card.ID)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{label}, stored.Labels)
}

func TestRunCardButton(t *testing.T) {
	buttonID := uuid.New()
	cfg := &domain.AutomationConfig{
		CardButtons: []domain.CardButton{{
			ID:     buttonID,
			Label:  "add steps",
			Action: domain.NewAddChecklistAction("steps"),
		}},
	}

	f := newAutomationFixture(t, cfg)
	listID := f.createList(t, "Todo")
	card := f.createCard(t, listID, "task")

	require.NoError(t, f.automation.RunCardButton(context.Background(), buttonID, listID, card.ID))

	_, stored, _, _ := f.store.FindCard(listID, card.ID)
	require.Len(t, stored.Checklists, 1)
	assert.Equal(t, "steps", stored.Checklists[0].Title)

	err := f.automation.RunCardButton(context.Background(), uuid.New(), listID, card.ID)
	assert.Error(t, err)
}

func TestRunBoardButtonAppliesToWholeList(t *testing.T) {
	f := newAutomationFixture(t, nil)
	listID := f.createList(t, "Done")
	f.createCard(t, listID, "a")
	f.createCard(t, listID, "b")

	buttonID := uuid.New()
	require.NoError(t, f.automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		BoardButtons: []domain.BoardButton{{
			ID:           buttonID,
			Label:        "complete all",
			TargetListID: listID,
			Action:       domain.NewSetDueCompleteAction(true),
		}},
	}))

	require.NoError(t, f.automation.RunBoardButton(context.Background(), buttonID))

	list, _ := f.store.FindList(listID)
	for _, card := range list.Cards {
		assert.True(t, card.Due.Completed)
	}
}

func TestRunScheduledCommand(t *testing.T) {
	f := newAutomationFixture(t, nil)
	listID := f.createList(t, "Daily")
	f.createCard(t, listID, "a")
	f.createCard(t, listID, "b")

	command := domain.ScheduledCommand{
		ID:           uuid.New(),
		Name:         "daily note",
		Enabled:      true,
		Schedule:     "0 9 * * *",
		TargetListID: listID,
		Action:       domain.NewPostCommentAction("new day"),
	}
	f.automation.RunScheduledCommand(context.Background(), command)

	list, _ := f.store.FindList(listID)
	for _, card := range list.Cards {
		require.Len(t, card.Comments, 1)
		assert.Equal(t, "new day", card.Comments[0].Text)
		assert.Equal(t, uuid.Nil, card.Comments[0].AuthorID)
	}

	// Disabled commands never run.
	command.Enabled = false
	f.automation.RunScheduledCommand(context.Background(), command)
	list, _ = f.store.FindList(listID)
	assert.Len(t, list.Cards[0].Comments, 1)
}

func TestAddMemberActionRequiresKnownMember(t *testing.T) {
	f := newAutomationFixture(t, nil)
	listID := f.createList(t, "Todo")
	card := f.createCard(t, listID, "task")

	err := f.service.ApplyAction(context.Background(), listID, card.ID, domain.NewAddMemberAction(uuid.New()), domain.OriginAutomation)
	assert.Error(t, err, "unknown member is a skip, not a silent add")

	require.NoError(t, f.service.ApplyAction(context.Background(), listID, card.ID, domain.NewAddMemberAction(testUser), domain.OriginAutomation))
	_, stored, _, _ := f.store.FindCard(listID, card.ID)
	assert.Equal(t, []uuid.UUID{testUser}, stored.Members)
}

func TestUpdateConfigValidatesAndPersists(t *testing.T) {
	f := newAutomationFixture(t, nil)
	reloaded := false
	f.automation.OnConfigReload(func() { reloaded = true })

	err := f.automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		ScheduledCommands: []domain.ScheduledCommand{{
			ID:       uuid.New(),
			Name:     "bad cron",
			Enabled:  true,
			Schedule: "not a schedule",
			Action:   domain.NewPostCommentAction("x"),
		}},
	})
	assert.Error(t, err)
	assert.False(t, reloaded)

	require.NoError(t, f.automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		ScheduledCommands: []domain.ScheduledCommand{{
			ID:           uuid.New(),
			Name:         "good cron",
			Enabled:      true,
			Schedule:     "30 8 * * 1",
			TargetListID: uuid.New(),
			Action:       domain.NewPostCommentAction("weekly"),
		}},
	}))
	assert.True(t, reloaded)
	assert.Len(t, f.repo.savedAutomations, 1)
	assert.Len(t, f.automation.ScheduledCommands(), 1)
}

func TestUpdateConfigRejectsInvalidAction(t *testing.T) {
	f := newAutomationFixture(t, nil)

	err := f.automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		Rules: []domain.AutomationRule{{
			ID:      uuid.New(),
			Name:    "empty move",
			Enabled: true,
			Trigger: domain.Trigger{Type: domain.TriggerCardMoved, ToListID: uuid.New()},
			Action:  domain.Action{Type: domain.ActionMoveToList},
		}},
	})
	assert.Error(t, err)
}
