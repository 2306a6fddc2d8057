package job

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/service"
	"task-board-core/internal/store"
)

func newSchedulerFixture(t *testing.T) (*Scheduler, service.AutomationService) {
	t.Helper()

	user := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	members := []domain.Member{{ID: user, Name: "me"}}
	logger := zap.NewNop()

	notifier := service.NewNotificationService(user, members, nil, logger)
	boardService := service.NewBoardService(store.New(), notifier, nil, nil, user, members, nil, logger)
	automation := service.NewAutomationService(nil, boardService, nil, nil, logger)
	boardService.AttachAutomation(automation)

	return NewScheduler(automation, logger), automation
}

func TestReloadRegistersEnabledCommandsOnly(t *testing.T) {
	scheduler, automation := newSchedulerFixture(t)

	require.NoError(t, automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		ScheduledCommands: []domain.ScheduledCommand{
			{
				ID:           uuid.New(),
				Name:         "morning",
				Enabled:      true,
				Schedule:     "0 9 * * *",
				TargetListID: uuid.New(),
				Action:       domain.NewPostCommentAction("morning"),
			},
			{
				ID:           uuid.New(),
				Name:         "paused",
				Enabled:      false,
				Schedule:     "0 18 * * *",
				TargetListID: uuid.New(),
				Action:       domain.NewPostCommentAction("evening"),
			},
		},
	}))

	scheduler.Reload()
	assert.Equal(t, 1, scheduler.EntryCount())
}

func TestReloadReplacesPreviousEntries(t *testing.T) {
	scheduler, automation := newSchedulerFixture(t)

	command := domain.ScheduledCommand{
		ID:           uuid.New(),
		Name:         "weekly",
		Enabled:      true,
		Schedule:     "30 8 * * 1",
		TargetListID: uuid.New(),
		Action:       domain.NewPostCommentAction("weekly"),
	}
	require.NoError(t, automation.UpdateConfig(context.Background(), &domain.AutomationConfig{
		ScheduledCommands: []domain.ScheduledCommand{command},
	}))
	scheduler.Reload()
	require.Equal(t, 1, scheduler.EntryCount())

	// Emptying the document drops the entry on the next reload.
	require.NoError(t, automation.UpdateConfig(context.Background(), &domain.AutomationConfig{}))
	scheduler.Reload()
	assert.Equal(t, 0, scheduler.EntryCount())
}

func TestStartStop(t *testing.T) {
	scheduler, _ := newSchedulerFixture(t)

	scheduler.Start()
	<-scheduler.Stop().Done()
}
