package job

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"task-board-core/internal/service"
)

// Scheduler runs the automation document's scheduled commands on their cron
// expressions. Reload is cheap: all entries are dropped and re-registered
// from the current document, so edits take effect without a restart.
type Scheduler struct {
	cron       *cron.Cron
	automation service.AutomationService
	logger     *zap.Logger

	mu      sync.Mutex
	entries []cron.EntryID
}

// NewScheduler creates a new instance of Scheduler
func NewScheduler(automation service.AutomationService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		automation: automation,
		logger:     logger,
	}
}

// Start registers the current scheduled commands and starts the cron loop.
func (s *Scheduler) Start() {
	s.Reload()
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("commands", s.EntryCount()))
}

// Stop halts the cron loop and waits for any running job to finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Scheduler stopping")
	return s.cron.Stop()
}

// Reload replaces every registered entry with the commands in the current
// automation document. Invalid schedules were rejected at config update
// time; one slipping through is skipped with a warning.
func (s *Scheduler) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = s.entries[:0]

	for _, command := range s.automation.ScheduledCommands() {
		if !command.Enabled {
			continue
		}
		command := command
		id, err := s.cron.AddFunc(command.Schedule, func() {
			s.automation.RunScheduledCommand(context.Background(), command)
		})
		if err != nil {
			s.logger.Warn("Skipping scheduled command with invalid schedule",
				zap.String("command", command.Name),
				zap.String("schedule", command.Schedule),
				zap.Error(err),
			)
			continue
		}
		s.entries = append(s.entries, id)
		s.logger.Info("Scheduled command registered",
			zap.String("command", command.Name),
			zap.String("schedule", command.Schedule),
		)
	}
}

// EntryCount returns the number of registered cron entries.
func (s *Scheduler) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
