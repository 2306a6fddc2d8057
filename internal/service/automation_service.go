package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"task-board-core/internal/domain"
	"task-board-core/internal/metrics"
	"task-board-core/internal/repository"
	"task-board-core/internal/response"
)

// ActionApplier executes one automation action against one card. The board
// service implements it; the indirection exists because the automation engine
// and the board service call each other and cannot be constructed in one
// shot. Unlike plain mutations, a dangling reference here is an error so the
// engine can count and log the skip.
type ActionApplier interface {
	ApplyAction(ctx context.Context, listID, cardID uuid.UUID, action domain.Action, origin domain.Origin) error
	CardIDsOfList(listID uuid.UUID) ([]uuid.UUID, error)
}

// AutomationService owns the automation configuration document and executes
// rules, buttons and scheduled commands. Rule actions re-enter the mutation
// API with an automated origin, so a rule's own effects never fire further
// rules.
type AutomationService interface {
	TriggerDispatcher
	Config(ctx context.Context) *domain.AutomationConfig
	UpdateConfig(ctx context.Context, cfg *domain.AutomationConfig) error
	RunCardButton(ctx context.Context, buttonID, listID, cardID uuid.UUID) error
	RunBoardButton(ctx context.Context, buttonID uuid.UUID) error
	RunScheduledCommand(ctx context.Context, command domain.ScheduledCommand)
	ScheduledCommands() []domain.ScheduledCommand
}

// automationServiceImpl is the implementation of AutomationService
type automationServiceImpl struct {
	mu      sync.RWMutex
	config  *domain.AutomationConfig
	applier ActionApplier
	repo    repository.SnapshotRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
	// onReload is invoked after a successful config update so the scheduler
	// can re-register cron entries.
	onReload func()
}

// NewAutomationService creates a new instance of AutomationService
func NewAutomationService(
	config *domain.AutomationConfig,
	applier ActionApplier,
	repo repository.SnapshotRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *automationServiceImpl {
	if config == nil {
		config = &domain.AutomationConfig{}
	}
	config.Normalize()
	return &automationServiceImpl{
		config:  config,
		applier: applier,
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// OnConfigReload registers the callback invoked after UpdateConfig.
func (s *automationServiceImpl) OnConfigReload(fn func()) {
	s.onReload = fn
}

// Dispatch runs every enabled rule whose trigger matches the event against
// the originating card. Rules execute in document order; a failing rule is
// skipped with a warning and the remaining rules still run.
func (s *automationServiceImpl) Dispatch(ctx context.Context, event domain.Trigger, listID, cardID uuid.UUID) {
	s.mu.RLock()
	rules := make([]domain.AutomationRule, len(s.config.Rules))
	copy(rules, s.config.Rules)
	s.mu.RUnlock()

	for _, rule := range rules {
		if !rule.Enabled || !rule.Trigger.Matches(event) {
			continue
		}
		s.execute(ctx, rule.Name, listID, cardID, rule.Action, domain.OriginAutomation)
	}
}

// Config returns a copy of the automation document.
func (s *automationServiceImpl) Config(ctx context.Context) *domain.AutomationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := &domain.AutomationConfig{
		Rules:             append([]domain.AutomationRule{}, s.config.Rules...),
		ScheduledCommands: append([]domain.ScheduledCommand{}, s.config.ScheduledCommands...),
		CardButtons:       append([]domain.CardButton{}, s.config.CardButtons...),
		BoardButtons:      append([]domain.BoardButton{}, s.config.BoardButtons...),
	}
	return cfg
}

// UpdateConfig validates and replaces the automation document, persists it
// and notifies the scheduler. The document is validated as a whole; a single
// bad entry rejects the update.
func (s *automationServiceImpl) UpdateConfig(ctx context.Context, cfg *domain.AutomationConfig) error {
	if cfg == nil {
		return response.NewAppError(response.ErrCodeValidation, "Automation config is required", "")
	}
	cfg.Normalize()
	if err := validateAutomationConfig(cfg); err != nil {
		return response.NewAppError(response.ErrCodeValidation, "Invalid automation config", err.Error())
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveAutomation(cfg); err != nil {
			s.logger.Error("Failed to persist automation config", zap.Error(err))
		}
	}
	if s.onReload != nil {
		s.onReload()
	}
	s.logger.Info("Automation config updated",
		zap.Int("rules", len(cfg.Rules)),
		zap.Int("scheduled_commands", len(cfg.ScheduledCommands)),
	)
	return nil
}

// RunCardButton executes the identified card button against one card.
func (s *automationServiceImpl) RunCardButton(ctx context.Context, buttonID, listID, cardID uuid.UUID) error {
	s.mu.RLock()
	var button *domain.CardButton
	for i := range s.config.CardButtons {
		if s.config.CardButtons[i].ID == buttonID {
			button = &s.config.CardButtons[i]
			break
		}
	}
	s.mu.RUnlock()

	if button == nil {
		return response.NewAppError(response.ErrCodeNotFound, "Card button not found", "")
	}
	if err := s.applier.ApplyAction(ctx, listID, cardID, button.Action, domain.OriginAutomation); err != nil {
		s.skip(button.Label, cardID, err)
		return err
	}
	s.executed(button.Action)
	return nil
}

// RunBoardButton executes the identified board button against every card of
// its target list. Per-card failures are skipped, not fatal.
func (s *automationServiceImpl) RunBoardButton(ctx context.Context, buttonID uuid.UUID) error {
	s.mu.RLock()
	var button *domain.BoardButton
	for i := range s.config.BoardButtons {
		if s.config.BoardButtons[i].ID == buttonID {
			button = &s.config.BoardButtons[i]
			break
		}
	}
	s.mu.RUnlock()

	if button == nil {
		return response.NewAppError(response.ErrCodeNotFound, "Board button not found", "")
	}
	cardIDs, err := s.applier.CardIDsOfList(button.TargetListID)
	if err != nil {
		s.skip(button.Label, uuid.Nil, err)
		return err
	}
	for _, cardID := range cardIDs {
		s.execute(ctx, button.Label, button.TargetListID, cardID, button.Action, domain.OriginAutomation)
	}
	return nil
}

// RunScheduledCommand applies the command's action to every card currently
// in its target list. Called by the cron scheduler with a scheduled origin.
func (s *automationServiceImpl) RunScheduledCommand(ctx context.Context, command domain.ScheduledCommand) {
	if !command.Enabled {
		return
	}
	cardIDs, err := s.applier.CardIDsOfList(command.TargetListID)
	if err != nil {
		s.skip(command.Name, uuid.Nil, err)
		return
	}
	s.logger.Info("Running scheduled command",
		zap.String("command", command.Name),
		zap.Int("cards", len(cardIDs)),
	)
	for _, cardID := range cardIDs {
		s.execute(ctx, command.Name, command.TargetListID, cardID, command.Action, domain.OriginScheduled)
	}
}

// ScheduledCommands returns the current scheduled commands for registration.
func (s *automationServiceImpl) ScheduledCommands() []domain.ScheduledCommand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ScheduledCommand{}, s.config.ScheduledCommands...)
}

func (s *automationServiceImpl) execute(ctx context.Context, name string, listID, cardID uuid.UUID, action domain.Action, origin domain.Origin) {
	if err := s.applier.ApplyAction(ctx, listID, cardID, action, origin); err != nil {
		s.skip(name, cardID, err)
		return
	}
	s.executed(action)
}

func (s *automationServiceImpl) executed(action domain.Action) {
	if s.metrics != nil {
		s.metrics.IncrementAutomationExecution(string(action.Type))
	}
}

// skip records a rule that could not run, typically because it references a
// deleted list, card or member. The board itself is never touched.
func (s *automationServiceImpl) skip(name string, cardID uuid.UUID, err error) {
	if s.metrics != nil {
		s.metrics.IncrementAutomationSkip()
	}
	s.logger.Warn("Automation skipped",
		zap.String("rule", name),
		zap.String("card_id", cardID.String()),
		zap.Error(err),
	)
}

// validateAutomationConfig checks every action and cron expression in the
// document.
func validateAutomationConfig(cfg *domain.AutomationConfig) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for _, rule := range cfg.Rules {
		if err := rule.Action.Validate(); err != nil {
			return err
		}
	}
	for _, command := range cfg.ScheduledCommands {
		if err := command.Action.Validate(); err != nil {
			return err
		}
		if _, err := parser.Parse(command.Schedule); err != nil {
			return err
		}
	}
	for _, button := range cfg.CardButtons {
		if err := button.Action.Validate(); err != nil {
			return err
		}
	}
	for _, button := range cfg.BoardButtons {
		if err := button.Action.Validate(); err != nil {
			return err
		}
	}
	return nil
}
