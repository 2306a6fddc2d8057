package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"task-board-core/internal/handler"
	"task-board-core/internal/metrics"
	"task-board-core/internal/middleware"
	"task-board-core/internal/service"
)

// Config carries everything the router needs wired in.
type Config struct {
	BasePath            string
	UserID              uuid.UUID
	BoardService        service.BoardService
	NotificationService service.NotificationService
	AutomationService   service.AutomationService
	PersistService      service.PersistService
	Hub                 *handler.SnapshotHub
	Metrics             *metrics.Metrics
	Logger              *zap.Logger
}

// Setup builds the gin engine with all middleware and routes.
func Setup(cfg *Config) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.Recovery(cfg.Logger))
	engine.Use(middleware.CORS())
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics))
	}
	engine.Use(middleware.Identity(cfg.UserID))

	listHandler := handler.NewListHandler(cfg.BoardService, cfg.Logger)
	cardHandler := handler.NewCardHandler(cfg.BoardService, cfg.Logger)
	visibilityHandler := handler.NewVisibilityHandler(cfg.BoardService, cfg.Logger)
	notificationHandler := handler.NewNotificationHandler(cfg.NotificationService, cfg.Logger)
	automationHandler := handler.NewAutomationHandler(cfg.AutomationService, cfg.BoardService, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.PersistService)

	engine.GET("/health", healthHandler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Hub != nil {
		engine.GET("/ws", cfg.Hub.HandleWS)
	}

	api := engine.Group(cfg.BasePath)
	{
		api.GET("", listHandler.GetBoard)

		api.POST("/lists", listHandler.CreateList)
		api.PUT("/lists/:listId", listHandler.RenameList)
		api.DELETE("/lists/:listId", listHandler.DeleteList)

		api.POST("/lists/:listId/cards", cardHandler.CreateCard)
		api.PATCH("/lists/:listId/cards/:cardId", cardHandler.UpdateCard)
		api.DELETE("/lists/:listId/cards/:cardId", cardHandler.DeleteCard)
		api.POST("/lists/:listId/cards/:cardId/comments", cardHandler.PostComment)
		api.POST("/lists/:listId/cards/:cardId/checklists", cardHandler.AddChecklist)
		api.PUT("/lists/:listId/cards/:cardId/checklists/:checklistId/items", cardHandler.SetChecklistItem)
		api.POST("/lists/:listId/cards/:cardId/attachments", cardHandler.AddAttachment)
		api.POST("/cards/move", cardHandler.MoveCard)

		api.POST("/visibility", visibilityHandler.Visibility)
		api.POST("/lists/:listId/drop-index", visibilityHandler.DropIndex)

		api.GET("/notifications", notificationHandler.GetFeed)
		api.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
		api.POST("/notifications/:notificationId/read", notificationHandler.MarkRead)

		api.GET("/automation/config", automationHandler.GetConfig)
		api.PUT("/automation/config", automationHandler.UpdateConfig)
		api.POST("/automation/card-buttons/:buttonId/run", automationHandler.RunCardButton)
		api.POST("/automation/board-buttons/:buttonId/run", automationHandler.RunBoardButton)
	}

	return engine
}
