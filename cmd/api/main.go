package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"task-board-core/internal/config"
	"task-board-core/internal/database"
	"task-board-core/internal/domain"
	"task-board-core/internal/handler"
	"task-board-core/internal/job"
	"task-board-core/internal/metrics"
	"task-board-core/internal/repository"
	"task-board-core/internal/router"
	"task-board-core/internal/service"
	"task-board-core/internal/store"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := initLogger(cfg.Logger.Level)
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	db, err := database.New(database.Config{Path: cfg.Storage.Path})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	repo, err := repository.NewSnapshotRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize snapshot repository", zap.Error(err))
	}

	// Rehydrate the in-memory board from the persisted snapshot.
	boardStore := store.New()
	doc, err := repo.LoadBoard()
	if err != nil {
		logger.Fatal("Failed to load board snapshot", zap.Error(err))
	}
	lists, nextShortID := service.Rehydrate(doc)
	boardStore.Replace(lists, nextShortID)
	logger.Info("Board rehydrated",
		zap.Int("lists", len(lists)),
		zap.Int64("next_short_id", nextShortID),
	)

	automationConfig, err := repo.LoadAutomation()
	if err != nil {
		logger.Fatal("Failed to load automation config", zap.Error(err))
	}

	m := metrics.NewWithLogger(logger)
	hub := handler.NewSnapshotHub(m, logger)

	members := make([]domain.Member, 0, len(cfg.KnownMembers()))
	for _, entry := range cfg.KnownMembers() {
		members = append(members, domain.Member{ID: entry.ID, Name: entry.Name})
	}

	notificationService := service.NewNotificationService(cfg.User.ID, members, m, logger)
	persistService := service.NewPersistService(repo, m, logger)
	boardService := service.NewBoardService(boardStore, notificationService, persistService, hub, cfg.User.ID, members, m, logger)
	automationService := service.NewAutomationService(automationConfig, boardService, repo, m, logger)
	boardService.AttachAutomation(automationService)

	scheduler := job.NewScheduler(automationService, logger)
	automationService.OnConfigReload(scheduler.Reload)
	scheduler.Start()

	engine := router.Setup(&router.Config{
		BasePath:            cfg.Server.BasePath,
		UserID:              cfg.User.ID,
		BoardService:        boardService,
		NotificationService: notificationService,
		AutomationService:   automationService,
		PersistService:      persistService,
		Hub:                 hub,
		Metrics:             m,
		Logger:              logger,
	})

	server := &http.Server{
		Addr:         "127.0.0.1:" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("addr", server.Addr),
			zap.String("base_path", cfg.Server.BasePath),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()
	hub.Close()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	// Final snapshot flush happens inside Close.
	persistService.Close()
	logger.Info("Shutdown complete")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}

func initLogger(level string) *zap.Logger {
	zapLevel := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		zapLevel = parsed
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger
}
