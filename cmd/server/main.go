package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"predictmarket/internal/client/gamma"
	"predictmarket/internal/config"
	cronrunner "predictmarket/internal/cron"
	"predictmarket/internal/db"
	"predictmarket/internal/handler"
	"predictmarket/internal/logger"
	gormrepository "predictmarket/internal/repository/gorm"
	"predictmarket/internal/service"
	"predictmarket/internal/ws"

	_ "predictmarket/docs"
)

func main() {
	cfgPath := os.Getenv("PREDICT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PREDICT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SettingsService{Repo: store, Defaults: cfg.Scoring}

	var hub *ws.Hub
	if cfg.LiveFeed.Enabled {
		hub = ws.NewHub(cfg.LiveFeed, logger)
	}

	marketSvc := &service.MarketService{Repo: store, Logger: logger}
	voteSvc := &service.VoteService{Repo: store, Logger: logger}
	if hub != nil {
		voteSvc.Observer = hub
	}
	snapshotSvc := &service.SnapshotService{Repo: store, Logger: logger}
	resolutionSvc := &service.ResolutionService{Repo: store, Settings: settingsSvc, Logger: logger}
	profileSvc := &service.ProfileService{Repo: store}

	feedHTTP := &http.Client{Timeout: cfg.Suggestions.Timeout}
	feedClient := gamma.NewClientWithHost(feedHTTP, cfg.Suggestions.BaseURL)
	importSvc := &service.SuggestionImportService{
		Repo:   store,
		Feed:   feedClient,
		Config: cfg.Suggestions,
		Logger: logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	marketHandler := &handler.MarketHandler{
		Markets:    marketSvc,
		Resolution: resolutionSvc,
		Snapshots:  snapshotSvc,
		Settings:   settingsSvc,
		Logger:     logger,
	}
	marketHandler.Register(engine)
	voteHandler := &handler.VoteHandler{Votes: voteSvc}
	voteHandler.Register(engine)
	profileHandler := &handler.ProfileHandler{Profiles: profileSvc}
	profileHandler.Register(engine)
	settingsHandler := &handler.SettingsHandler{Repo: store, Settings: settingsSvc}
	settingsHandler.Register(engine)
	suggestionHandler := &handler.SuggestionHandler{Repo: store, Import: importSvc, Markets: marketSvc}
	suggestionHandler.Register(engine)
	if hub != nil {
		liveHandler := &handler.LiveHandler{Hub: hub, Markets: marketSvc, Logger: logger}
		liveHandler.Register(engine)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add("snapshot", cfg.Cron.Snapshot, snapshotSvc.SnapshotOpenMarkets)
		if err != nil {
			logger.Warn("cron register snapshot failed", zap.Error(err))
		}
		_, err = cronRunner.Add("close-overdue", cfg.Cron.CloseOverdue, func(ctx context.Context) error {
			_, err := marketSvc.CloseOverdueMarkets(ctx)
			return err
		})
		if err != nil {
			logger.Warn("cron register close-overdue failed", zap.Error(err))
		}
		if cfg.Suggestions.Enabled {
			spec := "@every " + cfg.Suggestions.PollInterval.String()
			_, err = cronRunner.Add("suggestion-import", spec, func(ctx context.Context) error {
				_, err := importSvc.RunOnce(ctx)
				return err
			})
			if err != nil {
				logger.Warn("cron register suggestion import failed", zap.Error(err))
			}
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
