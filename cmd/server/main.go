package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/ff-alpha-core/internal/alpha"
	"github.com/jstittsworth/ff-alpha-core/internal/api"
	"github.com/jstittsworth/ff-alpha-core/internal/api/handlers"
	"github.com/jstittsworth/ff-alpha-core/internal/api/middleware"
	"github.com/jstittsworth/ff-alpha-core/internal/audit"
	"github.com/jstittsworth/ff-alpha-core/internal/backtest"
	"github.com/jstittsworth/ff-alpha-core/internal/cache"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/feeds"
	"github.com/jstittsworth/ff-alpha-core/internal/montecarlo"
	"github.com/jstittsworth/ff-alpha-core/internal/perfmodel"
	"github.com/jstittsworth/ff-alpha-core/internal/pipeline"
	"github.com/jstittsworth/ff-alpha-core/pkg/config"
	"github.com/jstittsworth/ff-alpha-core/pkg/database"
	"github.com/jstittsworth/ff-alpha-core/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger()
	structuredLogger.WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"database_url": cfg.DatabaseURL,
	}).Info("starting ff-alpha-core")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.SQLitePath, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := audit.Migrate(db.DB); err != nil {
		logrus.Fatalf("Failed to migrate audit tables: %v", err)
	}

	var redisClient *redis.Client
	if cfg.CacheRedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.CacheRedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("Failed to connect to Redis: %v", err)
		}
		cancel()
		defer redisClient.Close()
	} else {
		logrus.Warn("no cache redis address configured, projection memoization disabled")
	}
	projectionCache := cache.NewProjectionCache(redisClient)

	cacheStore, err := perfmodel.NewCacheStore(cfg.CacheDir, time.Duration(cfg.CacheTTLHours)*time.Hour)
	if err != nil {
		logrus.Fatalf("Failed to open performance-model cache store: %v", err)
	}
	trainer := perfmodel.NewTrainer(cacheStore)

	snapshotStore, err := feeds.NewSnapshotStore(cfg.AsOfSnapshotRoot)
	if err != nil {
		logrus.Fatalf("Failed to open feed snapshot store: %v", err)
	}

	registry := feeds.NewRegistry(feeds.AdapterConfig{
		TimeoutSeconds:      cfg.TimeoutSeconds,
		Retries:             cfg.Retries,
		ConsecutiveFailures: 5,
		RatePerSecond:       5,
		Burst:               5,
	})

	providerCfg := alpha.DefaultProviderConfig()
	providerCfg.EnableExtended = cfg.EnableExtendedSignals
	if len(cfg.SignalWeights) > 0 {
		providerCfg.Weights = alpha.SignalWeights(cfg.SignalWeights)
	}
	if len(cfg.InjuryPenalties) > 0 {
		providerCfg.InjuryPenalties = cfg.InjuryPenalties
	}
	for name, v := range cfg.SignalCaps {
		providerCfg.Clips[name] = alpha.ClipRange{Min: -v, Max: v}
	}
	if cfg.TotalCap > 0 {
		providerCfg.TotalClip = alpha.ClipRange{Min: -cfg.TotalCap, Max: cfg.TotalCap}
	}
	provider := alpha.NewProvider(providerCfg)

	blendCfg := alpha.DefaultBlendConfig()
	if cfg.AlphaBlend > 0 {
		blendCfg.AlphaBlend = cfg.AlphaBlend
	}
	if cfg.ShrinkageK > 0 {
		blendCfg.ShrinkageK = cfg.ShrinkageK
	}

	publicationLag := map[string]time.Duration{}
	for feed, seconds := range cfg.AsOfPublicationLagSecondsByFeed {
		publicationLag[feed] = time.Duration(seconds) * time.Second
	}
	staleness := feeds.StalenessConfig{}
	for feed, seconds := range cfg.AsOfMaxStalenessSecondsByFeed {
		staleness[feed] = time.Duration(seconds) * time.Second
	}
	injuryPenalties := map[domain.InjuryStatus]float64{}
	for status, penalty := range cfg.InjuryPenalties {
		injuryPenalties[domain.NormalizeInjuryStatus(status)] = penalty
	}

	pipelineDeps := pipeline.Deps{
		Trainer:         trainer,
		Store:           cacheStore,
		Snapshots:       snapshotStore,
		Registry:        registry,
		Provider:        provider,
		BlendConfig:     blendCfg,
		Cache:           projectionCache,
		CacheTTL:        time.Duration(cfg.CacheTTLSeconds) * time.Second,
		FeedNames:       []string{"weather", "market", "odds", "injury_news", "nextgenstats"},
		PublicationLag:  publicationLag,
		Staleness:       staleness,
		InjuryPenalties: injuryPenalties,
		Year:            time.Now().UTC().Year(),
	}
	pipelineService := pipeline.NewService(pipelineDeps)

	var scheduler *backtest.Scheduler
	if cfg.EnableBacktestCron {
		loadLeague := func(ctx context.Context) (*domain.LeagueContext, error) {
			return nil, fmt.Errorf("league loader not configured: wire an upstream league collaborator")
		}
		evalCfg := backtest.Config{
			Store:           snapshotStore,
			FeedNames:       pipelineDeps.FeedNames,
			PublicationLag:  publicationLag,
			Staleness:       staleness,
			Provider:        provider,
			BlendConfig:     blendCfg,
			InjuryPenalties: injuryPenalties,
			Simulation: montecarlo.Config{
				NumSimulations:     cfg.NumSimulations,
				Workers:            cfg.Workers,
				Seed:               cfg.Seed,
				ScoreVarianceFloor: cfg.ScoreVarianceFloor,
			},
		}
		scheduler = backtest.NewScheduler(db, structuredLogger, loadLeague, evalCfg)
		if err := scheduler.Start(cfg.BacktestCronExpr); err != nil {
			logrus.Errorf("failed to start backtest scheduler: %v", err)
			scheduler = nil
		} else {
			defer scheduler.Stop()
		}
	}

	h := handlers.New(handlers.Deps{
		Pipeline:     pipelineService,
		PipelineDeps: pipelineDeps,
		DB:           db,
		Cache:        projectionCache,
		Scheduler:    scheduler,
		Cfg:          cfg,
		Logger:       structuredLogger,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server forced to shutdown: %v", err)
	}

	logrus.Info("server exited")
}
