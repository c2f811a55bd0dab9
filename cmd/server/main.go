package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/sitepulse/backend/api/handler"
	"github.com/sitepulse/backend/internal/config"
	"github.com/sitepulse/backend/internal/infrastructure/monitor"
	pgInfra "github.com/sitepulse/backend/internal/infrastructure/postgres"
	redisInfra "github.com/sitepulse/backend/internal/infrastructure/redis"
	"github.com/sitepulse/backend/internal/router"
	"github.com/sitepulse/backend/internal/services"
	"github.com/sitepulse/backend/internal/services/shutdown"
	"github.com/sitepulse/backend/pkg/httpcontext"
	"github.com/sitepulse/backend/pkg/logger"
	"github.com/sitepulse/backend/provider"
	"github.com/sitepulse/backend/provider/builtin"
	"github.com/sitepulse/backend/repository"
	boltRepo "github.com/sitepulse/backend/repository/bolt"
	pgRepo "github.com/sitepulse/backend/repository/postgres"
	redisRepo "github.com/sitepulse/backend/repository/redis"
	"github.com/sitepulse/backend/usecase/badges"
	"github.com/sitepulse/backend/usecase/goals"
	"github.com/sitepulse/backend/usecase/lifecycle"
	"github.com/sitepulse/backend/usecase/scoring"
)

// repos bundles every store interface the engine needs, whichever backend
// provides them.
type repos struct {
	activities repository.ActivityRepository
	contents   repository.ContentRepository
	pending    repository.PendingTaskRepository
	dismissals repository.DismissalRepository
	badges     repository.BadgeRepository
	scores     repository.ScoreCache
	guard      repository.SweepGuard
	settings   repository.SettingRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := shutdown.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		stores repos
		mon    *monitor.Monitor
	)

	switch cfg.Store.Backend {
	case config.BackendBolt:
		store, err := boltRepo.Open(cfg.Bolt.Path)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return store.Close()
		})

		stores = repos{
			activities: boltRepo.NewActivityRepository(store),
			contents:   boltRepo.NewContentRepository(store),
			pending:    boltRepo.NewPendingTaskRepository(store),
			dismissals: boltRepo.NewDismissalRepository(store),
			badges:     boltRepo.NewBadgeRepository(store),
			scores:     boltRepo.NewScoreCache(store),
			guard:      boltRepo.NewSweepGuard(store),
			settings:   boltRepo.NewSettingRepository(store),
		}
		mon = monitor.New(cfg.Store.Backend, nil, nil, store, 10*time.Second, zapLogger)

	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})

		stores = repos{
			activities: pgRepo.NewActivityRepository(pool),
			contents:   pgRepo.NewContentRepository(pool),
			pending:    redisRepo.NewPendingTaskRepository(redisClient),
			dismissals: redisRepo.NewDismissalRepository(redisClient),
			badges:     redisRepo.NewBadgeRepository(redisClient),
			scores:     redisRepo.NewScoreCache(redisClient, cfg.Scoring.CacheTTL),
			guard:      redisRepo.NewSweepGuard(redisClient),
			settings:   redisRepo.NewSettingRepository(redisClient),
		}
		mon = monitor.New(cfg.Store.Backend, pool, redisClient, nil, 10*time.Second, zapLogger)
	}

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	registry := provider.NewRegistry()
	registry.RegisterAll(zapLogger,
		builtin.NewUpdateCore(builtin.NewSettingUpdateCounter(stores.settings)),
		builtin.NewCreatePost(stores.activities),
		builtin.NewReviewPost(stores.contents, stores.activities),
		builtin.NewBlogDescription(stores.settings),
		builtin.NewSiteIcon(stores.settings),
		builtin.NewRemote(builtin.NewSettingFeed(stores.settings)),
	)

	calculator := scoring.New(
		scoring.Config{
			PublishPoints:     cfg.Scoring.PublishPoints,
			UpdatePoints:      cfg.Scoring.UpdatePoints,
			DeletePoints:      cfg.Scoring.DeletePoints,
			MaintenancePoints: cfg.Scoring.MaintenancePoints,
			DefaultTaskPoints: cfg.Scoring.DefaultTaskPoints,
			FullCreditDays:    cfg.Scoring.FullCreditDays,
			DecayWindowDays:   cfg.Scoring.DecayWindowDays,
		},
		stores.scores,
		stores.contents,
		registry.ResolvePoints,
		zapLogger,
	)

	taskManager := lifecycle.New(
		registry,
		stores.pending,
		stores.dismissals,
		stores.activities,
		stores.guard,
		lifecycle.Config{
			DismissalWindow: cfg.Lifecycle.DismissalWindow,
			GuardTTL:        cfg.Lifecycle.GuardTTL,
		},
		zapLogger,
	)

	badgeEngine := badges.New(stores.badges, stores.activities, calculator, zapLogger)
	streakEvaluator := goals.New(stores.activities, zapLogger)

	if err := badgeEngine.EnsureMonthly(appCtx, time.Now().UTC(), cfg.Badges.HorizonMonths, cfg.Badges.TargetPoints); err != nil {
		zapLogger.Warn("initial badge provisioning failed", zap.Error(err))
	}

	sweeper := services.NewSweeper(taskManager, badgeEngine, mon, zapLogger, services.SweeperConfig{
		Interval:           cfg.Lifecycle.SweepInterval,
		BadgeHorizonMonths: cfg.Badges.HorizonMonths,
		BadgeTargetPoints:  cfg.Badges.TargetPoints,
	})
	sweeper.Start()
	manager.Register("sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Activity: apiHandler.NewActivityHandler(stores.activities, calculator, ctxAdapter, zapLogger),
		Content:  apiHandler.NewContentHandler(stores.contents, stores.activities, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(taskManager, ctxAdapter, zapLogger),
		Progress: apiHandler.NewProgressHandler(badgeEngine, streakEvaluator, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store_backend", cfg.Store.Backend))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
