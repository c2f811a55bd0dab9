package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/usecase/badges"
	"github.com/sitepulse/backend/usecase/lifecycle"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// SweeperConfig controls the cadence of lifecycle sweeps.
type SweeperConfig struct {
	Interval           time.Duration
	BadgeHorizonMonths int
	BadgeTargetPoints  int
}

// Sweeper runs the recurring task lifecycle passes: injection, evaluation
// and snooze resumption on a short interval, cleanup and dismissal purging
// once a day. The daily jobs are additionally guarded inside the manager,
// so overlapping instances stay harmless.
type Sweeper struct {
	manager *lifecycle.Manager
	badges  *badges.Engine
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SweeperConfig
}

func NewSweeper(
	manager *lifecycle.Manager,
	badgeEngine *badges.Engine,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg SweeperConfig,
) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.BadgeHorizonMonths <= 0 {
		cfg.BadgeHorizonMonths = 12
	}
	if cfg.BadgeTargetPoints <= 0 {
		cfg.BadgeTargetPoints = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sweeper{
		manager: manager,
		badges:  badgeEngine,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("task sweep failed", zap.Error(err))
		}
	})

	_, _ = s.cron.AddFunc("0 15 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.Housekeep(ctx); err != nil {
			s.logger.Error("daily housekeeping failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *Sweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("task sweeper started", zap.Duration("interval", s.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (s *Sweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("task sweeper stopped")
}

// Sweep performs one full lifecycle pass synchronously.
func (s *Sweeper) Sweep(ctx context.Context) error {
	if s == nil || s.manager == nil {
		return nil
	}
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping task sweep (stores offline)")
		return nil
	}

	if err := s.manager.ResumeSnoozed(ctx); err != nil {
		s.logger.Warn("snooze resume failed", zap.Error(err))
	}

	if err := s.manager.InjectTasks(ctx); err != nil {
		return fmt.Errorf("inject: %w", err)
	}

	completed, err := s.manager.EvaluateTasks(ctx)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if len(completed) > 0 {
		s.logger.Info("tasks completed during sweep", zap.Strings("task_ids", completed))
	}
	return nil
}

// Housekeep runs the daily maintenance jobs.
func (s *Sweeper) Housekeep(ctx context.Context) error {
	if s == nil || s.manager == nil {
		return nil
	}
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping housekeeping (stores offline)")
		return nil
	}

	if err := s.manager.CleanupTasks(ctx); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	if err := s.manager.PurgeDismissals(ctx); err != nil {
		return fmt.Errorf("purge dismissals: %w", err)
	}
	if s.badges != nil {
		if err := s.badges.EnsureMonthly(ctx, time.Now().UTC(), s.cfg.BadgeHorizonMonths, s.cfg.BadgeTargetPoints); err != nil {
			s.logger.Warn("badge provisioning failed", zap.Error(err))
		}
	}
	return nil
}
