package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/audit"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/database"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LeagueLoader hydrates the LeagueContext a scheduled run replays
// against; the scheduler never constructs one itself.
type LeagueLoader func(ctx context.Context) (*domain.LeagueContext, error)

// Scheduler runs Run on a cron schedule (or once, for the HTTP/CLI
// one-shot path) and persists each result as a BacktestRun audit row.
// Disabled by default; callers opt in with Start.
type Scheduler struct {
	db         *database.DB
	logger     *logrus.Logger
	cron       *cron.Cron
	loadLeague LeagueLoader
	evalCfg    Config
	mu         sync.Mutex
	running    bool
}

// NewScheduler builds a Scheduler that replays evalCfg's window every
// time it fires.
func NewScheduler(db *database.DB, logger *logrus.Logger, loadLeague LeagueLoader, evalCfg Config) *Scheduler {
	return &Scheduler{
		db:         db,
		logger:     logger,
		cron:       cron.New(),
		loadLeague: loadLeague,
		evalCfg:    evalCfg,
	}
}

// Start schedules recurring evaluation using a standard cron
// expression (or "@every 24h"-style shorthand) and returns once the
// schedule is registered; it does not block.
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("backtest scheduler is already running")
	}

	if _, err := s.cron.AddFunc(schedule, s.runAndRecord); err != nil {
		return fmt.Errorf("schedule backtest run: %w", err)
	}

	s.cron.Start()
	s.running = true
	return nil
}

// Stop halts the schedule, waiting for any in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}

func (s *Scheduler) runAndRecord() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.WithError(err).Error("scheduled backtest run failed")
	}
}

// RunOnce replays the window once (used by both the cron schedule and
// the HTTP/CLI one-shot trigger) and persists the result.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	league, err := s.loadLeague(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load league context: %w", err)
	}

	result, err := Run(ctx, league, s.evalCfg)
	if err != nil {
		return Result{}, fmt.Errorf("run backtest: %w", err)
	}

	row := audit.NewBacktestRun(league.ID, result.WindowStartWeek, result.WindowEndWeek,
		result.BaselineMAE, result.AlphaMAE, result.AlphaLift, result.BrierScore, toReliabilityRows(result.Reliability))
	if s.db != nil {
		if err := s.db.Create(&row).Error; err != nil {
			s.logger.WithError(err).Error("failed to persist backtest run")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"league_id":   league.ID,
		"window":      fmt.Sprintf("%d-%d", result.WindowStartWeek, result.WindowEndWeek),
		"alpha_lift":  result.AlphaLift,
		"brier_score": result.BrierScore,
	}).Info("backtest run complete")

	return result, nil
}

func toReliabilityRows(buckets []ReliabilityBucket) []audit.ReliabilityRow {
	rows := make([]audit.ReliabilityRow, len(buckets))
	for i, b := range buckets {
		rows[i] = audit.ReliabilityRow{
			BucketLow:   b.BucketLow,
			BucketHigh:  b.BucketHigh,
			Predictions: b.Predictions,
			Wins:        b.Wins,
		}
	}
	return rows
}
