package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"pulsedash/internal/repositories"
	"pulsedash/internal/services"
)

// Share links untouched for this long stop resolving.
const shareTokenMaxIdle = 90 * 24 * time.Hour

// Scheduler runs the recurring jobs: the full-fleet sync and share-token
// hygiene. Singleton mode keeps a slow sync from stacking on the next one.
type Scheduler struct {
	scheduler   gocron.Scheduler
	syncService services.SyncService
	agencyRepo  repositories.AgencyRepository
	interval    time.Duration
	logger      *zap.Logger
}

func NewScheduler(syncService services.SyncService, agencyRepo repositories.AgencyRepository, syncInterval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler:   scheduler,
		syncService: syncService,
		agencyRepo:  agencyRepo,
		interval:    syncInterval,
		logger:      logger,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(syncInterval),
		gocron.NewTask(s.runSyncAll),
		gocron.WithName("klaviyo-sync-all"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(s.disableStaleShareTokens),
		gocron.WithName("share-token-hygiene"),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting background scheduler", zap.Duration("sync_interval", s.interval))
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.logger.Info("stopping background scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runSyncAll() {
	ctx := context.Background()
	started := time.Now()
	results := s.syncService.SyncAll(ctx)

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	s.logger.Info("scheduled sync completed",
		zap.Int("clients", len(results)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(started)))
}

func (s *Scheduler) disableStaleShareTokens() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-shareTokenMaxIdle)
	disabled, err := s.agencyRepo.DisableStaleShareTokens(ctx, cutoff)
	if err != nil {
		s.logger.Error("share token hygiene failed", zap.Error(err))
		return
	}
	if disabled > 0 {
		s.logger.Info("disabled stale share links", zap.Int64("count", disabled))
	}
}
