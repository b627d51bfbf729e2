package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SchedulerService runs the background maintenance jobs: periodic catalog
// refresh and analytics retention pruning.
type SchedulerService struct {
	scheduler gocron.Scheduler
	catalog   *CatalogService
	analytics *AnalyticsService
}

// NewSchedulerService creates the scheduler
func NewSchedulerService(catalogService *CatalogService, analyticsService *AnalyticsService) (*SchedulerService, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &SchedulerService{
		scheduler: scheduler,
		catalog:   catalogService,
		analytics: analyticsService,
	}, nil
}

// Start registers jobs and begins the scheduler. refreshInterval 0 disables
// the periodic catalog refresh (the fsnotify watcher still covers local
// edits); retention 0 disables pruning.
func (s *SchedulerService) Start(refreshInterval, retention time.Duration) error {
	if refreshInterval > 0 {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(refreshInterval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := s.catalog.Refresh(ctx); err != nil {
					log.Printf("⚠️ [SCHEDULER] Periodic catalog refresh failed: %v", err)
				}
			}),
			gocron.WithName("catalog-refresh"),
		)
		if err != nil {
			return fmt.Errorf("failed to register refresh job: %w", err)
		}
		log.Printf("📅 Registered periodic catalog refresh (every %v)", refreshInterval)
	}

	if retention > 0 && s.analytics != nil {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(24*time.Hour),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
				defer cancel()
				removed, err := s.analytics.Prune(ctx, retention)
				if err != nil {
					log.Printf("⚠️ [SCHEDULER] Analytics prune failed: %v", err)
					return
				}
				if removed > 0 {
					log.Printf("🧹 [SCHEDULER] Pruned %d usage events older than %v", removed, retention)
				}
			}),
			gocron.WithName("analytics-prune"),
		)
		if err != nil {
			return fmt.Errorf("failed to register prune job: %w", err)
		}
		log.Printf("📅 Registered analytics prune job (retention %v)", retention)
	}

	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs
func (s *SchedulerService) Stop() error {
	return s.scheduler.Shutdown()
}
