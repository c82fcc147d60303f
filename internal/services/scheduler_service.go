package services

import (
	"context"
	"time"

	"github.com/codebaseshow/codebaseshow/pkg/logger"
)

// SchedulerService runs the recurring maintenance schedules: an hourly
// GitHub data refresh batch and, at midnight, the daily sweep.
type SchedulerService struct {
	implementationService *ImplementationService
	projectService        *ProjectService
}

func NewSchedulerService(
	implementationService *ImplementationService,
	projectService *ProjectService,
) *SchedulerService {
	return &SchedulerService{
		implementationService: implementationService,
		projectService:        projectService,
	}
}

// StartScheduler starts the maintenance loop. It ticks at the top of every
// hour and stops when ctx is cancelled.
func (s *SchedulerService) StartScheduler(ctx context.Context) {
	go func() {
		for {
			now := time.Now()

			// Sleep until the next hour
			nextHour := now.Add(1 * time.Hour)
			nextHour = time.Date(nextHour.Year(), nextHour.Month(), nextHour.Day(), nextHour.Hour(), 0, 0, 0, nextHour.Location())

			select {
			case <-ctx.Done():
				return
			case <-time.After(nextHour.Sub(now)):
			}

			s.RunHourlyTasks(ctx)

			if time.Now().Hour() == 0 {
				s.RunDailyTasks(ctx)
			}
		}
	}()
}

// RunHourlyTasks refreshes the oldest slice of cached GitHub data
func (s *SchedulerService) RunHourlyTasks(ctx context.Context) {
	logger.Info("Running hourly tasks")

	if err := s.implementationService.RefreshOldestBatch(ctx); err != nil {
		logger.WithError(err).Error("Hourly GitHub data refresh failed")
	}
}

// RunDailyTasks runs the unmaintained-issue sweep, recounts the project
// implementation counters and rewrites the public data snapshot.
func (s *SchedulerService) RunDailyTasks(ctx context.Context) {
	logger.Info("Running daily tasks")

	if err := s.implementationService.CheckAllMaintenanceStatuses(ctx); err != nil {
		logger.WithError(err).Error("Daily maintenance status sweep failed")
	}

	if err := s.projectService.RefreshAllNumberOfImplementations(); err != nil {
		logger.WithError(err).Error("Daily implementation recount failed")
	}

	if err := s.projectService.BackupPublicData(); err != nil {
		logger.WithError(err).Error("Daily public data backup failed")
	}
}
