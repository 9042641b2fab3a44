package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"library-lending-backend/internal/jobs"
	"library-lending-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	registered := 0
	for _, job := range []struct {
		name     string
		schedule string
		run      func()
	}{
		{"ExpireReservationHolds", cfg.ExpireReservationHolds, s.jobs.ExpireReservationHolds},
		{"SendOverdueReminders", cfg.SendOverdueReminders, s.jobs.SendOverdueReminders},
		{"RefreshPopularity", cfg.RefreshPopularity, s.jobs.RefreshPopularity},
	} {
		if _, err := s.cron.AddFunc(job.schedule, job.run); err != nil {
			logger.Error("Failed to register job", "job", job.name, "schedule", job.schedule, "error", err)
			continue
		}
		registered++
	}

	logger.Info("Cron jobs registered", "count", registered)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// EntryCount returns how many jobs are registered
func (s *Scheduler) EntryCount() int {
	return len(s.cron.Entries())
}
