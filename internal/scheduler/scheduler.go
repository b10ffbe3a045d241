package scheduler

import (
	"time"

	"boxrental-backend/internal/jobs"
	"boxrental-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the job runner's jobs on their cron schedules, in UTC with
// seconds precision.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
	}
	for _, j := range jobRunner.Jobs() {
		s.register(j)
	}
	logger.Info("Cron jobs registered", "jobs", s.JobCount())
	return s
}

// register skips jobs whose schedule does not parse; the others still run.
func (s *Scheduler) register(j jobs.Job) {
	if j.Schedule == "" {
		logger.Warn("Job has no schedule, not registered", "job", j.Name)
		return
	}
	if _, err := s.cron.AddFunc(j.Schedule, j.Run); err != nil {
		logger.Error("Failed to register job", "job", j.Name, "schedule", j.Schedule, "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Cron scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}
