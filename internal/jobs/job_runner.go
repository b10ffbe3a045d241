package jobs

import (
	"sort"

	"boxrental-backend/internal/config"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/service"
)

const JobReconcileOccupancy = "reconcile-occupancy"

// Job is a named unit of scheduled work.
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Rental service.RentalService
}

func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

// Jobs lists every job with its cron schedule, sorted by name.
func (jr *JobRunner) Jobs() []Job {
	jobs := []Job{
		{Name: JobReconcileOccupancy, Schedule: jr.config.Scheduler.ReconcileOccupancy, Run: jr.ReconcileOccupancy},
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// Lookup finds a job by name.
func (jr *JobRunner) Lookup(name string) (Job, bool) {
	for _, j := range jr.Jobs() {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once, in name order.
func (jr *JobRunner) RunAll() {
	for _, j := range jr.Jobs() {
		j.Run()
	}
}
