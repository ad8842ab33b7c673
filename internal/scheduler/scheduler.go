package scheduler

import (
	"context"
	"fmt"
	"time"

	"anoa.com/alienvault/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a background task run on a cron schedule.
type Job interface {
	Name() string
	// Schedule is a cron spec such as "@every 1m". Empty means on-demand only.
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler owns the cron runner and the registered jobs.
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  *logrus.Entry
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  logger.WithComponent("scheduler"),
	}
}

func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		s.log.WithField("job", job.Name()).Info("registered on-demand job")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.execute(context.Background(), job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	s.log.WithFields(logrus.Fields{"job": job.Name(), "schedule": schedule}).Info("scheduled job")
	return nil
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	start := time.Now()
	entry := s.log.WithField("job", job.Name())
	if err := job.Run(ctx); err != nil {
		entry.WithError(err).Error("job failed")
		return
	}
	entry.WithField("took", time.Since(start)).Debug("job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunByName executes a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) JobNames() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
