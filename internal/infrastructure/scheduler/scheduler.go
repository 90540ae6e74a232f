package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

// ErrorHandler receives failures from scheduled jobs. Job errors never stop
// the scheduler.
type ErrorHandler func(err error)

type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
	}
}

func (s *Scheduler) AddJob(spec string, job func(context.Context) error, onError ErrorHandler) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil && onError != nil {
			onError(err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
