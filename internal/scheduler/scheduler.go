// Package scheduler runs the scrape on a cadence: a rolling interval job
// for score freshness plus one full scrape at a fixed hour each day.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Task is one scheduled scrape execution.
type Task func(ctx context.Context) error

// Scheduler owns the gocron jobs driving the scrape task.
type Scheduler struct {
	cron     gocron.Scheduler
	task     Task
	interval time.Duration
	daily    int
}

// New builds a scheduler that runs task every interval and once daily at the
// given hour (local time).
func New(interval time.Duration, dailyHour int, task Task) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	return &Scheduler{
		cron:     cron,
		task:     task,
		interval: interval,
		daily:    dailyHour,
	}, nil
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.run, ctx),
	)
	if err != nil {
		return fmt.Errorf("creating interval job: %w", err)
	}

	_, err = s.cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(s.daily), 0, 0))),
		gocron.NewTask(s.run, ctx),
	)
	if err != nil {
		return fmt.Errorf("creating daily job: %w", err)
	}

	s.cron.Start()
	log.Printf("scheduler: scraping every %v, full refresh daily at %02d:00", s.interval, s.daily)
	return nil
}

// Stop shuts the jobs down, waiting for a running scrape to finish.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.task(ctx); err != nil {
		log.Printf("scheduler: scheduled scrape failed: %v", err)
	}
}
