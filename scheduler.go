package main

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs the fetch/aggregate/report cycle on a cron schedule in
// watch mode. The app keeps its cache across ticks, so metadata and tariff
// entries survive while consumption entries expire on their own TTL.
type Scheduler struct {
	Cron *cron.Cron
	App  *App
}

// NewScheduler creates a new Scheduler.
func NewScheduler(app *App) *Scheduler {
	return &Scheduler{
		Cron: cron.New(),
		App:  app,
	}
}

// Register adds the refresh task under the given cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refresh); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) refresh() {
	log.Println("[INFO] running scheduled refresh")
	if err := s.App.Run(); err != nil {
		log.Printf("[ERROR] scheduled refresh: %v", err)
	}
}
