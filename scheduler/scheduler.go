// Package scheduler pre-generates Today's Briefing on a cron schedule.
package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"briefcast/coordinator"

	"github.com/robfig/cron/v3"
)

// Generator starts the personal briefing generation.
type Generator interface {
	GenerateToday() error
}

type Scheduler struct {
	cron *cron.Cron
	gen  Generator

	mu    sync.Mutex
	id    cron.EntryID
	runs  int
	skips int
}

func New(gen Generator) *Scheduler {
	return &Scheduler{cron: cron.New(), gen: gen}
}

// Start schedules the job with a standard five-field cron spec.
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() {
		log.Println("Cron triggered: generating today's briefing")
		if err := s.Trigger(); err != nil && !errors.Is(err, coordinator.ErrGenerationInFlight) {
			log.Printf("Cron generation error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.id = id
	s.cron.Start()
	log.Printf("Cron job started with schedule: %s", spec)
	return nil
}

// Trigger runs the job now. A generation already in flight is skipped.
func (s *Scheduler) Trigger() error {
	err := s.gen.GenerateToday()
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, coordinator.ErrGenerationInFlight) {
		s.skips++
		log.Printf("Cron skipped: a briefing is already being generated")
		return err
	}
	if err == nil {
		s.runs++
	}
	return err
}

// Next returns when the job fires next, or zero before Start.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.id).Next
}

// Stats returns how many triggers started a generation and how many were skipped.
func (s *Scheduler) Stats() (runs, skips int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.skips
}

// Stop stops the cron and waits for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

