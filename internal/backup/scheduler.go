package backup

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler takes a daily backup at a fixed local time and prunes old ones.
type Scheduler struct {
	scheduler *gocron.Scheduler
	manager   *Manager
	keep      int
}

// NewScheduler schedules a daily backup at "HH:MM". keep <= 0 disables
// pruning.
func NewScheduler(m *Manager, at string, keep int) (*Scheduler, error) {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		manager:   m,
		keep:      keep,
	}
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.Run); err != nil {
		return nil, fmt.Errorf("invalid backup time %q: %w", at, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates the schedule.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextRun reports when the next backup is due.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Run takes one backup and prunes. Failures are logged, not returned, since
// it runs unattended.
func (s *Scheduler) Run() {
	name, err := s.manager.Create()
	if err != nil {
		log.Printf("[backup] warning: scheduled backup failed: %v", err)
		return
	}
	log.Printf("[backup] created %s", name)

	if s.keep <= 0 {
		return
	}
	if n, err := s.manager.Prune(s.keep); err != nil {
		log.Printf("[backup] warning: prune failed: %v", err)
	} else if n > 0 {
		log.Printf("[backup] pruned %d old backups", n)
	}
}
