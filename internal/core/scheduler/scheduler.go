package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// Scheduler runs recurring background jobs on cron expressions with
// seconds precision.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	jobsMux sync.RWMutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	utils.LogInfo("Scheduler started", nil)
}

// Stop halts the cron loop. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	utils.LogInfo("Scheduler stopped", nil)
}

// AddJob registers (or replaces) a named recurring job.
func (s *Scheduler) AddJob(name string, schedule string, job func()) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}

	entryID, err := s.cron.AddFunc(schedule, job)
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	utils.LogInfo("Scheduled job", map[string]interface{}{"job": name, "schedule": schedule})
	return nil
}

// RemoveJob unregisters a named job if present.
func (s *Scheduler) RemoveJob(name string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
}

// Jobs lists the names of all registered jobs.
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
