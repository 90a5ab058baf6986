// Package cron runs background housekeeping such as audit retention and history purges.
package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/metrics"
)

// jobTimeout bounds a single run.
const jobTimeout = 5 * time.Minute

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]*Job
	mu   sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]*Job),
	}
}

// normalizeCron prepends "0 " to standard 5-field cron expressions
// so they work with the 6-field (with seconds) parser.
func normalizeCron(schedule string) string {
	schedule = strings.TrimSpace(schedule)
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether schedule is a usable 5- or 6-field expression or descriptor.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(normalizeCron(schedule)); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.RLock()
	n := len(s.jobs)
	s.mu.RUnlock()

	s.cron.Start()
	logger.Info("[CRON] Scheduler started with %d jobs", n)
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("[CRON] Scheduler stopped")
}

// AddJob schedules task under name. An empty schedule is ignored and returns nil, nil.
func (s *Scheduler) AddJob(name, schedule string, task TaskFunc) (*Job, error) {
	if strings.TrimSpace(schedule) == "" {
		logger.Debug("[CRON] Job %s has no schedule, skipped", name)
		return nil, nil
	}
	if task == nil {
		return nil, fmt.Errorf("job %s has no task", name)
	}
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.New().String(),
		Name:      name,
		Schedule:  normalizeCron(schedule),
		Enabled:   true,
		CreatedAt: time.Now(),
		task:      task,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.jobs {
		if existing.Name == name {
			return nil, fmt.Errorf("job %s already exists", name)
		}
	}
	if err := s.scheduleJob(job); err != nil {
		return nil, fmt.Errorf("failed to schedule job: %w", err)
	}
	s.jobs[job.ID] = job

	logger.Info("[CRON] Job created: %s (%s) - schedule: %s", job.ID, job.Name, job.Schedule)
	return job.Clone(), nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	if job.entryID != 0 {
		s.cron.Remove(job.entryID)
	}
	delete(s.jobs, id)

	logger.Info("[CRON] Job removed: %s (%s)", job.ID, job.Name)
	return nil
}

// PauseJob pauses a job
func (s *Scheduler) PauseJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	if !job.Enabled {
		return fmt.Errorf("job is already paused")
	}
	if job.entryID != 0 {
		s.cron.Remove(job.entryID)
		job.entryID = 0
	}
	job.Enabled = false

	logger.Info("[CRON] Job paused: %s (%s)", job.ID, job.Name)
	return nil
}

// ResumeJob resumes a paused job
func (s *Scheduler) ResumeJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	if job.Enabled {
		return fmt.Errorf("job is already running")
	}
	if err := s.scheduleJob(job); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}
	job.Enabled = true

	logger.Info("[CRON] Job resumed: %s (%s)", job.ID, job.Name)
	return nil
}

// ListJobs returns all jobs ordered by name
func (s *Scheduler) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// RunNow executes the named job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	var found *Job
	for _, job := range s.jobs {
		if job.Name == name {
			found = job
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return fmt.Errorf("job not found: %s", name)
	}
	return s.executeJob(ctx, found)
}

// NextRun returns the next activation of the job with the given id, or the zero time.
func (s *Scheduler) NextRun(id string) time.Time {
	s.mu.RLock()
	var entryID cron.EntryID
	if job, ok := s.jobs[id]; ok {
		entryID = job.entryID
	}
	s.mu.RUnlock()
	if entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}

// scheduleJob schedules a job in the cron scheduler; callers hold s.mu.
func (s *Scheduler) scheduleJob(job *Job) error {
	entryID, err := s.cron.AddFunc(job.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_ = s.executeJob(ctx, job)
	})
	if err != nil {
		return err
	}
	job.entryID = entryID
	return nil
}

func (s *Scheduler) executeJob(ctx context.Context, job *Job) error {
	now := time.Now()
	logger.Debug("[CRON] Running job: %s (%s)", job.ID, job.Name)

	err := job.task(ctx)

	s.mu.Lock()
	job.LastRun = &now
	job.Runs++
	if err != nil {
		job.LastError = err.Error()
	} else {
		job.LastError = ""
	}
	s.mu.Unlock()

	status := "ok"
	if err != nil {
		status = "error"
		logger.Warn("[CRON] Job %s (%s) failed: %v", job.ID, job.Name, err)
	}
	metrics.MaintenanceRunsTotal.WithLabelValues(job.Name, status).Inc()
	return err
}
