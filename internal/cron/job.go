package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// TaskFunc is the work a job performs on each tick.
type TaskFunc func(ctx context.Context) error

// Job represents a scheduled maintenance task
type Job struct {
	ID        string     `json:"id"`                   // Unique identifier
	Name      string     `json:"name"`                 // Human-readable name, unique per scheduler
	Schedule  string     `json:"schedule"`             // Cron expression (6-field, seconds first)
	Enabled   bool       `json:"enabled"`              // Whether job is active
	CreatedAt time.Time  `json:"created_at"`           // Job creation timestamp
	LastRun   *time.Time `json:"last_run,omitempty"`   // Last execution timestamp
	LastError string     `json:"last_error,omitempty"` // Last error message
	Runs      int        `json:"runs"`

	task    TaskFunc
	entryID cron.EntryID
}

// Clone copies the reportable fields of the job
func (j *Job) Clone() *Job {
	clone := &Job{
		ID:        j.ID,
		Name:      j.Name,
		Schedule:  j.Schedule,
		Enabled:   j.Enabled,
		CreatedAt: j.CreatedAt,
		LastError: j.LastError,
		Runs:      j.Runs,
	}

	if j.LastRun != nil {
		lastRun := *j.LastRun
		clone.LastRun = &lastRun
	}

	return clone
}
