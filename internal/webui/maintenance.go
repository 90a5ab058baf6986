package webui

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kayz/veoscene/internal/cron"
	"github.com/kayz/veoscene/internal/logger"
)

// Scheduler is the part of *cron.Scheduler the maintenance endpoint drives.
type Scheduler interface {
	ListJobs() []*cron.Job
	NextRun(id string) time.Time
	RunNow(ctx context.Context, name string) error
	PauseJob(id string) error
	ResumeJob(id string) error
	RemoveJob(id string) error
}

type maintenanceRequest struct {
	Job    string `json:"job"`
	Action string `json:"action"`
}

type jobView struct {
	*cron.Job
	NextRun string `json:"next_run,omitempty"`
}

func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMaintenance(w)
	case http.MethodPost:
		s.controlMaintenance(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) listMaintenance(w http.ResponseWriter) {
	if s.scheduler == nil {
		writeJSON(w, http.StatusOK, map[string]any{"jobs": []any{}, "enabled": false})
		return
	}
	jobs := s.scheduler.ListJobs()
	views := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		v := jobView{Job: j}
		if next := s.scheduler.NextRun(j.ID); !next.IsZero() {
			v.NextRun = next.Format(time.RFC3339)
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": views, "enabled": true})
}

// controlMaintenance applies run, pause, resume or remove to one job by name.
func (s *Server) controlMaintenance(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance is not running"})
		return
	}
	var req maintenanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	var job *cron.Job
	for _, j := range s.scheduler.ListJobs() {
		if j.Name == req.Job {
			job = j
			break
		}
	}
	if job == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found: " + req.Job})
		return
	}

	var err error
	status := http.StatusConflict
	switch action := strings.ToLower(strings.TrimSpace(req.Action)); action {
	case "run":
		err = s.scheduler.RunNow(r.Context(), job.Name)
		status = http.StatusInternalServerError
	case "pause":
		err = s.scheduler.PauseJob(job.ID)
	case "resume":
		err = s.scheduler.ResumeJob(job.ID)
	case "remove":
		err = s.scheduler.RemoveJob(job.ID)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action " + req.Action + " (want run, pause, resume or remove)"})
		return
	}
	if err != nil {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	logger.Info("[WebUI] maintenance %s: %s", req.Action, job.Name)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "job": job.Name, "action": req.Action})
}
