package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kayz/veoscene/internal/credential"
	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/persist"
	"github.com/kayz/veoscene/internal/promptbuild"
	"github.com/kayz/veoscene/internal/render"
	"github.com/kayz/veoscene/internal/scene"
)

// maxBodyBytes caps request bodies; a 20-minute scene reply is well below it.
const maxBodyBytes = 4 << 20

// SceneGenerator runs one generation attempt. *generator.Generator satisfies it.
type SceneGenerator interface {
	Generate(ctx context.Context, cfg scene.Config, secret *credential.Secret) (*scene.GeneratedScene, error)
	Options() generator.Options
}

// HistoryReader lists recent attempts. *persist.Store satisfies it.
type HistoryReader interface {
	ListAttempts(limit int) ([]*persist.Attempt, error)
	Stats() ([]persist.OutcomeCount, error)
}

type Server struct {
	generator SceneGenerator
	history   HistoryReader
	builder   *promptbuild.Builder
	scheduler Scheduler
	startedAt time.Time
}

type Option func(*Server)

func WithHistory(h HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// WithBuilder sets the builder used by /api/compose.
func WithBuilder(b *promptbuild.Builder) Option {
	return func(s *Server) { s.builder = b }
}

// WithScheduler exposes the maintenance jobs on /api/maintenance.
func WithScheduler(sc Scheduler) Option {
	return func(s *Server) { s.scheduler = sc }
}

func NewServer(gen SceneGenerator, opts ...Option) *Server {
	s := &Server{
		generator: gen,
		startedAt: time.Now().UTC(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/architecture", s.handleArchitecture)
	mux.HandleFunc("/api/compose", s.handleCompose)
	mux.HandleFunc("/api/validate", s.handleValidate)
	mux.HandleFunc("/api/sample", s.handleSample)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/maintenance", s.handleMaintenance)
	mux.Handle("/metrics", promhttp.Handler())
	return recovery(instrument(mux))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultIndexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"ok":          true,
		"started_at":  s.startedAt.Format(time.RFC3339),
		"uptime_sec":  int(time.Since(s.startedAt).Seconds()),
		"durations":   scene.Durations(),
		"scene_types": sceneTypeOptions(),
		"views":       render.Views(),
	}
	if s.generator != nil {
		opts := s.generator.Options()
		payload["provider"] = opts.Provider
		payload["model"] = opts.Model
		payload["strict"] = opts.Strict
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleArchitecture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	durations := scene.Durations()
	if raw := strings.TrimSpace(r.URL.Query().Get("duration")); raw != "" {
		d, err := parseDuration(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		durations = []scene.Duration{d}
	}

	type row struct {
		Duration     int   `json:"duration"`
		TotalSeconds int   `json:"totalSeconds"`
		TotalShots   int   `json:"totalShots"`
		ActCount     int   `json:"actCount"`
		ShotsPerAct  []int `json:"shotsPerAct"`
		AvgShot      int   `json:"avgShotDurationSeconds"`
	}
	rows := make([]row, 0, len(durations))
	for _, d := range durations {
		spec := scene.Lookup(d)
		rows = append(rows, row{
			Duration:     int(d),
			TotalSeconds: d.Seconds(),
			TotalShots:   spec.TotalShots(),
			ActCount:     spec.ActCount,
			ShotsPerAct:  spec.ShotsPerAct,
			AvgShot:      spec.AvgShotDurationSeconds,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"architectures": rows, "tolerance": scene.ToleranceLabel})
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var cfg scene.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body", "kind": string(scene.KindConfiguration)})
		return
	}

	var (
		prompt promptbuild.Prompt
		err    error
	)
	if s.builder != nil {
		prompt, err = s.builder.Compose(cfg)
	} else {
		prompt, err = promptbuild.Compose(cfg)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"system": prompt.System, "user": prompt.User})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	q := r.URL.Query()
	strict := parseBool(q.Get("strict"))
	var cfg scene.Config
	if strict {
		d, err := parseDuration(q.Get("duration"))
		if err != nil {
			writeError(w, err)
			return
		}
		cfg = scene.Config{Duration: d, SceneType: scene.SceneType(q.Get("scene_type"))}
	}

	sc, err := generator.Validate(payload, strict, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "strict": strict, "totalShots": sc.ShotCount()})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	view, err := requestView(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeScene(w, view, generator.Sample())
}

type generateRequest struct {
	APIKey string       `json:"api_key"`
	Config scene.Config `json:"config"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "generator is not initialized"})
		return
	}

	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body", "kind": string(scene.KindConfiguration)})
		return
	}
	secret := credential.New(req.APIKey)
	req.APIKey = ""
	defer secret.Release()

	view, err := requestView(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sc, err := s.generator.Generate(r.Context(), req.Config, secret)
	if err != nil {
		writeError(w, err)
		return
	}
	writeScene(w, view, sc)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"attempts": []any{}, "enabled": false})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	attempts, err := s.history.ListAttempts(limit)
	if err != nil {
		logger.Warn("[WebUI] failed to list history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read history"})
		return
	}
	stats, err := s.history.Stats()
	if err != nil {
		logger.Warn("[WebUI] failed to read history stats: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts, "stats": stats, "enabled": true})
}

// requestView resolves ?view=, defaulting to JSON.
func requestView(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("view")
	if strings.TrimSpace(raw) == "" {
		return render.ViewJSON, nil
	}
	return render.ParseView(raw)
}

// writeScene writes sc as JSON, or as text for the other views. view must come from requestView.
func writeScene(w http.ResponseWriter, view string, sc *scene.GeneratedScene) {
	if view == render.ViewJSON {
		writeJSON(w, http.StatusOK, sc)
		return
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, view, sc); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as {error, kind}. Non-scene errors become 500s with a generic message.
func writeError(w http.ResponseWriter, err error) {
	var se *scene.Error
	if errors.As(err, &se) {
		writeJSON(w, se.HTTPStatus(), map[string]string{"error": se.Message, "kind": string(se.Kind)})
		return
	}
	logger.Error("[WebUI] unexpected error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func parseDuration(raw string) (scene.Duration, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, scene.Configurationf("duration must be a number of minutes, got %q", raw)
	}
	return scene.ParseDuration(minutes)
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func sceneTypeOptions() []map[string]string {
	types := scene.SceneTypes()
	out := make([]map[string]string, 0, len(types))
	for _, t := range types {
		out = append(out, map[string]string{"value": string(t), "label": t.Label()})
	}
	return out
}
