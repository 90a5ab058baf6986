package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kayz/veoscene/internal/credential"
	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/persist"
	"github.com/kayz/veoscene/internal/scene"
)

type fakeGenerator struct {
	secrets []*credential.Secret
	cfgs    []scene.Config
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, cfg scene.Config, secret *credential.Secret) (*scene.GeneratedScene, error) {
	f.secrets = append(f.secrets, secret)
	f.cfgs = append(f.cfgs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return scene.Sample(), nil
}

func (f *fakeGenerator) Options() generator.Options {
	return generator.DefaultOptions()
}

type fakeHistory struct{}

func (fakeHistory) ListAttempts(limit int) ([]*persist.Attempt, error) {
	return []*persist.Attempt{{ID: "a1", Outcome: persist.OutcomeOK, TotalShots: 18}}, nil
}

func (fakeHistory) Stats() ([]persist.OutcomeCount, error) {
	return []persist.OutcomeCount{{Outcome: persist.OutcomeOK, Count: 1}}, nil
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestStatusEndpoint(t *testing.T) {
	handler := NewServer(&fakeGenerator{}).Handler()
	rr := do(t, handler, http.MethodGet, "/api/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	for _, want := range []string{`"ok":true`, `"provider":"openai"`, `"luxury-commercial"`, `"veo-prompt"`} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Fatalf("status payload missing %s: %s", want, rr.Body.String())
		}
	}
}

func TestIndexAndNotFound(t *testing.T) {
	handler := NewServer(nil).Handler()
	if rr := do(t, handler, http.MethodGet, "/", nil); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<title>veoscene</title>") {
		t.Fatalf("unexpected index: %d", rr.Code)
	}
	if rr := do(t, handler, http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestArchitectureEndpoint(t *testing.T) {
	handler := NewServer(nil).Handler()

	rr := do(t, handler, http.MethodGet, "/api/architecture?duration=20", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Architectures []struct {
			Duration    int   `json:"duration"`
			TotalShots  int   `json:"totalShots"`
			ShotsPerAct []int `json:"shotsPerAct"`
		} `json:"architectures"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Architectures) != 1 || body.Architectures[0].TotalShots != 54 || len(body.Architectures[0].ShotsPerAct) != 5 {
		t.Fatalf("unexpected architecture %+v", body.Architectures)
	}

	rr = do(t, handler, http.MethodGet, "/api/architecture", nil)
	if !strings.Contains(rr.Body.String(), `"duration":3`) || !strings.Contains(rr.Body.String(), `"duration":20`) {
		t.Fatalf("expected every duration: %s", rr.Body.String())
	}

	rr = do(t, handler, http.MethodGet, "/api/architecture?duration=7", nil)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"kind":"configuration"`) {
		t.Fatalf("expected configuration error, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestComposeEndpoint(t *testing.T) {
	handler := NewServer(nil).Handler()
	cfg, _ := json.Marshal(scene.SampleConfig)

	rr := do(t, handler, http.MethodPost, "/api/compose", cfg)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
	}
	var prompt map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &prompt)
	if !strings.Contains(prompt["system"], "Total Shots: 18") || !strings.Contains(prompt["user"], "Swiss watchmaking atelier") {
		t.Fatalf("unexpected prompt %v", prompt)
	}

	bad, _ := json.Marshal(scene.Config{Duration: 5, SceneType: "western"})
	if rr := do(t, handler, http.MethodPost, "/api/compose", bad); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr := do(t, handler, http.MethodGet, "/api/compose", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	handler := NewServer(nil).Handler()

	rr := do(t, handler, http.MethodPost, "/api/validate", scene.SampleJSON())
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"totalShots":18`) {
		t.Fatalf("sample should validate: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, handler, http.MethodPost, "/api/validate?strict=1&duration=5&scene_type=luxury-commercial", scene.SampleJSON())
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"strict":true`) {
		t.Fatalf("sample should pass strict validation: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, handler, http.MethodPost, "/api/validate?strict=1&duration=10", scene.SampleJSON())
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), `"kind":"consistency"`) {
		t.Fatalf("expected consistency error, got %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, handler, http.MethodPost, "/api/validate", []byte(`{"overview":{}}`))
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "architecture, veoPrompt") {
		t.Fatalf("expected shape error, got %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, handler, http.MethodPost, "/api/validate", []byte(`not json`))
	if rr.Code != http.StatusBadGateway || !strings.Contains(rr.Body.String(), `"kind":"parse"`) {
		t.Fatalf("expected parse error, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestSampleEndpointViews(t *testing.T) {
	handler := NewServer(nil).Handler()

	rr := do(t, handler, http.MethodGet, "/api/sample", nil)
	var s scene.GeneratedScene
	if err := json.Unmarshal(rr.Body.Bytes(), &s); err != nil || s.ShotCount() != 18 {
		t.Fatalf("unexpected sample json: %v", err)
	}

	rr = do(t, handler, http.MethodGet, "/api/sample?view=storyboard", nil)
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain") || !strings.Contains(rr.Body.String(), "ACT 1: The Awakening") {
		t.Fatalf("unexpected storyboard view: %s", rr.Body.String())
	}

	if rr := do(t, handler, http.MethodGet, "/api/sample?view=pdf", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown view, got %d", rr.Code)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	gen := &fakeGenerator{}
	handler := NewServer(gen).Handler()

	body, _ := json.Marshal(map[string]any{"api_key": "sk-test-0123456789abcdef", "config": scene.SampleConfig})
	rr := do(t, handler, http.MethodPost, "/api/generate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
	}
	if len(gen.secrets) != 1 || !gen.secrets[0].Released() {
		t.Fatalf("secret must be released after the request")
	}
	if gen.cfgs[0] != scene.SampleConfig {
		t.Fatalf("config not passed through: %+v", gen.cfgs[0])
	}
	if strings.Contains(rr.Body.String(), "sk-test") {
		t.Fatalf("key echoed in response")
	}
}

func TestGenerateEndpointErrors(t *testing.T) {
	gen := &fakeGenerator{err: scene.Transport(401, "Incorrect API key provided", nil)}
	handler := NewServer(gen).Handler()

	body, _ := json.Marshal(map[string]any{"api_key": "sk-test-0123456789abcdef", "config": scene.SampleConfig})
	rr := do(t, handler, http.MethodPost, "/api/generate", body)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	var e map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &e)
	if e["error"] != "Incorrect API key provided" || e["kind"] != "transport" {
		t.Fatalf("unexpected error body %v", e)
	}
	if !gen.secrets[0].Released() {
		t.Fatalf("secret must be released on failure")
	}

	rr = do(t, handler, http.MethodPost, "/api/generate?view=storybord", body)
	_ = json.Unmarshal(rr.Body.Bytes(), &e)
	if rr.Code != http.StatusBadRequest || e["kind"] != "configuration" {
		t.Fatalf("expected 400 configuration for unknown view, got %d %v", rr.Code, e)
	}
	if len(gen.secrets) != 1 {
		t.Fatalf("generator must not run for an unknown view, ran %d times", len(gen.secrets))
	}

	if rr := do(t, handler, http.MethodPost, "/api/generate", []byte("{")); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rr.Code)
	}
	if rr := do(t, NewServer(nil).Handler(), http.MethodPost, "/api/generate", body); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without generator, got %d", rr.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	rr := do(t, NewServer(nil).Handler(), http.MethodGet, "/api/history", nil)
	if !strings.Contains(rr.Body.String(), `"enabled":false`) {
		t.Fatalf("history should report disabled: %s", rr.Body.String())
	}

	rr = do(t, NewServer(nil, WithHistory(fakeHistory{})).Handler(), http.MethodGet, "/api/history?limit=5", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"id":"a1"`) || !strings.Contains(rr.Body.String(), `"count":1`) {
		t.Fatalf("unexpected history: %s", rr.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewServer(nil).Handler()
	do(t, handler, http.MethodGet, "/api/status", nil)

	rr := do(t, handler, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "veoscene_http_requests_total") {
		t.Fatalf("metrics not exposed: %d", rr.Code)
	}
}
