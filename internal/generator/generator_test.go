package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/credential"
	"github.com/kayz/veoscene/internal/persist"
	"github.com/kayz/veoscene/internal/provider"
	"github.com/kayz/veoscene/internal/scene"
)

type fakeProvider struct {
	reply string
	err   error
	delay time.Duration
	reqs  []provider.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req provider.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", scene.Transport(0, "fake request timed out", ctx.Err())
		case <-time.After(f.delay):
		}
	}
	return f.reply, f.err
}

type memoryRecorder struct {
	mu       sync.Mutex
	attempts []*persist.Attempt
}

func (m *memoryRecorder) RecordAttempt(a *persist.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memoryRecorder) last(t *testing.T) *persist.Attempt {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.attempts) == 0 {
		t.Fatalf("no attempt recorded")
	}
	return m.attempts[len(m.attempts)-1]
}

func newTestGenerator(fp *fakeProvider, opts Options) (*Generator, *memoryRecorder, *[]string) {
	rec := &memoryRecorder{}
	var keys []string
	factory := func(preset *ai.ProviderConfig, apiKey string) (provider.Provider, error) {
		keys = append(keys, apiKey)
		return fp, nil
	}
	g := New(ai.NewRegistry(), opts, WithFactory(factory), WithRecorder(rec))
	return g, rec, &keys
}

const testKey = "sk-test-0123456789abcdef"

func TestGenerateSuccess(t *testing.T) {
	fp := &fakeProvider{reply: string(scene.SampleJSON())}
	g, rec, keys := newTestGenerator(fp, DefaultOptions())

	secret := credential.New(testKey)
	s, err := g.Generate(context.Background(), scene.SampleConfig, secret)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if s.Architecture.TotalShots != 18 {
		t.Fatalf("unexpected scene %+v", s.Architecture)
	}
	if !secret.Released() {
		t.Fatalf("secret should be released after the attempt")
	}
	if len(*keys) != 1 || (*keys)[0] != testKey {
		t.Fatalf("expected exactly one key use, got %d", len(*keys))
	}

	if len(fp.reqs) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(fp.reqs))
	}
	req := fp.reqs[0]
	if req.Model != "gpt-4o" || req.MaxTokens != 8000 || req.Temperature != 0.7 {
		t.Fatalf("unexpected request parameters %+v", req)
	}
	if !strings.Contains(req.System, "Total runtime must be 300 seconds ±2 seconds") {
		t.Fatalf("system text not composed from config")
	}

	a := rec.last(t)
	if a.Outcome != persist.OutcomeOK || a.TotalShots != 18 || a.Provider != "openai" || a.Model != "gpt-4o" {
		t.Fatalf("unexpected attempt %+v", a)
	}
}

func TestGenerateReleasesSecretOnEveryPath(t *testing.T) {
	tests := []struct {
		name string
		fp   *fakeProvider
		cfg  scene.Config
		kind scene.Kind
	}{
		{"bad config", &fakeProvider{}, scene.Config{Duration: 7}, scene.KindConfiguration},
		{"transport", &fakeProvider{err: scene.Transport(401, "Incorrect API key provided", nil)}, scene.SampleConfig, scene.KindTransport},
		{"plain error", &fakeProvider{err: errors.New("connection reset")}, scene.SampleConfig, scene.KindTransport},
		{"parse", &fakeProvider{reply: "Sure! Here is your scene."}, scene.SampleConfig, scene.KindParse},
		{"shape", &fakeProvider{reply: `{"overview":{"title":"x"}}`}, scene.SampleConfig, scene.KindShape},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, rec, _ := newTestGenerator(tc.fp, DefaultOptions())
			secret := credential.New(testKey)
			s, err := g.Generate(context.Background(), tc.cfg, secret)
			if s != nil {
				t.Fatalf("no scene expected on failure")
			}
			if scene.KindOf(err) != tc.kind {
				t.Fatalf("expected %s error, got %v", tc.kind, err)
			}
			if !secret.Released() {
				t.Fatalf("secret not released")
			}
			if a := rec.last(t); a.Outcome != string(tc.kind) || a.Message == "" {
				t.Fatalf("unexpected attempt %+v", a)
			}
			if strings.Contains(rec.last(t).Message, testKey) {
				t.Fatalf("key leaked into attempt history")
			}
		})
	}
}

func TestGenerateRejectsBadKeyBeforeCalling(t *testing.T) {
	fp := &fakeProvider{reply: string(scene.SampleJSON())}
	g, _, keys := newTestGenerator(fp, DefaultOptions())

	_, err := g.Generate(context.Background(), scene.SampleConfig, credential.New("pk-live-123456789"))
	if scene.KindOf(err) != scene.KindConfiguration || !strings.Contains(err.Error(), `begin with "sk-"`) {
		t.Fatalf("expected key format error, got %v", err)
	}
	if len(*keys) != 0 || len(fp.reqs) != 0 {
		t.Fatalf("no request should be made with a malformed key")
	}

	if _, err := g.Generate(context.Background(), scene.SampleConfig, nil); scene.KindOf(err) != scene.KindConfiguration {
		t.Fatalf("missing key should be a configuration error, got %v", err)
	}
}

func TestGenerateSecretIsSingleUse(t *testing.T) {
	fp := &fakeProvider{reply: string(scene.SampleJSON())}
	g, _, _ := newTestGenerator(fp, DefaultOptions())

	secret := credential.New(testKey)
	if _, err := g.Generate(context.Background(), scene.SampleConfig, secret); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if _, err := g.Generate(context.Background(), scene.SampleConfig, secret); scene.KindOf(err) != scene.KindConfiguration {
		t.Fatalf("reusing a secret should fail, got %v", err)
	}
	if len(fp.reqs) != 1 {
		t.Fatalf("second attempt must not reach the service")
	}
}

func TestGenerateStrict(t *testing.T) {
	broken := strings.Replace(string(scene.SampleJSON()), `"totalShots": 18`, `"totalShots": 25`, 1)
	if broken == string(scene.SampleJSON()) {
		t.Fatalf("fixture did not change; adjust the replacement")
	}

	opts := DefaultOptions()
	loose, _, _ := newTestGenerator(&fakeProvider{reply: broken}, opts)
	if _, err := loose.Generate(context.Background(), scene.SampleConfig, credential.New(testKey)); err != nil {
		t.Fatalf("shape-only validation should accept the reply: %v", err)
	}

	opts.Strict = true
	strict, rec, _ := newTestGenerator(&fakeProvider{reply: broken}, opts)
	_, err := strict.Generate(context.Background(), scene.SampleConfig, credential.New(testKey))
	if scene.KindOf(err) != scene.KindConsistency {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if flags := rec.last(t).Flags; len(flags) != 1 || flags[0] != "strict" {
		t.Fatalf("unexpected flags %v", flags)
	}
}

func TestGenerateTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	g, _, _ := newTestGenerator(&fakeProvider{reply: "{}", delay: time.Second}, opts)

	_, err := g.Generate(context.Background(), scene.SampleConfig, credential.New(testKey))
	if scene.KindOf(err) != scene.KindTransport {
		t.Fatalf("expected transport error on timeout, got %v", err)
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	opts := DefaultOptions()
	opts.Provider = "nowhere"
	g, _, _ := newTestGenerator(&fakeProvider{}, opts)
	_, err := g.Generate(context.Background(), scene.SampleConfig, credential.New(testKey))
	if scene.KindOf(err) != scene.KindConfiguration || !strings.Contains(err.Error(), "nowhere") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestPresetBaseURLOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.BaseURL = "http://localhost:1234/v1"
	g := New(nil, opts)
	p, err := g.Preset()
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if p.BaseURL != "http://localhost:1234/v1" {
		t.Fatalf("override not applied: %s", p.BaseURL)
	}
	if orig, _ := ai.NewRegistry().GetProvider("openai"); orig.BaseURL == p.BaseURL {
		t.Fatalf("registry preset should not be mutated")
	}
}

func TestSampleNeedsNoCredential(t *testing.T) {
	s := Sample()
	if s == nil || s.VeoPrompt == "" {
		t.Fatalf("sample should be populated")
	}
}
