// Package generator runs one generation attempt end to end: compose the prompt, make a single call to the
// selected service with a single-use credential, and validate the reply.
package generator

import (
	"context"
	"errors"
	"time"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/credential"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/metrics"
	"github.com/kayz/veoscene/internal/persist"
	"github.com/kayz/veoscene/internal/promptbuild"
	"github.com/kayz/veoscene/internal/provider"
	"github.com/kayz/veoscene/internal/scene"
)

// Options are the request parameters of an attempt.
type Options struct {
	Provider    string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Strict      bool
	JSONSchema  bool
}

// DefaultOptions mirrors config.DefaultConfig.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Provider:    cfg.AI.Provider,
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout(),
		Strict:      cfg.Generation.Strict,
		JSONSchema:  cfg.Generation.JSONSchema,
	}
}

// Recorder stores attempt metadata. *persist.Store satisfies it.
type Recorder interface {
	RecordAttempt(a *persist.Attempt) error
}

type Generator struct {
	registry *ai.Registry
	builder  *promptbuild.Builder
	factory  provider.Factory
	recorder Recorder
	opts     Options
}

type Option func(*Generator)

// WithFactory replaces provider.New.
func WithFactory(f provider.Factory) Option {
	return func(g *Generator) { g.factory = f }
}

// WithRecorder enables attempt history.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithBuilder sets the prompt builder, for example one with auditing enabled.
func WithBuilder(b *promptbuild.Builder) Option {
	return func(g *Generator) { g.builder = b }
}

func New(registry *ai.Registry, opts Options, options ...Option) *Generator {
	if registry == nil {
		registry = ai.NewRegistry()
	}
	g := &Generator{
		registry: registry,
		builder:  promptbuild.NewBuilder(config.AuditConfig{}),
		factory:  provider.New,
		opts:     opts,
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// Options returns the effective request parameters.
func (g *Generator) Options() Options {
	return g.opts
}

// Preset resolves the configured provider preset, applying the base URL override.
func (g *Generator) Preset() (*ai.ProviderConfig, error) {
	name := g.opts.Provider
	if name == "" {
		name = ai.DefaultProvider
	}
	preset, ok := g.registry.GetProvider(name)
	if !ok {
		return nil, scene.Configurationf("unknown provider %q", name)
	}
	if g.opts.BaseURL != "" {
		p := *preset
		p.BaseURL = g.opts.BaseURL
		preset = &p
	}
	return preset, nil
}

// Generate performs one attempt. The secret is used at most once and released before Generate returns,
// on every path. No retry is made; every error is a *scene.Error.
func (g *Generator) Generate(ctx context.Context, cfg scene.Config, secret *credential.Secret) (*scene.GeneratedScene, error) {
	if secret != nil {
		defer secret.Release()
	}

	start := time.Now()
	attempt := &persist.Attempt{
		CreatedAt: start,
		Duration:  int(cfg.Duration),
		SceneType: string(cfg.SceneType),
		Flags:     g.flags(),
	}

	s, err := g.generate(ctx, cfg, secret, attempt)

	attempt.LatencyMS = time.Since(start).Milliseconds()
	attempt.Outcome = metrics.Outcome(err, string(scene.KindOf(err)))
	if err != nil {
		attempt.Message = err.Error()
	} else {
		attempt.TotalShots = s.ShotCount()
	}
	g.record(attempt)

	return s, err
}

func (g *Generator) generate(ctx context.Context, cfg scene.Config, secret *credential.Secret, attempt *persist.Attempt) (*scene.GeneratedScene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	preset, err := g.Preset()
	if err != nil {
		return nil, err
	}
	model := preset.Model(g.opts.Model)
	attempt.Provider = preset.Name
	attempt.Model = model

	if secret == nil || secret.Empty() {
		return nil, scene.Configurationf("API key is required")
	}
	if err := secret.CheckPrefix(preset.DisplayName(), preset.KeyPrefix); err != nil {
		return nil, err
	}

	prompt, err := g.builder.Compose(cfg)
	if err != nil {
		return nil, err
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	req := provider.Request{
		Model:       model,
		System:      prompt.System,
		User:        prompt.User,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
		JSONSchema:  g.opts.JSONSchema,
	}

	logger.Info("[Generator] %s scene, %s via %s (%s)", cfg.Duration.Label(), cfg.SceneType.Label(), preset.Name, model)
	logger.Debug("[Generator] using key %s", secret.Masked())

	var raw string
	callStart := time.Now()
	useErr := secret.Use(func(key string) error {
		p, err := g.factory(preset, key)
		if err != nil {
			return err
		}
		raw, err = p.Complete(ctx, req)
		return err
	})
	metrics.GenerationDuration.WithLabelValues(preset.Name).Observe(time.Since(callStart).Seconds())
	secret.Release()

	if useErr != nil {
		if errors.Is(useErr, credential.ErrSpent) {
			return nil, scene.Configurationf("API key was already used; supply it again")
		}
		if scene.KindOf(useErr) == "" {
			return nil, scene.Transport(0, "", useErr)
		}
		return nil, useErr
	}

	return g.Check([]byte(raw), cfg)
}

// Check applies the shape gate and, when strict mode is on, the consistency checks.
func (g *Generator) Check(payload []byte, cfg scene.Config) (*scene.GeneratedScene, error) {
	return Validate(payload, g.opts.Strict, cfg)
}

// Validate checks payload. With strict set, cfg drives the consistency checks.
func Validate(payload []byte, strict bool, cfg scene.Config) (*scene.GeneratedScene, error) {
	mode := "shape"
	if strict {
		mode = "strict"
	}

	s, err := scene.Validate(payload)
	if err == nil && strict {
		err = scene.ValidateStrict(s, cfg)
		if err != nil {
			s = nil
		}
	}
	metrics.ValidationTotal.WithLabelValues(mode, metrics.Outcome(err, string(scene.KindOf(err)))).Inc()
	if err != nil {
		logger.Warn("[Generator] reply rejected (%s): %v", scene.KindOf(err), err)
		return nil, err
	}
	return s, nil
}

// Sample returns the bundled example scene. It needs no credential and makes no call.
func Sample() *scene.GeneratedScene {
	return scene.Sample()
}

func (g *Generator) flags() []string {
	var flags []string
	if g.opts.Strict {
		flags = append(flags, "strict")
	}
	if g.opts.JSONSchema {
		flags = append(flags, "json_schema")
	}
	return flags
}

func (g *Generator) record(a *persist.Attempt) {
	name := a.Provider
	if name == "" {
		name = "none"
	}
	metrics.GenerationTotal.WithLabelValues(name, a.Outcome).Inc()

	if a.Outcome == persist.OutcomeOK {
		logger.Info("[Generator] scene ready: %d shots in %s", a.TotalShots, time.Duration(a.LatencyMS)*time.Millisecond)
	} else {
		logger.Warn("[Generator] attempt failed (%s): %s", a.Outcome, a.Message)
	}

	if g.recorder == nil {
		return
	}
	if err := g.recorder.RecordAttempt(a); err != nil {
		logger.Warn("[Generator] failed to record attempt: %v", err)
		return
	}
	logger.Debug("[Generator] attempt %s recorded", a.ID)
}
