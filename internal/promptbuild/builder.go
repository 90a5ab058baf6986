// Package promptbuild composes the two-part instruction sent to the generation service: a layered system
// text and a user task text, both derived from a scene configuration and the architecture table.
package promptbuild

import (
	"fmt"
	"strings"

	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/metrics"
	"github.com/kayz/veoscene/internal/scene"
)

// Prompt is a composed instruction. It is discarded after the request is dispatched.
type Prompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Layer names, in system text order.
const (
	LayerRole         = "Role"
	LayerKnowledge    = "Domain Knowledge"
	LayerArchitecture = "Architecture"
	LayerStyle        = "Style"
	LayerOutputFormat = "Output Format"
)

// Layer is one named block of the system text.
type Layer struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Compose renders the system and user text for cfg. It has no side effects and is deterministic.
// Unsupported durations and scene types are configuration errors; nothing is defaulted.
func Compose(cfg scene.Config) (Prompt, error) {
	layers, err := Layers(cfg)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		System: renderSections(layers),
		User:   userText(cfg),
	}, nil
}

// MustCompose is Compose for configurations that were validated upstream.
func MustCompose(cfg scene.Config) Prompt {
	p, err := Compose(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// Layers returns the system text layers in order.
func Layers(cfg scene.Config) ([]Layer, error) {
	spec, err := scene.LookupChecked(cfg.Duration)
	if err != nil {
		return nil, err
	}
	style, ok := styleLayers[cfg.SceneType]
	if !ok {
		return nil, scene.Configurationf("unsupported scene type %q", string(cfg.SceneType))
	}

	var layers []Layer
	layers = appendSection(layers, LayerRole, roleLayer)
	layers = appendSection(layers, LayerKnowledge, knowledgeLayer)
	layers = appendSection(layers, LayerArchitecture, architectureLayer(cfg.Duration, spec))
	layers = appendSection(layers, LayerStyle, style)
	layers = appendSection(layers, LayerOutputFormat, outputFormatLayer)
	return layers, nil
}

func appendSection(list []Layer, name, content string) []Layer {
	content = strings.TrimSpace(content)
	if content == "" {
		return list
	}
	return append(list, Layer{Name: name, Content: content})
}

func renderSections(layers []Layer) string {
	var out strings.Builder
	for i, l := range layers {
		if i > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(l.Content)
	}
	return out.String()
}

func architectureLayer(d scene.Duration, spec scene.ArchitectureSpec) string {
	total := d.Seconds()

	var b strings.Builder
	b.WriteString("SCENE ARCHITECTURE REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Total Duration: %d minutes (%d seconds)\n", int(d), total)
	fmt.Fprintf(&b, "- Act Count: %d\n", spec.ActCount)
	fmt.Fprintf(&b, "- Total Shots: %d\n", spec.TotalShots())
	fmt.Fprintf(&b, "- Shot Distribution per Act: %s\n", joinInts(spec.ShotsPerAct, ", "))
	fmt.Fprintf(&b, "- Average Shot Duration: ~%d seconds\n", spec.AvgShotDurationSeconds)
	fmt.Fprintf(&b, "- CRITICAL: Total runtime must be %d seconds %s\n", total, scene.ToleranceLabel)
	b.WriteString("\nACT STRUCTURE:")
	for i, n := range spec.ShotsPerAct {
		fmt.Fprintf(&b, "\nAct %d: %d shots", i+1, n)
	}
	return b.String()
}

func userText(cfg scene.Config) string {
	spec := scene.Lookup(cfg.Duration)
	total := cfg.Duration.Seconds()

	var b strings.Builder
	b.WriteString("Generate a complete Veo-3 scene package with the following specifications:\n\n")
	b.WriteString("SCENE PARAMETERS:\n")
	fmt.Fprintf(&b, "- Duration: %d minutes\n", int(cfg.Duration))
	fmt.Fprintf(&b, "- Scene Type: %s\n", cfg.SceneType.Label())
	fmt.Fprintf(&b, "- Visual Mood: %s\n", cfg.VisualMood)
	fmt.Fprintf(&b, "- Location/Environment: %s\n", cfg.Location)
	if strings.TrimSpace(cfg.BrandReferences) != "" {
		b.WriteString("- Brand References: ")
		b.WriteString(cfg.BrandReferences)
		b.WriteString("\n")
	}

	b.WriteString("\nSHOT TARGETS:\n")
	for i, n := range spec.ShotsPerAct {
		fmt.Fprintf(&b, "- Act %d: %d shots\n", i+1, n)
	}
	fmt.Fprintf(&b, "- Total: %d shots across %d acts (~%d seconds average per shot)\n",
		spec.TotalShots(), spec.ActCount, spec.AvgShotDurationSeconds)

	fmt.Fprintf(&b, "\nGenerate the complete scene architecture, shot-by-shot breakdown, timing map, and Veo-3 master prompt. Ensure total duration is exactly %d seconds %s.",
		total, scene.ToleranceLabel)
	return b.String()
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}

// Builder composes prompts and keeps the optional audit trail.
type Builder struct {
	cfg config.AuditConfig
}

// NewBuilder creates a Builder from the audit config.
func NewBuilder(cfg config.AuditConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Compose is the package-level Compose plus an audit record and compose metrics.
func (b *Builder) Compose(cfg scene.Config) (Prompt, error) {
	b.applyDefaults()

	layers, err := Layers(cfg)
	if err != nil {
		return Prompt{}, err
	}
	p := Prompt{System: renderSections(layers), User: userText(cfg)}
	metrics.ComposeTotal.WithLabelValues(string(cfg.SceneType), fmt.Sprint(int(cfg.Duration))).Inc()

	if err := b.writeAuditRecord(cfg, p, layers); err != nil {
		logger.Warn("prompt audit record failed: %v", err)
	}
	return p, nil
}

func (b *Builder) applyDefaults() {
	if b.cfg.RootDir == "" {
		b.cfg.RootDir = "."
	}
	if b.cfg.Dir == "" {
		b.cfg.Dir = ".veoscene/audit"
	}
	if b.cfg.FilePrefix == "" {
		b.cfg.FilePrefix = "promptbuild"
	}
}
