// Package render turns a generated scene into the text views shown by the CLI and the web UI.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kayz/veoscene/internal/scene"
)

// View names accepted by Write.
const (
	ViewStoryboard = "storyboard"
	ViewVeoPrompt  = "veo-prompt"
	ViewJSON       = "json"
)

// Views returns the view names in display order.
func Views() []string {
	return []string{ViewStoryboard, ViewVeoPrompt, ViewJSON}
}

// ParseView resolves a view name or alias to its canonical name. An empty name selects the storyboard.
func ParseView(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ViewStoryboard:
		return ViewStoryboard, nil
	case ViewVeoPrompt, "veo", "prompt":
		return ViewVeoPrompt, nil
	case ViewJSON:
		return ViewJSON, nil
	default:
		return "", scene.Configurationf("unknown view %q (want one of %s)", name, strings.Join(Views(), ", "))
	}
}

// Write renders s using the named view.
func Write(w io.Writer, view string, s *scene.GeneratedScene) error {
	name, err := ParseView(view)
	if err != nil {
		return err
	}
	switch name {
	case ViewVeoPrompt:
		return VeoPrompt(w, s)
	case ViewJSON:
		return JSON(w, s)
	default:
		return Storyboard(w, s)
	}
}

// Storyboard writes the overview, the timing map, every act with its shots and the quality checklist.
func Storyboard(w io.Writer, s *scene.GeneratedScene) error {
	if s == nil {
		return fmt.Errorf("no scene to render")
	}

	var sections []string
	sections = appendSection(sections, overviewBlock(s))
	sections = appendSection(sections, timingBlock(s.TimingMap))
	for _, act := range s.Architecture.Acts {
		sections = appendSection(sections, actBlock(act))
	}
	if len(s.QualityChecklist) > 0 {
		var b strings.Builder
		b.WriteString("QUALITY VERIFICATION\n")
		for _, item := range s.QualityChecklist {
			fmt.Fprintf(&b, "  [x] %s\n", item)
		}
		sections = appendSection(sections, b.String())
	}

	_, err := io.WriteString(w, renderSections(sections))
	return err
}

// VeoPrompt writes the copy-ready video prompt followed by a newline.
func VeoPrompt(w io.Writer, s *scene.GeneratedScene) error {
	if s == nil {
		return fmt.Errorf("no scene to render")
	}
	_, err := io.WriteString(w, strings.TrimRight(s.VeoPrompt, "\n")+"\n")
	return err
}

// JSON writes s indented with two spaces.
func JSON(w io.Writer, s *scene.GeneratedScene) error {
	if s == nil {
		return fmt.Errorf("no scene to render")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Architecture writes the act and shot targets for d.
func Architecture(w io.Writer, d scene.Duration) error {
	spec, err := scene.LookupChecked(d)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d seconds %s)\n", d.Label(), d.Seconds(), scene.ToleranceLabel)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACT\tSHOTS")
	for i, n := range spec.ShotsPerAct {
		fmt.Fprintf(tw, "%d\t%d\n", i+1, n)
	}
	fmt.Fprintf(tw, "total\t%d\n", spec.TotalShots())
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Average shot: ~%d seconds\n", spec.AvgShotDurationSeconds)
	return err
}

func overviewBlock(s *scene.GeneratedScene) string {
	o := s.Overview
	var b strings.Builder
	b.WriteString(strings.ToUpper(orDash(o.Title)) + "\n")
	fmt.Fprintf(&b, "Duration: %s | Type: %s | Location: %s | Shots: %d\n",
		orDash(o.Duration), orDash(o.Type), orDash(o.Location), s.Architecture.TotalShots)
	if o.Mood != "" {
		fmt.Fprintf(&b, "Mood: %s\n", o.Mood)
	}
	if o.Logline != "" {
		fmt.Fprintf(&b, "\n%s\n", o.Logline)
	}
	return b.String()
}

func timingBlock(tm scene.TimingMap) string {
	if len(tm.Breakdown) == 0 && tm.TotalRuntime == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TIMING MAP  %s total (%s)\n", orDash(tm.TotalRuntime), orDash(tm.Tolerance))
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, seg := range tm.Breakdown {
		fmt.Fprintf(tw, "  Act %d\t%s - %s\t%d shots\n", seg.Act, seg.Start, seg.End, seg.Shots)
	}
	_ = tw.Flush()
	return b.String()
}

func actBlock(act scene.Act) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ACT %d: %s\n", act.ActNumber, act.Title)
	fmt.Fprintf(&b, "%s - %s | %d shots\n", act.StartTime, act.EndTime, len(act.Shots))
	if act.EmotionalArc != "" {
		fmt.Fprintf(&b, "Arc: %s\n", act.EmotionalArc)
	}
	for _, shot := range act.Shots {
		b.WriteString("\n")
		b.WriteString(shotBlock(shot))
	}
	return b.String()
}

func shotBlock(shot scene.Shot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  #%d  %s - %s (%ds)\n", shot.ShotNumber, shot.StartTime, shot.EndTime, shot.DurationSeconds)
	if shot.Description != "" {
		fmt.Fprintf(&b, "  %s\n", shot.Description)
	}
	fmt.Fprintf(&b, "    Camera:   %s, %s\n", orDash(shot.CameraType), orDash(shot.Lens))
	fmt.Fprintf(&b, "    Movement: %s\n", orDash(shot.Movement))
	fmt.Fprintf(&b, "    Lighting: %s\n", orDash(shot.Lighting))
	fmt.Fprintf(&b, "    Sound:    %s\n", orDash(shot.SoundCue))
	fmt.Fprintf(&b, "    Intent:   %s\n", orDash(shot.EmotionalIntent))
	return b.String()
}

func appendSection(sections []string, content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return sections
	}
	return append(sections, content)
}

func renderSections(sections []string) string {
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
