package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kayz/veoscene/internal/scene"
)

func TestStoryboard(t *testing.T) {
	var buf bytes.Buffer
	if err := Storyboard(&buf, scene.Sample()); err != nil {
		t.Fatalf("storyboard: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"THE ARTISAN'S DAWN",
		"Shots: 18",
		"TIMING MAP  05:00 total (±2 seconds)",
		"ACT 1: The Awakening",
		"00:00 - 01:30 | 5 shots",
		"ACT 2: The Labor",
		"ACT 3: The Completion",
		"QUALITY VERIFICATION",
		"  [x] Total runtime verified at 300 seconds within ±2 second tolerance",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("storyboard missing %q", want)
		}
	}
	if n := strings.Count(out, "    Camera:"); n != 18 {
		t.Fatalf("expected 18 shot cards, got %d", n)
	}
	if strings.Index(out, "ACT 1:") > strings.Index(out, "ACT 2:") {
		t.Fatalf("acts out of order")
	}
}

func TestStoryboardSparseScene(t *testing.T) {
	s := &scene.GeneratedScene{VeoPrompt: "x"}
	var buf bytes.Buffer
	if err := Storyboard(&buf, s); err != nil {
		t.Fatalf("storyboard: %v", err)
	}
	if strings.Contains(buf.String(), "TIMING MAP") || strings.Contains(buf.String(), "QUALITY") {
		t.Fatalf("empty sections should be omitted:\n%s", buf.String())
	}
	if !strings.HasPrefix(buf.String(), "-\n") {
		t.Fatalf("missing title should render as a dash:\n%s", buf.String())
	}
}

func TestVeoPrompt(t *testing.T) {
	var buf bytes.Buffer
	if err := VeoPrompt(&buf, scene.Sample()); err != nil {
		t.Fatalf("veo prompt: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "SCENE: THE ARTISAN'S DAWN") || !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("unexpected prompt view %q", buf.String()[:40])
	}
}

func TestJSONIndentsAndRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, scene.Sample()); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "{\n  \"overview\": {\n    \"title\"") {
		t.Fatalf("expected two-space indentation, got %q", buf.String()[:30])
	}
	var back scene.GeneratedScene
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if back.ShotCount() != 18 {
		t.Fatalf("lost shots: %d", back.ShotCount())
	}
}

func TestWriteSelectsView(t *testing.T) {
	s := scene.Sample()
	tests := map[string]string{
		"":           "TIMING MAP",
		"storyboard": "TIMING MAP",
		"veo-prompt": "SCENE: THE ARTISAN'S DAWN",
		"JSON":       `"veoPrompt":`,
	}
	for view, want := range tests {
		var buf bytes.Buffer
		if err := Write(&buf, view, s); err != nil {
			t.Fatalf("view %q: %v", view, err)
		}
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("view %q missing %q", view, want)
		}
	}

	if err := Write(&bytes.Buffer{}, "pdf", s); err == nil {
		t.Fatalf("unknown view should fail")
	}
	if err := Write(&bytes.Buffer{}, "json", nil); err == nil {
		t.Fatalf("nil scene should fail")
	}
}

func TestParseView(t *testing.T) {
	tests := map[string]string{
		"":            ViewStoryboard,
		" Storyboard": ViewStoryboard,
		"veo":         ViewVeoPrompt,
		"prompt":      ViewVeoPrompt,
		"JSON":        ViewJSON,
	}
	for in, want := range tests {
		got, err := ParseView(in)
		if err != nil || got != want {
			t.Fatalf("ParseView(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	_, err := ParseView("storybord")
	if scene.KindOf(err) != scene.KindConfiguration || !strings.Contains(err.Error(), `unknown view "storybord"`) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestArchitecture(t *testing.T) {
	var buf bytes.Buffer
	if err := Architecture(&buf, scene.Duration10); err != nil {
		t.Fatalf("architecture: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"10 Minutes (600 seconds ±2 seconds)", "total  32", "~19 seconds"} {
		if !strings.Contains(out, want) {
			t.Fatalf("architecture missing %q:\n%s", want, out)
		}
	}
	if err := Architecture(&buf, 7); scene.KindOf(err) != scene.KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
