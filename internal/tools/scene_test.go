package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayz/veoscene/internal/scene"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned unexpected error: %v", err)
	}
	if result == nil {
		t.Fatalf("expected tool result")
	}
	var text strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	return text.String(), result.IsError
}

func TestSceneArchitecture(t *testing.T) {
	out, isErr := callTool(t, SceneArchitecture, map[string]any{"duration": float64(3)})
	if isErr || !strings.Contains(out, "3 Minutes (180 seconds ±2 seconds)") || !strings.Contains(out, "total  11") {
		t.Fatalf("unexpected architecture: %s", out)
	}

	tests := []map[string]any{
		{},
		{"duration": float64(4)},
		{"duration": 5.5},
		{"duration": "five"},
	}
	for _, args := range tests {
		if out, isErr := callTool(t, SceneArchitecture, args); !isErr || !strings.HasPrefix(out, "configuration error") {
			t.Fatalf("args %v should be rejected, got %q", args, out)
		}
	}
}

func composeArgs() map[string]any {
	return map[string]any{
		"duration":    float64(5),
		"scene_type":  "luxury-commercial",
		"visual_mood": "Warm intimacy meeting cold precision",
		"location":    "Swiss watchmaking atelier",
	}
}

func TestSceneCompose(t *testing.T) {
	out, isErr := callTool(t, SceneCompose, composeArgs())
	if isErr || !strings.HasPrefix(out, "SYSTEM:\n") || !strings.Contains(out, "\n\nUSER:\n") {
		t.Fatalf("unexpected compose output: %s", out)
	}

	args := composeArgs()
	args["part"] = "user"
	args["brand_references"] = "Patek Philippe"
	out, _ = callTool(t, SceneCompose, args)
	if strings.Contains(out, "SCENE ARCHITECTURE REQUIREMENTS") || !strings.Contains(out, "- Brand References: Patek Philippe") {
		t.Fatalf("expected only the user text: %s", out)
	}

	args["part"] = "middle"
	if _, isErr := callTool(t, SceneCompose, args); !isErr {
		t.Fatalf("unknown part should be rejected")
	}

	args = composeArgs()
	args["visual_mood"] = "   "
	if out, isErr := callTool(t, SceneCompose, args); !isErr || !strings.Contains(out, "visual mood is required") {
		t.Fatalf("blank mood should be rejected, got %q", out)
	}
}

func TestSceneValidate(t *testing.T) {
	out, isErr := callTool(t, SceneValidate, map[string]any{"payload": string(scene.SampleJSON())})
	if isErr || !strings.Contains(out, "valid (shape)") || !strings.Contains(out, "18 shots") {
		t.Fatalf("sample should validate: %s", out)
	}

	out, isErr = callTool(t, SceneValidate, map[string]any{
		"payload":  string(scene.SampleJSON()),
		"strict":   true,
		"duration": float64(3),
	})
	if !isErr || !strings.HasPrefix(out, "consistency error") {
		t.Fatalf("expected consistency error, got %q", out)
	}

	if out, isErr := callTool(t, SceneValidate, map[string]any{"payload": `{"veoPrompt":""}`}); !isErr || !strings.HasPrefix(out, "shape error") {
		t.Fatalf("expected shape error, got %q", out)
	}
	if _, isErr := callTool(t, SceneValidate, map[string]any{}); !isErr {
		t.Fatalf("missing payload should be rejected")
	}
}

func TestSceneValidateFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, scene.SampleJSON(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, isErr := callTool(t, SceneValidate, map[string]any{
		"path":       path,
		"strict":     "true",
		"duration":   "5",
		"scene_type": "luxury-commercial",
	})
	if isErr || !strings.Contains(out, "valid (strict)") {
		t.Fatalf("fixture should pass strict validation: %s", out)
	}

	if _, isErr := callTool(t, SceneValidate, map[string]any{"path": filepath.Join(t.TempDir(), "missing.json")}); !isErr {
		t.Fatalf("missing file should be a tool error")
	}
}

func TestSceneSample(t *testing.T) {
	out, isErr := callTool(t, SceneSample, map[string]any{})
	if isErr || !strings.HasPrefix(out, "{\n  \"overview\"") {
		t.Fatalf("default view should be JSON: %.40s", out)
	}
	out, _ = callTool(t, SceneSample, map[string]any{"view": "veo-prompt"})
	if !strings.HasPrefix(out, "SCENE: THE ARTISAN'S DAWN") {
		t.Fatalf("unexpected veo prompt view: %.40s", out)
	}
}

func TestDefinitionsRegistered(t *testing.T) {
	want := []string{"scene_architecture", "scene_compose", "scene_validate", "scene_sample"}
	defs := Definitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(defs))
	}
	for i, d := range defs {
		if d.Tool.Name != want[i] || d.Handler == nil {
			t.Fatalf("tool %d: got %q", i, d.Tool.Name)
		}
	}
	if NewServer("test") == nil {
		t.Fatalf("server not created")
	}
}
