package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/promptbuild"
	"github.com/kayz/veoscene/internal/render"
	"github.com/kayz/veoscene/internal/scene"
)

// SceneArchitecture describes the act and shot targets for a duration.
func SceneArchitecture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := durationArg(req)
	if err != nil {
		return errorResult(err), nil
	}
	var buf bytes.Buffer
	if err := render.Architecture(&buf, d); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// SceneCompose returns the system and user text for a scene configuration.
func SceneCompose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := configArg(req)
	if err != nil {
		return errorResult(err), nil
	}
	prompt, err := promptbuild.Compose(cfg)
	if err != nil {
		return errorResult(err), nil
	}

	switch part := stringArg(req, "part"); part {
	case "system":
		return mcp.NewToolResultText(prompt.System), nil
	case "user":
		return mcp.NewToolResultText(prompt.User), nil
	case "", "both":
		return mcp.NewToolResultText("SYSTEM:\n" + prompt.System + "\n\nUSER:\n" + prompt.User), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("part must be system, user or both, got %q", part)), nil
	}
}

// SceneValidate checks a generated scene given inline or by file path.
func SceneValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := stringArg(req, "payload")
	if payload == "" {
		path := stringArg(req, "path")
		if path == "" {
			return mcp.NewToolResultError("payload or path is required"), nil
		}
		absPath, err := filepath.Abs(ExpandTilde(path))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
		}
		data, err := os.ReadFile(absPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
		}
		payload = string(data)
	}

	strict := boolArg(req, "strict")
	var cfg scene.Config
	if strict {
		d, err := durationArg(req)
		if err != nil {
			return errorResult(err), nil
		}
		cfg = scene.Config{Duration: d, SceneType: scene.SceneType(stringArg(req, "scene_type"))}
	}

	s, err := generator.Validate([]byte(payload), strict, cfg)
	if err != nil {
		return errorResult(err), nil
	}
	mode := "shape"
	if strict {
		mode = "strict"
	}
	return mcp.NewToolResultText(fmt.Sprintf("valid (%s): %q, %d acts, %d shots", mode, s.Overview.Title, len(s.Architecture.Acts), s.ShotCount())), nil
}

// SceneSample renders the bundled example scene.
func SceneSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := stringArg(req, "view")
	if view == "" {
		view = render.ViewJSON
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, view, generator.Sample()); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.TrimRight(buf.String(), "\n")), nil
}
