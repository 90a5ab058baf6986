package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayz/veoscene/internal/scene"
)

var (
	exeDirCache string
)

// GetExecutableDir returns the directory where the executable is located
func GetExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

// ExpandTilde expands ~ to the executable directory instead of user home
func ExpandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		exeDir := GetExecutableDir()
		if len(path) == 1 {
			return exeDir
		}
		return filepath.Join(exeDir, path[1:])
	}
	return path
}

func stringArg(req mcp.CallToolRequest, name string) string {
	v, _ := req.Params.Arguments[name].(string)
	return strings.TrimSpace(v)
}

func boolArg(req mcp.CallToolRequest, name string) bool {
	switch v := req.Params.Arguments[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// intArg accepts JSON numbers and numeric strings. ok is false when the argument is absent.
func intArg(req mcp.CallToolRequest, name string) (int, bool, error) {
	switch v := req.Params.Arguments[name].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%s must be a whole number", name)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number", name)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", name)
	}
}

func durationArg(req mcp.CallToolRequest) (scene.Duration, error) {
	minutes, ok, err := intArg(req, "duration")
	if err != nil {
		return 0, scene.Configurationf("%v", err)
	}
	if !ok {
		return 0, scene.Configurationf("duration is required")
	}
	return scene.ParseDuration(minutes)
}

// configArg reads the scene configuration from flat arguments.
func configArg(req mcp.CallToolRequest) (scene.Config, error) {
	d, err := durationArg(req)
	if err != nil {
		return scene.Config{}, err
	}
	cfg := scene.Config{
		Duration:        d,
		SceneType:       scene.SceneType(stringArg(req, "scene_type")),
		VisualMood:      stringArg(req, "visual_mood"),
		Location:        stringArg(req, "location"),
		BrandReferences: stringArg(req, "brand_references"),
	}
	return cfg, cfg.Validate()
}

func errorResult(err error) *mcp.CallToolResult {
	if kind := scene.KindOf(err); kind != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s error: %v", kind, err))
	}
	return mcp.NewToolResultError(err.Error())
}
