// Package tools exposes the offline scene operations as MCP tools. Generation itself is not offered
// because it needs a credential.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kayz/veoscene/internal/render"
	"github.com/kayz/veoscene/internal/scene"
)

// NewServer registers every scene tool on a new MCP server.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer("veoscene", version, server.WithToolCapabilities(false))
	for _, t := range Definitions() {
		s.AddTool(t.Tool, t.Handler)
	}
	return s
}

// ServeStdio serves the tools over stdin/stdout until the client disconnects.
func ServeStdio(version string) error {
	return server.ServeStdio(NewServer(version))
}

// Definition pairs a tool with its handler.
type Definition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Definitions lists the tools in registration order.
func Definitions() []Definition {
	durationOpt := mcp.WithNumber("duration",
		mcp.Required(),
		mcp.Description("Scene length in minutes: 3, 5, 10 or 20"),
	)
	sceneTypes := make([]string, 0, len(scene.SceneTypes()))
	for _, t := range scene.SceneTypes() {
		sceneTypes = append(sceneTypes, string(t))
	}

	return []Definition{
		{
			Tool: mcp.NewTool("scene_architecture",
				mcp.WithDescription("Show the act count, shots per act and average shot length for a scene duration"),
				durationOpt,
			),
			Handler: SceneArchitecture,
		},
		{
			Tool: mcp.NewTool("scene_compose",
				mcp.WithDescription("Compose the system and user text sent to the generation service for a scene configuration"),
				durationOpt,
				mcp.WithString("scene_type", mcp.Required(), mcp.Enum(sceneTypes...)),
				mcp.WithString("visual_mood", mcp.Required(), mcp.Description("Free-text visual mood")),
				mcp.WithString("location", mcp.Required(), mcp.Description("Location or environment")),
				mcp.WithString("brand_references", mcp.Description("Optional brand references, passed through verbatim")),
				mcp.WithString("part", mcp.Enum("both", "system", "user")),
			),
			Handler: SceneCompose,
		},
		{
			Tool: mcp.NewTool("scene_validate",
				mcp.WithDescription("Validate a generated scene JSON document. With strict set, also check it against the requested duration"),
				mcp.WithString("payload", mcp.Description("The scene JSON")),
				mcp.WithString("path", mcp.Description("A file holding the scene JSON, used when payload is empty")),
				mcp.WithBoolean("strict", mcp.Description("Run the consistency checks")),
				mcp.WithNumber("duration", mcp.Description("Requested duration in minutes, required with strict")),
				mcp.WithString("scene_type", mcp.Enum(sceneTypes...)),
			),
			Handler: SceneValidate,
		},
		{
			Tool: mcp.NewTool("scene_sample",
				mcp.WithDescription("Return the bundled example scene without calling any service"),
				mcp.WithString("view", mcp.Enum(render.Views()...)),
			),
			Handler: SceneSample,
		},
	}
}
