package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/tools"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the offline scene tools over MCP (stdio)",
		Long: `Serve scene_architecture, scene_compose, scene_validate and scene_sample as MCP
tools over stdin/stdout. Generation is not exposed because it needs an API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tools.ServeStdio(Version)
		},
	}
}
