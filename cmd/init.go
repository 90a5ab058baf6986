package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default settings to .veoscene.yaml next to the executable, or to --config.
The file never holds an API key; keys come from the environment or the prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.ConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			var err error
			if configPath == "" {
				err = cfg.Save()
			} else {
				err = cfg.SaveTo(path)
			}
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
