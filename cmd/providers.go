package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/ai"
)

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the generation service presets",
		Long:  "List the built-in presets merged with providers.yaml in the config directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ai.LoadRegistry()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Providers:")
			for _, p := range registry.ListProviders() {
				marker := " "
				if p.Name == cfg.AI.Provider {
					marker = "*"
				}
				var notes []string
				if p.SupportsJSONSchema {
					notes = append(notes, "json-schema")
				}
				if p.KeyPrefix != "" {
					notes = append(notes, "key "+p.KeyPrefix+"...")
				}
				if p.APIKeyEnv != "" {
					notes = append(notes, "$"+p.APIKeyEnv)
				}
				fmt.Fprintf(out, "%s %-10s %-22s model=%s [%s]\n", marker, p.Name, p.DisplayName(), p.DefaultModel, strings.Join(notes, ", "))
			}
			return nil
		},
	}
}
