package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/promptbuild"
)

func newComposeCommand() *cobra.Command {
	var (
		flags      sceneFlags
		part       string
		showLayers bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the system and user text for a scene configuration",
		Long:  "Compose the prompt exactly as generate would send it. Nothing is sent anywhere.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := flags.config()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if showLayers {
				layers, err := promptbuild.Layers(sc)
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, func(w io.Writer) error {
					for _, l := range layers {
						if _, err := fmt.Fprintf(w, "=== %s (%d chars) ===\n%s\n\n", l.Name, len(l.Content), l.Content); err != nil {
							return err
						}
					}
					return nil
				})
			}

			prompt, err := newBuilder(cfg).Compose(sc)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				switch part {
				case "system":
					_, err = fmt.Fprintln(w, prompt.System)
				case "user":
					_, err = fmt.Fprintln(w, prompt.User)
				case "both", "":
					_, err = fmt.Fprintf(w, "SYSTEM:\n%s\n\nUSER:\n%s\n", prompt.System, prompt.User)
				default:
					err = fmt.Errorf("--part must be system, user or both, got %q", part)
				}
				return err
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&part, "part", "both", "Which text to print: system, user or both")
	cmd.Flags().BoolVar(&showLayers, "layers", false, "Print the system text layer by layer")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newBuilder(cfg *config.Config) *promptbuild.Builder {
	return promptbuild.NewBuilder(cfg.Audit)
}
