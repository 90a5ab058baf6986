package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/scene"
)

func newValidateCommand() *cobra.Command {
	var (
		strict    bool
		duration  int
		sceneType string
	)

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a scene JSON document (use - for stdin)",
		Long: `Check that a scene JSON document has the required top-level members.
With --strict the document is also checked against the architecture of --duration:
shot counts, MM:SS boundaries, contiguity and the total runtime tolerance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var cfg scene.Config
			if strict {
				d, err := scene.ParseDuration(duration)
				if err != nil {
					return err
				}
				cfg = scene.Config{Duration: d, SceneType: scene.SceneType(sceneType)}
			}

			s, err := generator.Validate(payload, strict, cfg)
			if err != nil {
				return err
			}
			mode := "shape"
			if strict {
				mode = "strict"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK (%s): %q, %d acts, %d shots\n",
				mode, s.Overview.Title, len(s.Architecture.Acts), s.ShotCount())
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Run the consistency checks")
	cmd.Flags().IntVarP(&duration, "duration", "d", 5, "Requested duration in minutes, used with --strict")
	cmd.Flags().StringVarP(&sceneType, "scene-type", "t", "", "Requested scene type, used with --strict")
	return cmd
}
