package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/render"
	"github.com/kayz/veoscene/internal/scene"
)

func newArchitectureCommand() *cobra.Command {
	var duration int

	cmd := &cobra.Command{
		Use:   "architecture",
		Short: "Show act count, shots per act and average shot length",
		Long:  "Show the pacing skeleton for one duration, or for every supported duration when --duration is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			durations := scene.Durations()
			if cmd.Flags().Changed("duration") {
				d, err := scene.ParseDuration(duration)
				if err != nil {
					return err
				}
				durations = []scene.Duration{d}
			}
			return writeOutput(cmd, "", func(w io.Writer) error {
				for i, d := range durations {
					if i > 0 {
						if _, err := io.WriteString(w, "\n"); err != nil {
							return err
						}
					}
					if err := render.Architecture(w, d); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "Scene length in minutes: 3, 5, 10 or 20")
	return cmd
}
