package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/render"
)

func newSampleCommand() *cobra.Command {
	var view, output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Show the bundled example scene (no API key needed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd, output, func(w io.Writer) error {
				return render.Write(w, view, generator.Sample())
			})
		},
	}
	cmd.Flags().StringVar(&view, "view", render.ViewStoryboard, "Output view: storyboard, veo-prompt or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
