package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/persist"
	"github.com/kayz/veoscene/internal/scene"
)

// sceneFlags binds the scene configuration to command flags.
type sceneFlags struct {
	duration  int
	sceneType string
	mood      string
	location  string
	brand     string
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.duration, "duration", "d", 5, "Scene length in minutes: 3, 5, 10 or 20")
	cmd.Flags().StringVarP(&f.sceneType, "scene-type", "t", string(scene.CinematicBrand),
		"Scene type: cinematic-brand, luxury-commercial, documentary, hyper-real-performance")
	cmd.Flags().StringVar(&f.mood, "mood", "", "Visual mood (required)")
	cmd.Flags().StringVar(&f.location, "location", "", "Location or environment (required)")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand references (optional)")
}

func (f *sceneFlags) config() (scene.Config, error) {
	cfg := scene.Config{
		Duration:        scene.Duration(f.duration),
		SceneType:       scene.SceneType(f.sceneType),
		VisualMood:      f.mood,
		Location:        f.location,
		BrandReferences: f.brand,
	}
	return cfg, cfg.Validate()
}

// openHistory opens the attempt store, or returns nil when history is disabled.
func openHistory(cfg *config.Config) (*persist.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path := cfg.History.SQLitePath
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "history.db")
	}
	return persist.NewStore(path)
}

// writeOutput renders into a buffer and writes it to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if path == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
