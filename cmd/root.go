package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/logger"
)

var (
	logLevel   string
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "veoscene",
	Short: "Cinematic scene brief generator for Veo-3",
	Long: `veoscene turns a short scene configuration into a complete shot-by-shot brief
(acts, shots, timing map and a copy-ready video prompt) using one call to a
text generation service.

  veoscene init                  Write a default config file
  veoscene architecture          Show the act and shot targets per duration
  veoscene compose               Print the composed prompt without calling anything
  veoscene generate              Generate a scene (needs an API key)
  veoscene sample                Show the bundled example scene
  veoscene validate FILE         Check a scene JSON document
  veoscene web                   Run the web UI`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// the flag wins over logging.level
		levelName := cfg.Logging.Level
		if cmd.Flags().Changed("log") || levelName == "" {
			levelName = logLevel
		}
		level, err := logger.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default .veoscene.yaml next to the executable)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"Load environment variables from this file (default .env when present)")

	rootCmd.AddCommand(
		newInitCommand(),
		newArchitectureCommand(),
		newComposeCommand(),
		newGenerateCommand(),
		newSampleCommand(),
		newValidateCommand(),
		newSchemaCommand(),
		newProvidersCommand(),
		newHistoryCommand(),
		newMaintenanceCommand(),
		newWebCommand(),
		newMCPCommand(),
		newVersionCommand(),
	)
}

var loadedConfig *config.Config

// loadConfig reads the config once per process, from --config or the default location.
func loadConfig() (*config.Config, error) {
	if loadedConfig != nil {
		return loadedConfig, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loadedConfig = cfg
	return cfg, nil
}

// loadEnvFile loads path, or .env when path is empty. Existing variables are kept.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	logger.Debug("[CLI] loaded environment from %s", path)
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
