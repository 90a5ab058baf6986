package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/credential"
	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/render"
)

type generateFlags struct {
	provider   string
	model      string
	baseURL    string
	apiKeyEnv  string
	strict     bool
	jsonSchema bool
	timeout    time.Duration
	view       string
	output     string
}

func newGenerateCommand() *cobra.Command {
	var (
		flags sceneFlags
		gf    generateFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a scene package with one call to the generation service",
		Long: `Generate a complete scene package. The API key is read from the environment
variable named by --api-key-env (default OPENAI_API_KEY, .env files are honoured)
or, when unset, from one line of standard input. The key is used for this single
request and is never written anywhere.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := flags.config()
			if err != nil {
				return err
			}
			view, err := render.ParseView(gf.view)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := ai.LoadRegistry()
			if err != nil {
				return err
			}

			opts := generateOptions(cmd, cfg, gf)
			genOpts := []generator.Option{generator.WithBuilder(newBuilder(cfg))}
			store, err := openHistory(cfg)
			if err != nil {
				logger.Warn("[CLI] history disabled: %v", err)
			} else if store != nil {
				defer store.Close()
				genOpts = append(genOpts, generator.WithRecorder(store))
			}
			gen := generator.New(registry, opts, genOpts...)

			preset, err := gen.Preset()
			if err != nil {
				return err
			}
			secret, err := readSecret(cmd, apiKeyEnv(cmd, cfg, gf, preset), preset)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Generating %s %s scene via %s (%s)...\n",
				sc.Duration.Label(), sc.SceneType.Label(), preset.DisplayName(), preset.Model(opts.Model))
			s, err := gen.Generate(ctx, sc, secret)
			if err != nil {
				return err
			}
			return writeOutput(cmd, gf.output, func(w io.Writer) error {
				return render.Write(w, view, s)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&gf.provider, "provider", "", "Provider preset (see `veoscene providers`)")
	cmd.Flags().StringVar(&gf.model, "model", "", "Model override")
	cmd.Flags().StringVar(&gf.baseURL, "base-url", "", "Base URL override")
	cmd.Flags().StringVar(&gf.apiKeyEnv, "api-key-env", "", "Environment variable holding the API key")
	cmd.Flags().BoolVar(&gf.strict, "strict", false, "Also check the reply against the requested architecture")
	cmd.Flags().BoolVar(&gf.jsonSchema, "json-schema", false, "Request schema-constrained output where supported")
	cmd.Flags().DurationVar(&gf.timeout, "timeout", 0, "Request timeout (default from config)")
	cmd.Flags().StringVar(&gf.view, "view", render.ViewStoryboard, "Output view: storyboard, veo-prompt or json")
	cmd.Flags().StringVarP(&gf.output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// generateOptions layers command flags over the config file.
func generateOptions(cmd *cobra.Command, cfg *config.Config, gf generateFlags) generator.Options {
	opts := generator.OptionsFromConfig(cfg)
	if gf.provider != "" {
		opts.Provider = gf.provider
		if !cmd.Flags().Changed("model") {
			// the configured model belongs to the configured provider
			opts.Model = ""
		}
		if !cmd.Flags().Changed("base-url") {
			opts.BaseURL = ""
		}
	}
	if gf.model != "" {
		opts.Model = gf.model
	}
	if gf.baseURL != "" {
		opts.BaseURL = gf.baseURL
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = gf.strict
	}
	if cmd.Flags().Changed("json-schema") {
		opts.JSONSchema = gf.jsonSchema
	}
	if gf.timeout > 0 {
		opts.Timeout = gf.timeout
	}
	return opts
}

func apiKeyEnv(cmd *cobra.Command, cfg *config.Config, gf generateFlags, preset *ai.ProviderConfig) string {
	if gf.apiKeyEnv != "" {
		return gf.apiKeyEnv
	}
	if !cmd.Flags().Changed("provider") && cfg.AI.APIKeyEnv != "" {
		return cfg.AI.APIKeyEnv
	}
	return preset.APIKeyEnv
}

// readSecret takes the key from env, or prompts for one line on stdin.
func readSecret(cmd *cobra.Command, env string, preset *ai.ProviderConfig) (*credential.Secret, error) {
	if env != "" {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			logger.Debug("[CLI] API key taken from $%s", env)
			return credential.New(key), nil
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s API key: ", preset.DisplayName())
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read API key: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	return credential.New(line), nil
}
