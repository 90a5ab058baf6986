package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/generator"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/webui"
)

func newWebCommand() *cobra.Command {
	var webPort int

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the web UI and the maintenance scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Web.Port = webPort
			}
			registry, err := ai.LoadRegistry()
			if err != nil {
				return err
			}

			builder := newBuilder(cfg)
			genOpts := []generator.Option{generator.WithBuilder(builder)}
			serverOpts := []webui.Option{webui.WithBuilder(builder)}
			store, err := openHistory(cfg)
			if err != nil {
				logger.Warn("[Web] history disabled: %v", err)
				store = nil
			}
			if store != nil {
				defer store.Close()
				genOpts = append(genOpts, generator.WithRecorder(store))
				serverOpts = append(serverOpts, webui.WithHistory(store))
			}

			scheduler, err := newMaintenanceScheduler(cfg, builder, store)
			if err != nil {
				return err
			}
			serverOpts = append(serverOpts, webui.WithScheduler(scheduler))

			gen := generator.New(registry, generator.OptionsFromConfig(cfg), genOpts...)
			server := webui.NewServer(gen, serverOpts...)
			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Web.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("[Web] listening on http://127.0.0.1:%d", cfg.Web.Port)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("web server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				scheduler.Start()
				<-ctx.Done()
				scheduler.Stop()
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&webPort, "port", 8787, "Web UI listen port (default from config)")
	return cmd
}
