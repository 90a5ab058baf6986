package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/cron"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/persist"
	"github.com/kayz/veoscene/internal/promptbuild"
)

const (
	jobAuditCleanup = "audit-cleanup"
	jobHistoryPurge = "history-purge"
)

// newMaintenanceScheduler registers the housekeeping jobs that apply to cfg. store may be nil.
func newMaintenanceScheduler(cfg *config.Config, builder *promptbuild.Builder, store *persist.Store) (*cron.Scheduler, error) {
	s := cron.NewScheduler()

	if cfg.Audit.Enabled && cfg.Audit.RetentionDays > 0 {
		_, err := s.AddJob(jobAuditCleanup, cfg.Maintenance.AuditCleanup, func(ctx context.Context) error {
			n, err := builder.CleanupOldAuditFiles()
			if n > 0 {
				logger.Info("[Maintenance] removed %d audit files", n)
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", jobAuditCleanup, err)
		}
	}

	if store != nil && cfg.History.RetentionDays > 0 {
		days := cfg.History.RetentionDays
		_, err := s.AddJob(jobHistoryPurge, cfg.Maintenance.HistoryPurge, func(ctx context.Context) error {
			n, err := store.PurgeOlderThan(time.Now().AddDate(0, 0, -days))
			if n > 0 {
				logger.Info("[Maintenance] purged %d attempts older than %d days", n, days)
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", jobHistoryPurge, err)
		}
	}

	return s, nil
}

func newMaintenanceCommand() *cobra.Command {
	var run string

	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "List the housekeeping jobs, or run one now",
		Long: `List the scheduled housekeeping jobs (audit file retention and history purge)
with their next activation. --run NAME executes one job immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			s, err := newMaintenanceScheduler(cfg, newBuilder(cfg), store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if run != "" {
				if err := s.RunNow(cmd.Context(), run); err != nil {
					return err
				}
				fmt.Fprintf(out, "Job %s completed\n", run)
				return nil
			}

			s.Start()
			defer s.Stop()
			jobs := s.ListJobs()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No maintenance jobs configured")
				return nil
			}
			for _, j := range jobs {
				fmt.Fprintf(out, "%-14s %-16s next %s\n", j.Name, j.Schedule, s.NextRun(j.ID).Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&run, "run", "", "Run this job now: audit-cleanup or history-purge")
	return cmd
}
