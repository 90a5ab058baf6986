package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/veoscene/internal/persist"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit int
		purge bool
		id    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generation attempts",
		Long:  "List recent attempts (metadata only, never prompts, keys or scenes). --id shows one attempt, --purge removes attempts older than history.retention_days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled (history.enabled: false)")
				return nil
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id != "" {
				a, err := store.GetAttempt(id)
				if err != nil {
					return fmt.Errorf("attempt %s: %w", id, err)
				}
				printAttempt(out, a)
				return nil
			}
			if purge {
				days := cfg.History.RetentionDays
				if days <= 0 {
					return fmt.Errorf("history.retention_days must be positive to purge")
				}
				n, err := store.PurgeOlderThan(time.Now().AddDate(0, 0, -days))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Purged %d attempts older than %d days\n", n, days)
				return nil
			}

			attempts, err := store.ListAttempts(limit)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No attempts recorded")
				return nil
			}
			for _, a := range attempts {
				line := fmt.Sprintf("%s  %s  %-13s %2dm %-22s %s/%s %dms",
					a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04:05"), a.Outcome, a.Duration, a.SceneType, a.Provider, a.Model, a.LatencyMS)
				if a.Succeeded() {
					line += fmt.Sprintf(" %d shots", a.TotalShots)
				} else if a.Message != "" {
					line += " - " + a.Message
				}
				fmt.Fprintln(out, line)
			}

			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Fprint(out, "Summary:")
			for _, s := range stats {
				fmt.Fprintf(out, " %s=%d", s.Outcome, s.Count)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of attempts to show")
	cmd.Flags().BoolVar(&purge, "purge", false, "Remove attempts older than the retention period")
	cmd.Flags().StringVar(&id, "id", "", "Show one attempt in detail")
	return cmd
}

func printAttempt(w io.Writer, a *persist.Attempt) {
	fmt.Fprintf(w, "ID:        %s\n", a.ID)
	fmt.Fprintf(w, "Time:      %s\n", a.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Scene:     %d minutes, %s\n", a.Duration, a.SceneType)
	fmt.Fprintf(w, "Provider:  %s/%s\n", a.Provider, a.Model)
	fmt.Fprintf(w, "Outcome:   %s\n", a.Outcome)
	fmt.Fprintf(w, "Latency:   %dms\n", a.LatencyMS)
	if a.Succeeded() {
		fmt.Fprintf(w, "Shots:     %d\n", a.TotalShots)
	}
	if len(a.Flags) > 0 {
		fmt.Fprintf(w, "Flags:     %s\n", strings.Join(a.Flags, ", "))
	}
	if a.Message != "" {
		fmt.Fprintf(w, "Message:   %s\n", a.Message)
	}
}
