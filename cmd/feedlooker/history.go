package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/nao1215/feedlooker/internal/config"
	"github.com/nao1215/feedlooker/internal/database"
	"github.com/nao1215/feedlooker/internal/report"
	"github.com/spf13/cobra"
)

// timeDisplayRounding keeps listed durations readable.
const timeDisplayRounding = 10 * time.Millisecond

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or show past discovery runs",
		Long: `History lists discovery runs saved with 'discover --save'.

Without arguments it prints a table of past runs, newest first.
With a run ID it prints the stored report for that run.

Examples:
  # List all saved runs
  feedlooker history

  # List saved runs for one site
  feedlooker history --site https://example.com/

  # Show one saved run in full
  feedlooker history 2f1c9a6e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("site", "", "Only list runs for this seed URL")
	cmd.Flags().String("db", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	site, err := cmd.Flags().GetString("site")
	if err != nil {
		return err
	}

	// The history database is never created here; reading history before
	// any run was saved is a user error worth a clear message.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no history found (save runs with 'discover --save'): %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort cleanup

	if len(args) == 1 {
		return showRun(cmd, db, args[0])
	}
	return listRuns(cmd, db, site)
}

// listRuns prints a table of saved runs, newest first.
func listRuns(cmd *cobra.Command, db *database.HistoryDB, site string) error {
	runs, err := db.ListRuns(cmd.Context(), site)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSITE\tFEEDS\tPAGES\tDURATION\tRUN ID")
	for _, r := range runs {
		status := ""
		if r.TimedOut {
			status = " (partial)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d%s\t%d\t%s\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.RootURL,
			r.FeedCount,
			status,
			r.PagesCrawled,
			r.Duration.Round(timeDisplayRounding),
			r.RunID,
		)
	}
	return w.Flush()
}

// showRun prints one saved run in full.
func showRun(cmd *cobra.Command, db *database.HistoryDB, runID string) error {
	runReport, err := db.GetRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if runReport == nil {
		return fmt.Errorf("run %q not found", runID)
	}

	writer := report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(true))
	_, err = writer.Write(runReport)
	return err
}
