package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"whisper-batch/internal/bootstrap"
	"whisper-batch/internal/domain"
	"whisper-batch/internal/history"
)

var (
	historyRun    string
	historyStatus string
	historyLimit  int
	pruneOlder    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded task outcomes",
	Long: `Lists task outcomes recorded with --history, newest first. Without
--history the database under ~/.whisper-batch is used.

Examples:
  whisper-batch history --limit 20
  whisper-batch history --status error
  whisper-batch history prune --older-than 720h`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old outcomes",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().StringVar(&historyRun, "run", "", "only this run id")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only this status (complete, error, skipped)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum rows")
	historyPruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 30*24*time.Hour, "age of outcomes to delete")
}

func openHistory() (*history.Store, error) {
	path := historyPath
	if path == "" {
		path = bootstrap.DefaultHistoryPath()
	}
	return history.Open(path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	outcomes, err := store.List(context.Background(), history.Filter{
		RunID:  historyRun,
		Status: domain.TaskStatus(historyStatus),
		Limit:  historyLimit,
	})
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	if len(outcomes) == 0 {
		out.line("No recorded outcomes.")
		return nil
	}
	for _, o := range outcomes {
		detail := o.OutputPath
		if o.Status != domain.TaskStatusComplete {
			detail = o.Message
		}
		out.line(fmt.Sprintf("%s  %s  %s %-8s %s  %s",
			o.FinishedAt.Local().Format("2006-01-02 15:04"),
			out.style(mutedStyle, shortID(o.RunID)),
			out.style(statusStyleFor(o.Status), fmt.Sprintf("%-14s", o.Status.Label())),
			o.Model,
			o.Path,
			out.style(mutedStyle, detail),
		))
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Prune(context.Background(), pruneOlder)
	if err != nil {
		return err
	}
	newPrinter(cmd.OutOrStdout()).status(fmt.Sprintf("Deleted %d outcome(s)", n))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
