package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past comparison runs",
		Long: `List recent comparison runs recorded in the history database, newest
first. Each entry shows when the run started, how many inputs succeeded
or failed, and where the reports were written.`,
		Example: `  logcompare history
  logcompare history --limit 5`,
		RunE: historyRun,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")

	return cmd
}

func historyRun(cmd *cobra.Command, args []string) error {
	st, err := openHistoryStore()
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close history database", "error", err)
		}
	}()

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No comparison runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %d inputs (%d ok, %d failed)  %s\n",
			run.StartTime.Format("2006-01-02 15:04:05"),
			run.Status, run.Inputs, run.Succeeded, run.Failed,
			run.CSVPath)
	}
	return nil
}
