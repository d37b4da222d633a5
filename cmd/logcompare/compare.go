package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macdiag/logcompare/internal/archive"
	"github.com/macdiag/logcompare/internal/compare"
	"github.com/macdiag/logcompare/internal/logshow"
	"github.com/macdiag/logcompare/internal/store"
)

var (
	compareOutputDir string
	compareKeepTemp  bool
	compareYes       bool
	compareNoHistory bool
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <path> <path> [<path>...]",
		Short: "Compare two or more logarchives or sysdiagnose bundles",
		Long: `Compare two or more archives side by side. Each path may be a raw
.logarchive directory or a compressed sysdiagnose bundle (tar.gz, tar.xz
or tar.zst); bundles are extracted into temporary directories which are
offered for deletion once the reports are written.

A path that cannot be processed is logged and dropped; the comparison
proceeds over the remaining paths. The run fails only when every path
fails or a report cannot be written.`,
		Example: `  logcompare compare a.logarchive b.logarchive
  logcompare compare --output-dir reports a.logarchive sysdiagnose_b.tar.gz
  logcompare compare --yes old.tar.gz new.tar.gz`,
		Args: cobra.MinimumNArgs(2),
		RunE: compareRun,
	}

	cmd.Flags().StringVar(&compareOutputDir, "output-dir", "", "directory for the CSV/HTML reports (default: config output.dir)")
	cmd.Flags().BoolVar(&compareKeepTemp, "keep-temp", false, "keep temporary extraction directories without prompting")
	cmd.Flags().BoolVar(&compareYes, "yes", false, "delete temporary extraction directories without prompting")
	cmd.Flags().BoolVar(&compareNoHistory, "no-history", false, "do not record this run in the history database")

	return cmd
}

func compareRun(cmd *cobra.Command, args []string) error {
	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	maxExtract, err := archive.ParseSize(globalCfg.Extract.MaxArchiveSize)
	if err != nil {
		logger.Warn("invalid extract.max_archive_size, extraction cap disabled",
			"value", globalCfg.Extract.MaxArchiveSize, "error", err)
		maxExtract = 0
	}

	var st *store.Store
	if globalCfg.History.Enabled && !compareNoHistory {
		st, err = openHistoryStore()
		if err != nil {
			logger.Warn("history disabled, could not open database", "error", err)
			st = nil
		} else {
			defer func() {
				if err := st.Close(); err != nil {
					logger.Error("failed to close history database", "error", err)
				}
			}()
		}
	}

	outputDir := compareOutputDir
	if outputDir == "" {
		outputDir = globalCfg.Output.Dir
	}

	pipeline := compare.NewPipeline(
		archive.NewLocator(maxExtract, logger),
		logshow.NewExtractor(logshow.NewCommandRunner(globalCfg.LogTool.Binary, logger), logger),
		st,
		logger,
	)

	result, runErr := pipeline.Run(cmd.Context(), args, compare.Options{
		OutputDir: outputDir,
		Timeout:   globalCfg.LogTimeout(),
	})

	if runErr == nil {
		printComparison(result)
	}

	// Cleanup runs last, whatever the outcome, so extraction directories
	// never linger silently.
	if len(result.TempDirs) > 0 {
		if compareKeepTemp {
			for _, dir := range result.TempDirs {
				logger.Info("keeping temporary directory", "dir", dir)
			}
		} else {
			cleaner := archive.NewCleaner(os.Stdin, os.Stdout, logger)
			if err := cleaner.Run(result.TempDirs, compareYes); err != nil {
				logger.Error("cleanup failed", "error", err)
			}
		}
	}

	if runErr != nil {
		return fmt.Errorf("comparison failed: %w", runErr)
	}
	return nil
}

func printComparison(result *compare.Result) {
	fmt.Println("Comparison complete:")
	for _, m := range result.Aggregate.Results() {
		fmt.Printf("  %s: %s, %.2f hr span, %d events, %d processes\n",
			m.Label(), humanize.IBytes(uint64(m.SizeBytes)),
			m.TTLHours(), m.Events, m.UniqueProcesses())
	}
	for _, f := range result.Aggregate.Failures() {
		fmt.Printf("  %s: FAILED (%v)\n", f.Source, f.Err)
	}
	fmt.Println()
	fmt.Printf("CSV saved:  %s\n", result.CSVPath)
	fmt.Printf("HTML saved: %s\n", result.HTMLPath)
}
