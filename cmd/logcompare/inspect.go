package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macdiag/logcompare/internal/archive"
	"github.com/macdiag/logcompare/internal/logshow"
	"github.com/macdiag/logcompare/internal/metrics"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Show metrics for a single logarchive or sysdiagnose bundle",
		Long: `Show metrics for a single archive without writing report files or
recording history. Temporary extraction directories are removed
automatically.`,
		Example: `  logcompare inspect system_logs.logarchive
  logcompare inspect sysdiagnose_2025.05.01.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: inspectRun,
	}

	return cmd
}

func inspectRun(cmd *cobra.Command, args []string) error {
	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}
	path := args[0]

	maxExtract, err := archive.ParseSize(globalCfg.Extract.MaxArchiveSize)
	if err != nil {
		maxExtract = 0
	}

	locator := archive.NewLocator(maxExtract, logger)
	loc, err := locator.Locate(path)
	if err != nil {
		return fmt.Errorf("locating archive: %w", err)
	}
	if loc.TempDir != "" {
		defer func() {
			if err := os.RemoveAll(loc.TempDir); err != nil {
				logger.Warn("failed to remove temporary directory", "dir", loc.TempDir, "error", err)
			} else {
				logger.Info("removed temporary directory", "dir", loc.TempDir)
			}
		}()
	}

	size, err := archive.PathSize(loc.Source)
	if err != nil {
		return fmt.Errorf("measuring archive: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), globalCfg.LogTimeout())
	defer cancel()

	extractor := logshow.NewExtractor(logshow.NewCommandRunner(globalCfg.LogTool.Binary, logger), logger)
	summary, err := extractor.Extract(ctx, loc.Path)
	if err != nil {
		return fmt.Errorf("extracting metrics: %w", err)
	}

	m := metrics.NewArchiveMetrics(loc.Source, loc.Path, size,
		summary.Earliest, summary.Latest, summary.Events, summary.ProcessNames())

	fmt.Printf("Archive:          %s\n", m.Source)
	fmt.Printf("Resolved:         %s\n", m.Archive)
	fmt.Printf("Size:             %s (%d bytes)\n", humanize.IBytes(uint64(m.SizeBytes)), m.SizeBytes)
	if m.Events > 0 {
		fmt.Printf("Earliest event:   %s\n", m.Earliest.Format("2006-01-02 15:04:05 -0700"))
		fmt.Printf("Latest event:     %s\n", m.Latest.Format("2006-01-02 15:04:05 -0700"))
	}
	fmt.Printf("TTL:              %.2f hours (%.2f days)\n", m.TTLHours(), m.TTLDays())
	fmt.Printf("Total events:     %d\n", m.Events)
	fmt.Printf("Unique processes: %d\n", m.UniqueProcesses())

	return nil
}
