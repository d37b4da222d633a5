package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/macdiag/logcompare/internal/metrics"
)

// CSVHeader is the fixed column order of the CSV report.
var CSVHeader = []string{
	"Source Path",
	"Size (bytes)",
	"Size (KB)",
	"Size (MB)",
	"Size (GB)",
	"TTL (min)",
	"TTL (hr)",
	"TTL (days)",
	"Total Events",
	"Unique Processes",
}

// BaseName returns the shared stem of a run's output files,
// e.g. "logarchive_comparison_20250501_103000".
func BaseName(t time.Time) string {
	return "logarchive_comparison_" + t.Format("20060102_150405")
}

// WriteCSV renders one row per successful archive to path. The file is
// written in a single operation from fully built in-memory content.
func WriteCSV(path string, results []metrics.ArchiveMetrics) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, m := range results {
		row := []string{
			m.Source,
			strconv.FormatInt(m.SizeBytes, 10),
			fmt.Sprintf("%.2f", m.SizeKB()),
			fmt.Sprintf("%.2f", m.SizeMB()),
			fmt.Sprintf("%.2f", m.SizeGB()),
			fmt.Sprintf("%.2f", m.TTLMinutes()),
			fmt.Sprintf("%.2f", m.TTLHours()),
			fmt.Sprintf("%.2f", m.TTLDays()),
			strconv.Itoa(m.Events),
			strconv.Itoa(m.UniqueProcesses()),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", m.Source, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing csv report: %w", err)
	}
	return nil
}
