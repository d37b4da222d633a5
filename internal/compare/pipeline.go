package compare

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/macdiag/logcompare/internal/archive"
	"github.com/macdiag/logcompare/internal/logshow"
	"github.com/macdiag/logcompare/internal/metrics"
	"github.com/macdiag/logcompare/internal/report"
	"github.com/macdiag/logcompare/internal/store"
)

// Options configures a comparison run.
type Options struct {
	OutputDir string
	Timeout   time.Duration // per-archive extraction timeout, 0 = none
}

// Result summarizes a completed run. TempDirs lists extraction directories
// awaiting cleanup, in creation order.
type Result struct {
	Aggregate *metrics.Aggregate
	CSVPath   string
	HTMLPath  string
	TempDirs  []string
	RunID     string
	Duration  time.Duration
}

// Pipeline processes input paths sequentially: locate, measure, extract,
// then writes the CSV and HTML reports from the aggregate.
type Pipeline struct {
	locator   *archive.Locator
	extractor *logshow.Extractor
	store     *store.Store // nil disables run history
	logger    *slog.Logger
}

// NewPipeline assembles a Pipeline. st may be nil to skip history recording.
func NewPipeline(locator *archive.Locator, extractor *logshow.Extractor, st *store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		locator:   locator,
		extractor: extractor,
		store:     st,
		logger:    logger,
	}
}

// Run processes each path to completion before the next. A failed path is
// logged and dropped; the run proceeds over the remaining paths. Run fails
// if every path fails or if either report cannot be written.
func (p *Pipeline) Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	startTime := time.Now()

	agg := &metrics.Aggregate{}
	result := &Result{Aggregate: agg}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		p.logger.Info("processing", "path", path)

		m, tempDir, err := p.processPath(ctx, path, opts.Timeout)
		if tempDir != "" {
			result.TempDirs = append(result.TempDirs, tempDir)
		}
		if err != nil {
			p.logger.Warn("skipping path", "path", path, "error", err)
			agg.AddFailure(path, err)
			continue
		}
		agg.Add(*m)
	}

	if len(agg.Results()) == 0 {
		result.Duration = time.Since(startTime)
		return result, fmt.Errorf("no archives could be processed (%d failed)", len(agg.Failures()))
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}

	generatedAt := time.Now()
	base := report.BaseName(generatedAt)
	result.CSVPath = filepath.Join(outputDir, base+".csv")
	result.HTMLPath = filepath.Join(outputDir, base+".html")

	if err := report.WriteCSV(result.CSVPath, agg.Results()); err != nil {
		return result, err
	}
	if err := report.WriteHTML(result.HTMLPath, generatedAt, agg.Results()); err != nil {
		return result, err
	}

	result.Duration = time.Since(startTime)
	p.recordHistory(result, startTime, len(paths))

	p.logger.Info("comparison completed",
		"succeeded", len(agg.Results()),
		"failed", len(agg.Failures()),
		"csv", result.CSVPath,
		"html", result.HTMLPath,
		"duration", result.Duration,
	)

	return result, nil
}

// processPath runs the per-path pipeline. The temp dir, if any, is returned
// even on failure so the caller can offer cleanup.
func (p *Pipeline) processPath(ctx context.Context, path string, timeout time.Duration) (*metrics.ArchiveMetrics, string, error) {
	loc, err := p.locator.Locate(path)
	if err != nil {
		return nil, "", err
	}

	size, err := archive.PathSize(loc.Source)
	if err != nil {
		return nil, loc.TempDir, err
	}

	extractCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	summary, err := p.extractor.Extract(extractCtx, loc.Path)
	if err != nil {
		return nil, loc.TempDir, err
	}

	m := metrics.NewArchiveMetrics(
		loc.Source, loc.Path, size,
		summary.Earliest, summary.Latest,
		summary.Events, summary.ProcessNames(),
	)
	return &m, loc.TempDir, nil
}

// recordHistory persists the run; failures here are logged, never fatal.
func (p *Pipeline) recordHistory(result *Result, startTime time.Time, inputs int) {
	if p.store == nil {
		return
	}

	run := &store.Run{
		StartTime: startTime,
		EndTime:   time.Now(),
		Inputs:    inputs,
		Succeeded: len(result.Aggregate.Results()),
		Failed:    len(result.Aggregate.Failures()),
		CSVPath:   result.CSVPath,
		HTMLPath:  result.HTMLPath,
		Status:    "completed",
	}
	if err := p.store.CreateRun(run); err != nil {
		p.logger.Warn("failed to record run in history", "error", err)
		return
	}
	result.RunID = run.ID

	for _, m := range result.Aggregate.Results() {
		rec := &store.RunArchive{
			RunID:       run.ID,
			Source:      m.Source,
			ArchivePath: m.Archive,
			SizeBytes:   m.SizeBytes,
			Earliest:    m.Earliest,
			Latest:      m.Latest,
			Events:      m.Events,
			Processes:   m.UniqueProcesses(),
			Status:      "ok",
		}
		if err := p.store.CreateRunArchive(rec); err != nil {
			p.logger.Warn("failed to record archive in history", "source", m.Source, "error", err)
		}
	}
	for _, f := range result.Aggregate.Failures() {
		rec := &store.RunArchive{
			RunID:        run.ID,
			Source:       f.Source,
			Status:       "failed",
			ErrorMessage: f.Err.Error(),
		}
		if err := p.store.CreateRunArchive(rec); err != nil {
			p.logger.Warn("failed to record failure in history", "source", f.Source, "error", err)
		}
	}
}
