package logshow

import (
	"context"
	"log/slog"
)

// Extractor derives metrics from a .logarchive by parsing the runner's
// event dump.
type Extractor struct {
	runner Runner
	logger *slog.Logger
}

// NewExtractor creates an Extractor on top of the given runner.
func NewExtractor(runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{runner: runner, logger: logger}
}

// Extract dumps and parses archivePath. A dump with zero events yields a
// zero-valued summary, not an error; a facility failure discards any
// partially parsed result.
func (e *Extractor) Extract(ctx context.Context, archivePath string) (*Summary, error) {
	stream, err := e.runner.Dump(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	summary, parseErr := ParseDump(stream)
	closeErr := stream.Close()

	// A nonzero exit invalidates whatever was parsed.
	if closeErr != nil {
		return nil, closeErr
	}
	if parseErr != nil {
		return nil, parseErr
	}

	e.logger.Debug("archive parsed",
		"archive", archivePath,
		"events", summary.Events,
		"processes", len(summary.Processes),
	)
	return summary, nil
}
