package logshow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/macdiag/logcompare/internal/safety"
)

// maxStderrBytes caps how much subprocess diagnostic output is retained for
// error reporting.
const maxStderrBytes = 64 * 1024

// ExtractionError indicates the external log-reading facility was
// unavailable or exited with a failure for a given archive.
type ExtractionError struct {
	Archive string
	Stderr  string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("log extraction failed for %s: %v: %s", e.Archive, e.Err, e.Stderr)
	}
	return fmt.Sprintf("log extraction failed for %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Runner produces the raw event dump for a .logarchive. The single-method
// interface keeps the parser testable with fixture text instead of a live
// system call.
type Runner interface {
	// Dump returns a stream of one logical event per line. Close must be
	// called and reports the facility's exit status.
	Dump(ctx context.Context, archivePath string) (io.ReadCloser, error)
}

// CommandRunner invokes the platform `log` binary as a subprocess,
// requesting a full unfiltered timestamp-sorted syslog-style dump.
type CommandRunner struct {
	Binary string // defaults to "log"
	Logger *slog.Logger
}

// NewCommandRunner creates a CommandRunner for the given binary.
func NewCommandRunner(binary string, logger *slog.Logger) *CommandRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandRunner{Binary: binary, Logger: logger}
}

// Dump starts `log show` against archivePath and returns its stdout stream.
func (r *CommandRunner) Dump(ctx context.Context, archivePath string) (io.ReadCloser, error) {
	binary := r.Binary
	if binary == "" {
		binary = "log"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, &ExtractionError{
			Archive: archivePath,
			Err:     fmt.Errorf("%s not found in PATH: %w", binary, err),
		}
	}

	cmd := exec.CommandContext(ctx, path,
		"show", "--archive", archivePath,
		"--style", "syslog", "--info", "--debug",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: fmt.Errorf("creating stdout pipe: %w", err)}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: fmt.Errorf("creating stderr pipe: %w", err)}
	}

	r.Logger.Debug("running log show", "binary", path, "archive", archivePath)

	if err := cmd.Start(); err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: fmt.Errorf("starting %s: %w", binary, err)}
	}

	stderrCh := make(chan string, 1)
	go func() {
		stderrCh <- captureStderr(stderrPipe)
	}()

	return &dumpStream{
		stdout:   stdout,
		cmd:      cmd,
		archive:  archivePath,
		stderrCh: stderrCh,
	}, nil
}

// captureStderr reads subprocess diagnostics up to maxStderrBytes, draining
// the remainder so the child never blocks on a full pipe.
func captureStderr(r io.Reader) string {
	data, err := safety.ReadAllWithLimit(r, maxStderrBytes)
	if err != nil {
		_, _ = io.Copy(io.Discard, r)
		if errors.Is(err, safety.ErrTooLarge) {
			return "(diagnostic output truncated)"
		}
		return ""
	}
	return string(data)
}

// dumpStream wraps the subprocess stdout; Close waits for the process and
// surfaces a nonzero exit as ExtractionError.
type dumpStream struct {
	stdout   io.ReadCloser
	cmd      *exec.Cmd
	archive  string
	stderrCh <-chan string
}

func (d *dumpStream) Read(p []byte) (int, error) {
	return d.stdout.Read(p)
}

func (d *dumpStream) Close() error {
	// Drain so Wait is not blocked on a full pipe if the caller stopped early.
	_, _ = io.Copy(io.Discard, d.stdout)
	_ = d.stdout.Close()

	// Stderr capture must finish before Wait closes the pipe out from under it.
	stderr := <-d.stderrCh

	if err := d.cmd.Wait(); err != nil {
		return &ExtractionError{
			Archive: d.archive,
			Stderr:  strings.TrimSpace(stderr),
			Err:     err,
		}
	}
	return nil
}
