package archive

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Cleaner removes temporary extraction directories after a run, asking the
// operator before each deletion. The directory list is handed over
// explicitly by the caller; declining a deletion is not an error.
type Cleaner struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewCleaner creates a Cleaner prompting on out and reading answers from in.
func NewCleaner(in io.Reader, out io.Writer, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{in: in, out: out, logger: logger}
}

// Run offers to delete each temp directory. With assumeYes set, all
// directories are deleted without prompting.
func (c *Cleaner) Run(tempDirs []string, assumeYes bool) error {
	reader := bufio.NewReader(c.in)

	for _, dir := range tempDirs {
		if !assumeYes {
			fmt.Fprintf(c.out, "Delete temporary directory %s? [y/N]: ", dir)
			answer, err := reader.ReadString('\n')
			if err != nil && answer == "" {
				// No answer available (e.g. closed stdin): keep the directory.
				c.logger.Warn("no cleanup answer, keeping directory", "dir", dir, "error", err)
				continue
			}
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				c.logger.Info("keeping temporary directory", "dir", dir)
				continue
			}
		}

		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("deleting %s: %w", dir, err)
		}
		c.logger.Info("deleted temporary directory", "dir", dir)
	}

	return nil
}
