package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedArchive indicates an input path that is neither a .logarchive
// directory nor a compressed sysdiagnose bundle.
var ErrUnsupportedArchive = errors.New("unsupported archive kind")

// ErrNoLogArchive indicates a bundle or directory that contains no embedded
// .logarchive.
var ErrNoLogArchive = errors.New("no .logarchive found")

// Located is the result of resolving an input path to a .logarchive.
type Located struct {
	Source  string // original input path
	Path    string // resolved .logarchive directory
	TempDir string // extraction directory, empty unless Source was a bundle
}

// Locator resolves input paths to .logarchive directories, extracting
// compressed sysdiagnose bundles as needed.
type Locator struct {
	maxExtract int64 // decompressed-size cap per bundle
	logger     *slog.Logger
}

// NewLocator creates a Locator. maxExtract caps the total decompressed size
// of a bundle; zero or negative disables the cap.
func NewLocator(maxExtract int64, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{maxExtract: maxExtract, logger: logger}
}

// Locate classifies path and returns the .logarchive it points at.
//
// A directory named *.logarchive is returned unchanged. Any other directory
// is searched for an embedded .logarchive. A regular file is sniffed for a
// known compression magic (gzip, xz, zstd), extracted into a fresh temp
// directory, and searched; the temp directory is recorded in the result for
// later cleanup. Anything else fails with ErrUnsupportedArchive.
func (l *Locator) Locate(path string) (*Located, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		if strings.HasSuffix(info.Name(), ".logarchive") {
			return &Located{Source: path, Path: path}, nil
		}
		// An already-extracted sysdiagnose folder: search it.
		found, err := findLogArchive(path)
		if err != nil {
			return nil, err
		}
		return &Located{Source: path, Path: found}, nil
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedArchive)
	}

	kind, err := sniffCompression(path)
	if err != nil {
		return nil, err
	}
	if kind == compressionNone {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedArchive)
	}

	tempDir, err := os.MkdirTemp("", "sysdiag_extract_")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	l.logger.Info("extracting sysdiagnose bundle", "path", path, "compression", kind, "dest", tempDir)

	files, bytes, err := l.extractBundle(path, kind, tempDir)
	if err != nil {
		// A failed extraction leaves nothing worth keeping.
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	l.logger.Debug("bundle extracted", "files", files, "bytes", bytes)

	found, err := findLogArchive(tempDir)
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Located{Source: path, Path: found, TempDir: tempDir}, nil
}

// findLogArchive walks base for the first directory named *.logarchive.
func findLogArchive(base string) (string, error) {
	var found string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && strings.HasSuffix(d.Name(), ".logarchive") {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", base, err)
	}
	if found == "" {
		return "", ErrNoLogArchive
	}
	return found, nil
}
