package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/macdiag/logcompare/internal/safety"
)

type compression string

const (
	compressionNone compression = "none"
	compressionGzip compression = "gzip"
	compressionXz   compression = "xz"
	compressionZstd compression = "zstd"
)

// sniffCompression reads the leading magic bytes of path and reports which
// compression wraps it, if any.
func sniffCompression(path string) (compression, error) {
	f, err := os.Open(path)
	if err != nil {
		return compressionNone, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	magic := make([]byte, 6)
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return compressionNone, fmt.Errorf("reading %s: %w", path, err)
	}
	magic = magic[:n]

	switch {
	// Gzip magic number: 1f 8b
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		return compressionGzip, nil
	// Xz magic number: fd 37 7a 58 5a 00
	case len(magic) >= 6 && magic[0] == 0xfd && magic[1] == 0x37 && magic[2] == 0x7a &&
		magic[3] == 0x58 && magic[4] == 0x5a && magic[5] == 0x00:
		return compressionXz, nil
	// Zstd magic number: 28 b5 2f fd
	case len(magic) >= 4 && magic[0] == 0x28 && magic[1] == 0xb5 && magic[2] == 0x2f && magic[3] == 0xfd:
		return compressionZstd, nil
	}
	return compressionNone, nil
}

// extractBundle decompresses and untars a sysdiagnose bundle into destDir.
// Returns files extracted count and total bytes written.
func (l *Locator) extractBundle(srcPath string, kind compression, destDir string) (int, int64, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("opening bundle: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var decompressed io.Reader
	switch kind {
	case compressionGzip:
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, 0, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer func() {
			_ = gr.Close()
		}()
		decompressed = gr
	case compressionXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return 0, 0, fmt.Errorf("creating xz reader: %w", err)
		}
		decompressed = xr
	case compressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return 0, 0, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zr.Close()
		decompressed = zr
	default:
		return 0, 0, fmt.Errorf("unknown compression %q", kind)
	}

	tr := tar.NewReader(decompressed)

	extracted := 0
	totalSize := int64(0)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return extracted, totalSize, fmt.Errorf("reading tar entry: %w", err)
		}

		// Skip directories.
		if header.Typeflag == tar.TypeDir {
			continue
		}
		// Sysdiagnose tarballs carry symlinks and other oddities; skip
		// anything that is not a regular file.
		if header.Typeflag != tar.TypeReg {
			l.logger.Debug("skipping non-regular tar entry", "name", header.Name, "type", header.Typeflag)
			continue
		}

		destPath, err := safety.SafeJoinUnder(destDir, header.Name)
		if err != nil {
			return extracted, totalSize, fmt.Errorf("unsafe path in bundle %q: %w", header.Name, err)
		}

		if l.maxExtract > 0 && totalSize+header.Size > l.maxExtract {
			return extracted, totalSize, fmt.Errorf("bundle exceeds extraction limit of %d bytes: %w", l.maxExtract, safety.ErrTooLarge)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return extracted, totalSize, fmt.Errorf("creating directory: %w", err)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			return extracted, totalSize, fmt.Errorf("creating file %s: %w", destPath, err)
		}

		n, err := io.Copy(outFile, tr)
		if closeErr := outFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			return extracted, totalSize, fmt.Errorf("extracting %s: %w", header.Name, err)
		}

		extracted++
		totalSize += n
	}

	return extracted, totalSize, nil
}
