package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

func testLocator(t *testing.T) *Locator {
	t.Helper()
	return NewLocator(0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// writeBundle creates a compressed tar at path containing the given
// name->content entries.
func writeBundle(t *testing.T, path, kind string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	var compressed io.WriteCloser
	switch kind {
	case "gzip":
		compressed = gzip.NewWriter(f)
	case "xz":
		w, err := xz.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		compressed = w
	case "zstd":
		w, err := zstd.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		compressed = w
	default:
		t.Fatalf("unknown compression %q", kind)
	}

	tw := tar.NewWriter(compressed)
	for name, content := range entries {
		header := &tar.Header{
			Name: name,
			Size: int64(len(content)),
			Mode: 0o644,
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := compressed.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLocateLogArchiveDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "system_logs.logarchive")
	if err := os.MkdirAll(filepath.Join(dir, "Extra"), 0o755); err != nil {
		t.Fatal(err)
	}

	loc, err := testLocator(t).Locate(dir)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if loc.Path != dir {
		t.Errorf("Path = %q, want %q", loc.Path, dir)
	}
	if loc.TempDir != "" {
		t.Errorf("TempDir = %q, want empty for a raw logarchive", loc.TempDir)
	}
}

func TestLocatePlainDirectoryWithEmbeddedArchive(t *testing.T) {
	base := t.TempDir()
	embedded := filepath.Join(base, "sysdiagnose_2025.05.01", "system_logs.logarchive")
	if err := os.MkdirAll(embedded, 0o755); err != nil {
		t.Fatal(err)
	}

	loc, err := testLocator(t).Locate(base)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if loc.Path != embedded {
		t.Errorf("Path = %q, want %q", loc.Path, embedded)
	}
}

func TestLocateCompressedBundles(t *testing.T) {
	entries := map[string]string{
		"sysdiagnose_2025.05.01/taskinfo.txt":                       "tasks",
		"sysdiagnose_2025.05.01/system_logs.logarchive/Info.plist":  "plist",
		"sysdiagnose_2025.05.01/system_logs.logarchive/0000.tracev3": "trace",
	}

	for _, kind := range []string{"gzip", "xz", "zstd"} {
		t.Run(kind, func(t *testing.T) {
			bundle := filepath.Join(t.TempDir(), "sysdiagnose.tar.bin")
			writeBundle(t, bundle, kind, entries)

			loc, err := testLocator(t).Locate(bundle)
			if err != nil {
				t.Fatalf("Locate failed: %v", err)
			}
			t.Cleanup(func() { _ = os.RemoveAll(loc.TempDir) })

			if loc.TempDir == "" {
				t.Fatal("expected a temp extraction directory")
			}
			if !strings.HasSuffix(loc.Path, ".logarchive") {
				t.Errorf("Path = %q, want a .logarchive directory", loc.Path)
			}
			if _, err := os.Stat(filepath.Join(loc.Path, "Info.plist")); err != nil {
				t.Errorf("extracted archive missing Info.plist: %v", err)
			}
		})
	}
}

func TestLocateUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text, not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := testLocator(t).Locate(path)
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Errorf("expected ErrUnsupportedArchive, got %v", err)
	}
}

func TestLocateMissingPath(t *testing.T) {
	if _, err := testLocator(t).Locate(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLocateBundleWithoutLogArchive(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "other.tar.gz")
	writeBundle(t, bundle, "gzip", map[string]string{
		"misc/readme.txt": "nothing useful",
	})

	_, err := testLocator(t).Locate(bundle)
	if !errors.Is(err, ErrNoLogArchive) {
		t.Errorf("expected ErrNoLogArchive, got %v", err)
	}
}

func TestLocateRejectsTraversalEntries(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "evil.tar.gz")
	writeBundle(t, bundle, "gzip", map[string]string{
		"../escape.txt": "outside",
	})

	if _, err := testLocator(t).Locate(bundle); err == nil {
		t.Error("expected error for traversal entry")
	}
}

func TestLocateEnforcesExtractionLimit(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "big.tar.gz")
	writeBundle(t, bundle, "gzip", map[string]string{
		"sysdiag/system_logs.logarchive/big.tracev3": strings.Repeat("x", 4096),
	})

	limited := NewLocator(1024, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := limited.Locate(bundle); err == nil {
		t.Error("expected error when bundle exceeds extraction limit")
	}
}
