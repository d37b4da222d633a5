package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogTool.Binary != "log" {
		t.Errorf("default binary = %q, want %q", cfg.LogTool.Binary, "log")
	}
	if cfg.Output.Dir != "." {
		t.Errorf("default output dir = %q, want %q", cfg.Output.Dir, ".")
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if got := cfg.LogTimeout(); got != 15*time.Minute {
		t.Errorf("default timeout = %v, want 15m", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	content := `
log_tool:
  binary: /usr/bin/log
  timeout: 5m
output:
  dir: /tmp/reports
history:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "logcompare.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogTool.Binary != "/usr/bin/log" {
		t.Errorf("binary = %q, want /usr/bin/log", cfg.LogTool.Binary)
	}
	if got := cfg.LogTimeout(); got != 5*time.Minute {
		t.Errorf("timeout = %v, want 5m", got)
	}
	if cfg.Output.Dir != "/tmp/reports" {
		t.Errorf("output dir = %q, want /tmp/reports", cfg.Output.Dir)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
	// Unset fields keep defaults
	if cfg.Extract.MaxArchiveSize != "50GB" {
		t.Errorf("max_archive_size = %q, want default 50GB", cfg.Extract.MaxArchiveSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestFindConfigFilePrefersWorkingDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	userPath := filepath.Join(home, ".config", "logcompare")
	if err := os.MkdirAll(userPath, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userPath, "logcompare.yaml"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	cwd := t.TempDir()
	restoreWorkingDir(t, cwd)

	// Only the user config exists so far
	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile failed: %v", err)
	}
	if found != filepath.Join(userPath, "logcompare.yaml") {
		t.Errorf("found = %q, want user config path", found)
	}

	// A file in the working directory takes precedence
	if err := os.WriteFile(filepath.Join(cwd, "logcompare.yaml"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	found, err = FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile failed: %v", err)
	}
	if found != "logcompare.yaml" {
		t.Errorf("found = %q, want logcompare.yaml from working directory", found)
	}
}

func TestFindConfigFileNoneFound(t *testing.T) {
	if _, err := os.Stat("/etc/logcompare/logcompare.yaml"); err == nil {
		t.Skip("system config file present, skipping")
	}
	t.Setenv("HOME", t.TempDir())
	restoreWorkingDir(t, t.TempDir())

	if _, err := FindConfigFile(); err == nil {
		t.Error("expected error when no config file exists")
	}
}

func restoreWorkingDir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}

func TestLogTimeoutMalformed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogTool.Timeout = "not-a-duration"
	if got := cfg.LogTimeout(); got != 15*time.Minute {
		t.Errorf("malformed timeout = %v, want fallback 15m", got)
	}
}

func TestHistoryDBPathExplicit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History.DBPath = "/tmp/custom.db"
	if got := cfg.HistoryDBPath(); got != "/tmp/custom.db" {
		t.Errorf("HistoryDBPath = %q, want /tmp/custom.db", got)
	}
}
