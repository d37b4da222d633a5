package metrics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestArchiveMetricsDerivedFields(t *testing.T) {
	earliest := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	latest := earliest.Add(3600 * time.Second)

	m := NewArchiveMetrics("/data/mac.logarchive", "/data/mac.logarchive",
		2*1024*1024*1024, earliest, latest, 100, []string{"kernel", "launchd"})

	if got := m.TTL(); got != time.Hour {
		t.Errorf("TTL = %v, want 1h", got)
	}
	if got := m.TTLMinutes(); got != 60 {
		t.Errorf("TTLMinutes = %v, want 60", got)
	}
	if got := m.TTLDays(); math.Abs(got-1.0/24) > 1e-9 {
		t.Errorf("TTLDays = %v, want %v", got, 1.0/24)
	}
	if got := m.SizeGB(); got != 2 {
		t.Errorf("SizeGB = %v, want 2", got)
	}
	if got := m.SizeKB(); got != 2*1024*1024 {
		t.Errorf("SizeKB = %v, want %v", got, 2*1024*1024)
	}
	if got := m.UniqueProcesses(); got != 2 {
		t.Errorf("UniqueProcesses = %d, want 2", got)
	}
	if got := m.Label(); got != "mac.logarchive" {
		t.Errorf("Label = %q, want mac.logarchive", got)
	}
}

func TestArchiveMetricsZeroTimes(t *testing.T) {
	m := NewArchiveMetrics("/data/empty.logarchive", "/data/empty.logarchive",
		0, time.Time{}, time.Time{}, 0, nil)

	if m.TTL() != 0 {
		t.Errorf("TTL = %v, want 0 for empty archive", m.TTL())
	}
	if m.UniqueProcesses() != 0 {
		t.Errorf("UniqueProcesses = %d, want 0", m.UniqueProcesses())
	}
}

func TestNewArchiveMetricsSortsProcesses(t *testing.T) {
	m := NewArchiveMetrics("a", "a", 0, time.Time{}, time.Time{}, 3,
		[]string{"launchd", "WindowServer", "kernel"})

	want := []string{"WindowServer", "kernel", "launchd"}
	for i, name := range want {
		if m.Processes[i] != name {
			t.Fatalf("Processes = %v, want %v", m.Processes, want)
		}
	}
}

func TestAggregatePreservesInputOrder(t *testing.T) {
	var agg Aggregate
	agg.Add(NewArchiveMetrics("first", "first", 0, time.Time{}, time.Time{}, 0, nil))
	agg.AddFailure("broken", errors.New("unsupported archive kind"))
	agg.Add(NewArchiveMetrics("second", "second", 0, time.Time{}, time.Time{}, 0, nil))

	results := agg.Results()
	if len(results) != 2 {
		t.Fatalf("Results = %d entries, want 2", len(results))
	}
	if results[0].Source != "first" || results[1].Source != "second" {
		t.Errorf("order not preserved: %q, %q", results[0].Source, results[1].Source)
	}

	failures := agg.Failures()
	if len(failures) != 1 || failures[0].Source != "broken" {
		t.Errorf("Failures = %v, want one entry for broken", failures)
	}
}
