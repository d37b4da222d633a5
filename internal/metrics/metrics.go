package metrics

import (
	"path/filepath"
	"sort"
	"time"
)

// ArchiveMetrics is the fully populated measurement of one input archive.
// Derived unit conversions are computed at render time, never stored.
type ArchiveMetrics struct {
	Source    string // input path as given on the command line
	Archive   string // resolved .logarchive path
	SizeBytes int64
	Earliest  time.Time
	Latest    time.Time
	Events    int
	Processes []string // sorted unique process names
}

// NewArchiveMetrics builds a record with the process set sorted.
func NewArchiveMetrics(source, archive string, sizeBytes int64, earliest, latest time.Time, events int, processes []string) ArchiveMetrics {
	sorted := make([]string, len(processes))
	copy(sorted, processes)
	sort.Strings(sorted)
	return ArchiveMetrics{
		Source:    source,
		Archive:   archive,
		SizeBytes: sizeBytes,
		Earliest:  earliest,
		Latest:    latest,
		Events:    events,
		Processes: sorted,
	}
}

// Label is the short name used to identify the archive in reports.
func (m ArchiveMetrics) Label() string {
	return filepath.Base(m.Source)
}

// TTL is the time span from earliest to latest event.
func (m ArchiveMetrics) TTL() time.Duration {
	if m.Earliest.IsZero() || m.Latest.IsZero() {
		return 0
	}
	return m.Latest.Sub(m.Earliest)
}

func (m ArchiveMetrics) TTLMinutes() float64 { return m.TTL().Minutes() }
func (m ArchiveMetrics) TTLHours() float64   { return m.TTL().Hours() }
func (m ArchiveMetrics) TTLDays() float64    { return m.TTL().Hours() / 24 }

func (m ArchiveMetrics) SizeKB() float64 { return float64(m.SizeBytes) / 1024 }
func (m ArchiveMetrics) SizeMB() float64 { return float64(m.SizeBytes) / (1024 * 1024) }
func (m ArchiveMetrics) SizeGB() float64 { return float64(m.SizeBytes) / (1024 * 1024 * 1024) }

// UniqueProcesses is the distinct process count.
func (m ArchiveMetrics) UniqueProcesses() int { return len(m.Processes) }

// Failure records an input path that could not be processed.
type Failure struct {
	Source string
	Err    error
}

// Aggregate collects per-archive results in input order. Failed paths are
// tracked separately and never reach the report writers.
type Aggregate struct {
	results  []ArchiveMetrics
	failures []Failure
}

// Add appends a fully populated record.
func (a *Aggregate) Add(m ArchiveMetrics) {
	a.results = append(a.results, m)
}

// AddFailure records a path that was dropped from the report.
func (a *Aggregate) AddFailure(source string, err error) {
	a.failures = append(a.failures, Failure{Source: source, Err: err})
}

// Results returns successful records in insertion order.
func (a *Aggregate) Results() []ArchiveMetrics { return a.results }

// Failures returns dropped paths in insertion order.
func (a *Aggregate) Failures() []Failure { return a.failures }
