package logshow

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// timestampLayout matches the prefix of syslog-style `log show` output,
// e.g. "2025-05-01 10:30:00.123456-0700".
const timestampLayout = "2006-01-02 15:04:05.000000-0700"

// maxLineBytes bounds a single dump line; log messages can be large but a
// logical event never approaches this.
const maxLineBytes = 1024 * 1024

// Summary holds the metrics derived from one archive's event dump.
type Summary struct {
	Earliest  time.Time
	Latest    time.Time
	Events    int
	Processes map[string]int // process name -> event lines seen
}

// TTL is the time span covered by the dump.
func (s *Summary) TTL() time.Duration {
	if s.Earliest.IsZero() || s.Latest.IsZero() {
		return 0
	}
	return s.Latest.Sub(s.Earliest)
}

// ProcessNames returns the distinct process names in unspecified order.
func (s *Summary) ProcessNames() []string {
	names := make([]string, 0, len(s.Processes))
	for name := range s.Processes {
		names = append(names, name)
	}
	return names
}

// ParseDump scans a syslog-style event dump line by line. A line counts as
// an event when it begins with a parseable timestamp; other lines (headers,
// wrapped message bodies, malformed timestamps) are skipped. The dump is
// timestamp-sorted, so the first and last parsed lines bound the span.
func ParseDump(r io.Reader) (*Summary, error) {
	summary := &Summary{Processes: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		ts, ok := parseTimestamp(line)
		if !ok {
			continue
		}

		summary.Events++
		if summary.Earliest.IsZero() {
			summary.Earliest = ts
		}
		summary.Latest = ts

		if name, ok := processToken(line); ok {
			summary.Processes[name]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning dump: %w", err)
	}

	return summary, nil
}

// parseTimestamp extracts the leading timestamp of an event line.
func parseTimestamp(line string) (time.Time, bool) {
	if len(line) < len(timestampLayout) {
		return time.Time{}, false
	}
	if line[0] < '0' || line[0] > '9' {
		return time.Time{}, false
	}
	ts, err := time.Parse(timestampLayout, line[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// processToken finds the "name[pid]:" field of a syslog line and returns the
// process name.
func processToken(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) <= 2 {
		return "", false
	}
	for _, field := range fields {
		open := strings.IndexByte(field, '[')
		if open <= 0 {
			continue
		}
		if !strings.Contains(field, "]") || !strings.Contains(field, ":") {
			continue
		}
		return field[:open], true
	}
	return "", false
}
