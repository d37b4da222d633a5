package store

import "time"

// Run records one comparison run
type Run struct {
	ID         string // uuid
	StartTime  time.Time
	EndTime    time.Time
	Inputs     int
	Succeeded  int
	Failed     int
	CSVPath    string
	HTMLPath   string
	Status     string // "running", "completed", "failed"
}

// RunArchive records one input archive's metrics within a run
type RunArchive struct {
	ID           int64
	RunID        string
	Source       string
	ArchivePath  string
	SizeBytes    int64
	Earliest     time.Time
	Latest       time.Time
	Events       int
	Processes    int
	Status       string // "ok" or "failed"
	ErrorMessage string
}
