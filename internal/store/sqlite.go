package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed run history
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store, opening the SQLite database and running migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("store initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// CreateRun inserts a new Run, assigning an ID if it has none
func (s *Store) CreateRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = "running"
	}

	const query = `
		INSERT INTO runs (id, start_time, end_time, inputs, succeeded, failed, csv_path, html_path, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(
		query,
		run.ID, run.StartTime, run.EndTime, run.Inputs,
		run.Succeeded, run.Failed, run.CSVPath, run.HTMLPath, run.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// UpdateRun updates an existing Run
func (s *Store) UpdateRun(run *Run) error {
	const query = `
		UPDATE runs
		SET end_time = ?, inputs = ?, succeeded = ?, failed = ?, csv_path = ?, html_path = ?, status = ?
		WHERE id = ?
	`

	result, err := s.db.Exec(
		query,
		run.EndTime, run.Inputs, run.Succeeded, run.Failed,
		run.CSVPath, run.HTMLPath, run.Status, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

// GetRun retrieves a Run by ID
func (s *Store) GetRun(id string) (*Run, error) {
	const query = `
		SELECT id, start_time, end_time, inputs, succeeded, failed, csv_path, html_path, status
		FROM runs WHERE id = ?
	`

	run := &Run{}
	err := s.db.QueryRow(query, id).Scan(
		&run.ID, &run.StartTime, &run.EndTime, &run.Inputs,
		&run.Succeeded, &run.Failed, &run.CSVPath, &run.HTMLPath, &run.Status,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, start_time, end_time, inputs, succeeded, failed, csv_path, html_path, status
		FROM runs ORDER BY start_time DESC LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.StartTime, &run.EndTime, &run.Inputs,
			&run.Succeeded, &run.Failed, &run.CSVPath, &run.HTMLPath, &run.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// CreateRunArchive inserts a per-archive record and sets its ID
func (s *Store) CreateRunArchive(a *RunArchive) error {
	const query = `
		INSERT INTO run_archives (
			run_id, source, archive_path, size_bytes, earliest, latest,
			events, processes, status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(
		query,
		a.RunID, a.Source, a.ArchivePath, a.SizeBytes, a.Earliest, a.Latest,
		a.Events, a.Processes, a.Status, a.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run archive: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

// ListRunArchives returns all archive records of a run in insertion order
func (s *Store) ListRunArchives(runID string) ([]RunArchive, error) {
	const query = `
		SELECT id, run_id, source, archive_path, size_bytes, earliest, latest,
			events, processes, status, error_message
		FROM run_archives WHERE run_id = ? ORDER BY id
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run archives: %w", err)
	}
	defer rows.Close()

	var archives []RunArchive
	for rows.Next() {
		var a RunArchive
		if err := rows.Scan(
			&a.ID, &a.RunID, &a.Source, &a.ArchivePath, &a.SizeBytes,
			&a.Earliest, &a.Latest, &a.Events, &a.Processes, &a.Status, &a.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run archive: %w", err)
		}
		archives = append(archives, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run archives: %w", err)
	}
	return archives, nil
}
