package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/leapstack-labs/dqcheck/pkg/checks"
	"github.com/leapstack-labs/dqcheck/pkg/rules"
	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// maxStoredViolations caps how many violation rows are persisted per
// run; the summary counts always cover the full report.
const maxStoredViolations = 1000

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the store at path and runs migrations.
// Use ":memory:" for an in-memory store.
func Open(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and up to maxStoredViolations of its report.
// The run's ID and CreatedAt are assigned here.
func (s *SQLiteStore) SaveRun(run *Run, report checks.Report) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()
	run.Violations = len(report)
	sev := report.CountBySeverity()
	run.Errors = sev[rules.SeverityError]
	run.Warnings = sev[rules.SeverityWarn]

	s.logger.Debug("saving run", slog.String("id", run.ID), slog.String("source", run.Source))

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO runs (id, source, engine, rows, columns, violations, errors, warnings, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Engine, run.Rows, run.Columns,
		run.Violations, run.Errors, run.Warnings, run.DurationMS, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stored := report
	if len(stored) > maxStoredViolations {
		stored = stored[:maxStoredViolations]
	}
	for _, v := range stored {
		_, err = tx.Exec(`
			INSERT INTO run_violations (run_id, category, row, column_name, value, severity, message)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, v.Category.String(), v.Row, v.Column, v.Value.Text(), v.Severity, v.Message)
		if err != nil {
			return fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run and its stored violations by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, checks.Report, error) {
	if s.db == nil {
		return nil, nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	err := s.db.QueryRow(`
		SELECT id, source, engine, rows, columns, violations, errors, warnings, duration_ms, created_at
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &run.Source, &run.Engine, &run.Rows, &run.Columns,
		&run.Violations, &run.Errors, &run.Warnings, &run.DurationMS, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT category, row, column_name, value, severity, message
		FROM run_violations WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var report checks.Report
	for rows.Next() {
		var category, column, value, severity, message string
		var row int
		if err := rows.Scan(&category, &row, &column, &value, &severity, &message); err != nil {
			return nil, nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		report = append(report, checks.Violation{
			Category: parseCategory(category),
			Row:      row,
			Column:   column,
			Value:    parseStoredValue(value),
			Severity: severity,
			Message:  message,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating violations: %w", err)
	}

	return run, report, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, source, engine, rows, columns, violations, errors, warnings, duration_ms, created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.ID, &run.Source, &run.Engine, &run.Rows, &run.Columns,
			&run.Violations, &run.Errors, &run.Warnings, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func parseCategory(name string) checks.Category {
	for c := checks.CategoryNull; c <= checks.CategoryDomain; c++ {
		if c.String() == name {
			return c
		}
	}
	return checks.CategoryNull
}

// parseStoredValue restores a Value from its stored text form. Stored
// empty text is null; the original empty-string cell would have been
// null before evaluation as well, so the round trip is faithful.
func parseStoredValue(text string) table.Value {
	if text == "" {
		return table.Null()
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return table.Number(f)
	}
	return table.String(text)
}
