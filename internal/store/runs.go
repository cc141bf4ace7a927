package store

import (
	"fmt"
	"time"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// RunStatus is the final state of a recorded run.
type RunStatus string

const (
	RunOK        RunStatus = "ok"
	RunPartial   RunStatus = "partial" // completed with per-item failures
	RunFatal     RunStatus = "fatal"   // aborted on a store outage
	RunCancelled RunStatus = "cancelled"
)

// Run is one row of the run ledger.
type Run struct {
	ID               string
	Mode             models.RunMode
	Status           RunStatus
	StartedAt        time.Time
	FinishedAt       time.Time
	ItemsScanned     int
	GroupsFound      int
	ItemsPlanned     int
	ItemsTrashed     int
	BytesRecoverable int64
	BytesTrashed     int64
}

// SaveRun inserts or replaces a run row.
func (s *Store) SaveRun(r *Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, mode, status, started_at, finished_at,
			items_scanned, groups_found, items_planned, items_trashed,
			bytes_recoverable, bytes_trashed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			finished_at = excluded.finished_at,
			items_scanned = excluded.items_scanned,
			groups_found = excluded.groups_found,
			items_planned = excluded.items_planned,
			items_trashed = excluded.items_trashed,
			bytes_recoverable = excluded.bytes_recoverable,
			bytes_trashed = excluded.bytes_trashed
	`, r.ID, string(r.Mode), string(r.Status), r.StartedAt.Unix(), unixOrZero(r.FinishedAt),
		r.ItemsScanned, r.GroupsFound, r.ItemsPlanned, r.ItemsTrashed,
		r.BytesRecoverable, r.BytesTrashed)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

// RecordFailure appends one failed action to a run's failure list.
func (s *Store) RecordFailure(runID string, f models.ReportFailure) error {
	_, err := s.db.Exec(`
		INSERT INTO run_failures (run_id, item_id, action, reason)
		VALUES (?, ?, ?, ?)
	`, runID, f.ItemID, string(f.Type), f.Reason)
	return err
}

// GetRuns returns the run ledger newest-first, capped at limit when > 0.
func (s *Store) GetRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, mode, status, started_at, finished_at,
			items_scanned, groups_found, items_planned, items_trashed,
			bytes_recoverable, bytes_trashed
		FROM runs ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			r                     Run
			mode, status          string
			startedAt, finishedAt int64
		)
		if err := rows.Scan(&r.ID, &mode, &status, &startedAt, &finishedAt,
			&r.ItemsScanned, &r.GroupsFound, &r.ItemsPlanned, &r.ItemsTrashed,
			&r.BytesRecoverable, &r.BytesTrashed); err != nil {
			return nil, err
		}
		r.Mode = models.RunMode(mode)
		r.Status = RunStatus(status)
		r.StartedAt = timeOrZero(startedAt)
		r.FinishedAt = timeOrZero(finishedAt)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// GetRunFailures returns a run's recorded failures.
func (s *Store) GetRunFailures(runID string) ([]models.ReportFailure, error) {
	rows, err := s.db.Query(`
		SELECT item_id, action, reason FROM run_failures WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []models.ReportFailure
	for rows.Next() {
		var f models.ReportFailure
		var action string
		if err := rows.Scan(&f.ItemID, &action, &f.Reason); err != nil {
			return nil, err
		}
		f.Type = models.ActionType(action)
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
