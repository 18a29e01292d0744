package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

// AttendanceStore persists attendance records and their journeys. Journey
// events live in their own table keyed by (attendance_id, position) so that
// appends never rewrite earlier events.
type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// Create inserts an active record seeded with a single clock-in event.
func (s *AttendanceStore) Create(ctx context.Context, employee string, at time.Time) (*domain.AttendanceRecord, error) {
	at = at.UTC()
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO attendance (id, employee_name, clock_in_time, status) VALUES (?, ?, ?, ?)
	`, id, employee, at, domain.StatusActive); err != nil {
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO journey_events (attendance_id, position, type, timestamp) VALUES (?, 0, ?, ?)
	`, id, domain.EventClockIn, at); err != nil {
		return nil, fmt.Errorf("failed to create clock-in event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attendance: %w", err)
	}

	return &domain.AttendanceRecord{
		ID:           id,
		EmployeeName: employee,
		ClockInTime:  at,
		Status:       domain.StatusActive,
		Journey:      []domain.JourneyEvent{{Type: domain.EventClockIn, Timestamp: at}},
	}, nil
}

func (s *AttendanceStore) GetByID(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	rec := &domain.AttendanceRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_name, clock_in_time, clock_out_time, status
		FROM attendance WHERE id = ?
	`, id).Scan(&rec.ID, &rec.EmployeeName, &rec.ClockInTime, &rec.ClockOutTime, &rec.Status)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	journeys, err := s.loadJourneys(ctx, `WHERE attendance_id = ?`, id)
	if err != nil {
		return nil, err
	}
	rec.Journey = journeys[id]

	return rec, nil
}

// List returns every record newest clock-in first, journeys included.
func (s *AttendanceStore) List(ctx context.Context) ([]domain.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_name, clock_in_time, clock_out_time, status
		FROM attendance ORDER BY clock_in_time DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	records := []domain.AttendanceRecord{}
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeName, &rec.ClockInTime, &rec.ClockOutTime, &rec.Status); err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}
	// Released before the journey query; the connection may be the only one.
	closeRows(rows)

	journeys, err := s.loadJourneys(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Journey = journeys[records[i].ID]
	}

	return records, nil
}

func (s *AttendanceStore) loadJourneys(ctx context.Context, where string, args ...any) (map[string][]domain.JourneyEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attendance_id, type, location, notes, photo, timestamp
		FROM journey_events `+where+`
		ORDER BY attendance_id, position ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load journeys: %w", err)
	}
	defer closeRows(rows)

	journeys := make(map[string][]domain.JourneyEvent)
	for rows.Next() {
		var id string
		var ev domain.JourneyEvent
		if err := rows.Scan(&id, &ev.Type, &ev.Location, &ev.Notes, &ev.Photo, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan journey event: %w", err)
		}
		journeys[id] = append(journeys[id], ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journey events: %w", err)
	}

	return journeys, nil
}

// AppendEvent adds ev after the last event of an active record. The
// position is computed inside the insert itself, so concurrent appends to
// the same record never overwrite each other.
func (s *AttendanceStore) AppendEvent(ctx context.Context, id string, ev domain.JourneyEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := appendEvent(ctx, tx, id, ev); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journey event: %w", err)
	}
	return nil
}

// Complete marks an active record completed and appends the clock-out event.
func (s *AttendanceStore) Complete(ctx context.Context, id string, at time.Time) error {
	at = at.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE attendance SET status = ?, clock_out_time = ? WHERE id = ? AND status = ?
	`, domain.StatusCompleted, at, id, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to complete attendance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return inactiveReason(ctx, tx, id)
	}

	// The record is completed inside this transaction, so the clock-out
	// event bypasses the active check in appendEvent.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO journey_events (attendance_id, position, type, timestamp)
		SELECT ?, COALESCE(MAX(position), -1) + 1, ?, ? FROM journey_events WHERE attendance_id = ?
	`, id, domain.EventClockOut, at, id); err != nil {
		return fmt.Errorf("failed to append clock-out event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clock-out: %w", err)
	}
	return nil
}

// ReplaceJourney overwrites the whole journey of a record with journey.
// Callers read, modify and write back; there is no version check, so the
// last writer wins.
func (s *AttendanceStore) ReplaceJourney(ctx context.Context, id string, journey []domain.JourneyEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check attendance: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM journey_events WHERE attendance_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear journey: %w", err)
	}

	for i, ev := range journey {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO journey_events (attendance_id, position, type, location, notes, photo, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, i, ev.Type, ev.Location, ev.Notes, ev.Photo, ev.Timestamp.UTC()); err != nil {
			return fmt.Errorf("failed to write journey event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journey: %w", err)
	}
	return nil
}

func appendEvent(ctx context.Context, tx *sql.Tx, id string, ev domain.JourneyEvent) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO journey_events (attendance_id, position, type, location, notes, photo, timestamp)
		SELECT a.id,
		       (SELECT COALESCE(MAX(position), -1) + 1 FROM journey_events WHERE attendance_id = a.id),
		       ?, ?, ?, ?, ?
		FROM attendance a WHERE a.id = ? AND a.status = ?
	`, ev.Type, ev.Location, ev.Notes, ev.Photo, ev.Timestamp.UTC(), id, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to append journey event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return inactiveReason(ctx, tx, id)
	}
	return nil
}

// inactiveReason tells a missing record apart from a completed one.
func inactiveReason(ctx context.Context, tx *sql.Tx, id string) error {
	var status domain.AttendanceStatus
	err := tx.QueryRowContext(ctx, `SELECT status FROM attendance WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get attendance status: %w", err)
	}
	return domain.ErrNotActive
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}
