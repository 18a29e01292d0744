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

// EntryStore persists a name-only catalog table (partners or employees).
type EntryStore struct {
	db    *sql.DB
	table string
}

func NewPartnerStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db, table: "partners"}
}

func NewEmployeeStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db, table: "employees"}
}

func (s *EntryStore) Create(ctx context.Context, name string) (*domain.Entry, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+s.table+` WHERE name = ?`, name,
	).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", s.table, err)
	}
	if n > 0 {
		return nil, fmt.Errorf("%s %q: %w", s.table, name, domain.ErrDuplicate)
	}

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to create %s entry: %w", s.table, err)
	}

	return &domain.Entry{ID: id, Name: name}, nil
}

func (s *EntryStore) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM `+s.table+` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	entries := []domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", s.table, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.table, err)
	}

	return entries, nil
}
