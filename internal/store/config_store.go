package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vbonduro/konsinyasi/internal/domain"
)

const adminConfigID = "admin"

// ConfigStore holds the singleton admin gate record.
type ConfigStore struct {
	db *sql.DB
}

func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

func (s *ConfigStore) GetAdmin(ctx context.Context) (*domain.AdminConfig, error) {
	cfg := &domain.AdminConfig{}
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash, updated_at FROM admin_config WHERE id = ?
	`, adminConfigID).Scan(&cfg.PasswordHash, &cfg.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin config: %w", err)
	}

	return cfg, nil
}

func (s *ConfigStore) SaveAdmin(ctx context.Context, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_config (id, password_hash, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at
	`, adminConfigID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save admin config: %w", err)
	}
	return nil
}

// EnsureAdmin creates the record with passwordHash unless one already
// exists. It reports whether a record was created.
func (s *ConfigStore) EnsureAdmin(ctx context.Context, passwordHash string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO admin_config (id, password_hash, updated_at) VALUES (?, ?, ?)
	`, adminConfigID, passwordHash, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to seed admin config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
