package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

// TransactionStore persists one of the two transaction collections.
// Records are only ever created in batches and deleted by id.
type TransactionStore struct {
	db    *sql.DB
	table string
}

func NewDropoffStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db, table: string(domain.CollectionDropoffs)}
}

func NewReturnStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db, table: string(domain.CollectionReturns)}
}

// CreateBatch inserts every transaction atomically: either all rows are
// written or none are. IDs are assigned here and written back into txns.
func (s *TransactionStore) CreateBatch(ctx context.Context, txns []domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+s.table+` (id, product_name, partner_name, quantity, officer_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range txns {
		t := &txns[i]
		t.ID = uuid.NewString()
		var ts any
		if t.Timestamp != nil {
			ts = t.Timestamp.UTC()
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.ProductName, t.PartnerName, t.Quantity, t.OfficerName, ts); err != nil {
			return fmt.Errorf("failed to insert %s line %d: %w", s.table, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s batch: %w", s.table, err)
	}
	return nil
}

func (s *TransactionStore) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, product_name, partner_name, quantity, officer_name, created_at
		FROM `+s.table+` WHERE id = ?
	`, id).Scan(&t.ID, &t.ProductName, &t.PartnerName, &t.Quantity, &t.OfficerName, &t.Timestamp)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record: %w", s.table, err)
	}

	return t, nil
}

// List returns every transaction newest first; rows without a timestamp sort last.
func (s *TransactionStore) List(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_name, partner_name, quantity, officer_name, created_at
		FROM `+s.table+`
		ORDER BY created_at IS NULL, created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	txns := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.ProductName, &t.PartnerName, &t.Quantity, &t.OfficerName, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", s.table, err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.table, err)
	}

	return txns, nil
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", s.table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
