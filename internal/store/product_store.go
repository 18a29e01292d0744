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

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(ctx context.Context, name string, price int64) (*domain.Product, error) {
	existing, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("product %q: %w", name, domain.ErrDuplicate)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, created_at) VALUES (?, ?, ?, ?)
	`, id, name, price, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &domain.Product{ID: id, Name: name, Price: price}, nil
}

func (s *ProductStore) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price FROM products WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &p.Price)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price FROM products ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// UpdatePrices sets every price in one transaction. A name without a stored
// record (a seed-only product) gets a record created for it.
func (s *ProductStore) UpdatePrices(ctx context.Context, prices map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for name, price := range prices {
		result, err := tx.ExecContext(ctx, `
			UPDATE products SET price = ? WHERE name = ?
		`, price, name)
		if err != nil {
			return fmt.Errorf("failed to update price of %q: %w", name, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected > 0 {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, price, created_at) VALUES (?, ?, ?, ?)
		`, uuid.NewString(), name, price, now); err != nil {
			return fmt.Errorf("failed to create product %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}
	return nil
}
