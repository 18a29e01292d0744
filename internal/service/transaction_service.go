package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
	"github.com/vbonduro/konsinyasi/internal/metrics"
)

// transactionRepository is the subset of store.TransactionStore that
// TransactionService requires.
type transactionRepository interface {
	CreateBatch(ctx context.Context, txns []domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// LineItem is one product row of a drop-off or return form.
type LineItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Submission is a whole drop-off or return form.
type Submission struct {
	Partner string     `json:"partner"`
	Officer string     `json:"officer"`
	Items   []LineItem `json:"items"`
}

// TransactionService records drop-offs or returns, depending on the
// collection it was built for.
type TransactionService struct {
	repo       transactionRepository
	collection domain.Collection
	notifier   feed.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

func NewTransactionService(
	repo transactionRepository,
	collection domain.Collection,
	notifier feed.Notifier,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		repo:       repo,
		collection: collection,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *TransactionService) Collection() domain.Collection {
	return s.collection
}

// Submit validates the form and writes one record per usable line item in a
// single batch. Lines without a product or with a non-positive quantity are
// skipped; at least one usable line must remain.
func (s *TransactionService) Submit(ctx context.Context, sub Submission) ([]domain.Transaction, error) {
	officer := strings.TrimSpace(sub.Officer)
	partner := strings.TrimSpace(sub.Partner)
	if officer == "" {
		return nil, domain.NewValidationError("officer", "officer is required")
	}
	if partner == "" {
		return nil, domain.NewValidationError("partner", "partner is required")
	}

	ts := s.now().UTC()
	var txns []domain.Transaction
	for _, item := range sub.Items {
		product := strings.TrimSpace(item.Product)
		if product == "" || item.Quantity <= 0 {
			continue
		}
		txns = append(txns, domain.Transaction{
			ProductName: product,
			PartnerName: partner,
			Quantity:    item.Quantity,
			OfficerName: officer,
			Timestamp:   &ts,
		})
	}
	if len(txns) == 0 {
		return nil, domain.NewValidationError("items", "at least one product with a positive quantity is required")
	}

	if err := s.repo.CreateBatch(ctx, txns); err != nil {
		return nil, err
	}

	metrics.WritesTotal.WithLabelValues(string(s.collection), "create").Add(float64(len(txns)))
	s.notifier.Notify(ctx, s.collection)
	s.logger.Info("transactions recorded", "collection", s.collection, "lines", len(txns), "partner", partner)
	return txns, nil
}

// Delete removes one record and returns it so callers can confirm what was
// deleted.
func (s *TransactionService) Delete(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("%s %s: %w", s.collection, id, domain.ErrNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	metrics.WritesTotal.WithLabelValues(string(s.collection), "delete").Inc()
	s.notifier.Notify(ctx, s.collection)
	s.logger.Info("transaction deleted", "collection", s.collection, "id", id)
	return txn, nil
}
