package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vbonduro/konsinyasi/internal/catalog"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
	"github.com/vbonduro/konsinyasi/internal/metrics"
)

type productRepository interface {
	Create(ctx context.Context, name string, price int64) (*domain.Product, error)
	UpdatePrices(ctx context.Context, prices map[string]int64) error
}

type entryRepository interface {
	Create(ctx context.Context, name string) (*domain.Entry, error)
}

// CatalogService adds master data and maintains product prices.
type CatalogService struct {
	products  productRepository
	partners  entryRepository
	employees entryRepository
	notifier  feed.Notifier
	logger    *slog.Logger
}

func NewCatalogService(
	products productRepository,
	partners entryRepository,
	employees entryRepository,
	notifier feed.Notifier,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:  products,
		partners:  partners,
		employees: employees,
		notifier:  notifier,
		logger:    logger,
	}
}

// AddProduct creates a product priced at catalog.DefaultProductPrice.
func (s *CatalogService) AddProduct(ctx context.Context, name string) (*domain.Product, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}

	p, err := s.products.Create(ctx, name, catalog.DefaultProductPrice)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, domain.CollectionProducts, "create")
	s.logger.Info("product added", "name", name)
	return p, nil
}

func (s *CatalogService) AddPartner(ctx context.Context, name string) (*domain.Entry, error) {
	return s.addEntry(ctx, s.partners, domain.CollectionPartners, name)
}

func (s *CatalogService) AddEmployee(ctx context.Context, name string) (*domain.Entry, error) {
	return s.addEntry(ctx, s.employees, domain.CollectionEmployees, name)
}

// UpdatePrices applies every price in one batch.
func (s *CatalogService) UpdatePrices(ctx context.Context, prices map[string]int64) error {
	if len(prices) == 0 {
		return domain.NewValidationError("prices", "no prices given")
	}

	clean := make(map[string]int64, len(prices))
	for name, price := range prices {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.NewValidationError("prices", "product name is required")
		}
		if price < 0 {
			return domain.NewValidationError("prices", "price of "+name+" must not be negative")
		}
		clean[name] = price
	}

	if err := s.products.UpdatePrices(ctx, clean); err != nil {
		return err
	}
	s.changed(ctx, domain.CollectionProducts, "update")
	s.logger.Info("prices updated", "count", len(clean))
	return nil
}

func (s *CatalogService) addEntry(ctx context.Context, repo entryRepository, c domain.Collection, name string) (*domain.Entry, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}

	e, err := repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, c, "create")
	s.logger.Info("catalog entry added", "collection", c, "name", name)
	return e, nil
}

func (s *CatalogService) changed(ctx context.Context, c domain.Collection, op string) {
	metrics.WritesTotal.WithLabelValues(string(c), op).Inc()
	s.notifier.Notify(ctx, c)
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "name must not be empty")
	}
	return name, nil
}
