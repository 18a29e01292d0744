package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/konsinyasi/internal/catalog"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/store"
)

type catalogFixture struct {
	svc       *CatalogService
	products  *store.ProductStore
	partners  *store.EntryStore
	employees *store.EntryStore
	notifier  *stubNotifier
}

func newCatalogFixture(t *testing.T) catalogFixture {
	t.Helper()
	d := newTestDB(t)
	f := catalogFixture{
		products:  store.NewProductStore(d),
		partners:  store.NewPartnerStore(d),
		employees: store.NewEmployeeStore(d),
		notifier:  &stubNotifier{},
	}
	f.svc = NewCatalogService(f.products, f.partners, f.employees, f.notifier, discardLogger())
	return f
}

func TestAddProductUsesDefaultPrice(t *testing.T) {
	f := newCatalogFixture(t)

	p, err := f.svc.AddProduct(context.Background(), "  Kopi Susu ")
	require.NoError(t, err)
	assert.Equal(t, "Kopi Susu", p.Name)
	assert.Equal(t, catalog.DefaultProductPrice, p.Price)
	assert.Equal(t, []domain.Collection{domain.CollectionProducts}, f.notifier.collections())
}

func TestAddEntries(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddPartner(ctx, "UNSOED")
	require.NoError(t, err)
	_, err = f.svc.AddEmployee(ctx, "Rina")
	require.NoError(t, err)

	partners, err := f.partners.List(ctx)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "UNSOED", partners[0].Name)

	employees, err := f.employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)

	assert.Equal(t, []domain.Collection{domain.CollectionPartners, domain.CollectionEmployees}, f.notifier.collections())
}

func TestAddRejectsEmptyAndDuplicateNames(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddPartner(ctx, "   ")
	assert.True(t, domain.IsValidation(err))
	_, err = f.svc.AddProduct(ctx, "")
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.AddEmployee(ctx, "Ade")
	require.NoError(t, err)
	_, err = f.svc.AddEmployee(ctx, "Ade")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.Len(t, f.notifier.collections(), 1)
}

func TestUpdatePrices(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.UpdatePrices(ctx, map[string]int64{"Americano": 9000, " Coklat ": 11000}))

	coklat, err := f.products.GetByName(ctx, "Coklat")
	require.NoError(t, err)
	require.NotNil(t, coklat)
	assert.Equal(t, int64(11000), coklat.Price)
	assert.Equal(t, []domain.Collection{domain.CollectionProducts}, f.notifier.collections())
}

func TestUpdatePricesValidation(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	for _, prices := range []map[string]int64{
		nil,
		{"": 1000},
		{"Americano": -1},
	} {
		assert.True(t, domain.IsValidation(f.svc.UpdatePrices(ctx, prices)))
	}

	list, err := f.products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.notifier.collections())
}
