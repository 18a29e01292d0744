package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

func txn(product string, qty int) domain.Transaction {
	return domain.Transaction{ProductName: product, PartnerName: "JIH", Quantity: qty, OfficerName: "Gigih"}
}

var products = []domain.Product{
	{Name: "Americano", Price: 8000},
	{Name: "Coklat", Price: 10000},
	{Name: "Greentea", Price: 0},
}

func TestComputeNetStock(t *testing.T) {
	s := Compute(products,
		[]domain.Transaction{txn("Americano", 5), txn("Americano", 3), txn("Coklat", 2)},
		[]domain.Transaction{txn("Americano", 2)},
	)

	assert.Equal(t, Line{Product: "Americano", Price: 8000, Stock: 6, Value: 48000}, s.PerProduct["Americano"])
	assert.Equal(t, Line{Product: "Coklat", Price: 10000, Stock: 2, Value: 20000}, s.PerProduct["Coklat"])
	assert.Equal(t, Line{Product: "Greentea", Price: 0, Stock: 0, Value: 0}, s.PerProduct["Greentea"])
	assert.Equal(t, int64(68000), s.TotalValue)
}

func TestComputeIgnoresUnknownProducts(t *testing.T) {
	s := Compute(products,
		[]domain.Transaction{txn("Espresso", 10)},
		[]domain.Transaction{txn("Espresso", 1)},
	)

	_, ok := s.PerProduct["Espresso"]
	assert.False(t, ok)
	assert.Zero(t, s.TotalValue)
}

func TestComputeAllowsNegativeStock(t *testing.T) {
	s := Compute(products,
		[]domain.Transaction{txn("Coklat", 1)},
		[]domain.Transaction{txn("Coklat", 3)},
	)

	line := s.PerProduct["Coklat"]
	assert.Equal(t, int64(-2), line.Stock)
	assert.Equal(t, int64(-20000), line.Value)
	assert.Equal(t, int64(-20000), s.TotalValue)
}

func TestComputeEmptyCatalog(t *testing.T) {
	s := Compute(nil, []domain.Transaction{txn("Coklat", 1)}, nil)

	assert.Empty(t, s.PerProduct)
	assert.Empty(t, s.Lines())
	assert.Zero(t, s.TotalValue)
}

func TestSummaryLinesFollowCatalogOrder(t *testing.T) {
	s := Compute(products, []domain.Transaction{txn("Greentea", 4)}, nil)

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "Americano", lines[0].Product)
	assert.Equal(t, "Coklat", lines[1].Product)
	assert.Equal(t, "Greentea", lines[2].Product)
	assert.Equal(t, int64(4), lines[2].Stock)
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{800, "Rp 800"},
		{24000, "Rp 24.000"},
		{1250000, "Rp 1.250.000"},
		{-8000, "-Rp 8.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupiah(tt.amount))
		})
	}
}
