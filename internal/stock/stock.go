// Package stock computes net consigned stock per product and its value.
package stock

import (
	"github.com/vbonduro/konsinyasi/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Line is the net position of one product.
type Line struct {
	Product string `json:"product"`
	Price   int64  `json:"price"`
	Stock   int64  `json:"stock"`
	Value   int64  `json:"value"`
}

type Summary struct {
	PerProduct map[string]Line `json:"per_product"`
	TotalValue int64           `json:"total_value"`

	order []string
}

// Compute derives net stock from scratch: drop-offs add, returns subtract.
// Transactions for products outside the catalog are ignored. Stock is not
// clamped, so returns exceeding drop-offs show up as negative stock.
func Compute(products []domain.Product, dropoffs, returns []domain.Transaction) Summary {
	s := Summary{
		PerProduct: make(map[string]Line, len(products)),
		order:      make([]string, 0, len(products)),
	}
	for _, p := range products {
		if _, dup := s.PerProduct[p.Name]; !dup {
			s.order = append(s.order, p.Name)
		}
		s.PerProduct[p.Name] = Line{Product: p.Name, Price: p.Price}
	}

	apply := func(txns []domain.Transaction, sign int64) {
		for _, t := range txns {
			line, ok := s.PerProduct[t.ProductName]
			if !ok {
				continue
			}
			line.Stock += sign * int64(t.Quantity)
			s.PerProduct[t.ProductName] = line
		}
	}
	apply(dropoffs, 1)
	apply(returns, -1)

	for name, line := range s.PerProduct {
		line.Value = line.Stock * line.Price
		s.PerProduct[name] = line
		s.TotalValue += line.Value
	}
	return s
}

// Lines returns the per-product lines in catalog order.
func (s Summary) Lines() []Line {
	lines := make([]Line, 0, len(s.order))
	for _, name := range s.order {
		lines = append(lines, s.PerProduct[name])
	}
	return lines
}

// FormatRupiah renders an amount the way it is written in Indonesia,
// for example "Rp 24.000" or "-Rp 8.000".
func FormatRupiah(amount int64) string {
	p := message.NewPrinter(language.Indonesian)
	if amount < 0 {
		return "-" + p.Sprintf("Rp %d", -amount)
	}
	return p.Sprintf("Rp %d", amount)
}
