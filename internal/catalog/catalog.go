// Package catalog merges the built-in master data with records created at
// runtime.
//
// Each catalog is a two-tier lookup: a fixed seed list compiled into the
// binary and a live table in the record store. Live entries override seed
// entries of the same name, and the merged result is sorted by name the way
// an Indonesian speaker would expect.
package catalog

import (
	"bytes"
	"sort"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultProductPrice is the unit price of a seed product that has never
// been priced, and of a product added without an explicit price.
const DefaultProductPrice int64 = 8000

var (
	SeedProducts = []string{"Kopi Gula Aren", "Coklat", "Americano", "Greentea"}

	SeedPartners = []string{
		"JIH", "IPIN", "BAROKAH", "MARGONO", "TELKOM", "RSDK", "BIOLOGI", "PERTANIAN",
		"ENJOY", "BIOLOGI 2", "PERTANIAN 2", "SINAR KASIH", "PERUM MAS AFIF", "DIMSUM",
		"RS BUNDA", "KLINIK ADRIO", "RS WIRADADI", "MANDIRI PUSAT", "KEMENAG",
		"BTN PURWOKERTO", "RSI", "BANK JATENG", "FIKES UMP", "RS DKT",
		"FACHRUDIN TOWER", "PSIKOLOGI UMP", "LPPH HUKUM UNSOED",
	}

	SeedEmployees = []string{"Gigih", "Fajar", "Pandu", "Ade"}
)

// Merge combines seed and live entries keyed by name. Seed entries go in
// first; a live entry replaces any entry with the same name, id and all.
// The result is sorted by name using Indonesian collation.
func Merge[T any](seed, live []T, nameOf func(T) string) []T {
	index := make(map[string]int, len(seed)+len(live))
	merged := make([]T, 0, len(seed)+len(live))

	put := func(e T) {
		name := nameOf(e)
		if i, ok := index[name]; ok {
			merged[i] = e
			return
		}
		index[name] = len(merged)
		merged = append(merged, e)
	}
	for _, e := range seed {
		put(e)
	}
	for _, e := range live {
		put(e)
	}

	// A Collator is not safe for concurrent use.
	col := collate.New(language.Indonesian)
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := nameOf(merged[i]), nameOf(merged[j])
		if c := col.CompareString(a, b); c != 0 {
			return c < 0
		}
		return bytes.Compare([]byte(a), []byte(b)) < 0
	})
	return merged
}

// MergeProducts merges the seed product names with live product records.
// Seed-only products carry DefaultProductPrice.
func MergeProducts(live []domain.Product) []domain.Product {
	seed := make([]domain.Product, len(SeedProducts))
	for i, name := range SeedProducts {
		seed[i] = domain.Product{Name: name, Price: DefaultProductPrice}
	}
	return Merge(seed, live, func(p domain.Product) string { return p.Name })
}

// MergeNames merges a seed name list with live partner or employee records.
func MergeNames(seedNames []string, live []domain.Entry) []domain.Entry {
	seed := make([]domain.Entry, len(seedNames))
	for i, name := range seedNames {
		seed[i] = domain.Entry{Name: name}
	}
	return Merge(seed, live, func(e domain.Entry) string { return e.Name })
}

// Names returns the entry names in order.
func Names(entries []domain.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Contains reports whether name is present in the merged catalog.
func Contains(entries []domain.Entry, name string) bool {
	for _, e := range entries {
		if e.Name == name {
			return true
		}
	}
	return false
}
