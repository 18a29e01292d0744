// Package history narrows transaction lists with a conjunction of
// date-range, product, partner and officer predicates.
package history

import (
	"net/url"
	"strings"
	"time"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/timeutil"
)

// Apply returns the transactions matching every set field of f, in the
// order given. Transactions without a timestamp never match. Date bounds
// are whole calendar days in loc, inclusive on both ends.
func Apply(txns []domain.Transaction, f domain.Filter, loc *time.Location) []domain.Transaction {
	var from, to time.Time
	if f.StartDate != nil {
		from = timeutil.StartOfDay(*f.StartDate, loc)
	}
	if f.EndDate != nil {
		to = timeutil.EndOfDay(*f.EndDate, loc)
	}

	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Timestamp == nil {
			continue
		}
		ts := *t.Timestamp
		if f.StartDate != nil && ts.Before(from) {
			continue
		}
		if f.EndDate != nil && ts.After(to) {
			continue
		}
		if f.Product != "" && t.ProductName != f.Product {
			continue
		}
		if f.Partner != "" && t.PartnerName != f.Partner {
			continue
		}
		if f.Officer != "" && t.OfficerName != f.Officer {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterFromQuery reads start, end, product, partner and officer from q.
// Dates use the YYYY-MM-DD form and are interpreted in loc.
func FilterFromQuery(q url.Values, loc *time.Location) (domain.Filter, error) {
	f := domain.Filter{
		Product: strings.TrimSpace(q.Get("product")),
		Partner: strings.TrimSpace(q.Get("partner")),
		Officer: strings.TrimSpace(q.Get("officer")),
	}

	for _, p := range []struct {
		key string
		dst **time.Time
	}{
		{"start", &f.StartDate},
		{"end", &f.EndDate},
	} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		d, err := timeutil.ParseDate(raw, loc)
		if err != nil {
			return domain.Filter{}, domain.NewValidationError(p.key, "date must be YYYY-MM-DD")
		}
		*p.dst = &d
	}

	return f, nil
}
