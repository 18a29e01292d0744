package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/konsinyasi/internal/domain"
)

// Snapshotter loads the full current record set of a collection. It is the
// read side of the live feed.
type Snapshotter struct {
	products   *ProductStore
	partners   *EntryStore
	employees  *EntryStore
	dropoffs   *TransactionStore
	returns    *TransactionStore
	attendance *AttendanceStore
}

func NewSnapshotter(db *sql.DB) *Snapshotter {
	return &Snapshotter{
		products:   NewProductStore(db),
		partners:   NewPartnerStore(db),
		employees:  NewEmployeeStore(db),
		dropoffs:   NewDropoffStore(db),
		returns:    NewReturnStore(db),
		attendance: NewAttendanceStore(db),
	}
}

// Load returns []domain.Product, []domain.Entry, []domain.Transaction or
// []domain.AttendanceRecord depending on c.
func (s *Snapshotter) Load(ctx context.Context, c domain.Collection) (any, error) {
	switch c {
	case domain.CollectionProducts:
		return s.products.List(ctx)
	case domain.CollectionPartners:
		return s.partners.List(ctx)
	case domain.CollectionEmployees:
		return s.employees.List(ctx)
	case domain.CollectionDropoffs:
		return s.dropoffs.List(ctx)
	case domain.CollectionReturns:
		return s.returns.List(ctx)
	case domain.CollectionAttendance:
		return s.attendance.List(ctx)
	default:
		return nil, fmt.Errorf("unknown collection %q: %w", c, domain.ErrNotFound)
	}
}
