// Package state holds the application's in-memory view of every collection.
//
// The store subscribes to the live feed and swaps in each snapshot as it
// arrives. Readers only see derived, read-only data: merged catalogs,
// filtered history and stock. Writes never go through here; they go to the
// services, and their effect shows up with the next snapshot.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vbonduro/konsinyasi/internal/catalog"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
	"github.com/vbonduro/konsinyasi/internal/history"
	"github.com/vbonduro/konsinyasi/internal/stock"
)

type subscriber interface {
	Subscribe(ctx context.Context, c domain.Collection, handler feed.Handler) (func(), error)
}

type Store struct {
	loc *time.Location

	mu         sync.RWMutex
	products   []domain.Product
	partners   []domain.Entry
	employees  []domain.Entry
	dropoffs   []domain.Transaction
	returns    []domain.Transaction
	attendance []domain.AttendanceRecord
	errs       map[domain.Collection]error
	loaded     map[domain.Collection]bool
	ready      chan struct{}

	unsubscribe []func()
}

// New subscribes to every collection. Close must be called to release the
// subscriptions.
func New(ctx context.Context, hub subscriber, loc *time.Location) (*Store, error) {
	s := &Store{
		loc:    loc,
		errs:   make(map[domain.Collection]error),
		loaded: make(map[domain.Collection]bool),
		ready:  make(chan struct{}),
	}

	for _, c := range domain.Collections {
		unsub, err := hub.Subscribe(ctx, c, s.apply)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", c, err)
		}
		s.unsubscribe = append(s.unsubscribe, unsub)
	}
	return s, nil
}

// Close stops all feed deliveries to the store.
func (s *Store) Close() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}

// WaitReady blocks until every collection has delivered a snapshot or ctx
// is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply swaps in a delivered snapshot. A failed load keeps the previous
// data and records the error for that collection only.
func (s *Store) apply(snap feed.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Err != nil {
		s.errs[snap.Collection] = snap.Err
		return
	}

	switch data := snap.Data.(type) {
	case []domain.Product:
		s.products = data
	case []domain.Entry:
		switch snap.Collection {
		case domain.CollectionPartners:
			s.partners = data
		case domain.CollectionEmployees:
			s.employees = data
		}
	case []domain.Transaction:
		switch snap.Collection {
		case domain.CollectionDropoffs:
			s.dropoffs = data
		case domain.CollectionReturns:
			s.returns = data
		}
	case []domain.AttendanceRecord:
		s.attendance = data
	default:
		slog.Error("unexpected snapshot type", "collection", snap.Collection, "type", fmt.Sprintf("%T", snap.Data))
		return
	}

	delete(s.errs, snap.Collection)
	if !s.loaded[snap.Collection] {
		s.loaded[snap.Collection] = true
		if len(s.loaded) == len(domain.Collections) {
			close(s.ready)
		}
	}
}

// Err returns the last load error of c, or nil once c loads again.
func (s *Store) Err(c domain.Collection) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[c]
}

// Products returns the merged product catalog.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	live := s.products
	s.mu.RUnlock()
	return catalog.MergeProducts(live)
}

func (s *Store) Partners() []domain.Entry {
	s.mu.RLock()
	live := s.partners
	s.mu.RUnlock()
	return catalog.MergeNames(catalog.SeedPartners, live)
}

func (s *Store) Employees() []domain.Entry {
	s.mu.RLock()
	live := s.employees
	s.mu.RUnlock()
	return catalog.MergeNames(catalog.SeedEmployees, live)
}

// Transactions returns the newest-first records of the dropoffs or returns
// collection. The slice is shared and must not be modified.
func (s *Store) Transactions(c domain.Collection) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch c {
	case domain.CollectionDropoffs:
		return s.dropoffs
	case domain.CollectionReturns:
		return s.returns
	default:
		return nil
	}
}

// History returns the records of c matching f.
func (s *Store) History(c domain.Collection, f domain.Filter) []domain.Transaction {
	return history.Apply(s.Transactions(c), f, s.loc)
}

// Stock computes net stock over the merged catalog.
func (s *Store) Stock() stock.Summary {
	products := s.Products()
	s.mu.RLock()
	dropoffs, returns := s.dropoffs, s.returns
	s.mu.RUnlock()
	return stock.Compute(products, dropoffs, returns)
}

// Attendance returns every attendance record, newest clock-in first. The
// slice is shared and must not be modified.
func (s *Store) Attendance() []domain.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attendance
}

// ActiveAttendance returns the active records of employee.
func (s *Store) ActiveAttendance(employee string) []domain.AttendanceRecord {
	var active []domain.AttendanceRecord
	for _, rec := range s.Attendance() {
		if rec.Active() && rec.EmployeeName == employee {
			active = append(active, rec)
		}
	}
	return active
}

// Location is the business time zone used for date filtering and display.
func (s *Store) Location() *time.Location {
	return s.loc
}
