// Package feed delivers full collection snapshots to subscribers whenever a
// collection changes.
//
// Every committed write calls Notify for the collection it touched. The hub
// reloads the collection once and hands the result to each subscriber of
// that collection. Subscribers are never given partial updates: each
// delivery is the whole current record set. A slow subscriber only ever
// sees the latest snapshot; intermediate ones are dropped.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/metrics"
)

// Loader reads the full current contents of a collection.
type Loader interface {
	Load(ctx context.Context, c domain.Collection) (any, error)
}

// Notifier is implemented by anything that must learn about committed writes.
type Notifier interface {
	Notify(ctx context.Context, c domain.Collection)
}

// Publisher forwards change notifications to other service instances.
type Publisher interface {
	Publish(ctx context.Context, c domain.Collection) error
}

// Snapshot is one delivery. Err is set when the collection could not be
// loaded; Data is nil in that case.
type Snapshot struct {
	Collection domain.Collection
	Data       any
	Err        error
}

type Handler func(Snapshot)

type Hub struct {
	loader    Loader
	publisher Publisher

	mu     sync.Mutex
	nextID uint64
	subs   map[domain.Collection]map[uint64]*subscription
	// loads serializes load-and-deliver per collection so that snapshots
	// reach subscribers in commit order.
	loads map[domain.Collection]*sync.Mutex
}

func NewHub(loader Loader) *Hub {
	h := &Hub{
		loader: loader,
		subs:   make(map[domain.Collection]map[uint64]*subscription),
		loads:  make(map[domain.Collection]*sync.Mutex),
	}
	for _, c := range domain.Collections {
		h.subs[c] = make(map[uint64]*subscription)
		h.loads[c] = &sync.Mutex{}
	}
	return h
}

// SetPublisher makes Notify forward every change to p as well.
func (h *Hub) SetPublisher(p Publisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publisher = p
}

// Subscribe registers handler for c and immediately queues the current
// snapshot. The returned function stops delivery; it must be called when
// the subscriber goes away and is safe to call more than once.
func (h *Hub) Subscribe(ctx context.Context, c domain.Collection, handler Handler) (func(), error) {
	if !c.Valid() {
		return nil, domain.ErrNotFound
	}

	sub := &subscription{
		handler: handler,
		ch:      make(chan Snapshot, 1),
		done:    make(chan struct{}),
	}

	lock := h.loads[c]
	lock.Lock()
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[c][id] = sub
	h.mu.Unlock()
	sub.offer(h.load(ctx, c))
	lock.Unlock()

	metrics.FeedSubscribers.WithLabelValues(string(c)).Inc()
	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[c], id)
			h.mu.Unlock()
			close(sub.done)
			metrics.FeedSubscribers.WithLabelValues(string(c)).Dec()
		})
	}, nil
}

// Notify reloads c, delivers it to local subscribers and forwards the
// change to the publisher, if any.
func (h *Hub) Notify(ctx context.Context, c domain.Collection) {
	h.NotifyLocal(ctx, c)

	h.mu.Lock()
	p := h.publisher
	h.mu.Unlock()
	if p == nil {
		return
	}
	if err := p.Publish(ctx, c); err != nil {
		slog.Warn("failed to publish change", "collection", c, "error", err)
	}
}

// NotifyLocal delivers a fresh snapshot of c to this hub's subscribers only.
func (h *Hub) NotifyLocal(ctx context.Context, c domain.Collection) {
	lock, ok := h.loads[c]
	if !ok {
		slog.Warn("notify for unknown collection", "collection", c)
		return
	}
	lock.Lock()
	defer lock.Unlock()

	subs := h.subscribers(c)
	if len(subs) == 0 {
		return
	}

	snap := h.load(ctx, c)
	for _, sub := range subs {
		sub.offer(snap)
	}
}

// Subscribers reports how many subscriptions c currently has.
func (h *Hub) Subscribers(c domain.Collection) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[c])
}

func (h *Hub) subscribers(c domain.Collection) []*subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make([]*subscription, 0, len(h.subs[c]))
	for _, sub := range h.subs[c] {
		subs = append(subs, sub)
	}
	return subs
}

func (h *Hub) load(ctx context.Context, c domain.Collection) Snapshot {
	data, err := h.loader.Load(ctx, c)
	if err != nil {
		slog.Error("failed to load snapshot", "collection", c, "error", err)
		return Snapshot{Collection: c, Err: err}
	}
	return Snapshot{Collection: c, Data: data}
}

type subscription struct {
	handler Handler
	mu      sync.Mutex
	ch      chan Snapshot
	done    chan struct{}
}

// offer queues snap, replacing any snapshot still waiting to be delivered.
func (s *subscription) offer(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case snap := <-s.ch:
			select {
			case <-s.done:
				return
			default:
			}
			s.handler(snap)
		}
	}
}
