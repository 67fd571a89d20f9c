// Package memory is an in-process implementation of the document store port,
// used by unit tests and by local development mode. Writes are applied and
// echoed back through the change feed by a single dispatcher goroutine, so a
// writer never observes its own write synchronously — the same
// eventual-consistency shape the real store has.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"mminv/internal/domain/store"
)

type opKind uint8

const (
	opAdd opKind = iota
	opMerge
	opDelete
	opListen
	opBarrier
)

type watcher struct {
	ctx        context.Context
	collection string
	apply      func(store.ChangeEvent)
	onError    func(error)
}

type op struct {
	kind       opKind
	collection string
	id         string
	fields     store.Document
	w          *watcher
	done       chan struct{}
}

// Store implements store.Store in process memory.
type Store struct {
	ops  chan op
	quit chan struct{}
	idle chan struct{}

	// now supplies server-assigned timestamps; replaceable in tests.
	now func() time.Time
}

// New creates a started store. Call Close when done.
func New() *Store {
	s := &Store{
		ops:  make(chan op, 1024),
		quit: make(chan struct{}),
		idle: make(chan struct{}),
		now:  time.Now,
	}
	go s.dispatch()
	return s
}

// Close stops the dispatcher. Pending writes are dropped.
func (s *Store) Close() error {
	close(s.quit)
	<-s.idle
	return nil
}

func (s *Store) submit(o op) error {
	select {
	case s.ops <- o:
		return nil
	case <-s.quit:
		return errors.New("memory: store closed")
	}
}

// Listen implements store.Store. The current collection contents are
// replayed to the new feed as Added events before any later write reaches
// it.
func (s *Store) Listen(ctx context.Context, collection string, apply func(store.ChangeEvent), onError func(error)) {
	_ = s.submit(op{kind: opListen, collection: collection, w: &watcher{
		ctx:        ctx,
		collection: collection,
		apply:      apply,
		onError:    onError,
	}})
}

// AddDocument implements store.Store with a generated identity.
func (s *Store) AddDocument(_ context.Context, collection string, doc store.Document) error {
	return s.submit(op{
		kind:       opAdd,
		collection: collection,
		id:         uuid.NewString(),
		fields:     doc.Clone(),
	})
}

// UpdateDocument implements store.Store as a merge write. Like the real
// backend's merge set, a missing document is created.
func (s *Store) UpdateDocument(_ context.Context, collection, id string, fields store.Document) error {
	return s.submit(op{
		kind:       opMerge,
		collection: collection,
		id:         id,
		fields:     fields.Clone(),
	})
}

// DeleteDocument removes a document, emitting a Removed event. Deleting a
// missing document is a no-op. Not part of the port; tests and seed tooling
// use it to drive removal events.
func (s *Store) DeleteDocument(_ context.Context, collection, id string) error {
	return s.submit(op{kind: opDelete, collection: collection, id: id})
}

// Flush blocks until every write submitted before the call has been applied
// and delivered.
func (s *Store) Flush() {
	done := make(chan struct{})
	if s.submit(op{kind: opBarrier, done: done}) != nil {
		return
	}
	select {
	case <-done:
	case <-s.quit:
	}
}

// dispatch owns all store state: it applies writes in submission order and
// delivers the resulting events to the matching feeds in that same order.
func (s *Store) dispatch() {
	defer close(s.idle)

	collections := make(map[string]map[string]store.Document)
	var watchers []*watcher

	coll := func(name string) map[string]store.Document {
		c := collections[name]
		if c == nil {
			c = make(map[string]store.Document)
			collections[name] = c
		}
		return c
	}

	emit := func(collection string, ev store.ChangeEvent) {
		for _, w := range watchers {
			if w.collection != collection || w.ctx.Err() != nil {
				continue
			}
			w.apply(ev)
		}
	}

	for {
		select {
		case <-s.quit:
			return
		case o := <-s.ops:
			switch o.kind {
			case opListen:
				for id, doc := range coll(o.collection) {
					o.w.apply(store.ChangeEvent{Kind: store.Added, ID: id, Data: doc.Clone()})
				}
				watchers = append(watchers, o.w)

			case opAdd:
				doc := s.resolve(o.fields)
				coll(o.collection)[o.id] = doc
				emit(o.collection, store.ChangeEvent{Kind: store.Added, ID: o.id, Data: doc.Clone()})

			case opMerge:
				c := coll(o.collection)
				existing, ok := c[o.id]
				kind := store.Modified
				if !ok {
					existing = make(store.Document)
					kind = store.Added
				}
				merged := existing.Clone()
				for k, v := range s.resolve(o.fields) {
					merged[k] = v
				}
				c[o.id] = merged
				emit(o.collection, store.ChangeEvent{Kind: kind, ID: o.id, Data: merged.Clone()})

			case opDelete:
				c := coll(o.collection)
				if _, ok := c[o.id]; !ok {
					continue
				}
				delete(c, o.id)
				emit(o.collection, store.ChangeEvent{Kind: store.Removed, ID: o.id})

			case opBarrier:
				close(o.done)
			}
		}
	}
}

// resolve replaces server timestamp sentinels with the current server time.
func (s *Store) resolve(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		if store.IsServerTimestamp(v) {
			out[k] = s.now().UTC()
			continue
		}
		out[k] = v
	}
	return out
}
