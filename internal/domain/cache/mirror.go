// Package cache maintains local mirrors of remote collections. A Mirror is
// kept current solely by consuming the collection's change stream and fans
// every event out to its subscribed listeners.
package cache

import (
	"fmt"

	"mminv/internal/domain/store"
)

// Listener receives change events for a mirrored collection. Events are
// delivered in the exact order the stream emitted them, never reordered or
// coalesced.
type Listener interface {
	OnAdded(id string, data store.Document)
	OnModified(id string, data store.Document)
	OnRemoved(id string)
}

// Mirror is the local cache of one remote collection together with its
// listener list.
//
// Mirror does no locking: all access must be serialized by the owner (the
// workspace runs change delivery and user commands on one logical thread).
type Mirror struct {
	name      string
	docs      map[string]store.Document
	listeners []Listener
}

// NewMirror creates an empty mirror for the named collection.
func NewMirror(name string) *Mirror {
	return &Mirror{
		name: name,
		docs: make(map[string]store.Document),
	}
}

// Name returns the mirrored collection name.
func (m *Mirror) Name() string { return m.name }

// Apply consumes one change event: upserts on Added/Modified, deletes on
// Removed, then delivers the event to every listener in subscription order.
// Entries are removed exactly on a Removed event, never by local logic.
func (m *Mirror) Apply(ev store.ChangeEvent) {
	switch ev.Kind {
	case store.Added:
		m.docs[ev.ID] = ev.Data
		for _, l := range m.listeners {
			l.OnAdded(ev.ID, ev.Data)
		}
	case store.Modified:
		m.docs[ev.ID] = ev.Data
		for _, l := range m.listeners {
			l.OnModified(ev.ID, ev.Data)
		}
	case store.Removed:
		delete(m.docs, ev.ID)
		for _, l := range m.listeners {
			l.OnRemoved(ev.ID)
		}
	}
}

// Subscribe registers a listener. The current cache contents are replayed to
// the listener as OnAdded calls (in unspecified order) before any live event
// reaches it, so a new subscriber starts fully populated. Subscribing the
// same listener twice is a programming error.
func (m *Mirror) Subscribe(l Listener) {
	if m.subscribed(l) {
		panic(fmt.Sprintf("cache: duplicate subscription to %q", m.name))
	}
	for id, doc := range m.docs {
		l.OnAdded(id, doc)
	}
	m.listeners = append(m.listeners, l)
}

func (m *Mirror) subscribed(l Listener) bool {
	for _, reg := range m.listeners {
		if reg == l {
			return true
		}
	}
	return false
}

// Unsubscribe removes a listener. Further events are not delivered; rows a
// view already produced are not retracted. Unsubscribing an unknown listener
// is a programming error.
func (m *Mirror) Unsubscribe(l Listener) {
	for i, reg := range m.listeners {
		if reg == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("cache: unsubscribe of unknown listener from %q", m.name))
}

// Get returns the latest known snapshot for id.
func (m *Mirror) Get(id string) (store.Document, bool) {
	doc, ok := m.docs[id]
	return doc, ok
}

// Len returns the number of cached entries.
func (m *Mirror) Len() int { return len(m.docs) }

// Each calls fn for every cached entry, in unspecified order.
func (m *Mirror) Each(fn func(id string, doc store.Document)) {
	for id, doc := range m.docs {
		fn(id, doc)
	}
}
