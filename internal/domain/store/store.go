// Package store defines the port to the remote document store. The rest of
// the domain depends only on these types; concrete backends live under
// internal/infrastructure/storage.
package store

import "context"

// Document is one document's field set as received from or sent to the store.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Str returns the named field coerced to a string, or "" when absent.
func (d Document) Str(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the named field coerced to an int, or 0 when absent or not
// numeric. Firestore delivers integers as int64 and JSON decoding delivers
// them as float64, so both are accepted.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// ChangeKind discriminates change stream events.
type ChangeKind uint8

const (
	Added ChangeKind = iota
	Modified
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// ChangeEvent is one server-pushed change notification for a collection.
// Data is nil for Removed events.
type ChangeEvent struct {
	Kind ChangeKind
	ID   string
	Data Document
}

// serverTimestamp is the sentinel type behind ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value: backends replace it with a
// server-assigned timestamp at write time.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether a field value is the sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Store is the document store port.
//
// Listen starts a long-lived change feed for one collection. Events are
// passed to apply in the order the store emitted them; feed errors go to
// onError and stop the feed without affecting the caller. Listen returns
// immediately; the feed runs until ctx is cancelled.
//
// AddDocument and UpdateDocument are fire-and-forget from the domain's point
// of view: a successful write is observed only when the store echoes it back
// through the change feed.
type Store interface {
	Listen(ctx context.Context, collection string, apply func(ChangeEvent), onError func(error))
	AddDocument(ctx context.Context, collection string, doc Document) error
	UpdateDocument(ctx context.Context, collection, id string, fields Document) error
}
