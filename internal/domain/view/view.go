// Package view provides sorted, incrementally maintained projections of
// cached collection entries. A View is a cache listener: rows track cache
// entries 1:1 and stay in ascending order by the active sort key.
package view

import (
	"fmt"
	"sort"

	"mminv/internal/core/apperror"
	"mminv/internal/domain/store"
)

// Row is one projected cache entry. Its identity is the source document
// identity. Input holds the transient user-entered value of transactional
// views and is blank otherwise.
type Row struct {
	ID    string
	Data  store.Document
	Input string
}

// View is an ordered row sequence keyed by a swappable KeyExtractor.
//
// Like cache.Mirror, View does no locking; the owning workspace serializes
// all access.
type View struct {
	name       string
	rows       []*Row
	keys       map[string]KeyExtractor
	active     KeyExtractor
	activeName string
}

// New creates an empty view. keys maps sort column names to extractors;
// defaultColumn selects the initially active one and must be a key of keys.
func New(name, defaultColumn string, keys map[string]KeyExtractor) *View {
	ext, ok := keys[defaultColumn]
	if !ok {
		panic(fmt.Sprintf("view %q: unknown default sort column %q", name, defaultColumn))
	}
	return &View{
		name:       name,
		keys:       keys,
		active:     ext,
		activeName: defaultColumn,
	}
}

// Name returns the view name.
func (v *View) Name() string { return v.name }

// SortColumn returns the currently active sort column.
func (v *View) SortColumn() string { return v.activeName }

// Len returns the number of rows.
func (v *View) Len() int { return len(v.rows) }

// OnAdded inserts a row for a new cache entry at the first position whose
// existing key is >= the new key. Ties land before the first equal key, so
// the order stays ascending and stable without a full re-sort.
func (v *View) OnAdded(id string, data store.Document) {
	row := &Row{ID: id, Data: data}
	key := v.active.Key(row)
	at := len(v.rows)
	for i, existing := range v.rows {
		if !v.active.Key(existing).Less(key) {
			at = i
			break
		}
	}
	v.rows = append(v.rows, nil)
	copy(v.rows[at+1:], v.rows[at:])
	v.rows[at] = row
}

// OnModified replaces the row's displayed fields in place. Its position is
// not recomputed; position changes only on an explicit Resort.
func (v *View) OnModified(id string, data store.Document) {
	if row := v.find(id); row != nil {
		row.Data = data
	}
}

// OnRemoved deletes the row. Removal events can race a removal already
// handled through another path, so a missing row is a no-op, not an error.
func (v *View) OnRemoved(id string) {
	for i, row := range v.rows {
		if row.ID == id {
			v.rows = append(v.rows[:i], v.rows[i+1:]...)
			return
		}
	}
}

// Resort activates the named sort column and stable-sorts the whole row set
// by it. This is the only O(n log n) operation and is user-triggered.
func (v *View) Resort(column string) error {
	ext, ok := v.keys[column]
	if !ok {
		return apperror.NewValidation("unknown sort column").
			WithDetail("view", v.name).
			WithDetail("column", column)
	}
	v.active = ext
	v.activeName = column
	sort.SliceStable(v.rows, func(i, j int) bool {
		return ext.Key(v.rows[i]).Less(ext.Key(v.rows[j]))
	})
	return nil
}

// SetInput records a transient user input on the identified row.
func (v *View) SetInput(id, value string) error {
	row := v.find(id)
	if row == nil {
		return apperror.NewValidation("unknown product").
			WithDetail("view", v.name).
			WithDetail("id", id)
	}
	row.Input = value
	return nil
}

// ClearInputs blanks every transient input, returning the view to the
// collecting state.
func (v *View) ClearInputs() {
	for _, row := range v.rows {
		row.Input = ""
	}
}

// Rows returns the rows in current order. The returned slice is a copy; the
// rows themselves are shared and must only be read under the owner's
// serialization.
func (v *View) Rows() []*Row {
	out := make([]*Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// find returns the single row with the given identity, or nil. Cache entries
// and rows are in 1:1 correspondence, so the first match is the only one.
func (v *View) find(id string) *Row {
	for _, row := range v.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}
