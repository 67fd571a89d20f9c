package view

import "strconv"

// KeyKind selects how a sort key is extracted from a row and compared.
type KeyKind uint8

const (
	// Text keys come from a document field and compare lexicographically.
	Text KeyKind = iota
	// Number keys come from a document field and compare numerically.
	Number
	// Input keys come from the row's transient user input; blank (or
	// unparseable) input counts as 0.
	Input
)

// KeyExtractor pulls a sort key out of a row. The zero value is not valid;
// use TextKey, NumberKey or InputKey.
type KeyExtractor struct {
	Field string
	Kind  KeyKind
}

// TextKey sorts by a document field, lexicographically.
func TextKey(field string) KeyExtractor { return KeyExtractor{Field: field, Kind: Text} }

// NumberKey sorts by a document field, numerically.
func NumberKey(field string) KeyExtractor { return KeyExtractor{Field: field, Kind: Number} }

// InputKey sorts by the row's transient input value.
func InputKey(field string) KeyExtractor { return KeyExtractor{Field: field, Kind: Input} }

// Key is an extracted sort key. Keys from the same extractor compare with
// Less; comparing keys of different kinds is meaningless.
type Key struct {
	kind KeyKind
	text string
	num  int
}

// Key extracts the sort key from a row.
func (e KeyExtractor) Key(r *Row) Key {
	switch e.Kind {
	case Number:
		return Key{kind: Number, num: r.Data.Int(e.Field)}
	case Input:
		n := 0
		if r.Input != "" {
			n, _ = strconv.Atoi(r.Input)
		}
		return Key{kind: Input, num: n}
	default:
		return Key{kind: Text, text: r.Data.Str(e.Field)}
	}
}

// Less reports whether k orders strictly before o.
func (k Key) Less(o Key) bool {
	if k.kind == Text {
		return k.text < o.text
	}
	return k.num < o.num
}
