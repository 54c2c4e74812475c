package tomledit

import "strings"

// Kind discriminates the node variants of a document tree.
type Kind int

const (
	KindNone Kind = iota
	KindValue
	KindInlineTable
	KindTable
	KindArrayTable
)

// Item is a single node in the document tree: a scalar/array value, an
// inline table, a block table, or an array of block tables. A nil *Item is a
// valid "absent" item, so lookups can be chained without nil checks.
type Item struct {
	kind   Kind
	value  *Value
	inline *InlineTable
	table  *Table
	tables []*Table // KindArrayTable elements
}

// Kind returns the item's variant. Nil items are KindNone.
func (it *Item) Kind() Kind {
	if it == nil {
		return KindNone
	}
	return it.kind
}

// IsNone reports whether the item is absent.
func (it *Item) IsNone() bool { return it == nil || it.kind == KindNone }

// IsStr reports whether the item is a string value.
func (it *Item) IsStr() bool {
	return it != nil && it.kind == KindValue && it.value.isStr
}

// Str returns the decoded string contents; ok is false for anything that is
// not a string value.
func (it *Item) Str() (string, bool) {
	if !it.IsStr() {
		return "", false
	}
	return it.value.str, true
}

// IsTableLike reports whether the item is a block table or an inline table.
func (it *Item) IsTableLike() bool {
	return it != nil && (it.kind == KindTable || it.kind == KindInlineTable)
}

// AsTableLike returns the table-like view of the item, or nil.
func (it *Item) AsTableLike() TableLike {
	switch it.Kind() {
	case KindTable:
		return it.table
	case KindInlineTable:
		return it.inline
	default:
		return nil
	}
}

// AsTable returns the block table, or nil if the item is not one.
func (it *Item) AsTable() *Table {
	if it.Kind() != KindTable {
		return nil
	}
	return it.table
}

// AsInlineTable returns the inline table, or nil if the item is not one.
func (it *Item) AsInlineTable() *InlineTable {
	if it.Kind() != KindInlineTable {
		return nil
	}
	return it.inline
}

// Clone returns a deep, detached copy of the item. Cloned block tables keep
// their formatting but are not bound to any document.
func (it *Item) Clone() *Item {
	if it.IsNone() {
		return nil
	}
	out := &Item{kind: it.kind}
	switch it.kind {
	case KindValue:
		v := *it.value
		out.value = &v
	case KindInlineTable:
		out.inline = it.inline.clone()
	case KindTable:
		out.table = it.table.clone()
	case KindArrayTable:
		out.tables = make([]*Table, len(it.tables))
		for i, t := range it.tables {
			out.tables[i] = t.clone()
		}
	}
	return out
}

// Value is a leaf node holding the raw TOML text of a scalar or array.
type Value struct {
	raw   string // source (or rendered) text of the value
	isStr bool
	str   string // decoded contents when isStr
}

// Raw returns the TOML text of the value as it will be printed.
func (v *Value) Raw() string { return v.raw }

// NewString returns a basic-string value item.
func NewString(s string) *Item {
	return &Item{kind: KindValue, value: &Value{raw: encodeString(s), isStr: true, str: s}}
}

// NewBool returns a boolean value item.
func NewBool(b bool) *Item {
	raw := "false"
	if b {
		raw = "true"
	}
	return &Item{kind: KindValue, value: &Value{raw: raw}}
}

// NewStringArray returns an array-of-strings value item.
func NewStringArray(elems []string) *Item {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = encodeString(e)
	}
	return &Item{kind: KindValue, value: &Value{raw: "[" + strings.Join(parts, ", ") + "]"}}
}

// NewInlineTable returns an empty inline table item.
func NewInlineTable() *Item {
	return &Item{kind: KindInlineTable, inline: &InlineTable{}}
}
