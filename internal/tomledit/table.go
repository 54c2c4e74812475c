package tomledit

import "sort"

// KV is one (key, item) pair of a table, in declared order.
type KV struct {
	Key  string
	Item *Item
}

// TableLike is the shared mutation surface of block and inline tables.
type TableLike interface {
	// Get returns the item stored under key, or nil.
	Get(key string) *Item
	// Set stores item under key, replacing any existing entry or appending
	// a new one in declared order.
	Set(key string, item *Item)
	// Remove deletes the entry under key, reporting whether it existed.
	Remove(key string) bool
	// Entries returns the (key, item) pairs in declared order.
	Entries() []KV
	// Len returns the number of direct entries.
	Len() int
}

// entry is one keyed child of a block table plus its source formatting.
type entry struct {
	key    string
	rawKey string // key text as written in the source
	eq     string // text between key and value, including the `=`
	suffix string // trailing whitespace and comment after the value
	nl     string // line terminator; empty only at end of input
	decor  string // comments and blank lines preceding the entry
	item   *Item
}

// Table is a block table: the root region or a `[header]` section.
type Table struct {
	doc         *Document
	path        []string
	entries     []*entry
	implicit    bool   // materialized by a dotted child header, prints no header
	arrayElem   bool   // one `[[header]]` element
	headerDecor string // comments and blank lines preceding the header
	rawHeader   string // original header line, empty when synthesized
	position    int    // file order of the block; -1 for the root region
}

func (t *Table) entry(key string) *entry {
	for _, e := range t.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

func (t *Table) hasValues() bool {
	for _, e := range t.entries {
		if e.item.kind == KindValue || e.item.kind == KindInlineTable {
			return true
		}
	}
	return false
}

// Get implements TableLike.
func (t *Table) Get(key string) *Item {
	if e := t.entry(key); e != nil {
		return e.item
	}
	return nil
}

// Set implements TableLike.
func (t *Table) Set(key string, item *Item) {
	if item.IsNone() {
		t.Remove(key)
		return
	}
	if item.kind == KindTable {
		// A table moved or copied under a new key needs its path and header
		// re-derived; a clone without a position is appended at the end.
		item.table.rebind(t.doc, append(appendPath(t.path), key))
		if item.table.position < 0 && t.doc != nil {
			item.table.position = t.doc.nextPosition()
		}
	}
	if e := t.entry(key); e != nil {
		e.item = item
		return
	}
	t.appendEntry(&entry{key: key, rawKey: encodeKey(key), eq: " = ", nl: "\n", item: item})
}

func (t *Table) appendEntry(e *entry) {
	// An existing final line without a terminator is no longer final.
	for _, prev := range t.entries {
		if prev.nl == "" && (prev.item.kind == KindValue || prev.item.kind == KindInlineTable) {
			prev.nl = "\n"
		}
	}
	t.entries = append(t.entries, e)
}

// Remove implements TableLike.
func (t *Table) Remove(key string) bool {
	for i, e := range t.entries {
		if e.key == key {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries implements TableLike.
func (t *Table) Entries() []KV {
	out := make([]KV, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, KV{Key: e.key, Item: e.item})
	}
	return out
}

// Len implements TableLike.
func (t *Table) Len() int { return len(t.entries) }

// IsEmpty reports whether the table has no entries of any kind.
func (t *Table) IsEmpty() bool { return len(t.entries) == 0 }

// InsertTable appends a new empty block table under key and returns it.
// The new table prints a synthesized header even while empty.
func (t *Table) InsertTable(key string) *Table {
	child := &Table{
		doc:  t.doc,
		path: append(appendPath(t.path), key),
	}
	if t.doc != nil {
		child.position = t.doc.nextPosition()
	}
	t.appendEntry(&entry{key: key, rawKey: encodeKey(key), item: &Item{kind: KindTable, table: child}})
	return child
}

// SortValues sorts the table's key/value pairs by key, stably. Sub-tables
// are not affected and keep their slots; each moved entry carries its
// preceding comments with it.
func (t *Table) SortValues() {
	var idx []int
	for i, e := range t.entries {
		if e.item.kind == KindValue || e.item.kind == KindInlineTable {
			idx = append(idx, i)
		}
	}
	vals := make([]*entry, len(idx))
	for i, j := range idx {
		vals[i] = t.entries[j]
	}
	sort.SliceStable(vals, func(a, b int) bool { return vals[a].key < vals[b].key })
	for i, j := range idx {
		t.entries[j] = vals[i]
	}
	for i, e := range t.entries {
		if i < len(t.entries)-1 && e.nl == "" {
			e.nl = "\n"
		}
	}
}

// rebind updates the table's document pointer and path after a move,
// invalidating stored header text so it is re-synthesized on print.
func (t *Table) rebind(doc *Document, path []string) {
	t.doc = doc
	t.path = path
	t.rawHeader = ""
	t.implicit = false
	for _, e := range t.entries {
		switch e.item.kind {
		case KindTable:
			e.item.table.rebind(doc, append(appendPath(path), e.key))
		case KindArrayTable:
			for _, elem := range e.item.tables {
				elem.rebind(doc, append(appendPath(path), e.key))
			}
		}
	}
}

func (t *Table) clone() *Table {
	out := &Table{
		path:        appendPath(t.path),
		implicit:    t.implicit,
		arrayElem:   t.arrayElem,
		headerDecor: t.headerDecor,
		rawHeader:   t.rawHeader,
		position:    t.position,
	}
	out.entries = make([]*entry, len(t.entries))
	for i, e := range t.entries {
		c := *e
		c.item = e.item.Clone()
		out.entries[i] = &c
	}
	return out
}

// appendPath copies a path slice so table paths never alias.
func appendPath(path []string) []string {
	return append(make([]string, 0, len(path)+1), path...)
}

// InlineTable is a single-line `{ key = value, ... }` table.
type InlineTable struct {
	raw     string // original text; cleared by any mutation
	entries []*inlineEntry
}

type inlineEntry struct {
	key  string
	item *Item
}

func (t *InlineTable) get(key string) *inlineEntry {
	for _, e := range t.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Get implements TableLike.
func (t *InlineTable) Get(key string) *Item {
	if e := t.get(key); e != nil {
		return e.item
	}
	return nil
}

// Set implements TableLike. Any mutation drops the original formatting: the
// whole inline table is re-rendered in canonical `{ k = v, ... }` style.
func (t *InlineTable) Set(key string, item *Item) {
	if item.IsNone() {
		t.Remove(key)
		return
	}
	t.raw = ""
	if e := t.get(key); e != nil {
		e.item = item
		return
	}
	t.entries = append(t.entries, &inlineEntry{key: key, item: item})
}

// Remove implements TableLike.
func (t *InlineTable) Remove(key string) bool {
	for i, e := range t.entries {
		if e.key == key {
			t.raw = ""
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Normalize drops the original source text so the table re-renders in
// canonical `{ k = v, ... }` style, picking up mutations made to nested
// items. Untouched nested values keep their own raw text.
func (t *InlineTable) Normalize() { t.raw = "" }

// Entries implements TableLike.
func (t *InlineTable) Entries() []KV {
	out := make([]KV, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, KV{Key: e.key, Item: e.item})
	}
	return out
}

// Len implements TableLike.
func (t *InlineTable) Len() int { return len(t.entries) }

func (t *InlineTable) clone() *InlineTable {
	out := &InlineTable{raw: t.raw}
	out.entries = make([]*inlineEntry, len(t.entries))
	for i, e := range t.entries {
		out.entries[i] = &inlineEntry{key: e.key, item: e.item.Clone()}
	}
	return out
}

func (t *InlineTable) render() string {
	if t.raw != "" {
		return t.raw
	}
	if len(t.entries) == 0 {
		return "{}"
	}
	var b []byte
	b = append(b, "{ "...)
	for i, e := range t.entries {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, encodeKey(e.key)...)
		b = append(b, " = "...)
		b = append(b, renderItem(e.item)...)
	}
	b = append(b, " }"...)
	return string(b)
}
