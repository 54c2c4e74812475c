// Package tomledit is a format-preserving TOML document model.
//
// A parsed Document keeps the source text of everything it does not need to
// understand structurally: comments, blank lines, key spelling, whitespace
// around `=`, and the raw text of scalar values. Serializing an unmodified
// Document reproduces the input byte for byte; mutations re-render only the
// entries they touch.
//
// The model is deliberately small. Scalars and arrays are opaque raw text
// (strings are additionally decoded so callers can compare them), inline
// tables and block tables are structural, and dotted keys in key/value
// position are rejected at parse time.
package tomledit

import (
	"fmt"
	"sort"
	"strings"
)

// Document is an ordered, editable TOML tree.
type Document struct {
	root     *Table
	trailing string // comments and blank lines after the last entry
	nextPos  int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.root = &Table{doc: d, position: -1}
	return d
}

// Root returns the top-level table.
func (d *Document) Root() *Table { return d.root }

func (d *Document) nextPosition() int {
	p := d.nextPos
	d.nextPos++
	return p
}

// String serializes the document. Block tables are emitted in their original
// file order; tables created by mutation are appended at the end.
func (d *Document) String() string {
	var b strings.Builder
	writeTableEntries(&b, d.root)

	var blocks []*Table
	collectBlocks(d.root, &blocks)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].position < blocks[j].position })

	for _, t := range blocks {
		if t.implicit && !t.hasValues() {
			continue
		}
		b.WriteString(t.headerDecor)
		if t.rawHeader != "" {
			b.WriteString(t.rawHeader)
		} else if t.arrayElem {
			b.WriteString("[[" + renderPath(t.path) + "]]\n")
		} else {
			b.WriteString("[" + renderPath(t.path) + "]\n")
		}
		writeTableEntries(&b, t)
	}

	b.WriteString(d.trailing)
	return b.String()
}

func collectBlocks(t *Table, out *[]*Table) {
	for _, e := range t.entries {
		switch e.item.kind {
		case KindTable:
			*out = append(*out, e.item.table)
			collectBlocks(e.item.table, out)
		case KindArrayTable:
			for _, elem := range e.item.tables {
				*out = append(*out, elem)
				collectBlocks(elem, out)
			}
		}
	}
}

func writeTableEntries(b *strings.Builder, t *Table) {
	for _, e := range t.entries {
		switch e.item.kind {
		case KindValue, KindInlineTable:
			b.WriteString(e.decor)
			b.WriteString(e.rawKey)
			b.WriteString(e.eq)
			b.WriteString(renderItem(e.item))
			b.WriteString(e.suffix)
			b.WriteString(e.nl)
		}
	}
}

func renderItem(it *Item) string {
	switch it.kind {
	case KindValue:
		return it.value.raw
	case KindInlineTable:
		return it.inline.render()
	case KindTable:
		// A block table forced into value position (e.g. relocated into an
		// inline table) renders in inline style.
		var b strings.Builder
		b.WriteString("{ ")
		first := true
		for _, e := range it.table.entries {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(encodeKey(e.key))
			b.WriteString(" = ")
			b.WriteString(renderItem(e.item))
		}
		if first {
			return "{}"
		}
		b.WriteString(" }")
		return b.String()
	}
	return ""
}

func renderPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = encodeKey(p)
	}
	return strings.Join(parts, ".")
}

// ParseError reports invalid TOML syntax.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("TOML parse error at line %d: %s", e.Line, e.Msg)
}
