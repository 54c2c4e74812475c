package tomledit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Parse reads TOML text into an editable Document. The original layout is
// retained so that an unmodified document serializes byte-for-byte.
func Parse(data []byte) (*Document, error) {
	p := &parser{data: data}
	doc := NewDocument()
	cur := doc.root

	for {
		decor := p.scanDecor()
		if p.eof() {
			doc.trailing = decor
			break
		}
		if p.data[p.pos] == '[' {
			t, err := p.parseHeader(doc, decor)
			if err != nil {
				return nil, err
			}
			cur = t
			continue
		}
		e, err := p.parseEntry(decor)
		if err != nil {
			return nil, err
		}
		if cur.entry(e.key) != nil {
			return nil, p.errf("duplicate key `%s`", e.key)
		}
		cur.entries = append(cur.entries, e)
	}

	return doc, nil
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) errf(format string, args ...any) error {
	line := bytes.Count(p.data[:min(p.pos, len(p.data))], []byte{'\n'}) + 1
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.data[p.pos:], []byte(s))
}

// scanDecor consumes whitespace, blank lines, and full-line comments. The
// indentation of the next content line is included, leaving the position at
// the first content character.
func (p *parser) scanDecor() string {
	start := p.pos
	for !p.eof() {
		switch c := p.data[p.pos]; c {
		case ' ', '\t', '\r', '\n':
			p.pos++
		case '#':
			for !p.eof() && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			return string(p.data[start:p.pos])
		}
	}
	return string(p.data[start:p.pos])
}

func (p *parser) skipInlineSpace() {
	for !p.eof() && (p.data[p.pos] == ' ' || p.data[p.pos] == '\t') {
		p.pos++
	}
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

func (p *parser) parseKey() (string, error) {
	if p.eof() {
		return "", p.errf("expected key")
	}
	switch p.data[p.pos] {
	case '"':
		return p.parseBasicString(false)
	case '\'':
		return p.parseLiteralString(false)
	default:
		start := p.pos
		for !p.eof() && isBareKeyChar(p.data[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return "", p.errf("invalid key character %q", rune(p.data[p.pos]))
		}
		return string(p.data[start:p.pos]), nil
	}
}

// parseHeader parses a `[path]` or `[[path]]` line, creates the table (and
// any implicit parents), and returns it as the new current table.
func (p *parser) parseHeader(doc *Document, decor string) (*Table, error) {
	start := p.pos
	p.pos++ // '['
	isArray := false
	if !p.eof() && p.data[p.pos] == '[' {
		isArray = true
		p.pos++
	}

	var path []string
	for {
		p.skipInlineSpace()
		seg, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		path = append(path, seg)
		p.skipInlineSpace()
		if !p.eof() && p.data[p.pos] == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.eof() || p.data[p.pos] != ']' {
		return nil, p.errf("expected `]` in table header")
	}
	p.pos++
	if isArray {
		if p.eof() || p.data[p.pos] != ']' {
			return nil, p.errf("expected `]]` in array table header")
		}
		p.pos++
	}
	if err := p.scanLineEnd("table header"); err != nil {
		return nil, err
	}
	rawHeader := string(p.data[start:p.pos])

	parent := doc.root
	for _, seg := range path[:len(path)-1] {
		e := parent.entry(seg)
		if e == nil {
			child := &Table{doc: doc, path: append(appendPath(parent.path), seg), implicit: true, position: doc.nextPosition()}
			parent.appendBlock(seg, &Item{kind: KindTable, table: child})
			parent = child
			continue
		}
		switch e.item.kind {
		case KindTable:
			parent = e.item.table
		case KindArrayTable:
			parent = e.item.tables[len(e.item.tables)-1]
		default:
			return nil, p.errf("key `%s` is not a table", seg)
		}
	}

	last := path[len(path)-1]
	e := parent.entry(last)

	if isArray {
		t := &Table{doc: doc, path: path, arrayElem: true, headerDecor: decor, rawHeader: rawHeader, position: doc.nextPosition()}
		switch {
		case e == nil:
			parent.appendBlock(last, &Item{kind: KindArrayTable, tables: []*Table{t}})
		case e.item.kind == KindArrayTable:
			e.item.tables = append(e.item.tables, t)
		default:
			return nil, p.errf("duplicate key `%s`", last)
		}
		return t, nil
	}

	if e == nil {
		t := &Table{doc: doc, path: path, headerDecor: decor, rawHeader: rawHeader, position: doc.nextPosition()}
		parent.appendBlock(last, &Item{kind: KindTable, table: t})
		return t, nil
	}
	if e.item.kind == KindTable && e.item.table.implicit {
		t := e.item.table
		t.implicit = false
		t.headerDecor = decor
		t.rawHeader = rawHeader
		t.position = doc.nextPosition()
		return t, nil
	}
	return nil, p.errf("duplicate table `%s`", strings.Join(path, "."))
}

// appendBlock adds a block-table child without touching sibling terminators.
func (t *Table) appendBlock(key string, item *Item) {
	t.entries = append(t.entries, &entry{key: key, rawKey: encodeKey(key), item: item})
}

func (p *parser) scanLineEnd(what string) error {
	for !p.eof() {
		switch c := p.data[p.pos]; c {
		case ' ', '\t', '\r':
			p.pos++
		case '#':
			for !p.eof() && p.data[p.pos] != '\n' {
				p.pos++
			}
		case '\n':
			p.pos++
			return nil
		default:
			return p.errf("unexpected character %q after %s", rune(c), what)
		}
	}
	return nil
}

// parseEntry parses one `key = value` line including its formatting.
func (p *parser) parseEntry(decor string) (*entry, error) {
	keyStart := p.pos
	key, err := p.parseKey()
	if err != nil {
		return nil, err
	}
	rawKey := string(p.data[keyStart:p.pos])

	eqStart := p.pos
	p.skipInlineSpace()
	if !p.eof() && p.data[p.pos] == '.' {
		return nil, p.errf("dotted keys are not supported")
	}
	if p.eof() || p.data[p.pos] != '=' {
		return nil, p.errf("expected `=` after key `%s`", key)
	}
	p.pos++
	p.skipInlineSpace()
	eq := string(p.data[eqStart:p.pos])

	item, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}

	sufStart := p.pos
	for !p.eof() && (p.data[p.pos] == ' ' || p.data[p.pos] == '\t' || p.data[p.pos] == '\r') {
		p.pos++
	}
	if !p.eof() && p.data[p.pos] == '#' {
		for !p.eof() && p.data[p.pos] != '\n' {
			p.pos++
		}
	}
	suffix := string(p.data[sufStart:p.pos])

	nl := ""
	if !p.eof() {
		if p.data[p.pos] != '\n' {
			return nil, p.errf("unexpected character %q after value", rune(p.data[p.pos]))
		}
		p.pos++
		nl = "\n"
	}

	return &entry{decor: decor, key: key, rawKey: rawKey, eq: eq, suffix: suffix, nl: nl, item: item}, nil
}

// parseValue parses a value. Strings are decoded; other scalars and whole
// arrays are captured as raw text; inline tables are parsed structurally.
func (p *parser) parseValue(inInline bool) (*Item, error) {
	if p.eof() {
		return nil, p.errf("expected value")
	}
	start := p.pos
	switch p.data[p.pos] {
	case '"':
		s, err := p.parseBasicString(true)
		if err != nil {
			return nil, err
		}
		return &Item{kind: KindValue, value: &Value{raw: string(p.data[start:p.pos]), isStr: true, str: s}}, nil
	case '\'':
		s, err := p.parseLiteralString(true)
		if err != nil {
			return nil, err
		}
		return &Item{kind: KindValue, value: &Value{raw: string(p.data[start:p.pos]), isStr: true, str: s}}, nil
	case '[':
		if err := p.skipArray(); err != nil {
			return nil, err
		}
		return &Item{kind: KindValue, value: &Value{raw: string(p.data[start:p.pos])}}, nil
	case '{':
		return p.parseInlineTable()
	default:
		end := p.pos
		for end < len(p.data) {
			c := p.data[end]
			if c == '\n' || c == '#' {
				break
			}
			if inInline && (c == ',' || c == '}') {
				break
			}
			end++
		}
		raw := strings.TrimRight(string(p.data[p.pos:end]), " \t\r")
		if raw == "" {
			return nil, p.errf("expected value")
		}
		p.pos += len(raw)
		return &Item{kind: KindValue, value: &Value{raw: raw}}, nil
	}
}

// skipArray advances over a (possibly multi-line) array, tracking bracket
// depth and skipping strings and comments.
func (p *parser) skipArray() error {
	depth := 0
	for !p.eof() {
		switch p.data[p.pos] {
		case '[':
			depth++
			p.pos++
		case ']':
			depth--
			p.pos++
			if depth == 0 {
				return nil
			}
		case '"':
			if _, err := p.parseBasicString(true); err != nil {
				return err
			}
		case '\'':
			if _, err := p.parseLiteralString(true); err != nil {
				return err
			}
		case '#':
			for !p.eof() && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			p.pos++
		}
	}
	return p.errf("unterminated array")
}

func (p *parser) parseInlineTable() (*Item, error) {
	start := p.pos
	p.pos++ // '{'
	t := &InlineTable{}

	p.skipInlineSpace()
	if !p.eof() && p.data[p.pos] == '}' {
		p.pos++
		t.raw = string(p.data[start:p.pos])
		return &Item{kind: KindInlineTable, inline: t}, nil
	}

	for {
		p.skipInlineSpace()
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.skipInlineSpace()
		if p.eof() || p.data[p.pos] != '=' {
			return nil, p.errf("expected `=` in inline table")
		}
		p.pos++
		p.skipInlineSpace()
		item, err := p.parseValue(true)
		if err != nil {
			return nil, err
		}
		if t.get(key) != nil {
			return nil, p.errf("duplicate key `%s` in inline table", key)
		}
		t.entries = append(t.entries, &inlineEntry{key: key, item: item})

		p.skipInlineSpace()
		if p.eof() {
			return nil, p.errf("unterminated inline table")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			t.raw = string(p.data[start:p.pos])
			return &Item{kind: KindInlineTable, inline: t}, nil
		case '\n':
			return nil, p.errf("newline in inline table")
		default:
			return nil, p.errf("expected `,` or `}` in inline table")
		}
	}
}

// parseBasicString parses a `"..."` or `"""..."""` string starting at the
// opening quote and returns the decoded contents.
func (p *parser) parseBasicString(allowMultiline bool) (string, error) {
	if allowMultiline && p.hasPrefix(`"""`) {
		p.pos += 3
		start := p.pos
		for {
			if p.eof() {
				return "", p.errf("unterminated string")
			}
			if p.data[p.pos] == '\\' {
				p.pos += 2
				continue
			}
			if p.hasPrefix(`"""`) {
				inner := string(p.data[start:p.pos])
				p.pos += 3
				inner = strings.TrimPrefix(inner, "\r\n")
				inner = strings.TrimPrefix(inner, "\n")
				return p.decodeBasic(inner)
			}
			p.pos++
		}
	}
	p.pos++ // opening quote
	start := p.pos
	for !p.eof() {
		switch p.data[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			inner := string(p.data[start:p.pos])
			p.pos++
			return p.decodeBasic(inner)
		case '\n':
			return "", p.errf("unterminated string")
		default:
			p.pos++
		}
	}
	return "", p.errf("unterminated string")
}

// parseLiteralString parses a `'...'` or `'''...'''` string.
func (p *parser) parseLiteralString(allowMultiline bool) (string, error) {
	if allowMultiline && p.hasPrefix("'''") {
		p.pos += 3
		start := p.pos
		for !p.eof() {
			if p.hasPrefix("'''") {
				inner := string(p.data[start:p.pos])
				p.pos += 3
				inner = strings.TrimPrefix(inner, "\r\n")
				return strings.TrimPrefix(inner, "\n"), nil
			}
			p.pos++
		}
		return "", p.errf("unterminated string")
	}
	p.pos++ // opening quote
	start := p.pos
	for !p.eof() {
		switch p.data[p.pos] {
		case '\'':
			inner := string(p.data[start:p.pos])
			p.pos++
			return inner, nil
		case '\n':
			return "", p.errf("unterminated string")
		default:
			p.pos++
		}
	}
	return "", p.errf("unterminated string")
}

func (p *parser) decodeBasic(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", p.errf("dangling escape in string")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+width >= len(s) {
				return "", p.errf("truncated unicode escape in string")
			}
			code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", p.errf("invalid unicode escape in string")
			}
			b.WriteRune(rune(code))
			i += width
		case '\n', '\r':
			// Line-ending backslash: skip following whitespace.
			for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\n' || s[i+1] == '\r') {
				i++
			}
		default:
			return "", p.errf("invalid escape `\\%c` in string", s[i])
		}
	}
	return b.String(), nil
}

// encodeKey renders a key, quoting it when it is not a bare key.
func encodeKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		if !isBareKeyChar(k[i]) {
			return encodeString(k)
		}
	}
	return k
}

// encodeString renders s as a TOML basic string.
func encodeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
