package plait

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EncodeError represents a serialization error.
type EncodeError struct {
	Message string
}

func (e *EncodeError) Error() string {
	return e.Message
}

// EmitOptions configures the serializer.
type EmitOptions struct {
	// Indent is the number of spaces per nesting level (default: 2).
	Indent int

	// SortKeys emits record keys in lexicographic order instead of
	// insertion order.
	SortKeys bool

	// Compact renders small flat records as one inline key:value line.
	Compact bool
}

// DefaultEmitOptions returns sensible defaults.
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{Indent: 2}
}

// CompactEmitOptions returns options for minimal output.
func CompactEmitOptions() EmitOptions {
	return EmitOptions{Indent: 2, Compact: true}
}

// Emit converts a Value to PLAIT text.
func Emit(v *Value) (string, error) {
	return EmitWithOptions(v, DefaultEmitOptions())
}

// EmitWithOptions converts a Value with custom options. It fails only
// on non-finite numbers, out-of-range dates, and value shapes the
// bracketless grammar cannot express.
func EmitWithOptions(v *Value, opts EmitOptions) (string, error) {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	e := &emitter{opts: opts}
	if err := e.emitRoot(v); err != nil {
		return "", err
	}
	return strings.Join(e.lines, "\n"), nil
}

type emitter struct {
	opts  EmitOptions
	lines []string
}

func (e *emitter) line(depth int, text string) {
	pad := strings.Repeat(" ", depth*e.opts.Indent)
	e.lines = append(e.lines, pad+text)
}

func (e *emitter) emitRoot(v *Value) error {
	switch v.Kind() {
	case KindMap:
		entries := e.orderedEntries(v)
		if e.opts.Compact && compactable(entries) {
			text, err := e.inlineRecord(entries)
			if err != nil {
				return err
			}
			e.line(0, text)
			return nil
		}
		return e.emitRecord(entries, 0)

	case KindList:
		elems, _ := v.AsList()
		if len(elems) >= 2 && allBareScalars(elems) {
			text, err := e.joinedScalars(elems)
			if err != nil {
				return err
			}
			e.line(0, text)
			return nil
		}
		return e.emitElements(elems, 0)

	default:
		text, err := e.scalar(v)
		if err != nil {
			return err
		}
		e.line(0, text)
		return nil
	}
}

// emitRecord renders one property line per entry.
func (e *emitter) emitRecord(entries []Entry, depth int) error {
	for _, entry := range entries {
		if err := e.emitProperty(entry.Key, entry.Value, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitProperty(key string, v *Value, depth int) error {
	switch v.Kind() {
	case KindMap:
		entries := e.orderedEntries(v)
		if len(entries) == 0 {
			e.line(depth, key)
			return nil
		}
		if e.opts.Compact && compactable(entries) {
			text, err := e.inlineRecord(entries)
			if err != nil {
				return err
			}
			e.line(depth, key+" "+text)
			return nil
		}
		e.line(depth, key)
		return e.emitRecord(entries, depth+1)

	case KindList:
		return e.emitArrayProperty(key, v, depth)

	default:
		text, err := e.scalar(v)
		if err != nil {
			return err
		}
		e.line(depth, key+" "+text)
		return nil
	}
}

// emitArrayProperty picks an array rendering in priority order:
// space-joined scalars, aligned table, inline-record lines, then one
// element per line.
func (e *emitter) emitArrayProperty(key string, v *Value, depth int) error {
	elems, _ := v.AsList()

	// An empty array has no textual form; a bare key decodes as null.
	if len(elems) == 0 {
		e.line(depth, key)
		return nil
	}

	if len(elems) >= 2 && allBareScalars(elems) {
		text, err := e.joinedScalars(elems)
		if err != nil {
			return err
		}
		e.line(depth, key+" "+text)
		return nil
	}

	if headers, ok := tableShape(elems); ok {
		return e.emitTable(key, headers, elems, depth)
	}

	if inlineShape(elems) {
		e.line(depth, key)
		for _, elem := range elems {
			text, err := e.inlineRecord(e.orderedEntries(elem))
			if err != nil {
				return err
			}
			e.line(depth+1, text)
		}
		return nil
	}

	e.line(depth, key)
	return e.emitElements(elems, depth+1)
}

// emitElements renders one element per line: scalars, space-joined
// nested scalar arrays, or inline records. Strings in these rows are
// always quoted; a bare word in row position would read as a key.
func (e *emitter) emitElements(elems []*Value, depth int) error {
	for _, elem := range elems {
		switch elem.Kind() {
		case KindMap:
			text, err := e.inlineRecord(e.orderedEntries(elem))
			if err != nil {
				return err
			}
			e.line(depth, text)

		case KindList:
			sub, _ := elem.AsList()
			parts := make([]string, 0, len(sub))
			for _, s := range sub {
				text, err := e.rowScalar(s)
				if err != nil {
					return err
				}
				parts = append(parts, text)
			}
			e.line(depth, strings.Join(parts, " "))

		default:
			text, err := e.rowScalar(elem)
			if err != nil {
				return err
			}
			e.line(depth, text)
		}
	}
	return nil
}

// emitTable renders an array of identically-keyed flat records as a
// padded header line plus one padded row per record.
func (e *emitter) emitTable(key string, headers []string, elems []*Value, depth int) error {
	rows := make([][]string, len(elems))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for r, elem := range elems {
		row := make([]string, len(headers))
		for i, h := range headers {
			text, err := e.scalar(elem.Get(h))
			if err != nil {
				return err
			}
			row[i] = text
			if len(text) > widths[i] {
				widths[i] = len(text)
			}
		}
		rows[r] = row
	}

	e.line(depth, strings.TrimRight(key+" "+padCells(headers, widths), " "))
	for _, row := range rows {
		e.line(depth+1, strings.TrimRight(padCells(row, widths), " "))
	}
	return nil
}

func padCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c + strings.Repeat(" ", widths[i]-len(c))
	}
	return strings.Join(parts, " ")
}

// inlineRecord renders a flat record as `key:value key:value`.
func (e *emitter) inlineRecord(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", &EncodeError{Message: "cannot render empty record inline"}
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !bareSafe(entry.Key) {
			return "", &EncodeError{Message: fmt.Sprintf("key %q not representable inline", entry.Key)}
		}
		if !isScalar(entry.Value) {
			return "", &EncodeError{Message: fmt.Sprintf("unrepresentable nested value under key %q", entry.Key)}
		}
		text, err := e.scalar(entry.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, entry.Key+":"+text)
	}
	return strings.Join(parts, " "), nil
}

// joinedScalars renders scalars as one space-joined run.
func (e *emitter) joinedScalars(elems []*Value) (string, error) {
	parts := make([]string, 0, len(elems))
	for _, elem := range elems {
		text, err := e.scalar(elem)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}

// scalar renders a single scalar value.
func (e *emitter) scalar(v *Value) (string, error) {
	switch v.Kind() {
	case KindNull:
		return "null", nil
	case KindBool:
		b, _ := v.AsBool()
		if b {
			return "true", nil
		}
		return "false", nil
	case KindNum:
		f, _ := v.AsNum()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", &EncodeError{Message: "cannot encode non-finite number"}
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case KindStr:
		s, _ := v.AsStr()
		if needsQuoting(s) {
			return quoteString(s), nil
		}
		return s, nil
	case KindDate:
		t, _ := v.AsDate()
		if y := t.Year(); y < 0 || y > 9999 {
			return "", &EncodeError{Message: "date out of representable range"}
		}
		return t.Format(time.RFC3339Nano), nil
	case KindBin:
		b, _ := v.AsBin()
		return `"` + base64.StdEncoding.EncodeToString(b) + `"`, nil
	default:
		return "", &EncodeError{Message: fmt.Sprintf("unrepresentable value kind %s", v.Kind())}
	}
}

// rowScalar renders a scalar in standalone row position, where strings
// must be quoted so they cannot be read as structural keys.
func (e *emitter) rowScalar(v *Value) (string, error) {
	if v.Kind() == KindStr {
		s, _ := v.AsStr()
		return quoteString(s), nil
	}
	if !isScalar(v) {
		return "", &EncodeError{Message: fmt.Sprintf("unrepresentable nested %s in array row", v.Kind())}
	}
	return e.scalar(v)
}

func (e *emitter) orderedEntries(v *Value) []Entry {
	entries, _ := v.AsMap()
	if !e.opts.SortKeys {
		return entries
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return sorted
}

// ============================================================
// Shape predicates
// ============================================================

func isScalar(v *Value) bool {
	switch v.Kind() {
	case KindList, KindMap:
		return false
	}
	return true
}

// allBareScalars reports whether every element is a scalar whose
// rendering is a single bare token, the space-joined line form.
func allBareScalars(elems []*Value) bool {
	for _, elem := range elems {
		if !isScalar(elem) {
			return false
		}
		if elem.Kind() == KindStr {
			s, _ := elem.AsStr()
			if needsQuoting(s) {
				return false
			}
		}
		if elem.Kind() == KindBin {
			return false
		}
	}
	return true
}

// tableShape reports whether elems form a table: at least one record,
// identical key sets, bare-safe keys, all-scalar values. Headers come
// back in the first record's insertion order.
func tableShape(elems []*Value) ([]string, bool) {
	if len(elems) == 0 || elems[0].Kind() != KindMap {
		return nil, false
	}
	first, _ := elems[0].AsMap()
	if len(first) == 0 {
		return nil, false
	}
	headers := make([]string, 0, len(first))
	for _, e := range first {
		if !bareSafe(e.Key) {
			return nil, false
		}
		headers = append(headers, e.Key)
	}
	for _, elem := range elems {
		if elem.Kind() != KindMap || elem.Len() != len(headers) {
			return nil, false
		}
		for _, h := range headers {
			cell := elem.Get(h)
			if cell == nil || !isScalar(cell) {
				return nil, false
			}
		}
	}
	return headers, true
}

// inlineShape reports whether every element is a small flat record
// renderable as one key:value line.
func inlineShape(elems []*Value) bool {
	for _, elem := range elems {
		if elem.Kind() != KindMap {
			return false
		}
		entries, _ := elem.AsMap()
		if len(entries) == 0 || len(entries) > 4 {
			return false
		}
		for _, e := range entries {
			if !bareSafe(e.Key) || !isScalar(e.Value) {
				return false
			}
		}
	}
	return true
}

// compactable reports whether a record qualifies for the one-line
// compact form.
func compactable(entries []Entry) bool {
	if len(entries) == 0 || len(entries) > 4 {
		return false
	}
	for _, e := range entries {
		if !bareSafe(e.Key) || !isScalar(e.Value) {
			return false
		}
	}
	return true
}

// ============================================================
// String quoting
// ============================================================

// needsQuoting reports whether a string cannot round-trip as a bare
// word: empty, reserved literal, numeric or date shaped, or containing
// any character outside the bare-word alphabet.
func needsQuoting(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "null" {
		return true
	}
	if numberPattern.MatchString(s) || datePattern.MatchString(s) {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !isWordChar(s[i]) {
			return true
		}
	}
	return false
}

// bareSafe reports whether a key can be written as a bare identifier.
func bareSafe(key string) bool {
	return !needsQuoting(key)
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
