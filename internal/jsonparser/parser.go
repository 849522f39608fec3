// Package jsonparser turns JSON sales extracts into raw Datasets.
//
// Two layouts are accepted:
//
//   - JSON Lines, one object per line:
//     {"order_id":1,"region":"North"}
//     {"order_id":2,"region":null}
//   - a single JSON document: an array of objects, a column-oriented object
//     ({"order_id":{"0":1,"1":2}, ...}) or one object.
//
// Parse tries JSON Lines first and falls back to the document form once.
package jsonparser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// maxLineSize bounds a single JSON Lines record.
const maxLineSize = 4 << 20

// object is a decoded JSON object that remembers key order.
type object struct {
	keys   []string
	values map[string]any
}

// Parse reads the JSON file at path.
func Parse(path string) (*types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses data as JSON Lines, retrying once as a single JSON
// document. The error reports both attempts when neither succeeds.
func ParseBytes(data []byte, source string) (*types.Dataset, error) {
	ds, linesErr := ParseLines(bytes.NewReader(data), source)
	if linesErr == nil {
		return ds, nil
	}

	ds, docErr := ParseDocument(bytes.NewReader(data), source)
	if docErr == nil {
		return ds, nil
	}

	return nil, fmt.Errorf("failed to parse JSON (as lines: %v; as document: %w)", linesErr, docErr)
}

// ParseLines parses r as JSON Lines. Blank lines are ignored. Every other
// line must hold exactly one JSON object, and at least one must be present.
func ParseLines(r io.Reader, source string) (*types.Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	b := newBuilder(source)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		dec := newDecoder(strings.NewReader(line))
		obj, err := readObject(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := expectEOF(dec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		b.add(obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	if len(b.ds.Rows) == 0 {
		return nil, errors.New("no JSON records found")
	}

	return b.ds, nil
}

// ParseDocument parses r as one JSON document.
func ParseDocument(r io.Reader, source string) (*types.Dataset, error) {
	dec := newDecoder(r)
	b := newBuilder(source)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode root: %w", err)
	}

	switch tok {
	case json.Delim('['):
		for i := 0; dec.More(); i++ {
			obj, err := readObject(dec)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			b.add(obj)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode root: %w", err)
		}

	case json.Delim('{'):
		obj, err := readObjectBody(dec)
		if err != nil {
			return nil, err
		}
		if isColumnOriented(obj) {
			addColumns(b, obj)
		} else {
			b.add(obj)
		}

	default:
		return nil, fmt.Errorf("top-level value must be an array or object, got %v", tok)
	}

	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return b.ds, nil
}

// =============================================================================
// DECODING HELPERS
// =============================================================================

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// readObject reads one object, keeping key order.
func readObject(dec *json.Decoder) (*object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	return readObjectBody(dec)
}

// readObjectBody reads the members of an object whose '{' was consumed.
func readObjectBody(dec *json.Decoder) (*object, error) {
	obj := &object{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		if _, dup := obj.values[key]; !dup {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object end: %w", err)
	}
	return obj, nil
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// isColumnOriented reports whether every member of obj is itself an object,
// which is how a column-oriented table export looks.
func isColumnOriented(obj *object) bool {
	if len(obj.keys) == 0 {
		return false
	}
	for _, k := range obj.keys {
		if _, ok := obj.values[k].(map[string]any); !ok {
			return false
		}
	}
	return true
}

// addColumns transposes a column-oriented object into rows. Row labels are
// ordered numerically when they are all integers, else lexically.
func addColumns(b *builder, obj *object) {
	labelSet := make(map[string]struct{})
	for _, col := range obj.keys {
		for label := range obj.values[col].(map[string]any) {
			labelSet[label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sortLabels(labels)

	for _, col := range obj.keys {
		b.addColumn(col)
	}
	for _, label := range labels {
		row := make(types.Row, len(obj.keys))
		for _, col := range obj.keys {
			row[col] = cellText(obj.values[col].(map[string]any)[label])
		}
		b.ds.Rows = append(b.ds.Rows, row)
	}
}

func sortLabels(labels []string) {
	numeric := true
	for _, l := range labels {
		if _, err := strconv.Atoi(l); err != nil {
			numeric = false
			break
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if numeric {
			a, _ := strconv.Atoi(labels[i])
			b, _ := strconv.Atoi(labels[j])
			return a < b
		}
		return labels[i] < labels[j]
	})
}

// cellText renders a decoded JSON value as cell text. null becomes "".
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		out, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(out)
	}
}

// =============================================================================
// DATASET BUILDER
// =============================================================================

type builder struct {
	ds   *types.Dataset
	seen map[string]struct{}
}

func newBuilder(source string) *builder {
	return &builder{
		ds:   &types.Dataset{Source: source},
		seen: make(map[string]struct{}),
	}
}

func (b *builder) addColumn(col string) {
	if _, ok := b.seen[col]; !ok {
		b.seen[col] = struct{}{}
		b.ds.Columns = append(b.ds.Columns, col)
	}
}

func (b *builder) add(obj *object) {
	row := make(types.Row, len(obj.keys))
	for _, k := range obj.keys {
		b.addColumn(k)
		row[k] = cellText(obj.values[k])
	}
	b.ds.Rows = append(b.ds.Rows, row)
}
