package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/series"
)

// record is one JSON object with its keys in document order.
type record struct {
	keys   []string
	values map[string]any
}

// Read reads JSON data and returns a DataFrame.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	var (
		records []record
		err     error
	)
	switch r.options.Format {
	case JSONArray:
		records, err = r.readJSONArray()
	case JSONLines:
		records, err = r.readJSONLines()
	default:
		return nil, fmt.Errorf("unsupported JSON format: %d", r.options.Format)
	}
	if err != nil {
		return nil, err
	}
	return r.recordsToDataFrame(records)
}

// readJSONArray reads JSON array format.
func (r *JSONReader) readJSONArray() ([]record, error) {
	dec := json.NewDecoder(r.reader)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("reading JSON array: %w", err)
	}
	var records []record
	for dec.More() {
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("reading JSON record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
		if r.options.MaxRecords > 0 && len(records) >= r.options.MaxRecords {
			return records, nil
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, fmt.Errorf("reading JSON array: %w", err)
	}
	return records, nil
}

// readJSONLines reads JSON Lines format.
func (r *JSONReader) readJSONLines() ([]record, error) {
	scanner := bufio.NewScanner(r.reader)
	var records []record

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("reading JSON line %d: %w", lineNum, err)
		}
		records = append(records, rec)
		if r.options.MaxRecords > 0 && len(records) >= r.options.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return records, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// decodeObject reads one flat object, keeping key order.
func decodeObject(dec *json.Decoder) (record, error) {
	rec := record{values: map[string]any{}}
	if err := expectDelim(dec, '{'); err != nil {
		return rec, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, _ := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return rec, err
		}
		value, err := scalar(raw)
		if err != nil {
			return rec, fmt.Errorf("field %q: %w", key, err)
		}
		if _, seen := rec.values[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = value
	}
	if err := expectDelim(dec, '}'); err != nil {
		return rec, err
	}
	return rec, nil
}

// scalar converts a decoded value to a column element: numbers become
// int64 when integral, float64 otherwise.
func scalar(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool:
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		return x.Float64()
	}
	return nil, fmt.Errorf("nested values are not supported")
}

// recordsToDataFrame converts JSON records to a DataFrame.
func (r *JSONReader) recordsToDataFrame(records []record) (*dataframe.DataFrame, error) {
	var columns []string
	for _, rec := range records {
		for _, key := range rec.keys {
			if !slices.Contains(columns, key) {
				columns = append(columns, key)
			}
		}
	}

	cols := make([]series.ISeries, len(columns))
	for i, name := range columns {
		data := make([]any, len(records))
		for j, rec := range records {
			data[j] = rec.values[name]
		}
		if !slices.ContainsFunc(data, func(v any) bool { return v != nil }) {
			cols[i] = series.NewNullable(name, make([]string, len(data)), make([]bool, len(data)), r.mem)
			continue
		}
		s, err := series.FromSlice(name, data, r.mem)
		if err != nil {
			return nil, fmt.Errorf("creating series for column %s: %w", name, err)
		}
		cols[i] = s
	}
	return dataframe.New(r.mem, cols...)
}
