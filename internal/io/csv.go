package io

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/series"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

type columnKind int

const (
	kindString columnKind = iota
	kindBool
	kindInt
	kindFloat
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return dataframe.New(r.mem)
	}

	var headers []string
	dataRows := records
	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
	}

	cols := make([]series.ISeries, len(headers))
	for i, header := range headers {
		cells := make([]string, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		cols[i] = r.createSeriesFromStrings(strings.TrimSpace(header), cells)
	}
	return dataframe.New(r.mem, cols...)
}

// createSeriesFromStrings creates a series from string data, inferring the
// appropriate type. Empty cells are null.
func (r *CSVReader) createSeriesFromStrings(name string, data []string) series.ISeries {
	valid := make([]bool, len(data))
	for i, v := range data {
		valid[i] = v != ""
	}

	switch inferKind(data) {
	case kindBool:
		values := make([]bool, len(data))
		for i, v := range data {
			values[i] = strings.EqualFold(v, trueStr)
		}
		return series.NewNullable(name, values, valid, r.mem)
	case kindInt:
		values := make([]int64, len(data))
		for i, v := range data {
			if valid[i] {
				values[i], _ = strconv.ParseInt(v, 10, 64)
			}
		}
		return series.NewNullable(name, values, valid, r.mem)
	case kindFloat:
		values := make([]float64, len(data))
		for i, v := range data {
			if valid[i] {
				values[i], _ = strconv.ParseFloat(v, 64)
			}
		}
		return series.NewNullable(name, values, valid, r.mem)
	default:
		return series.NewNullable(name, data, valid, r.mem)
	}
}

// inferKind picks the most specific type all non-empty values parse as.
func inferKind(data []string) columnKind {
	canBeInt, canBeFloat, canBeBool := true, true, true
	hasValue := false

	for _, value := range data {
		if value == "" {
			continue
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(value)
			canBeBool = lower == trueStr || lower == falseStr
		}
		if canBeInt {
			_, err := strconv.ParseInt(value, 10, 64)
			canBeInt = err == nil
		}
		if canBeFloat {
			_, err := strconv.ParseFloat(value, 64)
			canBeFloat = err == nil
		}
	}

	switch {
	case !hasValue:
		return kindString
	case canBeBool:
		return kindBool
	case canBeInt:
		return kindInt
	case canBeFloat:
		return kindFloat
	}
	return kindString
}
