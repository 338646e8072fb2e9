package linframe

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/dataframe"
	lfio "github.com/paveg/linframe/internal/io"
	"github.com/paveg/linframe/internal/series"
	"github.com/paveg/linframe/internal/validation"
)

// Source is anything a Set, Variable or Expression can be built from. The
// variants are Index, Table, Record, From and the Read* readers.
type Source interface {
	frame(mem memory.Allocator) (*dataframe.DataFrame, error)
}

// Column is one named column of a Table source. Values is a Go slice;
// []any may hold nil for nulls.
type Column struct {
	Name   string
	Values any
}

type indexSource Column

// Index is a source with a single named column.
func Index(name string, values any) Source {
	return indexSource{Name: name, Values: values}
}

func (s indexSource) frame(mem memory.Allocator) (*dataframe.DataFrame, error) {
	return tableSource{Column(s)}.frame(mem)
}

type tableSource []Column

// Table is a source of ordered named columns of equal length.
func Table(cols ...Column) Source {
	return tableSource(cols)
}

func (s tableSource) frame(mem memory.Allocator) (*dataframe.DataFrame, error) {
	cols := make([]series.ISeries, len(s))
	for i, c := range s {
		col, err := series.FromSlice(c.Name, c.Values, mem)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return dataframe.New(mem, cols...)
}

type recordSource struct {
	rec arrow.Record
}

// Record is a source backed by an Arrow record batch. Narrow integer and
// float columns are widened.
func Record(rec arrow.Record) Source {
	return recordSource{rec: rec}
}

func (s recordSource) frame(mem memory.Allocator) (*dataframe.DataFrame, error) {
	fields := s.rec.Schema().Fields()
	cols := make([]series.ISeries, len(fields))
	for i, f := range fields {
		col, err := series.FromArray(f.Name, s.rec.Column(i), mem)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return dataframe.New(mem, cols...)
}

type entitySource struct {
	entity Expressionable
}

// From is a source holding the distinct coordinates of an entity, in order
// of first appearance.
func From(entity Expressionable) Source {
	return entitySource{entity: entity}
}

func (s entitySource) frame(_ memory.Allocator) (*dataframe.DataFrame, error) {
	if set, ok := s.entity.(*Set); ok {
		return set.df, nil
	}
	return s.entity.ToExpression().terms.Coordinates(), nil
}

type selectSource struct {
	src  Source
	cols []string
}

// Select narrows src to the named columns, in the given order.
func Select(src Source, cols ...string) Source {
	return selectSource{src: src, cols: cols}
}

func (s selectSource) frame(mem memory.Allocator) (*dataframe.DataFrame, error) {
	df, err := s.src.frame(mem)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateColumns(df, "Select", s.cols...); err != nil {
		return nil, err
	}
	return df.Select(s.cols...)
}

type frameSource struct {
	df *dataframe.DataFrame
}

func (s frameSource) frame(_ memory.Allocator) (*dataframe.DataFrame, error) {
	return s.df, nil
}

// ReadCSV reads a CSV document with a header row. Column types are
// inferred; empty cells become nulls.
func ReadCSV(r io.Reader) (Source, error) {
	df, err := lfio.NewCSVReader(r, lfio.DefaultCSVOptions(), arrowMem).Read()
	if err != nil {
		return nil, err
	}
	return frameSource{df: df}, nil
}

// ReadJSON reads a JSON array of flat objects.
func ReadJSON(r io.Reader) (Source, error) {
	return readJSON(r, lfio.JSONArray)
}

// ReadJSONLines reads one flat JSON object per line.
func ReadJSONLines(r io.Reader) (Source, error) {
	return readJSON(r, lfio.JSONLines)
}

func readJSON(r io.Reader, format lfio.JSONFormat) (Source, error) {
	opts := lfio.DefaultJSONOptions()
	opts.Format = format
	df, err := lfio.NewJSONReader(r, opts, arrowMem).Read()
	if err != nil {
		return nil, err
	}
	return frameSource{df: df}, nil
}

// ReadParquet reads a Parquet file.
func ReadParquet(r io.Reader) (Source, error) {
	df, err := lfio.NewParquetReader(r, lfio.DefaultParquetOptions(), arrowMem).Read()
	if err != nil {
		return nil, err
	}
	return frameSource{df: df}, nil
}

// coordinates resolves sources into one set of coordinates: their
// cartesian product with the first source varying slowest.
func coordinates(sources []Source) (*dataframe.DataFrame, error) {
	frames := make([]*dataframe.DataFrame, len(sources))
	var names []string
	for i, src := range sources {
		df, err := src.frame(arrowMem)
		if err != nil {
			return nil, err
		}
		frames[i] = df
		names = append(names, df.Columns()...)
	}
	if err := validation.ValidateDims("Set", names...); err != nil {
		return nil, err
	}
	return algebra.CrossProduct(arrowMem, frames...)
}
