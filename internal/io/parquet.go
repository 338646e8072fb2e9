package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/series"
)

// Read reads Parquet data and returns a DataFrame.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	return r.ReadContext(context.Background())
}

// ReadContext reads Parquet data and returns a DataFrame.
func (r *ParquetReader) ReadContext(ctx context.Context) (*dataframe.DataFrame, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	return r.tableToDataFrame(table)
}

func (r *ParquetReader) tableToDataFrame(table arrow.Table) (*dataframe.DataFrame, error) {
	cols := make([]series.ISeries, 0, table.NumCols())
	for i := range int(table.NumCols()) {
		column := table.Column(i)
		s, err := r.columnToSeries(column.Name(), column.Data())
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", column.Name(), err)
		}
		cols = append(cols, s)
	}
	return dataframe.New(r.mem, cols...)
}

// columnToSeries converts every chunk and concatenates them.
func (r *ParquetReader) columnToSeries(name string, chunked *arrow.Chunked) (series.ISeries, error) {
	chunks := chunked.Chunks()
	if len(chunks) == 0 {
		empty := array.MakeArrayOfNull(r.mem, chunked.DataType(), 0)
		defer empty.Release()
		return series.FromArray(name, empty, r.mem)
	}

	parts := make([]series.ISeries, len(chunks))
	for i, chunk := range chunks {
		s, err := series.FromArray(name, chunk, r.mem)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return series.Concat(name, parts, r.mem)
}

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table := dataFrameToTable(df)
	defer table.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(w.compression()),
		parquet.WithBatchSize(int64(max(w.options.BatchSize, 1))),
	)
	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	if err := writer.WriteTable(table, int64(max(df.Len(), 1))); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

func (w *ParquetWriter) compression() compress.Compression {
	switch w.options.Compression {
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// dataFrameToTable wraps the series arrays in a table without copying.
func dataFrameToTable(df *dataframe.DataFrame) arrow.Table {
	fields := make([]arrow.Field, 0, df.Width())
	columns := make([]arrow.Column, 0, df.Width())
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		arr := col.Array()

		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		fields = append(fields, field)

		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		columns = append(columns, *arrow.NewColumn(field, chunked))
		chunked.Release()
	}
	return array.NewTable(arrow.NewSchema(fields, nil), columns, int64(df.Len()))
}
