// Package series provides the Arrow-backed typed columns that term tables
// and sets are built from.
//
// Only five physical types are stored: string, int64, float64, bool and
// uint32 (the variable-id column). Sources with other widths are widened on
// the way in. Arrays are allocated from a Go allocator and shared between
// frames, so nothing here is released manually.
package series

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/exp/constraints"

	"github.com/paveg/linframe/internal/errors"
)

// Element lists the Go types a Series can hold.
type Element interface {
	string | int64 | float64 | bool | uint32
}

// ISeries is the type-erased view of a Series used by frames.
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	NullN() int
	// Any returns the value at index, or nil when it is null.
	Any(index int) any
	Array() arrow.Array
	Rename(name string) ISeries
	// Take gathers rows by position; a negative position yields null.
	Take(indices []int, mem memory.Allocator) ISeries
	// Compare orders two rows of the series; nulls sort first.
	Compare(i, j int) int
	// AppendKey appends a type-tagged encoding of row i, used for hashing.
	AppendKey(buf []byte, i int) []byte
	// Cast converts a literal to the series element type.
	Cast(v any) (any, error)
	String() string

	concat(name string, parts []ISeries, mem memory.Allocator) (ISeries, error)
	coalesce(other ISeries, mem memory.Allocator) (ISeries, error)
}

// Series represents a typed data column with Apache Arrow backend
type Series[T Element] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values
func New[T Element](name string, values []T, mem memory.Allocator) *Series[T] {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a Series where valid[i] == false marks a null.
// A nil valid slice means every value is present.
func NewNullable[T Element](name string, values []T, valid []bool, mem memory.Allocator) *Series[T] {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Series[T]{name: name, array: build(values, valid, mem)}
}

// Repeat creates a Series holding v n times.
func Repeat[T Element](name string, v T, n int, mem memory.Allocator) *Series[T] {
	values := make([]T, n)
	for i := range values {
		values[i] = v
	}
	return New(name, values, mem)
}

func build[T Element](values []T, valid []bool, mem memory.Allocator) arrow.Array {
	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray()
	case []uint32:
		builder := array.NewUint32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray()
	}
	panic(fmt.Sprintf("unsupported type: %T", values))
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// NullN returns the number of nulls
func (s *Series[T]) NullN() int {
	return s.array.NullN()
}

// Array returns the underlying Arrow array
func (s *Series[T]) Array() arrow.Array {
	return s.array
}

// Rename returns the same data under a new name.
func (s *Series[T]) Rename(name string) ISeries {
	return &Series[T]{name: name, array: s.array}
}

// Values returns the data as a Go slice; nulls become zero values.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// Value returns the value at the given index
func (s *Series[T]) Value(index int) T {
	var zero T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return zero
	}

	switch arr := s.array.(type) {
	case *array.String:
		return any(arr.Value(index)).(T)
	case *array.Int64:
		return any(arr.Value(index)).(T)
	case *array.Float64:
		return any(arr.Value(index)).(T)
	case *array.Boolean:
		return any(arr.Value(index)).(T)
	case *array.Uint32:
		return any(arr.Value(index)).(T)
	}
	return zero
}

// Any returns the value at index, or nil when it is null.
func (s *Series[T]) Any(index int) any {
	if s.array.IsNull(index) {
		return nil
	}
	return s.Value(index)
}

// Take gathers rows by position; a negative position yields null.
func (s *Series[T]) Take(indices []int, mem memory.Allocator) ISeries {
	values := make([]T, len(indices))
	valid := make([]bool, len(indices))
	hasNull := false
	for k, i := range indices {
		if i < 0 || s.array.IsNull(i) {
			hasNull = true
			continue
		}
		values[k] = s.Value(i)
		valid[k] = true
	}
	if !hasNull {
		valid = nil
	}
	return NewNullable(s.name, values, valid, mem)
}

// Compare orders rows i and j; nulls sort first.
func (s *Series[T]) Compare(i, j int) int {
	ni, nj := s.array.IsNull(i), s.array.IsNull(j)
	switch {
	case ni && nj:
		return 0
	case ni:
		return -1
	case nj:
		return 1
	}
	return compareValues(s.Value(i), s.Value(j))
}

// AppendKey appends a type-tagged encoding of row i to buf.
func (s *Series[T]) AppendKey(buf []byte, i int) []byte {
	if s.array.IsNull(i) {
		return append(buf, 0)
	}
	switch v := any(s.Value(i)).(type) {
	case string:
		buf = append(buf, 's')
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		return append(buf, v...)
	case int64:
		buf = append(buf, 'i')
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	case float64:
		if v == 0 {
			v = 0 // fold -0 into 0
		}
		buf = append(buf, 'f')
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	case bool:
		if v {
			return append(buf, 'b', 1)
		}
		return append(buf, 'b', 0)
	case uint32:
		buf = append(buf, 'u')
		return binary.LittleEndian.AppendUint32(buf, v)
	}
	return buf
}

// Cast converts a literal to T. Integers convert to floats, integral floats
// convert to integers; anything else must already have the element type.
func (s *Series[T]) Cast(v any) (any, error) {
	n, err := NormalizeLiteral(v)
	if err != nil {
		return nil, err
	}
	var zero T
	switch any(zero).(type) {
	case float64:
		if i, ok := n.(int64); ok {
			return float64(i), nil
		}
	case int64:
		if f, ok := n.(float64); ok && f == math.Trunc(f) {
			return int64(f), nil
		}
	case uint32:
		if i, ok := n.(int64); ok && i >= 0 && i <= math.MaxUint32 {
			return uint32(i), nil
		}
	}
	if t, ok := n.(T); ok {
		return t, nil
	}
	return nil, errors.NewUnsupportedTypeError("Cast", s.name,
		fmt.Sprintf("%T literal for %s column", v, s.array.DataType()))
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.array.DataType(), s.name, s.Len())
}

func (s *Series[T]) concat(name string, parts []ISeries, mem memory.Allocator) (ISeries, error) {
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	values := make([]T, 0, total)
	valid := make([]bool, 0, total)
	hasNull := false
	for _, p := range parts {
		typed, ok := p.(*Series[T])
		if !ok {
			return nil, errors.NewUnsupportedTypeError("Concat", name,
				fmt.Sprintf("%s mixed with %s", s.DataType(), p.DataType()))
		}
		for i := range typed.Len() {
			values = append(values, typed.Value(i))
			present := !typed.IsNull(i)
			hasNull = hasNull || !present
			valid = append(valid, present)
		}
	}
	if !hasNull {
		valid = nil
	}
	return NewNullable(name, values, valid, mem), nil
}

func (s *Series[T]) coalesce(other ISeries, mem memory.Allocator) (ISeries, error) {
	typed, ok := other.(*Series[T])
	if !ok || typed.Len() != s.Len() {
		return nil, errors.NewUnsupportedTypeError("Coalesce", s.name,
			fmt.Sprintf("%s with %s", s.DataType(), other.DataType()))
	}
	values := make([]T, s.Len())
	valid := make([]bool, s.Len())
	for i := range values {
		switch {
		case !s.IsNull(i):
			values[i], valid[i] = s.Value(i), true
		case !typed.IsNull(i):
			values[i], valid[i] = typed.Value(i), true
		}
	}
	return NewNullable(s.name, values, valid, mem), nil
}

// Concat stacks parts, which must share one element type, under name.
func Concat(name string, parts []ISeries, mem memory.Allocator) (ISeries, error) {
	if len(parts) == 0 {
		return nil, errors.NewStructuralError("Concat", "no series to concatenate")
	}
	return parts[0].concat(name, parts, mem)
}

// Coalesce returns a where it is non-null and b elsewhere.
func Coalesce(a, b ISeries, mem memory.Allocator) (ISeries, error) {
	return a.coalesce(b, mem)
}

func compareValues[T Element](a, b T) int {
	switch x := any(a).(type) {
	case bool:
		y := any(b).(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case string:
		return compareOrdered(x, any(b).(string))
	case int64:
		return compareOrdered(x, any(b).(int64))
	case float64:
		return compareOrdered(x, any(b).(float64))
	case uint32:
		return compareOrdered(x, any(b).(uint32))
	}
	return 0
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
