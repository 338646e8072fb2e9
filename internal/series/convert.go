package series

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/linframe/internal/errors"
)

// FromArray wraps an external Arrow array, widening narrower integer and
// float types to int64 and float64. Arrays of an element type are retained
// and shared, others are copied.
func FromArray(name string, arr arrow.Array, mem memory.Allocator) (ISeries, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	switch a := arr.(type) {
	case *array.String:
		a.Retain()
		return &Series[string]{name: name, array: a}, nil
	case *array.Int64:
		a.Retain()
		return &Series[int64]{name: name, array: a}, nil
	case *array.Float64:
		a.Retain()
		return &Series[float64]{name: name, array: a}, nil
	case *array.Boolean:
		a.Retain()
		return &Series[bool]{name: name, array: a}, nil
	case *array.Uint32:
		a.Retain()
		return &Series[uint32]{name: name, array: a}, nil
	case *array.LargeString:
		return widen(name, a.Len(), a.IsNull, a.Value, func(v string) string { return v }, mem), nil
	case *array.Int8:
		return widen(name, a.Len(), a.IsNull, a.Value, toInt64[int8], mem), nil
	case *array.Int16:
		return widen(name, a.Len(), a.IsNull, a.Value, toInt64[int16], mem), nil
	case *array.Int32:
		return widen(name, a.Len(), a.IsNull, a.Value, toInt64[int32], mem), nil
	case *array.Uint8:
		return widen(name, a.Len(), a.IsNull, a.Value, toInt64[uint8], mem), nil
	case *array.Uint16:
		return widen(name, a.Len(), a.IsNull, a.Value, toInt64[uint16], mem), nil
	case *array.Uint64:
		for i := range a.Len() {
			if !a.IsNull(i) {
				if err := checkInt64Range("FromArray", name, a.Value(i)); err != nil {
					return nil, err
				}
			}
		}
		return widen(name, a.Len(), a.IsNull, a.Value, toInt64[uint64], mem), nil
	case *array.Float32:
		return widen(name, a.Len(), a.IsNull, a.Value, func(v float32) float64 { return float64(v) }, mem), nil
	}
	return nil, errors.NewUnsupportedTypeError("FromArray", name, arr.DataType().String())
}

func toInt64[E int8 | int16 | int32 | uint8 | uint16 | uint64](v E) int64 {
	return int64(v)
}

func widen[E any, T Element](
	name string, n int, isNull func(int) bool, value func(int) E, conv func(E) T, mem memory.Allocator,
) *Series[T] {
	values := make([]T, n)
	valid := make([]bool, n)
	hasNull := false
	for i := range n {
		if isNull(i) {
			hasNull = true
			continue
		}
		values[i] = conv(value(i))
		valid[i] = true
	}
	if !hasNull {
		valid = nil
	}
	return NewNullable(name, values, valid, mem)
}

// FromSlice builds a series from any supported Go slice. Slices of any may
// hold nil for nulls; their element type is taken from the first non-nil
// value.
func FromSlice(name string, values any, mem memory.Allocator) (ISeries, error) {
	switch v := values.(type) {
	case ISeries:
		return v.Rename(name), nil
	case []string:
		return New(name, v, mem), nil
	case []int64:
		return New(name, v, mem), nil
	case []float64:
		return New(name, v, mem), nil
	case []bool:
		return New(name, v, mem), nil
	case []uint32:
		return New(name, v, mem), nil
	case []int:
		return New(name, mapSlice(v, func(x int) int64 { return int64(x) }), mem), nil
	case []int32:
		return New(name, mapSlice(v, func(x int32) int64 { return int64(x) }), mem), nil
	case []int16:
		return New(name, mapSlice(v, func(x int16) int64 { return int64(x) }), mem), nil
	case []int8:
		return New(name, mapSlice(v, func(x int8) int64 { return int64(x) }), mem), nil
	case []uint:
		return unsignedSlice(name, v, mem)
	case []uint64:
		return unsignedSlice(name, v, mem)
	case []float32:
		return New(name, mapSlice(v, func(x float32) float64 { return float64(x) }), mem), nil
	case []any:
		return fromAny(name, v, mem)
	}
	return nil, errors.NewUnsupportedTypeError("FromSlice", name, fmt.Sprintf("%T", values))
}

func unsignedSlice[E uint | uint64](name string, values []E, mem memory.Allocator) (ISeries, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		if err := checkInt64Range("FromSlice", name, uint64(v)); err != nil {
			return nil, err
		}
		out[i] = int64(v)
	}
	return New(name, out, mem), nil
}

// checkInt64Range rejects unsigned values that do not fit an int64 column.
func checkInt64Range(op, name string, v uint64) error {
	if v <= math.MaxInt64 {
		return nil
	}
	msg := fmt.Sprintf("value %d exceeds the int64 range", v)
	if name == "" {
		return errors.NewDomainError(op, msg)
	}
	return errors.NewDomainError(op, msg, name)
}

func mapSlice[A, B any](in []A, f func(A) B) []B {
	out := make([]B, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func fromAny(name string, values []any, mem memory.Allocator) (ISeries, error) {
	normalized := make([]any, len(values))
	var kind any
	for i, v := range values {
		if v == nil {
			continue
		}
		n, err := NormalizeLiteral(v)
		if err != nil {
			return nil, err
		}
		normalized[i] = n
		if _, isFloat := n.(float64); kind == nil || isFloat {
			if _, isInt := kind.(int64); kind == nil || isInt {
				kind = n
			}
		}
	}

	switch kind.(type) {
	case string:
		return collect[string](name, normalized, mem)
	case int64:
		return collect[int64](name, normalized, mem)
	case float64:
		return collect[float64](name, normalized, mem)
	case bool:
		return collect[bool](name, normalized, mem)
	}
	return nil, errors.NewStructuralError("FromSlice",
		fmt.Sprintf("cannot infer a type for column '%s' with no non-null values", name))
}

func collect[T Element](name string, values []any, mem memory.Allocator) (ISeries, error) {
	out := make([]T, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		t, ok := v.(T)
		if !ok {
			// Mixed int and float values widen to float.
			f, isFloat := any(&out[i]).(*float64)
			n, isInt := v.(int64)
			if !isFloat || !isInt {
				return nil, errors.NewUnsupportedTypeError("FromSlice", name,
					fmt.Sprintf("mixed %T and %T values", values[firstValid(values)], v))
			}
			*f = float64(n)
			valid[i] = true
			continue
		}
		out[i] = t
		valid[i] = true
	}
	return NewNullable(name, out, valid, mem), nil
}

func firstValid(values []any) int {
	for i, v := range values {
		if v != nil {
			return i
		}
	}
	return 0
}

// NormalizeLiteral maps Go scalars onto the element types: every integer
// kind becomes int64 and float32 becomes float64.
func NormalizeLiteral(v any) (any, error) {
	switch x := v.(type) {
	case string, int64, float64, bool:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		if err := checkInt64Range("NormalizeLiteral", "", uint64(x)); err != nil {
			return nil, err
		}
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if err := checkInt64Range("NormalizeLiteral", "", x); err != nil {
			return nil, err
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	}
	return nil, errors.NewUnsupportedTypeError("NormalizeLiteral", "", fmt.Sprintf("%T", v))
}
