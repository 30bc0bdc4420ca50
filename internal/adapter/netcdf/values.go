package netcdf

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

func widen[T number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// float64s converts a 1-D variable or attribute value (scalar or slice) to float64.
func float64s(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []float32:
		return widen(x), nil
	case []int8:
		return widen(x), nil
	case []uint8:
		return widen(x), nil
	case []int16:
		return widen(x), nil
	case []uint16:
		return widen(x), nil
	case []int32:
		return widen(x), nil
	case []uint32:
		return widen(x), nil
	case []int64:
		return widen(x), nil
	case []uint64:
		return widen(x), nil
	case float64:
		return []float64{x}, nil
	case float32:
		return []float64{float64(x)}, nil
	case int8:
		return []float64{float64(x)}, nil
	case uint8:
		return []float64{float64(x)}, nil
	case int16:
		return []float64{float64(x)}, nil
	case uint16:
		return []float64{float64(x)}, nil
	case int32:
		return []float64{float64(x)}, nil
	case uint32:
		return []float64{float64(x)}, nil
	case int64:
		return []float64{float64(x)}, nil
	case uint64:
		return []float64{float64(x)}, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// flatten2D converts a 2-D variable value to row-major float64.
func flatten2D(v any) (rows, cols int, out []float64, err error) {
	switch x := v.(type) {
	case [][]float64:
		return flatten(x)
	case [][]float32:
		return flatten(x)
	case [][]int8:
		return flatten(x)
	case [][]uint8:
		return flatten(x)
	case [][]int16:
		return flatten(x)
	case [][]int32:
		return flatten(x)
	default:
		return 0, 0, nil, fmt.Errorf("unsupported 2-D type %T", v)
	}
}

func flatten[T number](in [][]T) (rows, cols int, out []float64, err error) {
	rows = len(in)
	if rows > 0 {
		cols = len(in[0])
	}
	out = make([]float64, 0, rows*cols)
	for i, row := range in {
		if len(row) != cols {
			return 0, 0, nil, fmt.Errorf("ragged row %d: %d values, want %d", i, len(row), cols)
		}
		out = append(out, widen(row)...)
	}
	return rows, cols, out, nil
}

// first2D returns the single (latitude, longitude) slab of a one-step 3-D slice.
func first2D(v any) (any, error) {
	switch x := v.(type) {
	case [][][]float64:
		return only(x)
	case [][][]float32:
		return only(x)
	case [][][]int8:
		return only(x)
	case [][][]uint8:
		return only(x)
	case [][][]int16:
		return only(x)
	case [][][]int32:
		return only(x)
	default:
		return nil, fmt.Errorf("unsupported 3-D type %T", v)
	}
}

func only[T any](x [][]T) (any, error) {
	if len(x) != 1 {
		return nil, fmt.Errorf("want one time step, got %d", len(x))
	}
	return x[0], nil
}

// packing describes how stored values map to physical values.
type packing struct {
	scale  float64
	offset float64
	fill   []float64
}

func packingOf(attrs api.AttributeMap) packing {
	p := packing{scale: 1}
	if attrs == nil {
		return p
	}
	if v, ok := attrs.Get("scale_factor"); ok {
		if f, err := float64s(v); err == nil && len(f) > 0 {
			p.scale = f[0]
		}
	}
	if v, ok := attrs.Get("add_offset"); ok {
		if f, err := float64s(v); err == nil && len(f) > 0 {
			p.offset = f[0]
		}
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrs.Get(key); ok {
			if f, err := float64s(v); err == nil {
				p.fill = append(p.fill, f...)
			}
		}
	}
	return p
}

// unpack maps a stored value to its physical value, NaN when it is a fill value.
func (p packing) unpack(raw float64) float64 {
	if math.IsNaN(raw) {
		return raw
	}
	for _, f := range p.fill {
		if raw == f {
			return math.NaN()
		}
	}
	return raw*p.scale + p.offset
}

func attrString(attrs api.AttributeMap, key string) string {
	if attrs == nil {
		return ""
	}
	v, ok := attrs.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	f, err := float64s(v)
	if err != nil || len(f) == 0 {
		return 0, false
	}
	return f[0], true
}
