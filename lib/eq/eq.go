/*package eq is a simple package for telling whether two arrays are equal to
one another. Floating point comparisons treat two NaNs as equal, since NaN is
the missing-value marker throughout sdtrace.*/
package eq

import (
	"math"

	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

// Generic returns true if two arrays are the same type and have the same values
// and false otherwise. Only []byte, []int, []int32, []int64, []string,
// []uint32, []uint64, []float32, and []float64 are supported.
func Generic(x, y interface{}) bool {
	switch xx := x.(type) {
	case []byte:
		yy, ok := y.([]byte)
		return ok && Slices(xx, yy)
	case []int:
		yy, ok := y.([]int)
		return ok && Slices(xx, yy)
	case []int32:
		yy, ok := y.([]int32)
		return ok && Slices(xx, yy)
	case []int64:
		yy, ok := y.([]int64)
		return ok && Slices(xx, yy)
	case []string:
		yy, ok := y.([]string)
		return ok && Slices(xx, yy)
	case []uint32:
		yy, ok := y.([]uint32)
		return ok && Slices(xx, yy)
	case []uint64:
		yy, ok := y.([]uint64)
		return ok && Slices(xx, yy)
	case []float32:
		yy, ok := y.([]float32)
		return ok && Floats(xx, yy)
	case []float64:
		yy, ok := y.([]float64)
		return ok && Floats(xx, yy)
	}
	return false
}

// Slices returns true if two arrays are the same and false otherwise.
func Slices[T comparable](x, y []T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Floats returns true if two floating point arrays are the same and false
// otherwise. NaNs are equal to one another.
func Floats[F float32 | float64](x, y []F) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] && !(isNaN(x[i]) && isNaN(y[i])) {
			return false
		}
	}
	return true
}

// FloatsEps returns true if the two arrays are within eps of one another and
// false otherwise.
func FloatsEps[F float32 | float64](x, y []F, eps F) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if isNaN(x[i]) && isNaN(y[i]) {
			continue
		}
		if x[i]+eps < y[i] || x[i]-eps > y[i] || isNaN(x[i]) || isNaN(y[i]) {
			return false
		}
	}
	return true
}

// Nested returns true if two [][]T arrays are the same and false otherwise.
func Nested[T comparable](x, y [][]T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !Slices(x[i], y[i]) {
			return false
		}
	}
	return true
}

// Arrays returns true if two ragged arrays have the same structure and the
// same values.
func Arrays[T comparable](x, y *ragged.Array[T]) bool {
	if ragged.SameShape(x, y) != nil {
		return false
	}
	return Slices(x.Values, y.Values)
}

// FloatArrays is Arrays for floating point values, with NaNs treated as
// equal.
func FloatArrays[F float32 | float64](x, y *ragged.Array[F]) bool {
	if ragged.SameShape(x, y) != nil {
		return false
	}
	return Floats(x.Values, y.Values)
}

func isNaN[F float32 | float64](x F) bool {
	return math.IsNaN(float64(x))
}
