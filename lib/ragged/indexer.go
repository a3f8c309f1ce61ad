package ragged

import (
	"fmt"
	"math"
)

// AsIndexer converts a column whose element type is only known at runtime
// into int64 indices. Integer columns of any width are accepted. Floating
// point columns fail with ErrNonIntegerIndexer, even when every value is
// integral, and unsigned values too large for an int64 fail with
// ErrInvalidIndex.
func AsIndexer(column any) ([]int64, error) {
	switch x := column.(type) {
	case []int64:
		return append([]int64{}, x...), nil
	case []int:
		return widen(x), nil
	case []int32:
		return widen(x), nil
	case []int16:
		return widen(x), nil
	case []int8:
		return widen(x), nil
	case []uint32:
		return widen(x), nil
	case []uint16:
		return widen(x), nil
	case []uint8:
		return widen(x), nil
	case []uint:
		return widenUnsigned(x)
	case []uint64:
		return widenUnsigned(x)
	case []float32, []float64:
		return nil, fmt.Errorf("A column of type %T cannot be used as an "+
			"indexer: %w", column, ErrNonIntegerIndexer)
	default:
		return nil, fmt.Errorf("Unrecognized column type %T: %w",
			column, ErrNonIntegerIndexer)
	}
}

// IndexerArray wraps the result of AsIndexer in an array with the structure
// of like.
func IndexerArray[T any](like *Array[T], column any) (*Array[int64], error) {
	idx, err := AsIndexer(column)
	if err != nil {
		return nil, err
	}
	return WithValues(like, idx)
}

func widen[I Integer](x []I) []int64 {
	out := make([]int64, len(x))
	for i := range x {
		out[i] = int64(x[i])
	}
	return out
}

func widenUnsigned[I uint | uint64](x []I) ([]int64, error) {
	out := make([]int64, len(x))
	for i := range x {
		if uint64(x[i]) > math.MaxInt64 {
			return nil, fmt.Errorf("Value %d of the column is %d, which "+
				"does not fit in an int64: %w", i, x[i], ErrInvalidIndex)
		}
		out[i] = int64(x[i])
	}
	return out, nil
}
