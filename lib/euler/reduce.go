package euler

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

// Reducer collapses one list of values to a single number.
type Reducer func(x []float64) float64

var (
	// Sum adds the values of a list. Empty lists sum to 0.
	Sum Reducer = floats.Sum
	// Mean averages the values of a list. Empty lists have a NaN mean.
	Mean Reducer = func(x []float64) float64 { return stat.Mean(x, nil) }
	// Len counts the values of a list.
	Len Reducer = func(x []float64) float64 { return float64(len(x)) }
)

// Reduce applies f to every innermost list of a, removing the innermost
// axis. Reducing a [T, M, var] rebinned series gives a regular [T, M]
// series of per-sub-bucket statistics.
func Reduce(a *ragged.Array[float64], f Reducer) (*ragged.Array[float64], error) {
	if a.Depth() < 2 {
		return nil, fmt.Errorf("Cannot reduce an array with %d axes: %w",
			a.Depth(), ragged.ErrShapeMismatch)
	}

	nb := a.Buckets()
	values := make([]float64, nb)
	for b := 0; b < nb; b++ {
		values[b] = f(a.Bucket(b))
	}

	offsets := make([][]int, a.Depth()-2)
	for k := range offsets {
		offsets[k] = append([]int{}, a.Offsets[k]...)
	}
	return &ragged.Array[float64]{Values: values, Offsets: offsets}, nil
}

// RebinBy2Indexers rebins data by first and then rebins each of the
// resulting sub-buckets by second. For data with shape [T, var] the result
// has shape [T, M1, M2, var], where M1 and M2 are one more than the largest
// values of first and second.
func RebinBy2Indexers[V any, I, J ragged.Integer](
	data *ragged.Array[V], first *ragged.Array[I], second *ragged.Array[J],
) (*ragged.Array[V], error) {
	if err := ragged.SameShape(data, second); err != nil {
		return nil, fmt.Errorf("Data and second indexer are not "+
			"co-indexed: %w", err)
	}

	byFirst, err := RebinByIndexer(data, first)
	if err != nil {
		return nil, err
	}
	secondByFirst, err := RebinByIndexer(second, first)
	if err != nil {
		return nil, err
	}
	return RebinByIndexer(byFirst, secondByFirst)
}
