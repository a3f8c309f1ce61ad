package euler

import (
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

// Digitize returns the index of the bin each value of x falls into, with
// the same shape as x. It follows numpy.digitize: for increasing bins and
// right == false, value x gets index i when bins[i-1] <= x < bins[i], so
// values below bins[0] get 0 and values at or above the last edge get
// len(bins). right == true closes the bins on the right instead. Decreasing
// bins are also accepted. NaN sorts above every edge, which places it in the
// last bin for increasing edges.
//
// The result can be used directly as an indexer with
// RebinByIndexerBins(data, idx, len(bins)+1).
func Digitize(
	x *ragged.Array[float64], bins []float64, right bool,
) (*ragged.Array[int], error) {
	increasing, err := monotonicity(bins)
	if err != nil {
		return nil, err
	}

	n := len(bins)
	rev := bins
	if !increasing {
		rev = make([]float64, n)
		for i := range bins {
			rev[i] = bins[n-1-i]
		}
	}

	return ragged.Map(x, func(v float64) int {
		i := searchSorted(rev, v, !right)
		if !increasing {
			return n - i
		}
		return i
	}), nil
}

// searchSorted is numpy.searchsorted on increasing edges. With after set,
// v is placed after any edges equal to it.
func searchSorted(edges []float64, v float64, after bool) int {
	if after {
		return sort.Search(len(edges), func(i int) bool { return edges[i] > v })
	}
	return sort.Search(len(edges), func(i int) bool { return edges[i] >= v })
}

// monotonicity reports whether bins are increasing. Runs of equal edges are
// allowed, as in numpy.
func monotonicity(bins []float64) (increasing bool, err error) {
	dir := 0
	for i := range bins {
		if math.IsNaN(bins[i]) {
			return false, fmt.Errorf("Bin edge %d is NaN.", i)
		}
		if i == 0 {
			continue
		}
		switch {
		case bins[i] > bins[i-1]:
			if dir < 0 {
				return false, fmt.Errorf("Bin edges %v are not monotonic.",
					bins)
			}
			dir = 1
		case bins[i] < bins[i-1]:
			if dir > 0 {
				return false, fmt.Errorf("Bin edges %v are not monotonic.",
					bins)
			}
			dir = -1
		}
	}
	return dir >= 0, nil
}
