package lagrange

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// SampleIDs draws n distinct identifiers from [minID, maxID) in random
// order. n == 0 draws every identifier in the range, which is limited to
// math.MaxInt32 identifiers. Memory use is proportional to n, not to the
// size of the range.
func SampleIDs(rng *rand.Rand, minID, maxID int64, n int) ([]int64, error) {
	if maxID < minID {
		return nil, fmt.Errorf("The identifier range [%d, %d) is empty.",
			minID, maxID)
	}
	size := maxID - minID
	if size < 0 {
		return nil, fmt.Errorf("The identifier range [%d, %d) is too "+
			"large to sample from.", minID, maxID)
	}
	if n == 0 {
		if size > math.MaxInt32 {
			return nil, fmt.Errorf("Cannot draw all %d identifiers in "+
				"[%d, %d).", size, minID, maxID)
		}
		n = int(size)
	}
	if n < 0 || int64(n) > size {
		return nil, fmt.Errorf("Cannot draw %d distinct identifiers from "+
			"the %d in [%d, %d).", n, size, minID, maxID)
	}

	// Partial Fisher-Yates shuffle of the offsets [0, size). swapped holds
	// only the positions that no longer hold their own offset.
	swapped := make(map[int64]int64, n)
	at := func(i int64) int64 {
		if x, ok := swapped[i]; ok {
			return x
		}
		return i
	}

	out := make([]int64, n)
	for i := range out {
		k := int64(i)
		j := k + rng.Int63n(size-k)
		out[i] = minID + at(j)
		swapped[j] = at(k)
		delete(swapped, k)
	}
	return out, nil
}

// NearestTimes returns the index of the entry of time closest to each entry
// of sel. Ties go to the earlier index.
func NearestTimes(time, sel []float64) ([]int, error) {
	if len(time) == 0 {
		return nil, fmt.Errorf("Cannot select times from an empty time axis.")
	}

	dist := make([]float64, len(time))
	out := make([]int, len(sel))
	for i, s := range sel {
		for j := range time {
			dist[j] = math.Abs(time[j] - s)
		}
		out[i] = floats.MinIdx(dist)
	}
	return out, nil
}
