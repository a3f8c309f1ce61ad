package lagrange

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/phil-mansfield/sdtrace/lib/eq"
)

func TestSampleIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(0))

	ids, err := SampleIDs(rng, 10, 20, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if len(ids) != 4 {
		t.Fatalf("Expected 4 ids, got %v.", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		if id < 10 || id >= 20 || seen[id] {
			t.Errorf("Sample %v is not %d distinct ids in [10, 20).", ids, 4)
		}
		seen[id] = true
	}

	all, err := SampleIDs(rng, 0, 5, 0)
	if err != nil || len(all) != 5 {
		t.Errorf("Expected all 5 ids, got %v, %v.", all, err)
	}

	if _, err := SampleIDs(rng, 0, 5, 6); err == nil {
		t.Errorf("Expected an error when sampling more ids than exist.")
	}
	if _, err := SampleIDs(rng, 5, 0, 1); err == nil {
		t.Errorf("Expected an error for an inverted range.")
	}
	if _, err := SampleIDs(rng, 0, 1<<40, 0); err == nil {
		t.Errorf("Expected an error when drawing every id of a huge range.")
	}
	if _, err := SampleIDs(rng, math.MinInt64, math.MaxInt64, 1); err == nil {
		t.Errorf("Expected an error for a range that overflows int64.")
	}
}

func TestSampleIDsLargeRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	minID, maxID := int64(1)<<40, int64(1)<<50

	ids, err := SampleIDs(rng, minID, maxID, 1000)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		if id < minID || id >= maxID || seen[id] {
			t.Fatalf("Id %d is repeated or outside [%d, %d).", id, minID, maxID)
		}
		seen[id] = true
	}
	if len(seen) != 1000 {
		t.Errorf("Expected 1000 distinct ids, got %d.", len(seen))
	}
}

// Drawing every id must give a permutation of the range.
func TestSampleIDsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, size := range []int64{1, 2, 17} {
		ids, err := SampleIDs(rng, -5, -5+size, 0)
		if err != nil {
			t.Fatalf("Expected no error, got %v.", err)
		}
		sorted := append([]int64{}, ids...)
		slices.Sort(sorted)
		for i := range sorted {
			if sorted[i] != -5+int64(i) {
				t.Errorf("size = %d: %v is not a permutation of [-5, %d).",
					size, ids, -5+size)
				break
			}
		}
	}
}

func TestNearestTimes(t *testing.T) {
	time := []float64{0, 10, 20, 30}
	idx, err := NearestTimes(time, []float64{-5, 4, 5, 16, 100})
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if !eq.Slices(idx, []int{0, 0, 0, 2, 3}) {
		t.Errorf("Expected [0 0 0 2 3], got %v.", idx)
	}

	if _, err := NearestTimes(nil, []float64{1}); err == nil {
		t.Errorf("Expected an error for an empty time axis.")
	}
}
