/*package cuckoo implements O(N) "cuckoo" sorting for datasets where you know
the bin every element must end up in. Bins are integers in [0, n), so a
histogram of the bins gives the location of every bin in the output and each
element can be written straight into place without any comparisons.

Every function here is stable: elements in the same bin keep the order they
had in the input.*/
package cuckoo

import (
	"fmt"
)

// Count returns the number of keys equal to each integer in [0, n). This is
// numpy's bincount with a fixed minimum length, except that keys outside
// [0, n) are an error rather than a reason to grow the output.
func Count(keys []int64, n int) ([]int, error) {
	counts := make([]int, n)
	for i, k := range keys {
		if k < 0 || k >= int64(n) {
			return nil, fmt.Errorf("Key %d is %d, which is outside the "+
				"range [0, %d).", i, k, n)
		}
		counts[k]++
	}
	return counts, nil
}

// Offsets converts a set of bin counts into the starting location of each bin
// in a binned array. The returned slice has one more element than counts,
// and the final element is the sum of all the counts.
func Offsets(counts []int) []int {
	off := make([]int, len(counts)+1)
	for i, c := range counts {
		off[i+1] = off[i] + c
	}
	return off
}

// Order returns the permutation which stably sorts keys into n bins along
// with the offsets of each bin in the permuted array. order[j] is the index
// into the input of the j-th element of the output.
func Order(keys []int64, n int) (order, offsets []int, err error) {
	counts, err := Count(keys, n)
	if err != nil {
		return nil, nil, err
	}
	offsets = Offsets(counts)

	next := append([]int{}, offsets[:n]...)
	order = make([]int, len(keys))
	for i, k := range keys {
		order[next[k]] = i
		next[k]++
	}
	return order, offsets, nil
}

// Permute writes x[order[j]] into out[j] for every j. If out is nil or too
// short, a new slice is allocated.
func Permute[T any](x []T, order []int, out []T) []T {
	if len(out) < len(order) {
		out = make([]T, len(order))
	}
	out = out[:len(order)]
	for j, i := range order {
		out[j] = x[i]
	}
	return out
}

// Bin stably sorts x into n bins according to keys and returns the sorted
// values along with the offsets of each bin.
func Bin[T any](x []T, keys []int64, n int) (out []T, offsets []int, err error) {
	if len(x) != len(keys) {
		return nil, nil, fmt.Errorf("%d values were given, but %d keys.",
			len(x), len(keys))
	}
	order, offsets, err := Order(keys, n)
	if err != nil {
		return nil, nil, err
	}
	return Permute(x, order, nil), offsets, nil
}
