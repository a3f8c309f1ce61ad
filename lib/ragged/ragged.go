/*package ragged contains the array representation shared by sdtrace's
engines: a flat buffer of values plus one level of offsets for every nested
axis. The number of values in each list may change from list to list
("ragged" or "variable" axes), which is how superdroplet output is stored:
every output time holds however many superdroplets were in the domain at
that time.

The package also contains the shape inspector and the validation checks
that every other package runs before touching the data.
*/
package ragged

import (
	"fmt"
)

// Array is a nested array with Depth() axes. Values holds every value of
// the innermost axis in row-major order. Offsets[k] holds one more entry than
// there are lists at axis k+1: list i of that level spans entries
// Offsets[k][i] to Offsets[k][i+1] of the next level (or of Values, for the
// last level).
//
// Arrays are treated as immutable once built. Functions which return new
// arrays never modify their inputs.
type Array[T any] struct {
	Values  []T
	Offsets [][]int
}

// Flat returns a one-dimensional array wrapping values.
func Flat[T any](values []T) *Array[T] {
	return &Array[T]{Values: values}
}

// New creates a two-dimensional array where outer position i holds the
// next counts[i] elements of values. This is the layout of a single
// superdroplet attribute, where counts is the per-time "raggedcount".
func New[T any](values []T, counts []int) (*Array[T], error) {
	return FromCounts(values, counts)
}

// FromCounts creates an array with len(counts)+1 axes. counts[0] gives the
// length of each list at axis 1, counts[1] the length of each list at axis 2
// and so on. The sum of each level of counts must equal the number of lists
// (or values) at the next level.
func FromCounts[T any](values []T, counts ...[]int) (*Array[T], error) {
	a := &Array[T]{Values: values, Offsets: make([][]int, len(counts))}
	for k, c := range counts {
		off := make([]int, len(c)+1)
		for i, n := range c {
			if n < 0 {
				return nil, fmt.Errorf("Count %d of level %d is %d, but "+
					"counts cannot be negative: %w", i, k, n, ErrShapeMismatch)
			}
			off[i+1] = off[i] + n
		}
		a.Offsets[k] = off
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Regular creates an array where every axis is regular. len(values) must
// equal the product of dims.
func Regular[T any](values []T, dims ...int) (*Array[T], error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("No dimensions were given: %w", ErrShapeMismatch)
	}

	n := 1
	for _, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("Dimensions %v contain a negative length: %w",
				dims, ErrShapeMismatch)
		}
		n *= d
	}
	if n != len(values) {
		return nil, fmt.Errorf("Dimensions %v require %d values, but %d "+
			"were given: %w", dims, n, len(values), ErrShapeMismatch)
	}

	counts := make([][]int, len(dims)-1)
	lists := 1
	for k := range counts {
		lists *= dims[k]
		c := make([]int, lists)
		for i := range c {
			c[i] = dims[k+1]
		}
		counts[k] = c
	}

	return FromCounts(values, counts...)
}

// FromNested2 copies a [][]T into an Array.
func FromNested2[T any](x [][]T) *Array[T] {
	values := []T{}
	off := make([]int, len(x)+1)
	for i := range x {
		values = append(values, x[i]...)
		off[i+1] = len(values)
	}
	return &Array[T]{Values: values, Offsets: [][]int{off}}
}

// FromNested3 copies a [][][]T into an Array.
func FromNested3[T any](x [][][]T) *Array[T] {
	flat := [][]T{}
	off := make([]int, len(x)+1)
	for i := range x {
		flat = append(flat, x[i]...)
		off[i+1] = len(flat)
	}
	inner := FromNested2(flat)
	return &Array[T]{
		Values:  inner.Values,
		Offsets: append([][]int{off}, inner.Offsets...),
	}
}

// FromNested4 copies a [][][][]T into an Array.
func FromNested4[T any](x [][][][]T) *Array[T] {
	flat := [][][]T{}
	off := make([]int, len(x)+1)
	for i := range x {
		flat = append(flat, x[i]...)
		off[i+1] = len(flat)
	}
	inner := FromNested3(flat)
	return &Array[T]{
		Values:  inner.Values,
		Offsets: append([][]int{off}, inner.Offsets...),
	}
}

// Depth returns the number of axes.
func (a *Array[T]) Depth() int { return len(a.Offsets) + 1 }

// Len returns the length of axis 0.
func (a *Array[T]) Len() int {
	if len(a.Offsets) == 0 {
		return len(a.Values)
	}
	return len(a.Offsets[0]) - 1
}

// Count returns the total number of values.
func (a *Array[T]) Count() int { return len(a.Values) }

// Counts returns the length of every list at the given axis, which must be
// in the range [1, Depth()).
func (a *Array[T]) Counts(axis int) []int {
	if axis < 1 || axis >= a.Depth() {
		panic(fmt.Sprintf("Axis %d is out of range for an array with %d "+
			"axes.", axis, a.Depth()))
	}
	return diff(a.Offsets[axis-1])
}

// Buckets returns the number of innermost lists. A one-dimensional array is
// a single bucket.
func (a *Array[T]) Buckets() int {
	if len(a.Offsets) == 0 {
		return 1
	}
	return len(a.Offsets[len(a.Offsets)-1]) - 1
}

// Bucket returns the b-th innermost list, counting in row-major order over
// all outer axes. The returned slice aliases Values.
func (a *Array[T]) Bucket(b int) []T {
	if len(a.Offsets) == 0 {
		return a.Values
	}
	off := a.Offsets[len(a.Offsets)-1]
	return a.Values[off[b]:off[b+1]]
}

// BucketOffsets returns the offsets of the innermost lists into Values. The
// returned slice must not be modified.
func (a *Array[T]) BucketOffsets() []int {
	if len(a.Offsets) == 0 {
		return []int{0, len(a.Values)}
	}
	return a.Offsets[len(a.Offsets)-1]
}

// List returns the innermost list reached by indexing each outer axis with
// path. len(path) must be Depth()-1. The returned slice aliases Values.
func (a *Array[T]) List(path ...int) []T {
	if len(path) != len(a.Offsets) {
		panic(fmt.Sprintf("List was given %d indices, but the array has %d "+
			"outer axes.", len(path), len(a.Offsets)))
	}
	if len(path) == 0 {
		return a.Values
	}

	b := path[0]
	if b < 0 || b >= a.Len() {
		panic(fmt.Sprintf("Index %d is out of range for axis 0 with length "+
			"%d.", b, a.Len()))
	}
	for k := 1; k < len(path); k++ {
		start, end := a.Offsets[k-1][b], a.Offsets[k-1][b+1]
		if path[k] < 0 || path[k] >= end-start {
			panic(fmt.Sprintf("Index %d is out of range for axis %d with "+
				"length %d.", path[k], k, end-start))
		}
		b = start + path[k]
	}

	off := a.Offsets[len(a.Offsets)-1]
	return a.Values[off[b]:off[b+1]]
}

// Validate checks the structural invariants of the array: every level of
// offsets starts at zero, never decreases and ends at the length of the
// next level.
func (a *Array[T]) Validate() error {
	for k, off := range a.Offsets {
		if len(off) == 0 || off[0] != 0 {
			return fmt.Errorf("Offsets of level %d do not start at 0: %w",
				k, ErrShapeMismatch)
		}
		for i := 1; i < len(off); i++ {
			if off[i] < off[i-1] {
				return fmt.Errorf("Offsets of level %d decrease at list %d "+
					"(%d -> %d): %w", k, i-1, off[i-1], off[i], ErrShapeMismatch)
			}
		}

		next := len(a.Values)
		if k+1 < len(a.Offsets) {
			next = len(a.Offsets[k+1]) - 1
		}
		if off[len(off)-1] != next {
			return fmt.Errorf("The counts of level %d sum to %d, but the "+
				"next level holds %d elements: %w", k, off[len(off)-1], next,
				ErrShapeMismatch)
		}
	}
	return nil
}

// Nested2 copies a two-dimensional array into a [][]T.
func (a *Array[T]) Nested2() [][]T {
	if a.Depth() != 2 {
		panic(fmt.Sprintf("Nested2 called on an array with %d axes.",
			a.Depth()))
	}
	out := make([][]T, a.Len())
	for i := range out {
		out[i] = append([]T{}, a.List(i)...)
	}
	return out
}

// Nested3 copies a three-dimensional array into a [][][]T.
func (a *Array[T]) Nested3() [][][]T {
	if a.Depth() != 3 {
		panic(fmt.Sprintf("Nested3 called on an array with %d axes.",
			a.Depth()))
	}
	inner := &Array[T]{Values: a.Values, Offsets: a.Offsets[1:]}
	flat := inner.Nested2()

	out := make([][][]T, a.Len())
	for i := range out {
		out[i] = flat[a.Offsets[0][i]:a.Offsets[0][i+1]]
	}
	return out
}

// Nested4 copies a four-dimensional array into a [][][][]T.
func (a *Array[T]) Nested4() [][][][]T {
	if a.Depth() != 4 {
		panic(fmt.Sprintf("Nested4 called on an array with %d axes.",
			a.Depth()))
	}
	inner := &Array[T]{Values: a.Values, Offsets: a.Offsets[1:]}
	flat := inner.Nested3()

	out := make([][][][]T, a.Len())
	for i := range out {
		out[i] = flat[a.Offsets[0][i]:a.Offsets[0][i+1]]
	}
	return out
}

// Map returns an array with the same structure as a whose values are f
// applied to the values of a.
func Map[T, U any](a *Array[T], f func(T) U) *Array[U] {
	values := make([]U, len(a.Values))
	for i, x := range a.Values {
		values[i] = f(x)
	}
	return &Array[U]{Values: values, Offsets: cloneOffsets(a.Offsets)}
}

// WithValues returns an array with the structure of a and the given values,
// which must have the same length as a.Values.
func WithValues[T, U any](a *Array[T], values []U) (*Array[U], error) {
	if len(values) != len(a.Values) {
		return nil, fmt.Errorf("The array holds %d values, but %d "+
			"replacement values were given: %w", len(a.Values), len(values),
			ErrShapeMismatch)
	}
	return &Array[U]{Values: values, Offsets: cloneOffsets(a.Offsets)}, nil
}

func cloneOffsets(offsets [][]int) [][]int {
	out := make([][]int, len(offsets))
	for k := range offsets {
		out[k] = append([]int{}, offsets[k]...)
	}
	return out
}

// diff returns the differences between neighbouring offsets.
func diff(off []int) []int {
	if len(off) == 0 {
		return []int{}
	}
	out := make([]int, len(off)-1)
	for i := range out {
		out[i] = off[i+1] - off[i]
	}
	return out
}

// SelectOuter returns a two-dimensional array holding the lists of a at the
// given outer positions, in the given order.
func SelectOuter[T any](a *Array[T], idx []int) (*Array[T], error) {
	if a.Depth() != 2 {
		return nil, fmt.Errorf("SelectOuter requires two axes, but the "+
			"array has %d: %w", a.Depth(), ErrShapeMismatch)
	}
	values := []T{}
	off := make([]int, len(idx)+1)
	for i, j := range idx {
		if j < 0 || j >= a.Len() {
			return nil, fmt.Errorf("Outer index %d is out of range for an "+
				"array of length %d: %w", j, a.Len(), ErrInvalidIndex)
		}
		values = append(values, a.List(j)...)
		off[i+1] = len(values)
	}
	return &Array[T]{Values: values, Offsets: [][]int{off}}, nil
}
