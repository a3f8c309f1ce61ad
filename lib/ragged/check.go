package ragged

/* check.go contains the validation checks run by the engines before they
allocate any output. */

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Integer is the set of element types which may be used as identifiers,
// row keys or indexers.
type Integer = constraints.Integer

// SameShape returns an error wrapping ErrShapeMismatch if a and b do not
// have the same depth and the same number of elements in every list. Two
// arrays with shape [3, var] can still disagree list by list, so this is
// stricter than comparing Shape(a) and Shape(b).
func SameShape[T, U any](a *Array[T], b *Array[U]) error {
	sa, sb := Shape(a), Shape(b)
	if !ShapeEqual(sa, sb) {
		return fmt.Errorf("Arrays have shapes %s and %s: %w",
			FormatShape(sa), FormatShape(sb), ErrShapeMismatch)
	}

	for k := range a.Offsets {
		oa, ob := a.Offsets[k], b.Offsets[k]
		if len(oa) != len(ob) {
			return fmt.Errorf("Arrays have %d and %d lists at axis %d: %w",
				len(oa)-1, len(ob)-1, k+1, ErrShapeMismatch)
		}
		for i := range oa {
			if oa[i] != ob[i] {
				return fmt.Errorf("Arrays with shape %s disagree on the "+
					"length of list %d at axis %d: %w",
					FormatShape(sa), firstDiff(oa, ob), k+1, ErrShapeMismatch)
			}
		}
	}
	if len(a.Values) != len(b.Values) {
		return fmt.Errorf("Arrays hold %d and %d values: %w",
			len(a.Values), len(b.Values), ErrShapeMismatch)
	}
	return nil
}

// firstDiff returns the index of the first list whose count differs between
// two equal-length offset levels.
func firstDiff(oa, ob []int) int {
	for i := 1; i < len(oa); i++ {
		if oa[i]-oa[i-1] != ob[i]-ob[i-1] {
			return i - 1
		}
	}
	return len(oa) - 1
}

// OnlyLastAxisRagged returns an error wrapping ErrRaggedAxis if any axis
// other than the innermost one has a variable length.
func OnlyLastAxisRagged[T any](a *Array[T]) error {
	shape := Shape(a)
	for k := 0; k < len(shape)-1; k++ {
		if shape[k].IsVar() {
			return fmt.Errorf("Axis %d of an array with shape %s is ragged, "+
				"but only the last axis may be: %w",
				k, FormatShape(shape), ErrRaggedAxis)
		}
	}
	return nil
}

// NonNegative returns an error wrapping ErrInvalidIndex if any value of a is
// negative.
func NonNegative[I Integer](a *Array[I]) error {
	for i, x := range a.Values {
		if x < 0 {
			return fmt.Errorf("Value %d of the array is %d, but indices "+
				"cannot be negative: %w", i, x, ErrInvalidIndex)
		}
	}
	return nil
}

// Max returns the largest value of a. ok is false if a has no values.
func Max[I Integer](a *Array[I]) (m I, ok bool) {
	if len(a.Values) == 0 {
		return 0, false
	}
	m = a.Values[0]
	for _, x := range a.Values[1:] {
		if x > m {
			m = x
		}
	}
	return m, true
}
