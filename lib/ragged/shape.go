package ragged

/* shape.go contains the shape inspector. */

import (
	"fmt"
	"strings"
)

// Dim is the length of one axis of an Array. Var marks an axis whose lists
// do not all have the same length.
type Dim int

// Var is the Dim of a variable-length axis.
const Var Dim = -1

// IsVar returns true if d is a variable-length axis.
func (d Dim) IsVar() bool { return d == Var }

func (d Dim) String() string {
	if d == Var {
		return "var"
	}
	return fmt.Sprintf("%d", int(d))
}

// Shape returns the length of every axis of a. Axis 0 always has a single
// length. Every other axis reports the shared length of its lists when they
// all agree (the axis is regular, even though it is stored as a ragged
// level) and Var otherwise. An axis with no lists at all has length 0.
func Shape[T any](a *Array[T]) []Dim {
	shape := make([]Dim, 0, a.Depth())
	shape = append(shape, Dim(a.Len()))
	for _, off := range a.Offsets {
		shape = append(shape, levelDim(off))
	}
	return shape
}

// levelDim returns the Dim of the lists described by one level of offsets.
func levelDim(off []int) Dim {
	if len(off) < 2 {
		return 0
	}

	n := off[1] - off[0]
	for i := 2; i < len(off); i++ {
		if off[i]-off[i-1] != n {
			return Var
		}
	}
	return Dim(n)
}

// ShapeEqual returns true if two shapes have the same number of axes and
// agree at every axis.
func ShapeEqual(x, y []Dim) bool {
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

// FormatShape prints a shape the way it is written in error messages, e.g.
// "[3, var]".
func FormatShape(shape []Dim) string {
	tok := make([]string, len(shape))
	for i := range shape {
		tok[i] = shape[i].String()
	}
	return "[" + strings.Join(tok, ", ") + "]"
}
