/*package particles contains functions for manipulating superdroplets with
generic named fields: every attribute in a dataset (sdId, xi, radius, ...)
is a Field, and a set of attributes sharing one length is a Particles map.*/
package particles

/* This file contains functions for managing particles and their fields. */

import (
	"fmt"
)

// Particles maps the name of each field (e.g. "sdId", "radius") to a Field.
type Particles map[string]Field

// Len returns the shared length of every field in p and an error if the
// fields disagree.
func (p Particles) Len() (int, error) {
	n, first := -1, ""
	for name, f := range p {
		if n == -1 {
			n, first = f.Len(), name
		} else if f.Len() != n {
			return 0, fmt.Errorf("Field '%s' has length %d, but field '%s' "+
				"has length %d.", name, f.Len(), first, n)
		}
	}
	if n == -1 {
		return 0, nil
	}
	return n, nil
}

// Field is a generic interface around a named column of values.
type Field interface {
	// Name returns the name of the field.
	Name() string
	// Type returns the short code of the element type: "u32", "u64",
	// "i32", "i64", "f32", or "f64".
	Type() string
	// Len returns the length of the underlying array.
	Len() int
	// Data returns the underlying array as an interface{}.
	Data() interface{}
	// Transfer transfers data from the Field to the appropriately named field
	// in dest. Particles are transferred from the indices 'from' to the
	// indices 'to'. These indices are passed as arrays to amortize the cost
	// of error handling and type conversion.
	Transfer(dest Particles, from, to []int) error
	// CreateDestination creates an output field in p with the specified
	// size that has the correct name and type.
	CreateDestination(p Particles, n int)
}

// Element is the set of types a Column can hold.
type Element interface {
	uint32 | uint64 | int32 | int64 | float32 | float64
}

// Type assertions
var (
	_ Field = &Column[uint32]{}
	_ Field = &Column[uint64]{}
	_ Field = &Column[int32]{}
	_ Field = &Column[int64]{}
	_ Field = &Column[float32]{}
	_ Field = &Column[float64]{}
)

// Column implements the Field interface for a []T. See the Field interface
// for documentation of its methods.
type Column[T Element] struct {
	name string
	data []T
}

// NewColumn creates a field with a given name associated with a given array.
func NewColumn[T Element](name string, x []T) *Column[T] {
	return &Column[T]{name, x}
}

func (x *Column[T]) Name() string      { return x.name }
func (x *Column[T]) Type() string      { return TypeCode(x.data) }
func (x *Column[T]) Len() int          { return len(x.data) }
func (x *Column[T]) Data() interface{} { return x.data }

// Values returns the underlying array.
func (x *Column[T]) Values() []T { return x.data }

func (x *Column[T]) CreateDestination(p Particles, n int) {
	p[x.name] = NewColumn(x.name, make([]T, n))
}

func (x *Column[T]) Transfer(dest Particles, from, to []int) error {
	destField, ok := dest[x.name]
	if !ok {
		return fmt.Errorf("Destination Particles object does not contain "+
			"the field '%s'.", x.name)
	}

	destData, ok := destField.Data().([]T)
	if !ok {
		return fmt.Errorf("Field '%s' in destination Particles object does "+
			"not have %T type, as expected.", x.name, x.data)
	}

	if len(from) != len(to) {
		return fmt.Errorf("'from' index array has length %d, but 'to' has "+
			"length %d.", len(from), len(to))
	}

	for i := range from {
		if from[i] < 0 || from[i] >= len(x.data) ||
			to[i] < 0 || to[i] >= len(destData) {
			return fmt.Errorf("Transfer %d of field '%s' moves index %d "+
				"to index %d, but the fields have lengths %d and %d.",
				i, x.name, from[i], to[i], len(x.data), len(destData))
		}
		destData[to[i]] = x.data[from[i]]
	}

	return nil
}

// TypeCode returns the short type code of a supported array.
func TypeCode(x interface{}) string {
	switch x.(type) {
	case []uint32:
		return "u32"
	case []uint64:
		return "u64"
	case []int32:
		return "i32"
	case []int64:
		return "i64"
	case []float32:
		return "f32"
	case []float64:
		return "f64"
	}
	return ""
}

// NewField wraps an array of any supported type in a Field.
func NewField(name string, x interface{}) (Field, error) {
	switch xx := x.(type) {
	case []uint32:
		return NewColumn(name, xx), nil
	case []uint64:
		return NewColumn(name, xx), nil
	case []int32:
		return NewColumn(name, xx), nil
	case []int64:
		return NewColumn(name, xx), nil
	case []float32:
		return NewColumn(name, xx), nil
	case []float64:
		return NewColumn(name, xx), nil
	}
	return nil, fmt.Errorf("Field '%s' has unsupported type %T.", name, x)
}

// MakeField allocates a zeroed field of length n with the given type code.
func MakeField(name, code string, n int) (Field, error) {
	switch code {
	case "u32":
		return NewColumn(name, make([]uint32, n)), nil
	case "u64":
		return NewColumn(name, make([]uint64, n)), nil
	case "i32":
		return NewColumn(name, make([]int32, n)), nil
	case "i64":
		return NewColumn(name, make([]int64, n)), nil
	case "f32":
		return NewColumn(name, make([]float32, n)), nil
	case "f64":
		return NewColumn(name, make([]float64, n)), nil
	}
	return nil, fmt.Errorf("Field '%s' has unrecognized type code '%s'.",
		name, code)
}

// Float64s converts any numeric field into a new []float64.
func Float64s(f Field) []float64 {
	switch x := f.Data().(type) {
	case []uint32:
		return toFloat64(x)
	case []uint64:
		return toFloat64(x)
	case []int32:
		return toFloat64(x)
	case []int64:
		return toFloat64(x)
	case []float32:
		return toFloat64(x)
	case []float64:
		return append([]float64{}, x...)
	}
	panic(fmt.Sprintf("Field '%s' has unsupported type %T.", f.Name(),
		f.Data()))
}

func toFloat64[T Element](x []T) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = float64(x[i])
	}
	return out
}
