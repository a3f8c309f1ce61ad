package particles

import (
	"fmt"
	"sort"
)

// Select copies the particles at the given indices into a new Particles
// map. Every field is carried over with its name and type. The 'from'
// indices are written to positions 0, 1, 2, ... of the output.
func Select(p Particles, from []int) (Particles, error) {
	to := make([]int, len(from))
	for i := range to {
		to[i] = i
	}

	out := Particles{}
	for _, name := range Names(p) {
		f := p[name]
		f.CreateDestination(out, len(from))
		if err := f.Transfer(out, from, to); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Mask returns the indices of every true element of keep.
func Mask(keep []bool) []int {
	idx := []int{}
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return idx
}

// Names returns the field names of p in sorted order.
func Names(p Particles) []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the field with the given name or an error if it does not exist.
func Get(p Particles, name string) (Field, error) {
	f, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("No field named '%s'. Available fields "+
			"are %v.", name, Names(p))
	}
	return f, nil
}
