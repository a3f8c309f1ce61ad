package supers

import (
	"github.com/phil-mansfield/sdtrace/lib/particles"
)

// DefaultRainRadius is the radius [microns] above which a drop counts as
// rain.
const DefaultRainRadius = 40.0

// Rain returns a new Dataset containing only the superdroplets with a
// radius of at least rlim microns. Raggedcounts are recomputed for each
// time.
func Rain(ds *Dataset, rlim float64) (*Dataset, error) {
	r, err := ds.Float64(Radius)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, len(r.Values))
	counts := make([]int, r.Len())
	for t := 0; t < r.Len(); t++ {
		off := r.Offsets[0]
		for i := off[t]; i < off[t+1]; i++ {
			if r.Values[i] >= rlim {
				keep[i] = true
				counts[t]++
			}
		}
	}

	fields, err := particles.Select(ds.Fields, particles.Mask(keep))
	if err != nil {
		return nil, err
	}

	out, err := New(ds.Time, counts)
	if err != nil {
		return nil, err
	}
	for _, name := range particles.Names(fields) {
		if err := out.Add(fields[name], ds.Units[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
