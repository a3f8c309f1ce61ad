/*package supers loads and stores superdroplet datasets: the output times,
the number of superdroplets present at each time, and any number of
attribute columns holding one value per superdroplet per time. It also
derives droplet properties (mass, volume, effective density) from the
attributes.*/
package supers

import (
	"encoding/binary"
	"fmt"

	"github.com/phil-mansfield/sdtrace/lib/particles"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
	"github.com/phil-mansfield/sdtrace/lib/sdio"
)

// Standard attribute names.
const (
	SdID     = "sdId"
	GbxIndex = "sdgbxindex"
	Xi       = "xi"
	Radius   = "radius"
	Msol     = "msol"
	Coord3   = "coord3"
	Coord1   = "coord1"
	Coord2   = "coord2"
)

// Dataset is a set of superdroplet attributes sharing one ragged time axis.
type Dataset struct {
	Time   []float64
	Counts []int
	Fields particles.Particles
	Units  map[string]string
}

// New creates an empty Dataset with the given time axis.
func New(time []float64, counts []int) (*Dataset, error) {
	if len(time) != len(counts) {
		return nil, fmt.Errorf("%d times were given, but %d raggedcounts: %w",
			len(time), len(counts), ragged.ErrShapeMismatch)
	}
	for i, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("Raggedcount %d is %d, but counts cannot "+
				"be negative: %w", i, n, ragged.ErrShapeMismatch)
		}
	}
	return &Dataset{
		Time:   append([]float64{}, time...),
		Counts: append([]int{}, counts...),
		Fields: particles.Particles{},
		Units:  map[string]string{},
	}, nil
}

// Total returns the number of superdroplet values summed over all times.
func (ds *Dataset) Total() int {
	n := 0
	for _, c := range ds.Counts {
		n += c
	}
	return n
}

// Add adds an attribute column to the dataset.
func (ds *Dataset) Add(f particles.Field, units string) error {
	if f.Len() != ds.Total() {
		return fmt.Errorf("Attribute '%s' has %d values, but the "+
			"raggedcounts sum to %d: %w", f.Name(), f.Len(), ds.Total(),
			ragged.ErrShapeMismatch)
	}
	if _, ok := ds.Fields[f.Name()]; ok {
		return fmt.Errorf("Attribute '%s' was added twice.", f.Name())
	}
	ds.Fields[f.Name()] = f
	ds.Units[f.Name()] = units
	return nil
}

// Names returns the attribute names in sorted order.
func (ds *Dataset) Names() []string { return particles.Names(ds.Fields) }

// Validate checks that every attribute holds one value per superdroplet per
// time.
func (ds *Dataset) Validate() error {
	if len(ds.Time) != len(ds.Counts) {
		return fmt.Errorf("The dataset has %d times, but %d raggedcounts: %w",
			len(ds.Time), len(ds.Counts), ragged.ErrShapeMismatch)
	}
	total := ds.Total()
	for _, name := range ds.Names() {
		if n := ds.Fields[name].Len(); n != total {
			return fmt.Errorf("Attribute '%s' has %d values, but the "+
				"raggedcounts sum to %d: %w", name, n, total,
				ragged.ErrShapeMismatch)
		}
	}
	return nil
}

// Float64 returns any numeric attribute as a [T, var] array of float64s.
func (ds *Dataset) Float64(name string) (*ragged.Array[float64], error) {
	f, err := particles.Get(ds.Fields, name)
	if err != nil {
		return nil, err
	}
	return ragged.New(particles.Float64s(f), ds.Counts)
}

// Indexer returns an integer attribute as a [T, var] array of int64s.
// Floating point attributes cannot be used as indexers.
func (ds *Dataset) Indexer(name string) (*ragged.Array[int64], error) {
	f, err := particles.Get(ds.Fields, name)
	if err != nil {
		return nil, err
	}
	idx, err := ragged.AsIndexer(f.Data())
	if err != nil {
		return nil, fmt.Errorf("Attribute '%s': %w", name, err)
	}
	return ragged.New(idx, ds.Counts)
}

// IDs returns the superdroplet identifiers.
func (ds *Dataset) IDs() (*ragged.Array[int64], error) {
	return ds.Indexer(SdID)
}

// Open reads every attribute of a .sds file.
func Open(fname string) (*Dataset, error) {
	rd, err := sdio.NewReader(fname)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	ds, err := New(rd.Times, rd.CountsInt())
	if err != nil {
		return nil, fmt.Errorf("Could not read %s: %w", fname, err)
	}
	for i, name := range rd.Names {
		f, err := rd.ReadField(name)
		if err != nil {
			return nil, err
		}
		if err := ds.Add(f, rd.Units[i]); err != nil {
			return nil, fmt.Errorf("Could not read %s: %w", fname, err)
		}
	}
	return ds, nil
}

// Write writes the dataset to a .sds file.
func (ds *Dataset) Write(fname string) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	wr := sdio.NewWriter(fname, binary.LittleEndian)
	if err := wr.SetTime(ds.Time, ds.Counts); err != nil {
		return err
	}
	for _, name := range ds.Names() {
		if err := wr.AddField(ds.Fields[name], ds.Units[name]); err != nil {
			return err
		}
	}
	return wr.Flush()
}
