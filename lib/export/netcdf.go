/*package export writes the outputs of sdtrace's engines in formats other
tools can read: dense Lagrangian tables go to NetCDF, while chosen
trajectories and per-bucket statistics of rebinned series go to CSV.*/
package export

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/phil-mansfield/sdtrace/lib/lagrange"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

const (
	// TimeDim and IDDim name the dimensions, and coordinate variables, of
	// NetCDF output.
	TimeDim = "time"
	IDDim   = "sdId"
)

// Grid is a set of dense tables which share one time x sdId grid.
type Grid struct {
	Times  []float64
	IDs    []int64
	Tables map[string]*lagrange.Table[float64]
	Units  map[string]string
}

// WriteNetCDF writes dense tables, one per attribute, to w. Every table must
// have len(times) rows and the same column keys. Missing cells are written
// as NaN.
func WriteNetCDF(
	w cdf.ReaderWriterAt, times []float64,
	tables map[string]*lagrange.Table[float64], units map[string]string,
) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return fmt.Errorf("No tables were given.")
	}

	first := tables[names[0]]
	for _, name := range names {
		t := tables[name]
		if name == TimeDim || name == IDDim {
			return fmt.Errorf("Attribute '%s' has the same name as a "+
				"coordinate variable.", name)
		}
		if t.Rows != len(times) {
			return fmt.Errorf("Table '%s' has %d rows, but %d times were "+
				"given: %w", name, t.Rows, len(times), ragged.ErrShapeMismatch)
		}
		if t.Cols != first.Cols || !slices.Equal(t.ColKeys, first.ColKeys) {
			return fmt.Errorf("Tables '%s' and '%s' have different columns: %w",
				names[0], name, ragged.ErrShapeMismatch)
		}
	}
	// A zero length marks the record dimension in NetCDF.
	if first.Rows == 0 || first.Cols == 0 {
		return fmt.Errorf("Cannot write an empty %d x %d table: %w",
			first.Rows, first.Cols, ragged.ErrShapeMismatch)
	}

	ids := make([]int32, first.Cols)
	for c, key := range first.ColKeys {
		if key > math.MaxInt32 || key < math.MinInt32 {
			return fmt.Errorf("Identifier %d does not fit in a NetCDF "+
				"int: %w", key, ragged.ErrInvalidIndex)
		}
		ids[c] = int32(key)
	}

	h := cdf.NewHeader([]string{TimeDim, IDDim},
		[]int{first.Rows, first.Cols})
	h.AddAttribute("", "comment", "Dense superdroplet attributes, one "+
		"column per superdroplet identifier")
	h.AddVariable(TimeDim, []string{TimeDim}, []float64{0})
	h.AddVariable(IDDim, []string{IDDim}, []int32{0})
	for _, name := range names {
		h.AddVariable(name, []string{TimeDim, IDDim}, []float64{0})
		if u := units[name]; u != "" {
			h.AddAttribute(name, "units", u)
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	if err := writeVar(f, TimeDim, append([]float64{}, times...)); err != nil {
		return err
	}
	if err := writeVar(f, IDDim, ids); err != nil {
		return err
	}
	for _, name := range names {
		data := stage(tables[name])
		if err := writeVar(f, name, data.Elements); err != nil {
			return fmt.Errorf("writing variable %s to netcdf file: %w",
				name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// ReadNetCDF reads a file written by WriteNetCDF.
func ReadNetCDF(rw cdf.ReaderWriterAt) (*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("opening netcdf file: %w", err)
	}

	g := &Grid{
		Tables: map[string]*lagrange.Table[float64]{},
		Units:  map[string]string{},
	}
	buf, err := readVar(f, TimeDim)
	if err != nil {
		return nil, err
	}
	g.Times = buf.([]float64)

	buf, err = readVar(f, IDDim)
	if err != nil {
		return nil, err
	}
	for _, id := range buf.([]int32) {
		g.IDs = append(g.IDs, int64(id))
	}

	for _, name := range f.Header.Variables() {
		if name == TimeDim || name == IDDim {
			continue
		}
		dims := f.Header.Lengths(name)
		if len(dims) != 2 {
			return nil, fmt.Errorf("Variable %s has %d dimensions, not 2.",
				name, len(dims))
		}
		buf, err := readVar(f, name)
		if err != nil {
			return nil, err
		}
		raw := buf.([]float64)
		if len(raw) != dims[0]*dims[1] {
			return nil, fmt.Errorf("Variable %s holds %d values, but its "+
				"dimensions are %d x %d.", name, len(raw), dims[0], dims[1])
		}
		data := sparse.ZerosDense(dims...)
		for r := 0; r < dims[0]; r++ {
			for c := 0; c < dims[1]; c++ {
				data.Set(raw[r*dims[1]+c], r, c)
			}
		}

		t, err := unstage(data, g.IDs)
		if err != nil {
			return nil, fmt.Errorf("Variable %s: %w", name, err)
		}
		g.Tables[name] = t
		if u, ok := f.Header.GetAttribute(name, "units").(string); ok {
			g.Units[name] = u
		}
	}
	return g, nil
}

// stage copies a table into a time x sdId array with NaN in every missing
// cell.
func stage(t *lagrange.Table[float64]) *sparse.DenseArray {
	data := sparse.ZerosDense(t.Rows, t.Cols)
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			v := t.At(r, c)
			if t.IsMissing(v) {
				v = math.NaN()
			}
			data.Set(v, r, c)
		}
	}
	return data
}

// unstage is the inverse of stage. ids gives the identifier of each column.
func unstage(data *sparse.DenseArray, ids []int64) (*lagrange.Table[float64], error) {
	if len(data.Shape) != 2 || data.Shape[1] != len(ids) {
		return nil, fmt.Errorf("An array with shape %v cannot hold a table "+
			"with %d columns: %w", data.Shape, len(ids),
			ragged.ErrShapeMismatch)
	}
	rows, cols := data.Shape[0], data.Shape[1]
	t := &lagrange.Table[float64]{
		Rows: rows, Cols: cols,
		Data:    make([]float64, rows*cols),
		Missing: math.NaN(),
		ColKeys: append([]int64{}, ids...),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t.Data[r*cols+c] = data.Get(r, c)
		}
	}
	return t, nil
}

func writeVar(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	return err
}

func readVar(f *cdf.File, name string) (interface{}, error) {
	if len(f.Header.Lengths(name)) == 0 {
		return nil, fmt.Errorf("Variable %s is not in the netcdf file.", name)
	}
	total := 1
	for _, n := range f.Header.Lengths(name) {
		total *= n
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(total)
	n, err := r.Read(buf)
	if err != nil && !(err == io.EOF && n == total) {
		return nil, fmt.Errorf("reading netcdf variable %s: %w", name, err)
	}
	return buf, nil
}
