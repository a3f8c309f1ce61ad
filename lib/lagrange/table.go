/*package lagrange converts ragged superdroplet output into the Lagrangian
view: one column per superdroplet identifier and one row per output time.

ToDense scatters every value into a full table at once. TrajectoryOf and
TrajectoriesFor gather the time series of a handful of chosen superdroplets
without ever building the full table.*/
package lagrange

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Table is a dense, row-major table. Data[r*Cols + c] holds the value in row
// r and column c. Cells that were never written hold Missing. ColKeys[c] is
// the superdroplet identifier stored in column c.
type Table[V comparable] struct {
	Rows, Cols int
	Data       []V
	Missing    V
	ColKeys    []int64
}

// newTable allocates a table filled with missing.
func newTable[V comparable](rows, cols int, missing V) *Table[V] {
	t := &Table[V]{
		Rows: rows, Cols: cols,
		Data:    make([]V, rows*cols),
		Missing: missing,
		ColKeys: make([]int64, cols),
	}
	for i := range t.Data {
		t.Data[i] = missing
	}
	return t
}

// At returns the value at row r and column c.
func (t *Table[V]) At(r, c int) V { return t.Data[r*t.Cols+c] }

// Row returns row r. The returned slice aliases t.Data.
func (t *Table[V]) Row(r int) []V { return t.Data[r*t.Cols : (r+1)*t.Cols] }

// Col returns a copy of column c.
func (t *Table[V]) Col(c int) []V {
	out := make([]V, t.Rows)
	for r := range out {
		out[r] = t.Data[r*t.Cols+c]
	}
	return out
}

// IsMissing returns true if v is the table's missing value. A NaN Missing
// matches every NaN.
func (t *Table[V]) IsMissing(v V) bool {
	if v == t.Missing {
		return true
	}
	return isNaN(v) && isNaN(t.Missing)
}

// Present returns the number of non-missing cells.
func (t *Table[V]) Present() int {
	n := 0
	for _, v := range t.Data {
		if !t.IsMissing(v) {
			n++
		}
	}
	return n
}

// SelectRows returns a new table containing only the given rows, in the
// given order.
func SelectRows[V comparable](t *Table[V], rows []int) (*Table[V], error) {
	out := newTable(len(rows), t.Cols, t.Missing)
	copy(out.ColKeys, t.ColKeys)
	for i, r := range rows {
		if r < 0 || r >= t.Rows {
			return nil, fmt.Errorf("Row %d is out of range for a table "+
				"with %d rows.", r, t.Rows)
		}
		copy(out.Row(i), t.Row(r))
	}
	return out, nil
}

// Matrix copies a floating point table into a gonum matrix. Missing cells
// keep their value (usually NaN). gonum cannot represent empty matrices, so
// a table with no rows or no columns returns nil.
func Matrix(t *Table[float64]) *mat.Dense {
	if t.Rows == 0 || t.Cols == 0 {
		return nil
	}
	return mat.NewDense(t.Rows, t.Cols, append([]float64{}, t.Data...))
}

func isNaN[V comparable](v V) bool {
	switch x := any(v).(type) {
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}
