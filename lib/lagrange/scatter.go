package lagrange

/* scatter.go contains ToDense, which builds the full Lagrangian table. */

import (
	"fmt"
	"math"
	"slices"

	"github.com/phil-mansfield/sdtrace/lib/diag"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

// SparseFillRatio is the fill ratio below which ToDense warns that most of
// the table is missing values.
const SparseFillRatio = 0.5

// Uniqueness selects what ToDense does when two values land in the same
// cell.
type Uniqueness int

const (
	// LastWriteWins writes values in their flattened order, so a later
	// value overwrites an earlier one. No check is made, and a
	// diag.UniquenessUnchecked warning is sent on every call.
	LastWriteWins Uniqueness = iota
	// EnforceUnique fails with ragged.ErrNonUniqueIndex if any cell would
	// be written twice.
	EnforceUnique
)

func (u Uniqueness) String() string {
	switch u {
	case LastWriteWins:
		return "LastWriteWins"
	case EnforceUnique:
		return "EnforceUnique"
	}
	return fmt.Sprintf("Uniqueness(%d)", int(u))
}

// Rows decides which table row each outer position of the data is written
// to. Use SequentialRows or KeyedRows.
type Rows interface {
	// rows returns the row of every outer position and the number of
	// rows in the table.
	rows(outer int) (row []int, nRows int, err error)
}

type sequentialRows struct{}

func (sequentialRows) rows(outer int) ([]int, int, error) {
	row := make([]int, outer)
	for i := range row {
		row[i] = i
	}
	return row, outer, nil
}

// SequentialRows writes outer position i to row i.
func SequentialRows() Rows { return sequentialRows{} }

type keyedRows struct {
	keys  *ragged.Array[int64]
	depth int
	err   error
}

// KeyedRows writes outer position i to row keys[i]. keys must be a
// one-dimensional array of non-negative integers with one entry per outer
// position, and the table gets max(keys)+1 rows. Rows with no key are
// missing everywhere.
func KeyedRows[K ragged.Integer](keys *ragged.Array[K]) Rows {
	k := keyedRows{depth: keys.Depth()}
	if m, ok := ragged.Max(keys); ok && m > 0 && uint64(m) > math.MaxInt64 {
		k.err = fmt.Errorf("Row key %d does not fit in an int64: %w",
			m, ragged.ErrInvalidIndex)
		return k
	}
	k.keys = ragged.Map(keys, func(x K) int64 { return int64(x) })
	return k
}

func (k keyedRows) rows(outer int) ([]int, int, error) {
	if k.err != nil {
		return nil, 0, k.err
	}
	if k.depth != 1 {
		return nil, 0, fmt.Errorf("Row keys must be one-dimensional, but "+
			"have %d axes: %w", k.depth, ragged.ErrInvalidIndex)
	}
	if k.keys.Len() != outer {
		return nil, 0, fmt.Errorf("%d row keys were given for %d outer "+
			"positions: %w", k.keys.Len(), outer, ragged.ErrShapeMismatch)
	}
	if err := ragged.NonNegative(k.keys); err != nil {
		return nil, 0, fmt.Errorf("Invalid row keys: %w", err)
	}

	row := make([]int, outer)
	nRows := 0
	for i, key := range k.keys.Values {
		if key >= math.MaxInt {
			return nil, 0, fmt.Errorf("Row key %d is too large: %w",
				key, ragged.ErrTableTooLarge)
		}
		row[i] = int(key)
		if row[i]+1 > nRows {
			nRows = row[i] + 1
		}
	}
	return row, nRows, nil
}

// Options configures ToDense. The zero value uses sequential rows, last
// write wins, a zero Missing value and discards warnings.
type Options[V comparable] struct {
	Rows       Rows
	Uniqueness Uniqueness
	Missing    V
	Sink       diag.Sink
}

// FloatOptions returns Options which mark missing cells with NaN.
func FloatOptions() Options[float64] {
	return Options[float64]{Missing: math.NaN()}
}

// ToDense scatters a two-dimensional ragged attribute into a table with one
// column per identifier. ids must have exactly the same shape as data, and
// ids[t][j] is the identifier of the superdroplet that data[t][j] belongs
// to. Column c of the result holds identifier c, so the table has
// max(ids)+1 columns and ColKeys[c] == c.
//
// All validation happens before the table is allocated: on error nothing is
// returned.
func ToDense[V comparable, I ragged.Integer](
	data *ragged.Array[V], ids *ragged.Array[I], opt Options[V],
) (*Table[V], error) {
	sink := diag.OrDiscard(opt.Sink)
	rowSel := opt.Rows
	if rowSel == nil {
		rowSel = SequentialRows()
	}

	if data.Depth() != 2 {
		return nil, fmt.Errorf("ToDense requires two-dimensional data, but "+
			"the data has %d axes: %w", data.Depth(), ragged.ErrShapeMismatch)
	}
	if err := ragged.SameShape(data, ids); err != nil {
		return nil, fmt.Errorf("Data and identifiers are not co-indexed: %w",
			err)
	}
	if err := ragged.NonNegative(ids); err != nil {
		return nil, fmt.Errorf("Invalid identifiers: %w", err)
	}

	outer := data.Len()
	row, nRows, err := rowSel.rows(outer)
	if err != nil {
		return nil, err
	}

	nCols := 0
	if m, ok := ragged.Max(ids); ok {
		if uint64(m) >= math.MaxInt {
			return nil, fmt.Errorf("The largest identifier, %d, is too "+
				"large: %w", m, ragged.ErrTableTooLarge)
		}
		nCols = int(m) + 1
	}
	if nCols > 0 && nRows > math.MaxInt/nCols {
		return nil, fmt.Errorf("A %d x %d table has too many cells: %w",
			nRows, nCols, ragged.ErrTableTooLarge)
	}

	cells := nRows * nCols
	if cells > 0 {
		fill := float64(ids.Count()) / float64(cells)
		if fill < SparseFillRatio {
			sink.Warn(diag.Warning{
				Kind: diag.Sparse,
				Msg: fmt.Sprintf("Only %.3g%% of the %d x %d table's cells "+
					"will hold values.", 100*fill, nRows, nCols),
				FillRatio: fill,
			})
		}
	}

	addr := addresses(ids, row, nCols)

	switch opt.Uniqueness {
	case EnforceUnique:
		if err := checkUnique(addr, nCols); err != nil {
			return nil, err
		}
	case LastWriteWins:
		sink.Warn(diag.Warning{
			Kind: diag.UniquenessUnchecked,
			Msg: "Identifiers were not checked for uniqueness, so " +
				"repeated (row, identifier) pairs keep the last value.",
		})
	default:
		return nil, fmt.Errorf("Unrecognized Uniqueness value %d.",
			int(opt.Uniqueness))
	}

	t := newTable(nRows, nCols, opt.Missing)
	for c := range t.ColKeys {
		t.ColKeys[c] = int64(c)
	}
	for i, a := range addr {
		t.Data[a] = data.Values[i]
	}
	return t, nil
}

// addresses returns row*nCols + id for every element, with each outer
// position's row broadcast over its list.
func addresses[I ragged.Integer](
	ids *ragged.Array[I], row []int, nCols int,
) []int {
	addr := make([]int, ids.Count())
	off := ids.Offsets[0]
	for t := 0; t < ids.Len(); t++ {
		base := row[t] * nCols
		for j := off[t]; j < off[t+1]; j++ {
			addr[j] = base + int(ids.Values[j])
		}
	}
	return addr
}

func checkUnique(addr []int, nCols int) error {
	sorted := append([]int{}, addr...)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("Identifier %d appears more than once in "+
				"row %d: %w", sorted[i]%nCols, sorted[i]/nCols,
				ragged.ErrNonUniqueIndex)
		}
	}
	return nil
}

// CheckUnique returns an error wrapping ErrNonUniqueIndex if an identifier
// appears more than once at any outer position of ids. It is the check
// ToDense runs with EnforceUnique and sequential rows, but it never
// allocates a table, so it is safe for identifier ranges far too large to
// convert.
func CheckUnique[I ragged.Integer](ids *ragged.Array[I]) error {
	if ids.Depth() != 2 {
		return fmt.Errorf("Identifiers must be two-dimensional, but have "+
			"%d axes: %w", ids.Depth(), ragged.ErrShapeMismatch)
	}
	if err := ragged.NonNegative(ids); err != nil {
		return fmt.Errorf("Invalid identifiers: %w", err)
	}

	var buf []I
	for t := 0; t < ids.Len(); t++ {
		buf = append(buf[:0], ids.List(t)...)
		slices.Sort(buf)
		for j := 1; j < len(buf); j++ {
			if buf[j] == buf[j-1] {
				return fmt.Errorf("Identifier %d appears more than once in "+
					"row %d: %w", buf[j], t, ragged.ErrNonUniqueIndex)
			}
		}
	}
	return nil
}
