package lagrange

import (
	"errors"
	"math"
	"testing"

	"github.com/phil-mansfield/sdtrace/lib/diag"
	"github.com/phil-mansfield/sdtrace/lib/eq"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

var nan = math.NaN()

func TestToDenseSequential(t *testing.T) {
	data := ragged.FromNested2([][]float64{{10, 20, 30}, {}, {40, 50}})
	ids := ragged.FromNested2([][]int{{0, 1, 2}, {}, {2, 3}})

	c := &diag.Collector{}
	opt := FloatOptions()
	opt.Sink = c

	tab, err := ToDense(data, ids, opt)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if tab.Rows != 3 || tab.Cols != 4 {
		t.Fatalf("Expected a 3 x 4 table, got %d x %d.", tab.Rows, tab.Cols)
	}

	exp := [][]float64{
		{10, 20, 30, nan},
		{nan, nan, nan, nan},
		{nan, nan, 40, 50},
	}
	for r := range exp {
		if !eq.Floats(tab.Row(r), exp[r]) {
			t.Errorf("Expected row %d = %v, got %v.", r, exp[r], tab.Row(r))
		}
	}
	if !eq.Slices(tab.ColKeys, []int64{0, 1, 2, 3}) {
		t.Errorf("Expected ColKeys = [0 1 2 3], got %v.", tab.ColKeys)
	}
	if !tab.IsMissing(tab.At(1, 0)) || tab.IsMissing(tab.At(2, 3)) {
		t.Errorf("IsMissing disagrees with the table contents.")
	}
	if tab.Present() != 5 {
		t.Errorf("Expected 5 present cells, got %d.", tab.Present())
	}

	// 5 of 12 cells are filled.
	if !c.Has(diag.Sparse) {
		t.Errorf("Expected a sparsity warning.")
	}
	if !c.Has(diag.UniquenessUnchecked) {
		t.Errorf("Expected an unchecked uniqueness warning.")
	}
}

func TestToDenseKeyed(t *testing.T) {
	data := ragged.FromNested2([][]float64{{10, 20, 30}, {}, {40, 50}, {90}})
	ids := ragged.FromNested2([][]int{{0, 1, 2}, {}, {2, 3}, {0}})
	keys := ragged.Flat([]int{0, 1, 2, 0})

	opt := FloatOptions()
	opt.Rows = KeyedRows(keys)

	tab, err := ToDense(data, ids, opt)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if tab.Rows != 3 || tab.Cols != 4 {
		t.Fatalf("Expected a 3 x 4 table, got %d x %d.", tab.Rows, tab.Cols)
	}
	if !eq.Floats(tab.Row(0), []float64{90, 20, 30, nan}) {
		t.Errorf("Expected row 0 = [90 20 30 NaN], got %v.", tab.Row(0))
	}
	if !eq.Floats(tab.Row(2), []float64{nan, nan, 40, 50}) {
		t.Errorf("Expected row 2 = [NaN NaN 40 50], got %v.", tab.Row(2))
	}

	opt.Uniqueness = EnforceUnique
	c := &diag.Collector{}
	opt.Sink = c
	_, err = ToDense(data, ids, opt)
	if !errors.Is(err, ragged.ErrNonUniqueIndex) {
		t.Errorf("Expected ErrNonUniqueIndex, got %v.", err)
	}
	if c.Has(diag.UniquenessUnchecked) {
		t.Errorf("Expected no unchecked uniqueness warning with EnforceUnique.")
	}
}

func TestToDenseKeyedGaps(t *testing.T) {
	data := ragged.FromNested2([][]int{{1}, {2}})
	ids := ragged.FromNested2([][]int{{0}, {0}})
	opt := Options[int]{Missing: -1, Rows: KeyedRows(ragged.Flat([]uint8{3, 0}))}

	tab, err := ToDense(data, ids, opt)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if !eq.Slices(tab.Data, []int{2, -1, -1, 1}) {
		t.Errorf("Expected data = [2 -1 -1 1], got %v.", tab.Data)
	}
}

func TestToDenseErrors(t *testing.T) {
	data := ragged.FromNested2([][]float64{{1, 2}, {3}})
	tests := []struct {
		ids  *ragged.Array[int]
		rows Rows
		err  error
	}{
		{ragged.FromNested2([][]int{{0}, {1, 2}}), nil, ragged.ErrShapeMismatch},
		{ragged.FromNested2([][]int{{0, 1}}), nil, ragged.ErrShapeMismatch},
		{ragged.FromNested2([][]int{{0, -1}, {1}}), nil, ragged.ErrInvalidIndex},
		{ragged.FromNested2([][]int{{0, 1}, {1}}),
			KeyedRows(ragged.Flat([]int{0, -2})), ragged.ErrInvalidIndex},
		{ragged.FromNested2([][]int{{0, 1}, {1}}),
			KeyedRows(ragged.Flat([]int{0, 1, 2})), ragged.ErrShapeMismatch},
		{ragged.FromNested2([][]int{{0, 1}, {1}}),
			KeyedRows(ragged.FromNested2([][]int{{0}, {1}})), ragged.ErrInvalidIndex},
		{ragged.FromNested2([][]int{{0, math.MaxInt64}, {1}}), nil,
			ragged.ErrTableTooLarge},
	}

	for i := range tests {
		opt := FloatOptions()
		opt.Rows = tests[i].rows
		opt.Uniqueness = EnforceUnique
		_, err := ToDense(data, tests[i].ids, opt)
		if !errors.Is(err, tests[i].err) {
			t.Errorf("%d) Expected %v, got %v.", i, tests[i].err, err)
		}
	}

	deep := ragged.FromNested3([][][]float64{{{1}}})
	deepIDs := ragged.FromNested3([][][]int{{{0}}})
	if _, err := ToDense(deep, deepIDs, FloatOptions()); !errors.Is(err, ragged.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for 3D data, got %v.", err)
	}
}

func TestToDenseOverflow(t *testing.T) {
	data := ragged.FromNested2([][]float64{{1}, {2}})
	ids := ragged.FromNested2([][]int64{{0}, {math.MaxInt64 / 2}})
	opt := FloatOptions()
	opt.Rows = KeyedRows(ragged.Flat([]int64{0, 4}))

	_, err := ToDense(data, ids, opt)
	if !errors.Is(err, ragged.ErrTableTooLarge) {
		t.Errorf("Expected ErrTableTooLarge, got %v.", err)
	}
}

func TestSparsityThreshold(t *testing.T) {
	tests := []struct {
		ids    [][]int
		sparse bool
	}{
		{[][]int{{0, 1}, {0, 1}}, false},    // 4 / 4
		{[][]int{{0}, {1}}, false},          // 2 / 4
		{[][]int{{0}, {}}, false},           // 1 / 2
		{[][]int{{0, 2}, {}}, true},         // 2 / 6
		{[][]int{{3}, {0}}, true},           // 2 / 8
		{[][]int{{}, {}}, false},            // empty table
		{[][]int{{0, 1, 2}, {0, 1}}, false}, // 5 / 6
	}

	for i := range tests {
		ids := ragged.FromNested2(tests[i].ids)
		data := ragged.Map(ids, func(id int) float64 { return float64(id) })

		c := &diag.Collector{}
		opt := FloatOptions()
		opt.Sink = c
		opt.Uniqueness = EnforceUnique
		if _, err := ToDense(data, ids, opt); err != nil {
			t.Errorf("%d) Expected no error, got %v.", i, err)
			continue
		}
		if c.Has(diag.Sparse) != tests[i].sparse {
			t.Errorf("%d) Expected sparse warning = %v, got %v.",
				i, tests[i].sparse, c.Has(diag.Sparse))
		}
	}
}

func TestMatrix(t *testing.T) {
	data := ragged.FromNested2([][]float64{{1, 2}, {3}})
	ids := ragged.FromNested2([][]int{{0, 1}, {1}})
	tab, err := ToDense(data, ids, FloatOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}

	m := Matrix(tab)
	r, c := m.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("Expected a 2 x 2 matrix, got %d x %d.", r, c)
	}
	if m.At(1, 1) != 3 || !math.IsNaN(m.At(1, 0)) {
		t.Errorf("Unexpected matrix contents %v.", m.RawMatrix().Data)
	}

	empty := &Table[float64]{}
	if Matrix(empty) != nil {
		t.Errorf("Expected a nil matrix for an empty table.")
	}
}

func TestCheckUnique(t *testing.T) {
	tests := []struct {
		ids *ragged.Array[int64]
		err error
	}{
		{ragged.FromNested2([][]int64{{0, 1, 2}, {}, {2, 0}}), nil},
		{ragged.FromNested2([][]int64{{5, 1 << 40}, {1 << 40}}), nil},
		{ragged.FromNested2([][]int64{{0, 1}, {3, 1, 3}}), ragged.ErrNonUniqueIndex},
		{ragged.FromNested2([][]int64{{0, -1}}), ragged.ErrInvalidIndex},
		{ragged.Flat([]int64{0, 1}), ragged.ErrShapeMismatch},
	}

	for i := range tests {
		err := CheckUnique(tests[i].ids)
		if tests[i].err == nil && err != nil {
			t.Errorf("%d) Expected no error, got %v.", i, err)
		} else if tests[i].err != nil && !errors.Is(err, tests[i].err) {
			t.Errorf("%d) Expected %v, got %v.", i, tests[i].err, err)
		}
	}

	// Agrees with ToDense for sequential rows.
	ids := ragged.FromNested2([][]int64{{0, 1}, {2, 2}})
	_, denseErr := ToDense(ids, ids, Options[int64]{
		Uniqueness: EnforceUnique, Missing: -1,
	})
	if !errors.Is(denseErr, ragged.ErrNonUniqueIndex) ||
		!errors.Is(CheckUnique(ids), ragged.ErrNonUniqueIndex) {
		t.Errorf("Expected both checks to find the repeated identifier.")
	}
}
