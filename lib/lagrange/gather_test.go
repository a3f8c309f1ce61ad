package lagrange

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/phil-mansfield/sdtrace/lib/eq"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

func TestTrajectoryOf(t *testing.T) {
	data := ragged.FromNested2([][]float64{{10, 20, 30}, {}, {40, 50}})
	ids := ragged.FromNested2([][]int{{0, 1, 2}, {}, {2, 3}})

	tests := []struct {
		id  int
		exp []float64
	}{
		{0, []float64{10, nan, nan}},
		{2, []float64{30, nan, 40}},
		{3, []float64{nan, nan, 50}},
		{7, []float64{nan, nan, nan}},
	}

	for i := range tests {
		traj, err := TrajectoryOf(data, ids, tests[i].id, math.NaN())
		if err != nil {
			t.Errorf("%d) Expected no error, got %v.", i, err)
		} else if !eq.Floats(traj, tests[i].exp) {
			t.Errorf("%d) Expected trajectory %v, got %v.",
				i, tests[i].exp, traj)
		}
	}

	dup := ragged.FromNested2([][]int{{0, 1, 0}, {}, {2, 3}})
	if _, err := TrajectoryOf(data, dup, 0, nan); !errors.Is(err, ragged.ErrDuplicateIdentifier) {
		t.Errorf("Expected ErrDuplicateIdentifier, got %v.", err)
	}
	bad := ragged.FromNested2([][]int{{0, 1}, {2}, {2, 3}})
	if _, err := TrajectoryOf(data, bad, 0, nan); !errors.Is(err, ragged.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v.", err)
	}
}

func TestTrajectoriesFor(t *testing.T) {
	data := ragged.FromNested2([][]float64{{10, 20, 30}, {}, {40, 50}})
	ids := ragged.FromNested2([][]int{{0, 1, 2}, {}, {2, 3}})

	tab, err := TrajectoriesFor(data, ids, []int{3, 0, 9, 3}, nan)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if tab.Rows != 3 || tab.Cols != 4 {
		t.Fatalf("Expected a 3 x 4 table, got %d x %d.", tab.Rows, tab.Cols)
	}
	if !eq.Slices(tab.ColKeys, []int64{3, 0, 9, 3}) {
		t.Errorf("Expected ColKeys in request order, got %v.", tab.ColKeys)
	}
	exp := [][]float64{
		{nan, 10, nan, nan},
		{nan, nan, nan, nan},
		{50, nan, nan, 50},
	}
	for r := range exp {
		if !eq.Floats(tab.Row(r), exp[r]) {
			t.Errorf("Expected row %d = %v, got %v.", r, exp[r], tab.Row(r))
		}
	}

	dup := ragged.FromNested2([][]int{{0, 1, 2}, {}, {3, 3}})
	if _, err := TrajectoriesFor(data, dup, []int{3}, nan); !errors.Is(err, ragged.ErrDuplicateIdentifier) {
		t.Errorf("Expected ErrDuplicateIdentifier, got %v.", err)
	}
}

// Every (time, id) pair is unique, so gathering columns out of the dense
// table must reproduce the per-id trajectories.
func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1337))
	nTime, nID := 20, 50

	counts := make([]int, nTime)
	idVals, dataVals := []int{}, []float64{}
	for ti := 0; ti < nTime; ti++ {
		for _, id := range rng.Perm(nID) {
			if rng.Float64() < 0.7 {
				idVals = append(idVals, id)
				dataVals = append(dataVals, rng.Float64())
				counts[ti]++
			}
		}
	}

	ids, err := ragged.New(idVals, counts)
	if err != nil {
		t.Fatal(err)
	}
	data, err := ragged.New(dataVals, counts)
	if err != nil {
		t.Fatal(err)
	}

	opt := FloatOptions()
	opt.Uniqueness = EnforceUnique
	tab, err := ToDense(data, ids, opt)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}

	targets := make([]int, tab.Cols)
	for c := range targets {
		targets[c] = c
	}
	batch, err := TrajectoriesFor(data, ids, targets, nan)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}

	for c := 0; c < tab.Cols; c++ {
		traj, err := TrajectoryOf(data, ids, c, nan)
		if err != nil {
			t.Fatalf("Expected no error, got %v.", err)
		}
		if !eq.Floats(traj, tab.Col(c)) {
			t.Errorf("Expected id %d trajectory %v, got column %v.",
				c, traj, tab.Col(c))
		}
		if !eq.Floats(traj, batch.Col(c)) {
			t.Errorf("Expected id %d trajectory %v, got batch column %v.",
				c, traj, batch.Col(c))
		}
	}
}

func TestSelectRows(t *testing.T) {
	tab := newTable(3, 2, -1)
	copy(tab.Data, []int{0, 1, 2, 3, 4, 5})

	sel, err := SelectRows(tab, []int{2, 0})
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}
	if !eq.Slices(sel.Data, []int{4, 5, 0, 1}) {
		t.Errorf("Expected [4 5 0 1], got %v.", sel.Data)
	}
	if _, err := SelectRows(tab, []int{3}); err == nil {
		t.Errorf("Expected an error for an out-of-range row.")
	}
}

func TestMatrixCopiesTable(t *testing.T) {
	tab := newTable(2, 3, math.NaN())
	copy(tab.Data, []float64{1, 2, math.NaN(), 4, 5, 6})

	m := Matrix(tab)
	if r, c := m.Dims(); r != 2 || c != 3 {
		t.Fatalf("Expected a 2 x 3 matrix, got %d x %d.", r, c)
	}
	if m.At(1, 0) != 4 || !math.IsNaN(m.At(0, 2)) {
		t.Errorf("Expected At(1, 0) = 4 and At(0, 2) = NaN, got %g and %g.",
			m.At(1, 0), m.At(0, 2))
	}

	m.Set(0, 0, 100)
	if tab.At(0, 0) != 1 {
		t.Errorf("Expected the matrix to copy the table, but the table "+
			"changed to %g.", tab.At(0, 0))
	}

	if Matrix(newTable(0, 3, math.NaN())) != nil {
		t.Errorf("Expected an empty table to give a nil matrix.")
	}
}
