package cuckoo

import (
	"testing"
)

func intsEq(x, y []int) bool {
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

func TestCount(t *testing.T) {
	tests := []struct {
		keys   []int64
		n      int
		counts []int
		ok     bool
	}{
		{[]int64{}, 0, []int{}, true},
		{[]int64{}, 3, []int{0, 0, 0}, true},
		{[]int64{0, 2, 2, 0, 2}, 4, []int{2, 0, 3, 0}, true},
		{[]int64{0, 4}, 4, nil, false},
		{[]int64{-1}, 4, nil, false},
	}

	for i := range tests {
		counts, err := Count(tests[i].keys, tests[i].n)
		if (err == nil) != tests[i].ok {
			t.Errorf("%d) Expected ok = %v, got error %v.", i, tests[i].ok, err)
			continue
		}
		if tests[i].ok && !intsEq(counts, tests[i].counts) {
			t.Errorf("%d) Expected counts = %v, got %v.",
				i, tests[i].counts, counts)
		}
	}
}

func TestBin(t *testing.T) {
	x := []string{"a", "b", "c", "d", "e", "f"}
	keys := []int64{2, 0, 2, 1, 0, 2}

	out, offsets, err := Bin(x, keys, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v.", err)
	}

	expOut := []string{"b", "e", "d", "a", "c", "f"}
	for i := range expOut {
		if out[i] != expOut[i] {
			t.Errorf("Expected out = %v, got %v.", expOut, out)
			break
		}
	}
	if !intsEq(offsets, []int{0, 2, 3, 6, 6}) {
		t.Errorf("Expected offsets = [0 2 3 6 6], got %v.", offsets)
	}

	if _, _, err := Bin(x, keys[:2], 4); err == nil {
		t.Errorf("Expected an error for mismatched lengths.")
	}
}
