package lagrange

/* gather.go contains the functions which extract the trajectories of
individual superdroplets. */

import (
	"fmt"

	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

func checkGather[V comparable, I ragged.Integer](
	data *ragged.Array[V], ids *ragged.Array[I],
) error {
	if data.Depth() != 2 {
		return fmt.Errorf("Trajectories require two-dimensional data, but "+
			"the data has %d axes: %w", data.Depth(), ragged.ErrShapeMismatch)
	}
	if err := ragged.SameShape(data, ids); err != nil {
		return fmt.Errorf("Data and identifiers are not co-indexed: %w", err)
	}
	return nil
}

// TrajectoryOf returns the value of data for the superdroplet with
// identifier target at every outer position. Positions where the
// superdroplet is absent hold missing. If target appears more than once at
// any position, ragged.ErrDuplicateIdentifier is returned.
func TrajectoryOf[V comparable, I ragged.Integer](
	data *ragged.Array[V], ids *ragged.Array[I], target I, missing V,
) ([]V, error) {
	if err := checkGather(data, ids); err != nil {
		return nil, err
	}

	out := make([]V, data.Len())
	off := ids.Offsets[0]
	for t := range out {
		out[t] = missing
		found := false
		for j := off[t]; j < off[t+1]; j++ {
			if ids.Values[j] != target {
				continue
			}
			if found {
				return nil, fmt.Errorf("Identifier %d appears more than "+
					"once at outer position %d: %w", target, t,
					ragged.ErrDuplicateIdentifier)
			}
			found = true
			out[t] = data.Values[j]
		}
	}
	return out, nil
}

// TrajectoriesFor returns a table with one row per outer position and one
// column per entry of targets, in the order given. Column c is
// TrajectoryOf(data, ids, targets[c], missing). The identifiers are stored
// in ColKeys. Repeated targets get repeated columns.
func TrajectoriesFor[V comparable, I ragged.Integer](
	data *ragged.Array[V], ids *ragged.Array[I], targets []I, missing V,
) (*Table[V], error) {
	if err := checkGather(data, ids); err != nil {
		return nil, err
	}

	cols := map[I][]int{}
	for c, id := range targets {
		cols[id] = append(cols[id], c)
	}

	// lastRow[c] is the last row column c was written in.
	lastRow := make([]int, len(targets))
	for c := range lastRow {
		lastRow[c] = -1
	}

	tab := newTable(data.Len(), len(targets), missing)
	for c, id := range targets {
		tab.ColKeys[c] = int64(id)
	}

	off := ids.Offsets[0]
	for t := 0; t < data.Len(); t++ {
		row := tab.Row(t)
		for j := off[t]; j < off[t+1]; j++ {
			cs, ok := cols[ids.Values[j]]
			if !ok {
				continue
			}
			for _, c := range cs {
				if lastRow[c] == t {
					return nil, fmt.Errorf("Identifier %d appears more "+
						"than once at outer position %d: %w", targets[c], t,
						ragged.ErrDuplicateIdentifier)
				}
				lastRow[c] = t
				row[c] = data.Values[j]
			}
		}
	}
	return tab, nil
}
