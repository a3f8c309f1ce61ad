package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/phil-mansfield/sdtrace/lib/euler"
	"github.com/phil-mansfield/sdtrace/lib/lagrange"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
)

// TrajectoryRecord is one row of a trajectory CSV file.
type TrajectoryRecord struct {
	Time      float64 `csv:"time"`
	SdID      int64   `csv:"sdId"`
	Attribute string  `csv:"attribute"`
	Value     float64 `csv:"value"`
}

// BucketRecord is one row of a rebinned-statistics CSV file.
type BucketRecord struct {
	TimeIndex int     `csv:"time_index"`
	Time      float64 `csv:"time"`
	Bucket    int     `csv:"bucket"`
	Count     int     `csv:"count"`
	Sum       float64 `csv:"sum"`
	Mean      float64 `csv:"mean"`
}

// Trajectories flattens trajectory tables into long records, ordered by
// attribute name, then time, then column. Missing cells are skipped.
func Trajectories(
	times []float64, tables map[string]*lagrange.Table[float64],
) ([]TrajectoryRecord, error) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	records := []TrajectoryRecord{}
	for _, name := range names {
		t := tables[name]
		if t.Rows != len(times) {
			return nil, fmt.Errorf("Table '%s' has %d rows, but %d times were "+
				"given: %w", name, t.Rows, len(times), ragged.ErrShapeMismatch)
		}
		for r := 0; r < t.Rows; r++ {
			for c, v := range t.Row(r) {
				if t.IsMissing(v) {
					continue
				}
				records = append(records, TrajectoryRecord{
					Time: times[r], SdID: t.ColKeys[c],
					Attribute: name, Value: v,
				})
			}
		}
	}
	return records, nil
}

// WriteTrajectoriesCSV writes trajectory tables to w as
// time,sdId,attribute,value rows.
func WriteTrajectoriesCSV(
	w io.Writer, times []float64, tables map[string]*lagrange.Table[float64],
) error {
	records, err := Trajectories(times, tables)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing trajectories: %w", err)
	}
	return nil
}

// Buckets computes the count, sum and mean of every sub-bucket of a
// [T, M, var] rebinned series.
func Buckets(times []float64, rebinned *ragged.Array[float64]) ([]BucketRecord, error) {
	if rebinned.Depth() != 3 {
		return nil, fmt.Errorf("Expected a rebinned series with 3 axes, "+
			"got %d: %w", rebinned.Depth(), ragged.ErrShapeMismatch)
	}
	if rebinned.Len() != len(times) {
		return nil, fmt.Errorf("The series has %d times, but %d times were "+
			"given: %w", rebinned.Len(), len(times), ragged.ErrShapeMismatch)
	}

	sums, err := euler.Reduce(rebinned, euler.Sum)
	if err != nil {
		return nil, err
	}
	means, err := euler.Reduce(rebinned, euler.Mean)
	if err != nil {
		return nil, err
	}

	records := make([]BucketRecord, 0, rebinned.Buckets())
	for t := 0; t < rebinned.Len(); t++ {
		start, end := rebinned.Offsets[0][t], rebinned.Offsets[0][t+1]
		for b := start; b < end; b++ {
			records = append(records, BucketRecord{
				TimeIndex: t, Time: times[t], Bucket: b - start,
				Count: len(rebinned.Bucket(b)),
				Sum:   sums.Values[b], Mean: means.Values[b],
			})
		}
	}
	return records, nil
}

// WriteBucketsCSV writes the per-bucket statistics of a [T, M, var]
// rebinned series to w.
func WriteBucketsCSV(w io.Writer, times []float64, rebinned *ragged.Array[float64]) error {
	records, err := Buckets(times, rebinned)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing buckets: %w", err)
	}
	return nil
}
