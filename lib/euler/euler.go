/*package euler converts ragged superdroplet output into the Eulerian view:
every superdroplet at every output time is filed into a sub-bucket (usually
a gridbox) chosen by an integer indexer.

Rebinning inserts exactly one new axis after the last outer axis of the data.
A series with shape [T, var] rebinned by an indexer with M possible values
becomes [T, M, var], and [T, G, var] becomes [T, G, M, var]. Only the
innermost axis of the input may be ragged. Within each sub-bucket,
elements keep the order they had in the input.*/
package euler

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/sdtrace/lib/cuckoo"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
	"github.com/phil-mansfield/sdtrace/lib/thread"
)

// Options configures Rebin. The zero value computes the number of
// sub-buckets from the indexer and uses one worker per CPU.
type Options struct {
	// Bins is the number of sub-buckets. Every indexer value must be
	// smaller than Bins. Zero computes it from the indexer.
	Bins int
	// Workers is the number of goroutines which sort lists. Values <= 0
	// use one per CPU. The result does not depend on Workers.
	Workers int
}

// Rebin is RebinByIndexer or RebinByIndexerBins with an explicit worker
// count.
func Rebin[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I], opt Options,
) (*ragged.Array[V], error) {
	if err := checkRebin(data, indexer); err != nil {
		return nil, err
	}
	m := opt.Bins
	if m == 0 {
		var err error
		if m, err = bins(indexer); err != nil {
			return nil, err
		}
	} else if err := checkBound(indexer, m); err != nil {
		return nil, err
	}
	return rebin(data, indexer, m, thread.Workers(opt.Workers))
}

// RebinByIndexer splits every innermost list of data into M sub-buckets,
// where M is one more than the largest value in indexer. indexer must have
// exactly the same shape as data.
func RebinByIndexer[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I],
) (*ragged.Array[V], error) {
	if err := checkRebin(data, indexer); err != nil {
		return nil, err
	}
	m, err := bins(indexer)
	if err != nil {
		return nil, err
	}
	return rebin(data, indexer, m, thread.Workers(0))
}

// RebinByIndexerBins is RebinByIndexer with a known number of sub-buckets,
// such as the number of gridboxes in a domain. Every indexer value must be
// smaller than m.
func RebinByIndexerBins[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I], m int,
) (*ragged.Array[V], error) {
	if err := checkRebin(data, indexer); err != nil {
		return nil, err
	}
	if err := checkBound(indexer, m); err != nil {
		return nil, err
	}
	return rebin(data, indexer, m, thread.Workers(0))
}

func rebin[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I], m, workers int,
) (*ragged.Array[V], error) {
	sorted, sortedIdx, err := sortByIndexer(data, indexer, m, workers)
	if err != nil {
		return nil, err
	}
	counts, err := countsOf(sortedIdx, m)
	if err != nil {
		return nil, err
	}
	return segment(sorted, counts, m), nil
}

// SortByIndexer stably sorts every innermost list of data (and of indexer
// alongside it) by indexer value. Elements never move between lists.
// Lists are sorted in parallel with one worker per CPU.
func SortByIndexer[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I],
) (*ragged.Array[V], *ragged.Array[I], error) {
	if err := checkRebin(data, indexer); err != nil {
		return nil, nil, err
	}
	m, err := bins(indexer)
	if err != nil {
		return nil, nil, err
	}
	return sortByIndexer(data, indexer, m, thread.Workers(0))
}

func sortByIndexer[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I], m, workers int,
) (*ragged.Array[V], *ragged.Array[I], error) {
	values := make([]V, data.Count())
	idx := make([]I, indexer.Count())
	off := data.BucketOffsets()
	errs := make([]error, data.Buckets())

	thread.WorkerQueue(workers, data.Buckets(), func(worker, b int) {
		start, end := off[b], off[b+1]
		keys := make([]int64, end-start)
		for j := range keys {
			keys[j] = int64(indexer.Values[start+j])
		}
		order, _, err := cuckoo.Order(keys, m)
		if err != nil {
			errs[b] = err
			return
		}
		cuckoo.Permute(data.Values[start:end], order, values[start:end])
		cuckoo.Permute(indexer.Values[start:end], order, idx[start:end])
	})

	for b, err := range errs {
		if err != nil {
			return nil, nil, fmt.Errorf("Could not sort bucket %d: %s: %w",
				b, err.Error(), ragged.ErrInvalidIndex)
		}
	}

	sd, err := ragged.WithValues(data, values)
	if err != nil {
		return nil, nil, err
	}
	si, err := ragged.WithValues(indexer, idx)
	if err != nil {
		return nil, nil, err
	}
	return sd, si, nil
}

// Counts returns the number of indexer values equal to each integer in
// [0, m) within each innermost list. The result has the outer shape of
// indexer followed by a regular axis of length m, which is the counts
// argument expected by RebinByCounts. A one-dimensional indexer is treated
// as a single list.
func Counts[I ragged.Integer](
	indexer *ragged.Array[I], m int,
) (*ragged.Array[int], error) {
	if err := ragged.OnlyLastAxisRagged(indexer); err != nil {
		return nil, err
	}
	if err := ragged.NonNegative(indexer); err != nil {
		return nil, err
	}
	if err := checkBound(indexer, m); err != nil {
		return nil, err
	}
	return countsOf(indexer, m)
}

// countsOf offsets the values of bucket b by b*m so that a single counting
// pass over [0, buckets*m) counts every sub-bucket of every bucket.
func countsOf[I ragged.Integer](
	indexer *ragged.Array[I], m int,
) (*ragged.Array[int], error) {
	nb := indexer.Buckets()
	if m > 0 && nb > math.MaxInt/m {
		return nil, fmt.Errorf("%d buckets with %d sub-buckets each is too "+
			"many to count: %w", nb, m, ragged.ErrTableTooLarge)
	}

	keys := make([]int64, indexer.Count())
	off := indexer.BucketOffsets()
	for b := 0; b < nb; b++ {
		base := int64(b) * int64(m)
		for j := off[b]; j < off[b+1]; j++ {
			keys[j] = base + int64(indexer.Values[j])
		}
	}

	counts, err := cuckoo.Count(keys, nb*m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ragged.ErrInvalidIndex)
	}

	if indexer.Depth() == 1 {
		return ragged.Flat(counts), nil
	}
	offsets := outerOffsets(indexer.Offsets, nb, m)
	return &ragged.Array[int]{Values: counts, Offsets: offsets}, nil
}

// outerOffsets keeps every level of offsets above the innermost lists and
// replaces the last level with one that splits each list into m entries.
func outerOffsets(levels [][]int, nb, m int) [][]int {
	k := len(levels)
	out := make([][]int, k)
	for i := 0; i < k-1; i++ {
		out[i] = append([]int{}, levels[i]...)
	}
	last := make([]int, nb+1)
	for b := range last {
		last[b] = b * m
	}
	out[k-1] = last
	return out
}

// segment splits sorted data, whose innermost lists are already ordered by
// sub-bucket, into sub-buckets with the given per-sub-bucket counts.
func segment[V any](data *ragged.Array[V], counts *ragged.Array[int], m int) *ragged.Array[V] {
	nb := data.Buckets()
	offsets := outerOffsets(data.Offsets, nb, m)
	offsets = append(offsets, cuckoo.Offsets(counts.Values))
	return &ragged.Array[V]{
		Values:  append([]V{}, data.Values...),
		Offsets: offsets,
	}
}

// RebinByCounts splits every innermost list of data into sub-buckets whose
// sizes are given by counts. data must already be sorted by sub-bucket
// within each list. counts has the outer shape of data followed by a
// regular axis of length M, and the counts of every list must sum to the
// length of that list.
func RebinByCounts[V any, C ragged.Integer](
	data *ragged.Array[V], counts *ragged.Array[C],
) (*ragged.Array[V], error) {
	if data.Depth() < 2 {
		return nil, fmt.Errorf("Rebinning requires at least one outer "+
			"axis, but the data has %d axes: %w", data.Depth(),
			ragged.ErrShapeMismatch)
	}
	if err := ragged.OnlyLastAxisRagged(data); err != nil {
		return nil, err
	}
	if counts.Depth() != data.Depth() {
		return nil, fmt.Errorf("Counts have %d axes, but data with %d axes "+
			"needs counts with %d: %w", counts.Depth(), data.Depth(),
			data.Depth(), ragged.ErrShapeMismatch)
	}

	dShape, cShape := ragged.Shape(data), ragged.Shape(counts)
	if !ragged.ShapeEqual(dShape[:len(dShape)-1], cShape[:len(cShape)-1]) {
		return nil, fmt.Errorf("Data has shape %s, but counts have shape "+
			"%s: %w", ragged.FormatShape(dShape), ragged.FormatShape(cShape),
			ragged.ErrShapeMismatch)
	}
	last := cShape[len(cShape)-1]
	if last.IsVar() {
		return nil, fmt.Errorf("Counts have shape %s, but the last axis of "+
			"the counts must be regular: %w", ragged.FormatShape(cShape),
			ragged.ErrRaggedAxis)
	}
	m := int(last)
	if err := ragged.NonNegative(counts); err != nil {
		return nil, fmt.Errorf("Invalid counts: %w", err)
	}

	total := 0
	for _, c := range counts.Values {
		total += int(c)
	}
	if total != data.Count() {
		return nil, fmt.Errorf("Counts sum to %d, but the data holds %d "+
			"values: %w", total, data.Count(), ragged.ErrCountMismatch)
	}

	off := data.BucketOffsets()
	for b := 0; b < data.Buckets(); b++ {
		sum := 0
		for _, c := range counts.Bucket(b) {
			sum += int(c)
		}
		if n := off[b+1] - off[b]; sum != n {
			return nil, fmt.Errorf("The counts of bucket %d sum to %d, but "+
				"the bucket holds %d values: %w", b, sum, n,
				ragged.ErrCountMismatch)
		}
	}

	ic := ragged.Map(counts, func(c C) int { return int(c) })
	return segment(data, ic, m), nil
}

// checkRebin runs the shape checks shared by every indexer-based entry
// point.
func checkRebin[V any, I ragged.Integer](
	data *ragged.Array[V], indexer *ragged.Array[I],
) error {
	if data.Depth() < 2 {
		return fmt.Errorf("Rebinning requires at least one outer axis, but "+
			"the data has %d axes: %w", data.Depth(), ragged.ErrShapeMismatch)
	}
	if err := ragged.OnlyLastAxisRagged(data); err != nil {
		return fmt.Errorf("Cannot rebin data: %w", err)
	}
	if err := ragged.OnlyLastAxisRagged(indexer); err != nil {
		return fmt.Errorf("Cannot rebin by indexer: %w", err)
	}
	if err := ragged.SameShape(data, indexer); err != nil {
		return fmt.Errorf("Data and indexer are not co-indexed: %w", err)
	}
	if err := ragged.NonNegative(indexer); err != nil {
		return fmt.Errorf("Invalid indexer: %w", err)
	}
	return nil
}

// bins returns one more than the largest indexer value, or 0 for an empty
// indexer.
func bins[I ragged.Integer](indexer *ragged.Array[I]) (int, error) {
	mx, ok := ragged.Max(indexer)
	if !ok {
		return 0, nil
	}
	if uint64(mx) >= math.MaxInt {
		return 0, fmt.Errorf("The largest indexer value, %d, is too large: "+
			"%w", mx, ragged.ErrTableTooLarge)
	}
	return int(mx) + 1, nil
}

func checkBound[I ragged.Integer](indexer *ragged.Array[I], m int) error {
	if m < 0 {
		return fmt.Errorf("The number of sub-buckets, %d, is negative: %w",
			m, ragged.ErrInvalidIndex)
	}
	for i, x := range indexer.Values {
		if x < 0 || uint64(x) >= uint64(m) {
			return fmt.Errorf("Indexer value %d is %d, which is not in the "+
				"range [0, %d): %w", i, x, m, ragged.ErrInvalidIndex)
		}
	}
	return nil
}
