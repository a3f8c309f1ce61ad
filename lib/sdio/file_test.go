package sdio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/sdtrace/lib/eq"
	"github.com/phil-mansfield/sdtrace/lib/particles"
)

func testFields() []particles.Field {
	return []particles.Field{
		particles.NewColumn("sdId", []uint32{0, 1, 2, 1, 2, 3, 7}),
		particles.NewColumn("sdgbxindex", []uint64{4, 4, 5, 3, 3, 3, 0}),
		particles.NewColumn("coord3", []int32{-20, 0, 15, -1 << 30, 1 << 30, 3, -3}),
		particles.NewColumn("xi", []int64{1 << 40, -1, 0, 5, 5, 5, 5}),
		particles.NewColumn("radius", []float32{0.5, 40, 41.25, 1e-7, float32(math.Inf(1)), 2, 3}),
		particles.NewColumn("msol", []float64{1e-19, 2e-19, math.NaN(), 0, -0.5, 1, math.MaxFloat64}),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		fname := filepath.Join(t.TempDir(), "out.sds")
		times := []float64{0, 1.5, 3}
		counts := []int{3, 0, 4}

		wr := NewWriter(fname, order)
		require.NoError(t, wr.SetTime(times, counts))
		for i, f := range testFields() {
			require.NoError(t, wr.AddField(f, []string{"", "", "m", "", "micro-m", "g"}[i]))
		}
		require.NoError(t, wr.Flush())

		rd, err := NewReader(fname)
		require.NoError(t, err)
		defer rd.Close()

		require.Equal(t, int64(3), rd.NTime)
		require.Equal(t, int64(7), rd.NTotal)
		require.Equal(t, times, rd.Times)
		require.Equal(t, counts, rd.CountsInt())
		require.Equal(t, []string{"sdId", "sdgbxindex", "coord3", "xi", "radius", "msol"}, rd.Names)
		require.Equal(t, []string{"u32", "u64", "i32", "i64", "f32", "f64"}, rd.Types)
		require.Equal(t, "micro-m", rd.Units[4])

		// Read out of order to exercise the data edges.
		fields := testFields()
		for i := len(fields) - 1; i >= 0; i-- {
			f, err := rd.ReadField(fields[i].Name())
			require.NoError(t, err)
			require.Equal(t, fields[i].Type(), f.Type())
			require.True(t, eq.Generic(fields[i].Data(), f.Data()),
				"field %s: expected %v, got %v", fields[i].Name(),
				fields[i].Data(), f.Data())
		}

		_, err = rd.ReadField("coord1")
		require.Error(t, err)
	}
}

func TestEmptyFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "empty.sds")
	wr := NewWriter(fname, binary.LittleEndian)
	require.NoError(t, wr.SetTime([]float64{0, 1}, []int{0, 0}))
	require.NoError(t, wr.AddField(particles.NewColumn("sdId", []uint32{}), ""))
	require.NoError(t, wr.Flush())

	rd, err := NewReader(fname)
	require.NoError(t, err)
	defer rd.Close()

	f, err := rd.ReadField("sdId")
	require.NoError(t, err)
	require.Equal(t, 0, f.Len())
}

func TestWriterErrors(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "bad.sds")
	wr := NewWriter(fname, binary.LittleEndian)

	require.Error(t, wr.AddField(particles.NewColumn("sdId", []uint32{1}), ""))
	require.Error(t, wr.Flush())
	require.Error(t, wr.SetTime([]float64{0}, []int{1, 2}))
	require.Error(t, wr.SetTime([]float64{0}, []int{-1}))

	require.NoError(t, wr.SetTime([]float64{0, 1}, []int{1, 2}))
	require.Error(t, wr.AddField(particles.NewColumn("sdId", []uint32{1, 2}), ""))
	require.NoError(t, wr.AddField(particles.NewColumn("sdId", []uint32{1, 2, 3}), ""))
	require.Error(t, wr.AddField(particles.NewColumn("sdId", []uint32{1, 2, 3}), ""))
	require.Error(t, wr.SetTime([]float64{0}, []int{3}))
}

func TestReaderErrors(t *testing.T) {
	dir := t.TempDir()

	notSDS := filepath.Join(dir, "not.sds")
	require.NoError(t, os.WriteFile(notSDS, []byte("hello world, not a file"), 0644))
	_, err := NewReader(notSDS)
	require.Error(t, err)

	newer := filepath.Join(dir, "newer.sds")
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:], MagicNumber)
	binary.LittleEndian.PutUint32(b[4:], Version+1)
	require.NoError(t, os.WriteFile(newer, b, 0644))
	_, err = NewReader(newer)
	require.Error(t, err)

	_, err = NewReader(filepath.Join(dir, "missing.sds"))
	require.Error(t, err)
}

func TestDelta(t *testing.T) {
	x := []uint64{5, 3, 3, 1 << 63, 0, 12}
	y := append([]uint64{}, x...)
	deltaEncode(y)
	deltaDecode(y)
	require.Equal(t, x, y)
}

func TestQuantizedField(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "quantized.sds")
	r64 := []float64{0.123456, 40.5, -3.25, 1e3, 0, 7.77}
	r32 := []float32{0.5, 1.5, 2.25, -8, 100, 3.3}
	delta := 1e-3

	wr := NewWriter(fname, binary.LittleEndian)
	require.NoError(t, wr.SetTime([]float64{0, 1}, []int{4, 2}))
	require.NoError(t, wr.AddQuantizedField(
		particles.NewColumn("coord3", r64), "m", delta))
	require.NoError(t, wr.AddQuantizedField(
		particles.NewColumn("radius", r32), "micro m", delta))
	require.NoError(t, wr.AddField(
		particles.NewColumn("sdId", []uint32{0, 1, 2, 3, 0, 1}), ""))

	require.Error(t, wr.AddQuantizedField(
		particles.NewColumn("xi", []uint64{1, 2, 3, 4, 5, 6}), "", delta))
	require.Error(t, wr.AddQuantizedField(
		particles.NewColumn("msol", r64), "", 0))
	require.Error(t, wr.AddQuantizedField(
		particles.NewColumn("msol", []float64{1, 2, math.NaN(), 4, 5, 6}),
		"", delta))
	require.NoError(t, wr.Flush())

	rd, err := NewReader(fname)
	require.NoError(t, err)
	defer rd.Close()
	require.Equal(t, []string{"coord3", "radius", "sdId"}, rd.Names)

	f, err := rd.ReadField("coord3")
	require.NoError(t, err)
	got := f.Data().([]float64)
	for i := range r64 {
		require.InDelta(t, r64[i], got[i], delta, "%d", i)
	}

	f, err = rd.ReadField("radius")
	require.NoError(t, err)
	got32 := f.Data().([]float32)
	for i := range r32 {
		require.InDelta(t, r32[i], got32[i], delta, "%d", i)
	}

	f, err = rd.ReadField("sdId")
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1, 2, 3, 0, 1}, f.Data())
}
