package sdio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/DataDog/zstd"

	"github.com/phil-mansfield/sdtrace/lib/particles"
)

// MethodFlag is a flag representing the method used to compress a field.
type MethodFlag uint32

const (
	// PlaneFlag splits the raw bits of every value into byte planes and
	// compresses each plane separately. Used for floating point fields.
	PlaneFlag MethodFlag = iota
	// DeltaFlag delta encodes integer fields before splitting them into
	// byte planes. Identifiers and gridbox indices change slowly along the
	// array, so their deltas are mostly zero in the high planes.
	DeltaFlag
	// QuantizeFlag stores floating point fields to a fixed absolute
	// accuracy: values are floored to integer multiples of the accuracy and
	// delta encoded.
	QuantizeFlag
)

// ChooseMethod returns the method used for a field of the given type.
func ChooseMethod(code string) MethodFlag {
	switch code {
	case "f32", "f64":
		return PlaneFlag
	}
	return DeltaFlag
}

// width returns the number of bytes per element for a type code.
func width(code string) int {
	switch code {
	case "u32", "i32", "f32":
		return 4
	}
	return 8
}

// toBits converts a field to raw 64-bit words. Signed integers are sign
// extended and floats keep their IEEE bits.
func toBits(f particles.Field) []uint64 {
	switch x := f.Data().(type) {
	case []uint32:
		out := make([]uint64, len(x))
		for i := range x {
			out[i] = uint64(x[i])
		}
		return out
	case []uint64:
		return append([]uint64{}, x...)
	case []int32:
		out := make([]uint64, len(x))
		for i := range x {
			out[i] = uint64(int64(x[i]))
		}
		return out
	case []int64:
		out := make([]uint64, len(x))
		for i := range x {
			out[i] = uint64(x[i])
		}
		return out
	case []float32:
		out := make([]uint64, len(x))
		for i := range x {
			out[i] = uint64(math.Float32bits(x[i]))
		}
		return out
	case []float64:
		out := make([]uint64, len(x))
		for i := range x {
			out[i] = math.Float64bits(x[i])
		}
		return out
	}
	panic(fmt.Sprintf("Internal error: unknown-typed particles.Field "+
		"(name: '%s') given to sdio.", f.Name()))
}

// fromBits is the inverse of toBits.
func fromBits(name, code string, bits []uint64) (particles.Field, error) {
	f, err := particles.MakeField(name, code, len(bits))
	if err != nil {
		return nil, err
	}
	switch x := f.Data().(type) {
	case []uint32:
		for i := range x {
			x[i] = uint32(bits[i])
		}
	case []uint64:
		copy(x, bits)
	case []int32:
		for i := range x {
			x[i] = int32(int64(bits[i]))
		}
	case []int64:
		for i := range x {
			x[i] = int64(bits[i])
		}
	case []float32:
		for i := range x {
			x[i] = math.Float32frombits(uint32(bits[i]))
		}
	case []float64:
		for i := range x {
			x[i] = math.Float64frombits(bits[i])
		}
	}
	return f, nil
}

// deltaEncode replaces x with the differences between neighbouring elements.
// The element before x[0] is taken to be 0. Differences wrap around, so
// decoding is exact for every input.
func deltaEncode(x []uint64) {
	prev := uint64(0)
	for i := range x {
		next := x[i]
		x[i] = next - prev
		prev = next
	}
}

// deltaDecode decodes an array encoded with deltaEncode in place.
func deltaDecode(x []uint64) {
	for i := 1; i < len(x); i++ {
		x[i] += x[i-1]
	}
}

// blockWidth returns the number of byte planes a field is stored in.
func blockWidth(code string, method MethodFlag) int {
	if method != PlaneFlag {
		// Deltas of 32-bit values and quantized floats can need all 8
		// bytes.
		return 8
	}
	return width(code)
}

// writeBlock compresses a field into wr as byte planes, each written as an
// int64 byte count followed by a zstd frame. Quantized fields start with
// their float64 accuracy. Empty fields write nothing.
func writeBlock(
	f particles.Field, method MethodFlag, delta float64, wr io.Writer,
) error {
	if f.Len() == 0 {
		return nil
	}

	var bits []uint64
	switch method {
	case PlaneFlag:
		bits = toBits(f)
	case DeltaFlag:
		bits = toBits(f)
		deltaEncode(bits)
	case QuantizeFlag:
		var err error
		if bits, err = quantize(f, delta); err != nil {
			return err
		}
		deltaEncode(bits)
		if err := binary.Write(wr, binary.LittleEndian, delta); err != nil {
			return err
		}
	default:
		return fmt.Errorf("Unrecognized method flag %d for field '%s'.",
			method, f.Name())
	}

	return writePlanes(bits, blockWidth(f.Type(), method), wr)
}

func writePlanes(bits []uint64, w int, wr io.Writer) error {
	plane := make([]byte, len(bits))
	var buf []byte
	for col := 0; col < w; col++ {
		for i := range bits {
			plane[i] = byte(bits[i] >> (8 * uint(col)))
		}

		var err error
		buf, err = zstd.CompressLevel(buf[:0], plane, 1)
		if err != nil {
			return err
		}
		err = binary.Write(wr, binary.LittleEndian, int64(len(buf)))
		if err != nil {
			return err
		}
		if _, err = wr.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// readBlock decompresses a field of n elements written by writeBlock.
func readBlock(
	rd io.Reader, name, code string, method MethodFlag, n int,
) (particles.Field, error) {
	if n == 0 {
		return particles.MakeField(name, code, 0)
	}

	delta := 0.0
	switch method {
	case PlaneFlag, DeltaFlag:
	case QuantizeFlag:
		if err := binary.Read(rd, binary.LittleEndian, &delta); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("The method flag %d of field '%s' isn't "+
			"recognized. The file may have been written by a newer version "+
			"of sdtrace.", method, name)
	}

	bits, err := readPlanes(rd, name, n, blockWidth(code, method))
	if err != nil {
		return nil, err
	}

	switch method {
	case DeltaFlag:
		deltaDecode(bits)
	case QuantizeFlag:
		deltaDecode(bits)
		return dequantize(name, code, bits, delta)
	}
	return fromBits(name, code, bits)
}

func readPlanes(rd io.Reader, name string, n, w int) ([]uint64, error) {
	bits := make([]uint64, n)
	var buf, plane []byte
	for col := 0; col < w; col++ {
		nBuf := int64(0)
		if err := binary.Read(rd, binary.LittleEndian, &nBuf); err != nil {
			return nil, err
		}
		if nBuf < 0 {
			return nil, fmt.Errorf("Field '%s' has a corrupted block "+
				"length, %d.", name, nBuf)
		}

		buf = resizeBytes(buf, int(nBuf))
		if _, err := io.ReadFull(rd, buf); err != nil {
			return nil, err
		}

		var err error
		plane, err = zstd.Decompress(plane[:0], buf)
		if err != nil {
			return nil, err
		}
		if len(plane) != n {
			return nil, fmt.Errorf("Field '%s' should hold %d values, but "+
				"byte plane %d holds %d.", name, n, col, len(plane))
		}

		for i := range bits {
			bits[i] |= uint64(plane[i]) << (8 * uint(col))
		}
	}
	return bits, nil
}

// resizeBytes resizes a byte buffer to have length n.
func resizeBytes(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}
