package sdio

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/sdtrace/lib/particles"
)

// maxQuantum bounds |x / delta| so quantized values and their deltas fit
// in an int64.
const maxQuantum = 1 << 62

// quantize converts a floating point field to integer multiples of delta,
// stored as int64 bits.
func quantize(f particles.Field, delta float64) ([]uint64, error) {
	if !(delta > 0) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("Field '%s' was given the accuracy %g, but "+
			"accuracies must be positive and finite.", f.Name(), delta)
	}

	var x []float64
	switch f.Type() {
	case "f32", "f64":
		x = particles.Float64s(f)
	default:
		return nil, fmt.Errorf("Field '%s' has type %s, but only floating "+
			"point fields can be quantized.", f.Name(), f.Type())
	}

	out := make([]uint64, len(x))
	for i := range x {
		q := math.Floor(x[i] / delta)
		if math.IsNaN(q) || math.Abs(q) > maxQuantum {
			return nil, fmt.Errorf("Value %d of field '%s', %g, cannot be "+
				"stored to an accuracy of %g.", i, f.Name(), x[i], delta)
		}
		out[i] = uint64(int64(q))
	}
	return out, nil
}

// dequantize is the inverse of quantize. Values are placed at the centre
// of their quantization interval, so they are within delta/2 of the
// originals.
func dequantize(
	name, code string, q []uint64, delta float64,
) (particles.Field, error) {
	f, err := particles.MakeField(name, code, len(q))
	if err != nil {
		return nil, err
	}
	switch x := f.Data().(type) {
	case []float32:
		for i := range x {
			x[i] = float32(delta * (float64(int64(q[i])) + 0.5))
		}
	case []float64:
		for i := range x {
			x[i] = delta * (float64(int64(q[i])) + 0.5)
		}
	default:
		return nil, fmt.Errorf("Field '%s' has type %s, but only floating "+
			"point fields can be quantized.", name, code)
	}
	return f, nil
}
