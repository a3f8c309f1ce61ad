/*package read_sds provides several functions for reading .sds files from
other Go programs without going through sdtrace's internal packages.*/
package read_sds

import (
	"fmt"
	"sync"

	"github.com/phil-mansfield/sdtrace/lib/particles"
	"github.com/phil-mansfield/sdtrace/lib/sdio"
)

var (
	workers []*worker
	mutexes []*sync.Mutex
)

// Header contains header information about a given .sds file.
type Header struct {
	// Names gives the names of all the attributes stored in the file.
	// Types give the types of these attributes. "u32"/"u64" give unsigned
	// 32-bit and 64-bit integers, "i32"/"i64" signed integers, and
	// "f32"/"f64" give 32-bit and 64-bit floats, respectively. Units gives
	// their units.
	Names, Types, Units []string
	// Times gives the output times and Counts the number of superdroplets
	// at each time.
	Times  []float64
	Counts []int
	// N is the number of values in each attribute, the sum of Counts.
	N int
}

// worker keeps files open between reads so their headers are only parsed
// once.
type worker struct {
	files map[string]*sdio.Reader
}

// newWorker creates a blank worker object that can be used for reading.
func newWorker() *worker {
	return &worker{files: map[string]*sdio.Reader{}}
}

func (w *worker) reader(fileName string) (*sdio.Reader, error) {
	if rd, ok := w.files[fileName]; ok {
		return rd, nil
	}
	rd, err := sdio.NewReader(fileName)
	if err != nil {
		return nil, err
	}
	w.files[fileName] = rd
	return rd, nil
}

func (w *worker) close() error {
	var first error
	for name, rd := range w.files {
		if err := rd.Close(); err != nil && first == nil {
			first = err
		}
		delete(w.files, name)
	}
	return first
}

func getWorker(workerID int) (*worker, error) {
	if workerID == -1 {
		return newWorker(), nil
	} else if workerID < -1 || workerID >= len(workers) {
		return nil, fmt.Errorf("Cannot use worker %d for nWorkers = %d",
			workerID, len(workers))
	}
	mutexes[workerID].Lock()
	return workers[workerID], nil
}

func finishWorker(workerID int, w *worker) {
	if workerID == -1 {
		w.close()
	} else {
		mutexes[workerID].Unlock()
	}
}

// ReadHeader returns the header of a given file.
func ReadHeader(fileName string) (*Header, error) {
	rd, err := sdio.NewReader(fileName)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	return &Header{
		Names: rd.Names, Types: rd.Types, Units: rd.Units,
		Times: rd.Times, Counts: rd.CountsInt(), N: int(rd.NTotal),
	}, nil
}

// ReadVar reads the attribute with a given name from a given file into buf.
// If you want to use one of the pre-allocated workers, you should give the
// integer ID of that worker (i.e. in the range [0, nWorkers)). ReadVar uses
// mutexes to make sure that the same worker isn't being used
// simultaneously, so feel free to throw a zillion threads at the same
// worker. If you don't want files to stay open, just set workerID to -1.
//
// buf must have length Header.N. A []float64 buffer can hold any
// attribute, otherwise the buffer's type must match Header.Types.
func ReadVar(fileName, name string, workerID int, buf interface{}) error {
	w, err := getWorker(workerID)
	if err != nil {
		return err
	}
	defer finishWorker(workerID, w)

	rd, err := w.reader(fileName)
	if err != nil {
		return err
	}
	f, err := rd.ReadField(name)
	if err != nil {
		return err
	}

	if x, ok := buf.([]float64); ok && f.Type() != "f64" {
		if len(x) != f.Len() {
			return bufLenError(name, f.Len(), len(x))
		}
		copy(x, particles.Float64s(f))
		return nil
	}

	switch x := buf.(type) {
	case []uint32:
		return copyInto(f, x)
	case []uint64:
		return copyInto(f, x)
	case []int32:
		return copyInto(f, x)
	case []int64:
		return copyInto(f, x)
	case []float32:
		return copyInto(f, x)
	case []float64:
		return copyInto(f, x)
	}
	return fmt.Errorf("Buffer for '%s' has unsupported type %T.", name, buf)
}

func copyInto[T particles.Element](f particles.Field, buf []T) error {
	data, ok := f.Data().([]T)
	if !ok {
		return fmt.Errorf("Attribute '%s' has type %s, but was read into "+
			"a %T buffer.", f.Name(), f.Type(), buf)
	}
	if len(data) != len(buf) {
		return bufLenError(f.Name(), len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

func bufLenError(name string, n, nBuf int) error {
	return fmt.Errorf("Attribute '%s' has %d values, but the buffer has "+
		"length %d.", name, n, nBuf)
}

// InitWorkers allocates nWorkers workers for use with ReadVar, closing any
// files held by previous workers.
func InitWorkers(nWorkers int) error {
	if err := CloseWorkers(); err != nil {
		return err
	}
	workers = make([]*worker, nWorkers)
	mutexes = make([]*sync.Mutex, nWorkers)

	for i := 0; i < nWorkers; i++ {
		workers[i] = newWorker()
		mutexes[i] = &sync.Mutex{}
	}
	return nil
}

// CloseWorkers closes every file held open by the workers.
func CloseWorkers() error {
	var first error
	for i := range workers {
		mutexes[i].Lock()
		if err := workers[i].close(); err != nil && first == nil {
			first = err
		}
		mutexes[i].Unlock()
	}
	return first
}
