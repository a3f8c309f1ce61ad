/*package sdio reads and writes .sds files, a compressed binary container for
superdroplet output. A file holds the output times, the number of
superdroplets at each time (the "raggedcount"), and any number of named
attribute fields which all have one value per superdroplet per time.

The layout is:

	magic number, version            uint32, uint32
	FixedWidthHeader                 NTime, NTotal int64
	times                            NTime x float64
	raggedcounts                     NTime x int64
	fields                           count, name lengths, names, 3-byte type
	                                 codes, unit lengths, units
	method flags                     one uint32 per field
	data edges                       one int64 per field, plus one
	compressed field blocks

Everything except the compressed blocks uses the byte order chosen by the
writer. Readers detect the order from the magic number.*/
package sdio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/phil-mansfield/sdtrace/lib/particles"
)

const (
	// MagicNumber is an arbitrary number at the start of all .sds files
	// which should help identify when the code is run on something else by
	// accident.
	MagicNumber = 0x5d7ace00
	// ReverseMagicNumber is the magic number if read on a machine with
	// flipped endianness.
	ReverseMagicNumber = 0x00ce7a5d
	Version            = 1
)

// FixedWidthHeader is the part of the header with a fixed size.
type FixedWidthHeader struct {
	// NTime is the number of output times and NTotal is the number of
	// superdroplet values summed over all times.
	NTime, NTotal int64
}

// Header describes the contents of a file.
type Header struct {
	FixedWidthHeader
	// Times gives the time of each output and Counts the number of
	// superdroplets present at that time.
	Times  []float64
	Counts []int64
	// Names gives the names of the fields stored in the file, Types gives
	// their type codes (see particles.Field), and Units their units.
	Names, Types, Units []string
}

// Writer is a class which handles writing to disk. The pattern is that you
// create a single writer with NewWriter, set the time axis with SetTime, add
// fields to it with AddField, and finally call Flush() when you want to
// write everything to disk.
type Writer struct {
	Header
	fname       string
	order       binary.ByteOrder
	hasTime     bool
	methodFlags []uint32
	dataEdges   []int64
	data        *bytes.Buffer
}

// NewWriter creates a Writer targeting a given file and using a given byte
// ordering.
func NewWriter(fname string, order binary.ByteOrder) *Writer {
	return &Writer{
		fname: fname, order: order,
		dataEdges: []int64{0},
		data:      &bytes.Buffer{},
	}
}

// SetTime sets the output times and the number of superdroplets at each
// time. It must be called before any fields are added.
func (wr *Writer) SetTime(times []float64, counts []int) error {
	if len(wr.Names) > 0 {
		return fmt.Errorf("SetTime was called after %d fields were added.",
			len(wr.Names))
	}
	if len(times) != len(counts) {
		return fmt.Errorf("%d times were given, but %d raggedcounts.",
			len(times), len(counts))
	}

	wr.Counts = make([]int64, len(counts))
	total := int64(0)
	for i, n := range counts {
		if n < 0 {
			return fmt.Errorf("Raggedcount %d is %d, but counts cannot be "+
				"negative.", i, n)
		}
		wr.Counts[i] = int64(n)
		total += int64(n)
	}

	wr.Times = append([]float64{}, times...)
	wr.NTime, wr.NTotal = int64(len(times)), total
	wr.hasTime = true
	return nil
}

// AddField adds a new field to the file. Its length must equal the sum of
// the raggedcounts. Fields are stored losslessly.
func (wr *Writer) AddField(field particles.Field, units string) error {
	return wr.addField(field, units, ChooseMethod(field.Type()), 0)
}

// AddQuantizedField adds a floating point field which only needs to be
// stored to an absolute accuracy of delta. Read values are within delta/2 of
// the originals.
func (wr *Writer) AddQuantizedField(
	field particles.Field, units string, delta float64,
) error {
	return wr.addField(field, units, QuantizeFlag, delta)
}

func (wr *Writer) addField(
	field particles.Field, units string, method MethodFlag, delta float64,
) error {
	if !wr.hasTime {
		return fmt.Errorf("Field '%s' was added before SetTime was called.",
			field.Name())
	}
	if int64(field.Len()) != wr.NTotal {
		return fmt.Errorf("File stores %d superdroplet values, but was "+
			"given a new field, %s, with %d values.", wr.NTotal,
			field.Name(), field.Len())
	}
	if findString(wr.Names, field.Name()) != -1 {
		return fmt.Errorf("Field '%s' was added twice.", field.Name())
	}
	code := field.Type()
	if len(code) != 3 {
		return fmt.Errorf("Field '%s' has unsupported type %T.",
			field.Name(), field.Data())
	}

	if err := writeBlock(field, method, delta, wr.data); err != nil {
		return err
	}

	wr.dataEdges = append(wr.dataEdges, int64(wr.data.Len()))
	wr.methodFlags = append(wr.methodFlags, uint32(method))
	wr.Names = append(wr.Names, field.Name())
	wr.Types = append(wr.Types, code)
	wr.Units = append(wr.Units, units)
	return nil
}

// Flush writes the file to disk.
func (wr *Writer) Flush() error {
	if !wr.hasTime {
		return fmt.Errorf("Cannot write %s before SetTime is called.",
			wr.fname)
	}

	hd := &bytes.Buffer{}
	if err := binary.Write(hd, wr.order, uint32(MagicNumber)); err != nil {
		return err
	}
	if err := binary.Write(hd, wr.order, uint32(Version)); err != nil {
		return err
	}
	if err := wr.Header.write(hd, wr.order); err != nil {
		return err
	}
	if err := binary.Write(hd, wr.order, wr.methodFlags); err != nil {
		return err
	}

	// Data edges are stored as absolute file offsets.
	dataOffset := int64(hd.Len() + 8*len(wr.dataEdges))
	edges := make([]int64, len(wr.dataEdges))
	for i := range edges {
		edges[i] = wr.dataEdges[i] + dataOffset
	}
	if err := binary.Write(hd, wr.order, edges); err != nil {
		return err
	}

	fp, err := os.Create(wr.fname)
	if err != nil {
		return err
	}
	defer fp.Close()

	if _, err := fp.Write(hd.Bytes()); err != nil {
		return err
	}
	if _, err := fp.Write(wr.data.Bytes()); err != nil {
		return err
	}
	return fp.Close()
}

func (hd *Header) write(f io.Writer, order binary.ByteOrder) error {
	if err := binary.Write(f, order, &hd.FixedWidthHeader); err != nil {
		return err
	}
	if err := binary.Write(f, order, hd.Times); err != nil {
		return err
	}
	if err := binary.Write(f, order, hd.Counts); err != nil {
		return err
	}

	nFields := uint32(len(hd.Names))
	if err := binary.Write(f, order, nFields); err != nil {
		return err
	}
	if err := writeStrings(f, order, hd.Names); err != nil {
		return err
	}
	for i := range hd.Types {
		if _, err := f.Write([]byte(hd.Types[i])); err != nil {
			return err
		}
	}
	return writeStrings(f, order, hd.Units)
}

func (hd *Header) read(f io.Reader, order binary.ByteOrder) error {
	if err := binary.Read(f, order, &hd.FixedWidthHeader); err != nil {
		return err
	}
	if hd.NTime < 0 || hd.NTotal < 0 {
		return fmt.Errorf("The header has negative sizes, NTime = %d and "+
			"NTotal = %d.", hd.NTime, hd.NTotal)
	}

	hd.Times = make([]float64, hd.NTime)
	if err := binary.Read(f, order, hd.Times); err != nil {
		return err
	}
	hd.Counts = make([]int64, hd.NTime)
	if err := binary.Read(f, order, hd.Counts); err != nil {
		return err
	}
	total := int64(0)
	for _, n := range hd.Counts {
		total += n
	}
	if total != hd.NTotal {
		return fmt.Errorf("The raggedcounts sum to %d, but the header "+
			"says the file holds %d values.", total, hd.NTotal)
	}

	var nFields uint32
	if err := binary.Read(f, order, &nFields); err != nil {
		return err
	}
	var err error
	if hd.Names, err = readStrings(f, order, int(nFields)); err != nil {
		return err
	}
	hd.Types = make([]string, nFields)
	for i := range hd.Types {
		b := make([]byte, 3)
		if _, err := io.ReadFull(f, b); err != nil {
			return err
		}
		hd.Types[i] = string(b)
	}
	hd.Units, err = readStrings(f, order, int(nFields))
	return err
}

// writeStrings writes the lengths of every string followed by the strings.
func writeStrings(f io.Writer, order binary.ByteOrder, x []string) error {
	n := make([]uint32, len(x))
	for i := range n {
		n[i] = uint32(len(x[i]))
	}
	if err := binary.Write(f, order, n); err != nil {
		return err
	}
	for i := range x {
		if _, err := f.Write([]byte(x[i])); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(f io.Reader, order binary.ByteOrder, k int) ([]string, error) {
	n := make([]uint32, k)
	if err := binary.Read(f, order, n); err != nil {
		return nil, err
	}
	out := make([]string, k)
	for i := range out {
		b := make([]byte, n[i])
		if _, err := io.ReadFull(f, b); err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}

// Reader handles the I/O and navigation associated with reading compressed
// fields from disk. Unlike Writer, it will need to be closed after use.
type Reader struct {
	Header
	fname       string
	f           *os.File
	order       binary.ByteOrder
	methodFlags []MethodFlag
	dataEdges   []int64
}

// NewReader opens a file and reads its header.
func NewReader(fname string) (*Reader, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}

	rd, err := newReader(fname, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rd, nil
}

func newReader(fname string, f *os.File) (*Reader, error) {
	order, err := checkFile(fname, f)
	if err != nil {
		return nil, err
	}

	hd := &Header{}
	if err := hd.read(f, order); err != nil {
		return nil, fmt.Errorf("Could not read the header of %s: %s",
			fname, err.Error())
	}
	nFields := len(hd.Names)

	rd := &Reader{
		Header: *hd, fname: fname, f: f, order: order,
		methodFlags: make([]MethodFlag, nFields),
		dataEdges:   make([]int64, nFields+1),
	}

	// Read in navigation information
	if err := binary.Read(f, order, rd.methodFlags); err != nil {
		return nil, err
	}
	if err := binary.Read(f, order, rd.dataEdges); err != nil {
		return nil, err
	}
	return rd, nil
}

// ReadField reads the field with the given name. Use Names to find the
// available fields.
func (rd *Reader) ReadField(name string) (particles.Field, error) {
	i := findString(rd.Names, name)
	if i == -1 {
		return nil, fmt.Errorf("The field '%s' is not in the file %s. It "+
			"only contains the fields %s.", name, rd.fname, rd.Names)
	}

	start, end := rd.dataEdges[i], rd.dataEdges[i+1]
	if end < start {
		return nil, fmt.Errorf("Field '%s' of %s has corrupted offsets.",
			name, rd.fname)
	}
	if _, err := rd.f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	b := make([]byte, end-start)
	if _, err := io.ReadFull(rd.f, b); err != nil {
		return nil, err
	}

	f, err := readBlock(bytes.NewReader(b), name, rd.Types[i],
		rd.methodFlags[i], int(rd.NTotal))
	if err != nil {
		return nil, fmt.Errorf("Could not read field '%s' of %s: %s",
			name, rd.fname, err.Error())
	}
	return f, nil
}

// CountsInt returns the raggedcounts as ints.
func (rd *Reader) CountsInt() []int {
	out := make([]int, len(rd.Counts))
	for i := range out {
		out[i] = int(rd.Counts[i])
	}
	return out
}

// Close closes the files associated with the Reader.
func (rd *Reader) Close() error {
	return rd.f.Close()
}

// findString returns the index of the first instance of target in x and -1 if
// target isn't in x.
func findString(x []string, target string) int {
	for i := range x {
		if x[i] == target {
			return i
		}
	}
	return -1
}

// checkFile reads in the file's magic number and version number and makes
// sure that sdtrace can actually read it. If it can, the byte order is
// returned. Otherwise an error is returned.
func checkFile(fname string, f io.Reader) (binary.ByteOrder, error) {
	var magicNumber, version uint32

	order := binary.ByteOrder(binary.LittleEndian)
	if err := binary.Read(f, order, &magicNumber); err != nil {
		return nil, fmt.Errorf("Could not read %s: %s", fname, err.Error())
	}

	switch magicNumber {
	case MagicNumber:
	case ReverseMagicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%s is not an .sds file. All .sds files "+
			"begin with either the 32-bit integer %x or %x. This file begins "+
			"with %x.", fname, MagicNumber, ReverseMagicNumber, magicNumber)
	}

	if err := binary.Read(f, order, &version); err != nil {
		return nil, err
	}
	if version > Version {
		return nil, fmt.Errorf("The file %s was created with file version "+
			"%d, but this version of sdtrace only reads versions up to %d.",
			fname, version, Version)
	}

	return order, nil
}
