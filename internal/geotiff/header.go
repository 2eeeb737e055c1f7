// Package geotiff reads the georeferencing of a GeoTIFF: the raster size,
// the model tiepoint and pixel scale, and the GeoKey directory. Pixel data
// is never read.
package geotiff

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/cockroachdb/errors"
)

// TIFF tag IDs.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGeoKeyDirectory = 34735
)

// TIFF data types.
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtSByte     = 6
	dtUndef     = 7
	dtSShort    = 8
	dtSLong     = 9
	dtSRational = 10
	dtFloat     = 11
	dtDouble    = 12
	dtLong8     = 16
	dtSLong8    = 17
	dtIFD8      = 18
)

// maxEntryBytes bounds the size of a single out-of-line tag value.
const maxEntryBytes = 1 << 20

// Header is the georeferencing of the first image of a GeoTIFF.
type Header struct {
	Width, Height   int
	ModelTiepoint   []float64 // [I, J, K, X, Y, Z]: pixel (I, J) maps to (X, Y)
	ModelPixelScale []float64 // [ScaleX, ScaleY, ScaleZ]
	GeoKeys         []uint16
}

// tiffEntry is a raw TIFF directory entry.
type tiffEntry struct {
	Tag      uint16
	DataType uint16
	Count    uint64
	Value    []byte // raw value bytes or inline value
}

// ReadFile reads the header of the GeoTIFF at path.
func ReadFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	h, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return h, nil
}

// Read parses the first image file directory of a TIFF or BigTIFF stream.
func Read(r io.ReadSeeker) (*Header, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "reading TIFF header")
	}

	var bo binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, errors.Newf("invalid TIFF byte order: %x", header[0:2])
	}

	magic := bo.Uint16(header[2:4])
	if magic != 42 && magic != 43 {
		return nil, errors.Newf("invalid TIFF magic: %d", magic)
	}
	bigTIFF := magic == 43

	var offset uint64
	if bigTIFF {
		// BigTIFF: bytes 4-5 = offset size (8), bytes 6-7 = 0, bytes 8-15 = first IFD offset
		var bigHeader [8]byte
		if _, err := io.ReadFull(r, bigHeader[:]); err != nil {
			return nil, errors.Wrap(err, "reading BigTIFF header")
		}
		offset = bo.Uint64(bigHeader[:])
	} else {
		offset = uint64(bo.Uint32(header[4:8]))
	}
	if offset == 0 {
		return nil, errors.New("no image file directory")
	}

	entries, err := readIFD(r, bo, offset, bigTIFF)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing IFD at offset %d", offset)
	}

	h := &Header{}
	for _, e := range entries {
		switch e.Tag {
		case tagImageWidth:
			h.Width = int(getUint32(e, bo))
		case tagImageLength:
			h.Height = int(getUint32(e, bo))
		case tagModelTiepoint:
			h.ModelTiepoint = getFloat64Slice(e, bo)
		case tagModelPixelScale:
			h.ModelPixelScale = getFloat64Slice(e, bo)
		case tagGeoKeyDirectory:
			h.GeoKeys = getUint16Slice(e, bo)
		}
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, errors.New("missing image dimensions")
	}
	return h, nil
}

// readIFD reads the entries of one directory and resolves the out-of-line
// values of the tags Header needs.
func readIFD(r io.ReadSeeker, bo binary.ByteOrder, offset uint64, bigTIFF bool) ([]tiffEntry, error) {
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, err
	}

	var numEntries uint64
	if bigTIFF {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		numEntries = bo.Uint64(buf[:])
	} else {
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		numEntries = uint64(bo.Uint16(buf[:]))
	}

	entrySize := 12
	if bigTIFF {
		entrySize = 20
	}

	entries := make([]tiffEntry, 0, numEntries)
	buf := make([]byte, entrySize)
	for i := uint64(0); i < numEntries; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		entries = append(entries, parseTiffEntry(buf, bo, bigTIFF))
	}

	for i := range entries {
		switch entries[i].Tag {
		case tagModelTiepoint, tagModelPixelScale, tagGeoKeyDirectory:
			if err := resolveEntry(r, bo, &entries[i], bigTIFF); err != nil {
				return nil, errors.Wrapf(err, "resolving entry tag %d", entries[i].Tag)
			}
		}
	}
	return entries, nil
}

func parseTiffEntry(buf []byte, bo binary.ByteOrder, bigTIFF bool) tiffEntry {
	e := tiffEntry{
		Tag:      bo.Uint16(buf[0:2]),
		DataType: bo.Uint16(buf[2:4]),
	}
	if bigTIFF {
		e.Count = bo.Uint64(buf[4:12])
		e.Value = append([]byte(nil), buf[12:20]...)
	} else {
		e.Count = uint64(bo.Uint32(buf[4:8]))
		e.Value = append([]byte(nil), buf[8:12]...)
	}
	return e
}

func dataTypeSize(dt uint16) int {
	switch dt {
	case dtByte, dtASCII, dtSByte, dtUndef:
		return 1
	case dtShort, dtSShort:
		return 2
	case dtLong, dtSLong, dtFloat:
		return 4
	case dtRational, dtSRational, dtDouble, dtLong8, dtSLong8, dtIFD8:
		return 8
	default:
		return 1
	}
}

// resolveEntry reads the value of an entry that does not fit inline.
func resolveEntry(r io.ReadSeeker, bo binary.ByteOrder, e *tiffEntry, bigTIFF bool) error {
	if e.Count > maxEntryBytes {
		return errors.Newf("tag %d count %d too large", e.Tag, e.Count)
	}
	totalSize := int(e.Count) * dataTypeSize(e.DataType)

	inlineSize := 4
	if bigTIFF {
		inlineSize = 8
	}
	if totalSize <= inlineSize {
		return nil
	}

	var dataOffset uint64
	if bigTIFF {
		dataOffset = bo.Uint64(e.Value)
	} else {
		dataOffset = uint64(bo.Uint32(e.Value))
	}
	if _, err := r.Seek(int64(dataOffset), io.SeekStart); err != nil {
		return err
	}

	data := make([]byte, totalSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return err
	}
	e.Value = data
	return nil
}

// getUint32 returns 0 when the entry holds fewer bytes than its type needs,
// as for a LONG8 value inline in a classic TIFF.
func getUint32(e tiffEntry, bo binary.ByteOrder) uint32 {
	if len(e.Value) < dataTypeSize(e.DataType) {
		return 0
	}
	switch e.DataType {
	case dtShort:
		return uint32(bo.Uint16(e.Value))
	case dtLong:
		return bo.Uint32(e.Value)
	case dtLong8:
		return uint32(bo.Uint64(e.Value))
	default:
		return uint32(e.Value[0])
	}
}

func getUint16Slice(e tiffEntry, bo binary.ByteOrder) []uint16 {
	n := int(e.Count)
	if e.DataType != dtShort || len(e.Value) < 2*n {
		return nil
	}
	result := make([]uint16, n)
	for i := 0; i < n; i++ {
		result[i] = bo.Uint16(e.Value[i*2 : i*2+2])
	}
	return result
}

func getFloat64Slice(e tiffEntry, bo binary.ByteOrder) []float64 {
	n := int(e.Count)
	if (e.DataType != dtDouble && e.DataType != dtFloat) || len(e.Value) < n*dataTypeSize(e.DataType) {
		return nil
	}
	result := make([]float64, n)
	for i := 0; i < n; i++ {
		switch e.DataType {
		case dtDouble:
			result[i] = math.Float64frombits(bo.Uint64(e.Value[i*8 : i*8+8]))
		case dtFloat:
			result[i] = float64(math.Float32frombits(bo.Uint32(e.Value[i*4 : i*4+4])))
		}
	}
	return result
}
