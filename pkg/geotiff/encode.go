package geotiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

const (
	DataType_ASCII    = 2
	DataType_Short    = 3
	DataType_Long     = 4
	DataType_Rational = 5
	DataType_Double   = 12

	TagType_ImageWidth                = 256
	TagType_ImageLength               = 257
	TagType_BitsPerSample             = 258
	TagType_Compression               = 259
	TagType_PhotometricInterpretation = 262
	TagType_StripOffsets              = 273
	TagType_SamplesPerPixel           = 277
	TagType_RowsPerStrip              = 278
	TagType_StripByteCounts           = 279
	TagType_XResolution               = 282
	TagType_YResolution               = 283
	TagType_PlanarConfiguration       = 284
	TagType_ResolutionUnit            = 296
	TagType_SampleFormat              = 339

	// GeoTIFF Tags
	TagType_ModelPixelScaleTag = 33550
	TagType_ModelTiepointTag   = 33922
	TagType_GeoKeyDirectoryTag = 34735

	// GDAL private tags
	TagType_GDALNoData = 42113
)

// Tag values
const (
	PhotometricBlackIsZero = 1
	SampleFormatIEEEFloat  = 3
	PlanarContig           = 1
)

// GeoKey IDs and values
const (
	GeoKey_GTModelType      = 1024
	GeoKey_GTRasterType     = 1025
	GeoKey_GeographicType   = 2048
	ModelTypeGeographic     = 2
	RasterPixelIsArea       = 1
	EPSG_WGS84              = 4326
	geoKeyDirectoryVersion  = 1
	geoKeyDirectoryRevision = 1
	geoKeyDirectoryMinorRev = 0
)

var enc = binary.LittleEndian

type ifdEntry struct {
	tag      uint16
	datatype uint16
	count    uint32
	data     []byte
}

type byTag []ifdEntry

func (d byTag) Len() int           { return len(d) }
func (d byTag) Less(i, j int) bool { return d[i].tag < d[j].tag }
func (d byTag) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }

// WGS84Tags returns the GeoTIFF tags for a north-up EPSG:4326 raster whose
// top-left corner is (originX, originY) with the given pixel sizes in degrees.
func WGS84Tags(originX, originY, pixelSizeX, pixelSizeY float64) map[uint16]interface{} {
	// ScaleY is a magnitude; rows grow southwards
	if pixelSizeY < 0 {
		pixelSizeY = -pixelSizeY
	}

	return map[uint16]interface{}{
		// Version=1, Revision=1, Minor=0, Keys=3
		TagType_GeoKeyDirectoryTag: []uint16{
			geoKeyDirectoryVersion, geoKeyDirectoryRevision, geoKeyDirectoryMinorRev, 3,
			GeoKey_GTModelType, 0, 1, ModelTypeGeographic,
			GeoKey_GTRasterType, 0, 1, RasterPixelIsArea,
			GeoKey_GeographicType, 0, 1, EPSG_WGS84,
		},
		TagType_ModelPixelScaleTag: []float64{pixelSizeX, pixelSizeY, 0.0},
		// (I, J, K, X, Y, Z): pixel (0,0,0) maps to (originX, originY, 0)
		TagType_ModelTiepointTag: []float64{0.0, 0.0, 0.0, originX, originY, 0.0},
	}
}

// NoDataTag formats v as the ASCII value of the GDAL_NODATA tag
func NoDataTag(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeFloat32 writes values (row-major, width*height samples) to w as an
// uncompressed single-band 32-bit float TIFF.
// extraTags is a map of TagID -> value.
// Supported value types: []uint16 (SHORT), []float64 (DOUBLE), string (ASCII).
func EncodeFloat32(w io.Writer, width, height int, values []float32, extraTags map[uint16]interface{}) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	if len(values) != width*height {
		return fmt.Errorf("expected %d samples, got %d", width*height, len(values))
	}

	pixels := make([]byte, 4*len(values))
	for i, v := range values {
		enc.PutUint32(pixels[i*4:], math.Float32bits(v))
	}

	var entries []ifdEntry
	addEntry := func(tag uint16, datatype uint16, count uint32, data []byte) {
		entries = append(entries, ifdEntry{tag, datatype, count, data})
	}

	// Standard Tags
	addEntry(TagType_ImageWidth, DataType_Long, 1, enc32(uint32(width)))
	addEntry(TagType_ImageLength, DataType_Long, 1, enc32(uint32(height)))
	addEntry(TagType_BitsPerSample, DataType_Short, 1, enc16(32))
	addEntry(TagType_Compression, DataType_Short, 1, enc16(1)) // None
	addEntry(TagType_PhotometricInterpretation, DataType_Short, 1, enc16(PhotometricBlackIsZero))
	addEntry(TagType_SamplesPerPixel, DataType_Short, 1, enc16(1))
	addEntry(TagType_RowsPerStrip, DataType_Long, 1, enc32(uint32(height)))
	addEntry(TagType_PlanarConfiguration, DataType_Short, 1, enc16(PlanarContig))
	addEntry(TagType_SampleFormat, DataType_Short, 1, enc16(SampleFormatIEEEFloat))
	addEntry(TagType_XResolution, DataType_Rational, 1, encRational(72, 1))
	addEntry(TagType_YResolution, DataType_Rational, 1, encRational(72, 1))
	addEntry(TagType_ResolutionUnit, DataType_Short, 1, enc16(2)) // Inch

	// Placeholders, patched once the pixel offset is known
	addEntry(TagType_StripOffsets, DataType_Long, 1, make([]byte, 4))
	addEntry(TagType_StripByteCounts, DataType_Long, 1, enc32(uint32(len(pixels))))

	for tag, val := range extraTags {
		switch v := val.(type) {
		case []uint16:
			addEntry(tag, DataType_Short, uint32(len(v)), enc16s(v))
		case []float64:
			addEntry(tag, DataType_Double, uint32(len(v)), encDoubles(v))
		case string:
			// ASCII needs null terminator
			b := append([]byte(v), 0)
			addEntry(tag, DataType_ASCII, uint32(len(b)), b)
		default:
			return fmt.Errorf("unsupported tag value type for tag %d", tag)
		}
	}

	sort.Sort(byTag(entries))

	return writeFile(w, entries, pixels)
}

// writeFile lays out Header -> IFD -> large values -> pixels
func writeFile(w io.Writer, entries []ifdEntry, pixels []byte) error {
	// LittleEndian (II), Version 42 (0x2A), First IFD Offset (8)
	header := []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00}
	if _, err := w.Write(header); err != nil {
		return err
	}

	// IFD Size = 2 (count) + 12*entries + 4 (next offset)
	ifdSize := 2 + 12*len(entries) + 4
	valueDataOffset := 8 + ifdSize

	// Values longer than 4 bytes go to the data area; the entry holds their offset
	var largeDataBuf bytes.Buffer
	for i := range entries {
		e := &entries[i]
		if len(e.data) > 4 {
			currentOffset := uint32(valueDataOffset + largeDataBuf.Len())
			largeDataBuf.Write(e.data)
			// Keep following values word aligned
			if largeDataBuf.Len()%2 == 1 {
				largeDataBuf.WriteByte(0)
			}
			e.data = enc32(currentOffset)
		}
	}

	pixelsOffset := uint32(valueDataOffset + largeDataBuf.Len())
	for i := range entries {
		if entries[i].tag == TagType_StripOffsets {
			entries[i].data = enc32(pixelsOffset) // Only 1 strip
		}
	}

	if err := binary.Write(w, enc, uint16(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := binary.Write(w, enc, e.tag); err != nil {
			return err
		}
		if err := binary.Write(w, enc, e.datatype); err != nil {
			return err
		}
		if err := binary.Write(w, enc, e.count); err != nil {
			return err
		}

		// Offset/Value field (4 bytes), left-aligned
		var val [4]byte
		copy(val[:], e.data)
		if _, err := w.Write(val[:]); err != nil {
			return err
		}
	}

	// Next IFD Offset (0)
	if err := binary.Write(w, enc, uint32(0)); err != nil {
		return err
	}

	if _, err := largeDataBuf.WriteTo(w); err != nil {
		return err
	}

	if _, err := w.Write(pixels); err != nil {
		return err
	}

	return nil
}

// Helpers

func enc16(v uint16) []byte {
	b := make([]byte, 2)
	enc.PutUint16(b, v)
	return b
}

func enc32(v uint32) []byte {
	b := make([]byte, 4)
	enc.PutUint32(b, v)
	return b
}

func enc16s(vs []uint16) []byte {
	b := make([]byte, 2*len(vs))
	for i, v := range vs {
		enc.PutUint16(b[i*2:], v)
	}
	return b
}

func encDoubles(vs []float64) []byte {
	b := make([]byte, 8*len(vs))
	for i, v := range vs {
		enc.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func encRational(num, den uint32) []byte {
	b := make([]byte, 8)
	enc.PutUint32(b[:4], num)
	enc.PutUint32(b[4:], den)
	return b
}
