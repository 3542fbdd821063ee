package processing

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

const (
	tagExifPointer      = 0x8769
	tagGPSPointer       = 0x8825
	tagDateTimeOriginal = 0x9003
	tagGPSLatitude      = 0x0002
	tagGPSLongitude     = 0x0004

	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

var le = binary.LittleEndian

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// buildIFD serializes entries at the given file offset, values longer than 4 bytes follow the IFD
func buildIFD(entries []tiffEntry, offset uint32) []byte {
	dataOffset := offset + uint32(2+12*len(entries)+4)
	var ifd, extra bytes.Buffer
	_ = binary.Write(&ifd, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&ifd, le, e.tag)
		_ = binary.Write(&ifd, le, e.typ)
		_ = binary.Write(&ifd, le, e.count)
		if len(e.data) <= 4 {
			value := make([]byte, 4)
			copy(value, e.data)
			ifd.Write(value)
			continue
		}
		_ = binary.Write(&ifd, le, dataOffset+uint32(extra.Len()))
		extra.Write(e.data)
		if extra.Len()%2 == 1 {
			extra.WriteByte(0)
		}
	}
	_ = binary.Write(&ifd, le, uint32(0))
	return append(ifd.Bytes(), extra.Bytes()...)
}

func long(v uint32) []byte {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	return b
}

// rationals takes num/den pairs
func rationals(values ...uint32) []byte {
	b := make([]byte, 0, 4*len(values))
	for _, v := range values {
		b = append(b, long(v)...)
	}
	return b
}

// buildTIFF creates a little endian EXIF block. Empty dateTime / nil coordinates are left out.
func buildTIFF(dateTime string, lat, lng []byte) []byte {
	var exifEntries, gpsEntries []tiffEntry
	if dateTime != "" {
		exifEntries = append(exifEntries, tiffEntry{tagDateTimeOriginal, typeASCII, uint32(len(dateTime) + 1), append([]byte(dateTime), 0)})
	}
	if lat != nil {
		gpsEntries = append(gpsEntries, tiffEntry{tagGPSLatitude, typeRational, uint32(len(lat) / 8), lat})
	}
	if lng != nil {
		gpsEntries = append(gpsEntries, tiffEntry{tagGPSLongitude, typeRational, uint32(len(lng) / 8), lng})
	}
	ifd0Count := 0
	if len(exifEntries) > 0 {
		ifd0Count++
	}
	if len(gpsEntries) > 0 {
		ifd0Count++
	}
	offset := uint32(8 + 2 + 12*ifd0Count + 4)
	var ifd0 []tiffEntry
	var subIFDs []byte
	if len(exifEntries) > 0 {
		ifd0 = append(ifd0, tiffEntry{tagExifPointer, typeLong, 1, long(offset)})
		b := buildIFD(exifEntries, offset)
		subIFDs = append(subIFDs, b...)
		offset += uint32(len(b))
	}
	if len(gpsEntries) > 0 {
		ifd0 = append(ifd0, tiffEntry{tagGPSPointer, typeLong, 1, long(offset)})
		subIFDs = append(subIFDs, buildIFD(gpsEntries, offset)...)
	}
	out := []byte{'I', 'I', 0x2A, 0x00}
	out = append(out, long(8)...)
	out = append(out, buildIFD(ifd0, 8)...)
	return append(out, subIFDs...)
}

// withExif inserts an APP1 segment right after the JPEG SOI marker
func withExif(jpegData, tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segmentLength := len(payload) + 2
	out := append([]byte{}, jpegData[:2]...)
	out = append(out, 0xFF, 0xE1, byte(segmentLength>>8), byte(segmentLength))
	out = append(out, payload...)
	return append(out, jpegData[2:]...)
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return img.Bounds().Size()
}
