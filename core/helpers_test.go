package core

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// exifJPEG builds a minimal JPEG whose APP1 segment holds a little-endian
// TIFF structure with IFD0 -> Exif IFD -> DateTimeOriginal.
func exifJPEG(t *testing.T, dateTimeOriginal string) []byte {
	t.Helper()

	value := append([]byte(dateTimeOriginal), 0)

	const (
		ifd0Offset    = 8
		ifdSize       = 2 + 12 + 4
		exifIFDOffset = ifd0Offset + ifdSize
		valueOffset   = exifIFDOffset + ifdSize
	)

	var tiff bytes.Buffer
	le := binary.LittleEndian
	write := func(v interface{}) {
		if err := binary.Write(&tiff, le, v); err != nil {
			t.Fatalf("failed to build EXIF: %v", err)
		}
	}

	tiff.WriteString("II")
	write(uint16(42))
	write(uint32(ifd0Offset))

	// IFD0: ExifIFDPointer (LONG).
	write(uint16(1))
	write(uint16(0x8769))
	write(uint16(4))
	write(uint32(1))
	write(uint32(exifIFDOffset))
	write(uint32(0))

	// Exif IFD: DateTimeOriginal (ASCII).
	write(uint16(1))
	write(uint16(0x9003))
	write(uint16(2))
	write(uint32(len(value)))
	write(uint32(valueOffset))
	write(uint32(0))

	tiff.Write(value)

	var jpeg bytes.Buffer
	jpeg.Write([]byte{0xFF, 0xD8})
	jpeg.Write([]byte{0xFF, 0xE1})
	segLen := uint16(2 + 6 + tiff.Len())
	jpeg.Write([]byte{byte(segLen >> 8), byte(segLen)})
	jpeg.WriteString("Exif\x00\x00")
	jpeg.Write(tiff.Bytes())
	jpeg.Write([]byte{0xFF, 0xD9})
	return jpeg.Bytes()
}

// plainJPEG is a JPEG without any APP1 segment.
func plainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xD9}
}

func memEntry(name string, content []byte) FileEntry {
	return FileEntry{
		Path: filepath.Join("/src", name),
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
