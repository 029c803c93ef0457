package icopack

import (
	"encoding/base64"
	"io"
)

const (
	// DefaultCanonicalSize is the edge length of the intermediate raster
	// every icon size is derived from.
	DefaultCanonicalSize = 128

	// MimeType is the media type used for icon containers in data URIs.
	MimeType = "image/x-icon"
)

// DefaultSizes is the size list used when none is configured.
var DefaultSizes = []int{16, 24, 32, 48, 64, 128, 256}

// Encoder assembles icon containers.
type Encoder struct {
	// CanonicalSize is the edge length of the common ancestor raster.
	// Zero selects DefaultCanonicalSize.
	CanonicalSize int
	Filter        Filter
}

// NewEncoder returns an encoder with the default settings.
func NewEncoder() *Encoder {
	return &Encoder{CanonicalSize: DefaultCanonicalSize, Filter: Box}
}

// Encode derives one canonical raster from src and packs one 32 bpp image
// per requested size, in request order, into an icon container.
// Nothing is produced when any argument is invalid.
func (e *Encoder) Encode(src *Raster, sizes []int) ([]byte, error) {
	if src == nil {
		return nil, invalidArgf("missing source raster")
	}
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}
	canonical := e.CanonicalSize
	if canonical <= 0 {
		canonical = DefaultCanonicalSize
	}

	rz := NewResizer(e.Filter)
	base, err := rz.Resize(src, canonical, canonical)
	if err != nil {
		return nil, err
	}

	payloads := make([][]byte, len(sizes))
	lengths := make([]int, len(sizes))
	for i, s := range sizes {
		img, err := rz.Resize(base, s, s)
		if err != nil {
			return nil, err
		}
		payloads[i] = Payload(img)
		lengths[i] = len(payloads[i])
	}

	entries, err := BuildEntries(sizes, lengths)
	if err != nil {
		return nil, err
	}
	last := entries[len(entries)-1]
	buf := make([]byte, int(last.ImageOffset)+int(last.BytesInRes))

	IconDir{Type: TypeIcon, Count: uint16(len(entries))}.put(buf)
	for i, entry := range entries {
		entry.put(buf[iconDirSize+i*iconDirEntrySize:])
		copy(buf[entry.ImageOffset:], payloads[i])
	}
	return buf, nil
}

// EncodeTo writes the icon container to w.
func (e *Encoder) EncodeTo(w io.Writer, src *Raster, sizes []int) error {
	buf, err := e.Encode(src, sizes)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// EncodeIcon packs src into an icon container holding one image per size.
func EncodeIcon(src *Raster, sizes []int) ([]byte, error) {
	return NewEncoder().Encode(src, sizes)
}

// DataURI returns buf as a base64 data URI carrying the icon media type.
func DataURI(buf []byte) string {
	return "data:" + MimeType + ";base64," + base64.StdEncoding.EncodeToString(buf)
}
