package icopack

import "encoding/binary"

const (
	// BitmapInfoHeaderSize is the size of the BITMAPINFOHEADER record.
	BitmapInfoHeaderSize = 40

	bitsPerPixel = 32
)

// BitmapInfoHeader is the BITMAPINFOHEADER record preceding every image
// stored inside an icon container.
type BitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32 // combined height of the XOR and AND masks
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32 // zero is legal for uncompressed data
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// NewBitmapInfoHeader returns the header of an uncompressed 32 bpp icon image.
func NewBitmapInfoHeader(width, height int) BitmapInfoHeader {
	return BitmapInfoHeader{
		Size:     BitmapInfoHeaderSize,
		Width:    int32(width),
		Height:   int32(height * 2),
		Planes:   1,
		BitCount: bitsPerPixel,
	}
}

func (h BitmapInfoHeader) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Size)
	le.PutUint32(b[4:], uint32(h.Width))
	le.PutUint32(b[8:], uint32(h.Height))
	le.PutUint16(b[12:], h.Planes)
	le.PutUint16(b[14:], h.BitCount)
	le.PutUint32(b[16:], h.Compression)
	le.PutUint32(b[20:], h.SizeImage)
	le.PutUint32(b[24:], uint32(h.XPelsPerMeter))
	le.PutUint32(b[28:], uint32(h.YPelsPerMeter))
	le.PutUint32(b[32:], h.ClrUsed)
	le.PutUint32(b[36:], h.ClrImportant)
}

// MaskSize returns the byte size of the 1 bpp AND mask of a width x height
// image. Every mask row is padded to a 4 byte boundary.
func MaskSize(width, height int) int {
	return (width + 31) / 32 * 4 * height
}

// PayloadSize returns the byte size of a complete payload block.
func PayloadSize(width, height int) int {
	return BitmapInfoHeaderSize + width*height*4 + MaskSize(width, height)
}

// Payload converts the raster into an icon payload block: the bitmap info
// header, the BGRA pixel rows stored bottom-up and an all-zero (opaque) AND mask.
// A nil raster yields a nil block.
func Payload(r *Raster) []byte {
	if r == nil {
		return nil
	}
	w, h := r.width, r.height
	buf := make([]byte, PayloadSize(w, h))
	NewBitmapInfoHeader(w, h).put(buf)

	rowSize := w * 4
	di := BitmapInfoHeaderSize
	for y := h - 1; y >= 0; y-- {
		row := r.pix[y*rowSize : (y+1)*rowSize]
		for x := 0; x < rowSize; x += 4 {
			buf[di+0] = row[x+2]
			buf[di+1] = row[x+1]
			buf[di+2] = row[x+0]
			buf[di+3] = row[x+3]
			di += 4
		}
	}
	// The AND mask trailing the pixel data is left zeroed.

	return buf
}
