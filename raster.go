package icopack

import (
	"bytes"
	"image"
	"image/color"
)

// Raster is an immutable RGBA8 pixel buffer. Pixels are stored row-major,
// top-to-bottom, with non-premultiplied alpha, 4 bytes per pixel.
type Raster struct {
	width  int
	height int
	pix    []uint8
}

// NewRaster returns a raster of the given size holding a copy of pix.
func NewRaster(width, height int, pix []uint8) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, invalidArgf("raster dimensions must be positive, got %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, invalidArgf("raster buffer length %d does not match %dx%d", len(pix), width, height)
	}
	buf := make([]uint8, len(pix))
	copy(buf, pix)

	return &Raster{width: width, height: height, pix: buf}, nil
}

// newRasterOwned wraps pix without copying it. The caller gives up ownership.
func newRasterOwned(width, height int, pix []uint8) *Raster {
	return &Raster{width: width, height: height, pix: pix}
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.height }

// Bounds returns the raster rectangle with its origin at (0, 0).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Pix returns a copy of the underlying pixel buffer.
func (r *Raster) Pix() []uint8 {
	buf := make([]uint8, len(r.pix))
	copy(buf, r.pix)
	return buf
}

// NRGBAAt returns the color of the pixel at (x, y).
// Coordinates outside of the raster yield a transparent color.
func (r *Raster) NRGBAAt(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return color.NRGBA{}
	}
	i := (y*r.width + x) * 4
	return color.NRGBA{R: r.pix[i], G: r.pix[i+1], B: r.pix[i+2], A: r.pix[i+3]}
}

// Image returns a copy of the raster as an *image.NRGBA.
func (r *Raster) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix(),
		Stride: r.width * 4,
		Rect:   r.Bounds(),
	}
}

// Equal reports whether both rasters have the same size and pixel content.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.width == o.width && r.height == o.height && bytes.Equal(r.pix, o.pix)
}

// view exposes the raster as an image sharing the same buffer.
// The returned image must only be read.
func (r *Raster) view() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.pix,
		Stride: r.width * 4,
		Rect:   r.Bounds(),
	}
}
