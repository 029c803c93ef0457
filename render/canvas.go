// Package render produces the source rasters fed into the icon encoder:
// shape fills, text labels and the preparation of arbitrary input images.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// ErrNoContext is returned when a drawing context is requested before it
// has been acquired or when it cannot be created.
var ErrNoContext = errors.New("render: drawing context unavailable")

// Canvas is a software drawing surface.
type Canvas struct {
	dc *gg.Context
}

// NewCanvas returns a canvas without a drawing context.
func NewCanvas() *Canvas {
	return &Canvas{}
}

// Acquire allocates a fresh, transparent drawing context of the given size.
func (c *Canvas) Acquire(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid canvas size %dx%d", ErrNoContext, width, height)
	}
	c.dc = gg.NewContext(width, height)
	return nil
}

// Context returns the underlying gg drawing context.
func (c *Canvas) Context() (*gg.Context, error) {
	if c.dc == nil {
		return nil, ErrNoContext
	}
	return c.dc, nil
}

// Image returns a non-premultiplied copy of the canvas content.
func (c *Canvas) Image() (*image.NRGBA, error) {
	if c.dc == nil {
		return nil, ErrNoContext
	}
	return imaging.Clone(c.dc.Image()), nil
}

// SetImage replaces the canvas content with img, anchored at the top-left corner.
func (c *Canvas) SetImage(img image.Image) error {
	if c.dc == nil {
		return ErrNoContext
	}
	dst, ok := c.dc.Image().(*image.RGBA)
	if !ok {
		return fmt.Errorf("%w: unexpected canvas image type %T", ErrNoContext, c.dc.Image())
	}
	xdraw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return nil
}
