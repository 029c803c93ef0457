package icopack

import (
	"errors"

	"github.com/esimov/icopack/render"
)

// RasterSurface is the drawing capability the encoder consumes from the
// rendering layer: acquire a surface, read its pixels and write pixels back.
type RasterSurface interface {
	Acquire(width, height int) error
	ReadPixels() (*Raster, error)
	WritePixels(r *Raster) error
}

// CanvasSurface is a RasterSurface backed by a software render.Canvas.
type CanvasSurface struct {
	canvas *render.Canvas
}

var _ RasterSurface = (*CanvasSurface)(nil)

// NewCanvasSurface returns a surface which still has to be acquired.
func NewCanvasSurface() *CanvasSurface {
	return &CanvasSurface{canvas: render.NewCanvas()}
}

// Canvas exposes the underlying canvas for drawing.
func (s *CanvasSurface) Canvas() *render.Canvas {
	return s.canvas
}

// Acquire allocates a transparent drawing context of the given size.
func (s *CanvasSurface) Acquire(width, height int) error {
	return surfaceErr(s.canvas.Acquire(width, height))
}

// ReadPixels snapshots the surface content.
func (s *CanvasSurface) ReadPixels() (*Raster, error) {
	img, err := s.canvas.Image()
	if err != nil {
		return nil, surfaceErr(err)
	}
	return rasterFromNRGBA(img), nil
}

// WritePixels replaces the surface content with r.
func (s *CanvasSurface) WritePixels(r *Raster) error {
	if r == nil {
		return invalidArgf("missing raster")
	}
	return surfaceErr(s.canvas.SetImage(r.view()))
}

func surfaceErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, render.ErrNoContext) {
		return environmentf("%v", err)
	}
	return err
}
