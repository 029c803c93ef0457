package icopack

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Filter selects the resampling kernel used by the downsampler.
type Filter int

// The supported resampling filters. Box is the default: on an exact halving
// step it averages each 2x2 block of source pixels.
const (
	Box Filter = iota
	Linear
	CatmullRom
	Lanczos
)

var filterNames = map[Filter]string{
	Box:        "box",
	Linear:     "linear",
	CatmullRom: "catmullrom",
	Lanczos:    "lanczos",
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter returns the filter with the given name.
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return Box, invalidArgf("unknown resample filter %q", name)
}

func (f Filter) resample() imaging.ResampleFilter {
	switch f {
	case Linear:
		return imaging.Linear
	case CatmullRom:
		return imaging.CatmullRom
	case Lanczos:
		return imaging.Lanczos
	default:
		return imaging.Box
	}
}

// Resizer resamples rasters by halving them repeatedly before the final
// resample, so that no single step shrinks a dimension by more than 2x.
type Resizer struct {
	Filter Filter

	// onStep is invoked with the dimensions produced by every resample step.
	onStep func(w, h int)
}

// NewResizer returns a resizer using the given filter.
func NewResizer(f Filter) *Resizer {
	return &Resizer{Filter: f}
}

// Resize returns src resampled to width x height. When src already has the
// requested size it is returned as is, otherwise a freshly allocated raster
// is returned and src is left untouched.
func (rz *Resizer) Resize(src *Raster, width, height int) (*Raster, error) {
	if src == nil {
		return nil, invalidArgf("missing source raster")
	}
	if width <= 0 || height <= 0 {
		return nil, invalidArgf("resize target must be positive, got %dx%d", width, height)
	}
	if src.width == width && src.height == height {
		return src, nil
	}

	var (
		img    image.Image = src.view()
		out    *image.NRGBA
		filter = rz.Filter.resample()
		cw, ch = src.width, src.height
	)

	for cw/2 >= width && ch/2 >= height {
		cw, ch = cw/2, ch/2
		out = imaging.Resize(img, cw, ch, filter)
		img = out
		rz.step(cw, ch)
	}

	if cw != width || ch != height {
		out = imaging.Resize(img, width, height, filter)
		rz.step(width, height)
	}

	return rasterFromNRGBA(out), nil
}

func (rz *Resizer) step(w, h int) {
	if rz.onStep != nil {
		rz.onStep(w, h)
	}
}

// ResizeRaster resamples src to the given dimensions with the default filter.
func ResizeRaster(src *Raster, width, height int) (*Raster, error) {
	return NewResizer(Box).Resize(src, width, height)
}
