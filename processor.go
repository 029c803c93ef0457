package icopack

import (
	"bufio"
	"image"
	"image/color"
	"io"

	"github.com/esimov/icopack/render"
	"github.com/esimov/icopack/utils"
)

// maxSourceSize bounds the edge length of prepared sources. Larger images are
// scaled down while they are squared.
var maxSourceSize = 4096

// Processor options
type Processor struct {
	Sizes         []int
	CanonicalSize int
	Filter        Filter
	Shape         render.Shape
	// Background flattens transparent areas over an opaque color when set.
	Background color.Color
	// Fit letterboxes non square sources instead of stretching them.
	Fit     bool
	Spinner *utils.Spinner
}

// NewProcessor returns a processor with the default sizes and settings.
func NewProcessor() *Processor {
	sizes := make([]int, len(DefaultSizes))
	copy(sizes, DefaultSizes)

	return &Processor{
		Sizes:         sizes,
		CanonicalSize: DefaultCanonicalSize,
		Filter:        Box,
		Fit:           true,
	}
}

func (p *Processor) encoder() *Encoder {
	return &Encoder{CanonicalSize: p.CanonicalSize, Filter: p.Filter}
}

// largest resamples src to the biggest requested size, for single image exports.
func (p *Processor) largest(src *Raster) (*Raster, error) {
	if err := ValidateSizes(p.Sizes); err != nil {
		return nil, err
	}
	size := p.Sizes[0]
	for _, s := range p.Sizes[1:] {
		size = utils.Max(size, s)
	}
	return NewResizer(p.Filter).Resize(src, size, size)
}

// Prepare turns a decoded image into the source raster of the encoder:
// it is squared, clipped to the configured shape and flattened over the
// background color, in this order.
func (p *Processor) Prepare(img image.Image) (*Raster, error) {
	src, err := RasterFromImage(img)
	if err != nil {
		return nil, err
	}
	if !p.Fit && p.Shape.Kind == render.Square && p.Background == nil {
		return src, nil
	}

	nrgba := src.view()
	switch {
	case p.Fit && utils.Max(src.width, src.height) > maxSourceSize:
		nrgba = render.Fit(nrgba, maxSourceSize)
	case p.Fit && src.width != src.height:
		nrgba = render.Letterbox(nrgba)
	}
	if p.Shape.Kind != render.Square {
		nrgba = render.ApplyShape(nrgba, p.Shape)
	}
	if p.Background != nil {
		nrgba = render.Flatten(nrgba, p.Background)
	}
	if nrgba.Bounds() == src.Bounds() && &nrgba.Pix[0] == &src.pix[0] {
		return src, nil
	}
	return rasterFromNRGBA(nrgba), nil
}

// Render draws a text label icon on a raster surface and returns its pixels.
func (p *Processor) Render(s RasterSurface, size int, text string, st render.Style) (*Raster, error) {
	if err := s.Acquire(size, size); err != nil {
		return nil, err
	}
	if cs, ok := s.(*CanvasSurface); ok {
		if err := render.DrawLabel(cs.Canvas(), text, st); err != nil {
			return nil, surfaceErr(err)
		}
	} else {
		img, err := render.RenderLabel(size, text, st)
		if err != nil {
			return nil, surfaceErr(err)
		}
		r, err := RasterFromImage(img)
		if err != nil {
			return nil, err
		}
		if err := s.WritePixels(r); err != nil {
			return nil, err
		}
	}
	return s.ReadPixels()
}

// Load reads a raster image or an SVG document from r and prepares it.
// SVG documents are rasterized at the largest requested size, and at least
// at the canonical size.
func (p *Processor) Load(r io.Reader) (*Raster, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)

	var (
		img image.Image
		err error
	)
	if render.IsSVG(head) {
		size := utils.Max(p.CanonicalSize, DefaultCanonicalSize)
		for _, s := range p.Sizes {
			size = utils.Max(size, s)
		}
		img, err = render.RasterizeSVG(br, size)
		if err != nil {
			return nil, invalidArgf("%v", err)
		}
	} else {
		img, err = decodeImg(br)
		if err != nil {
			return nil, err
		}
	}
	return p.Prepare(img)
}

// Process is the main entry point for the icon generation. It decodes the
// source image, prepares it and encodes it into the output.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	if err := ValidateSizes(p.Sizes); err != nil {
		return err
	}
	src, err := p.Load(r)
	if err != nil {
		return err
	}
	return encodeImg(p, w, src)
}
