package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// IsSVG reports whether head, the first bytes of a document, looks like an SVG image.
func IsSVG(head []byte) bool {
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	if !bytes.HasPrefix(head, []byte("<?xml")) && !bytes.HasPrefix(head, []byte("<!")) {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

// RasterizeSVG renders an SVG document into a transparent size x size image.
// The drawing is scaled to fit, keeping its aspect ratio, and centered.
func RasterizeSVG(r io.Reader, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid svg raster size %d", size)
	}
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse the svg document: %w", err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := float64(size) / math.Max(w, h)
	outW, outH := w*scale, h*scale
	icon.SetTarget((float64(size)-outW)/2, (float64(size)-outH)/2, outW, outH)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	return imaging.Clone(img), nil
}
