package render

import (
	"image"
	"image/color"
	"math"

	"github.com/esimov/icopack/imop"
	"github.com/esimov/icopack/utils"
	xdraw "golang.org/x/image/draw"
)

// Fit scales img to fit inside a transparent size x size square, preserving
// its aspect ratio and centering it.
func Fit(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	if b.Empty() || size <= 0 {
		return dst
	}

	scale := math.Min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	nw := utils.Max(1, int(math.Round(float64(b.Dx())*scale)))
	nh := utils.Max(1, int(math.Round(float64(b.Dy())*scale)))
	offX := (size - nw) / 2
	offY := (size - nh) / 2

	xdraw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+nw, offY+nh), img, b, xdraw.Over, nil)
	return dst
}

// Letterbox pads img with transparency into a square whose edge is its longest side.
func Letterbox(img image.Image) *image.NRGBA {
	b := img.Bounds()
	size := utils.Max(b.Dx(), b.Dy())
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	offX := (size - b.Dx()) / 2
	offY := (size - b.Dy()) / 2

	xdraw.Draw(dst, image.Rect(offX, offY, offX+b.Dx(), offY+b.Dy()), img, b.Min, xdraw.Src)
	return dst
}

// Flatten composes img over an opaque background color.
func Flatten(img *image.NRGBA, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	backdrop := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(backdrop, backdrop.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	op := imop.InitOp()
	op.Set(imop.SrcOver)
	return op.Draw(nil, img, backdrop).Img
}
