// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// Porter and Duff presented in their paper 12 different composition operation,
// but the image/draw core package implements only the source-over-destination and source.
// This package is aimed to overcome the missing composite operations.
//
// It is used by the rendering layer to clip icon sources to a shape (DstIn)
// and to flatten them over an opaque background (SrcOver).
package imop

import (
	"image"
	"image/color"
	"math"

	"github.com/esimov/icopack/utils"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp returns a Composite defaulting to SrcOver.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composition operations.
// Unknown operations are ignored.
func (op *Composite) Set(cop string) {
	if utils.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes src over the dst backdrop into bitmap using the active operation.
// The three images are addressed with the same coordinates, relative to their own origin.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA) *Bitmap {
	sb := src.Bounds()
	dx, dy := sb.Dx(), sb.Dy()
	if bitmap == nil {
		bitmap = NewBitmap(image.Rect(0, 0, dx, dy))
	}
	db, bb := dst.Bounds(), bitmap.Img.Bounds()

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			s := src.NRGBAAt(sb.Min.X+x, sb.Min.Y+y)
			b := dst.NRGBAAt(db.Min.X+x, db.Min.Y+y)

			rs, gs, bs, as := norm(s.R), norm(s.G), norm(s.B), norm(s.A)
			rb, gb, bbn, ab := norm(b.R), norm(b.G), norm(b.B), norm(b.A)

			// Premultiplied source and backdrop weights.
			var fs, fb float64
			switch op.current {
			case Clear:
				fs, fb = 0, 0
			case Copy:
				fs, fb = 1, 0
			case Dst:
				fs, fb = 0, 1
			case SrcOver:
				fs, fb = 1, 1-as
			case DstOver:
				fs, fb = 1-ab, 1
			case SrcIn:
				fs, fb = ab, 0
			case DstIn:
				fs, fb = 0, as
			case SrcOut:
				fs, fb = 1-ab, 0
			case DstOut:
				fs, fb = 0, 1-as
			case SrcAtop:
				fs, fb = ab, 1-as
			case DstAtop:
				fs, fb = 1-ab, as
			case Xor:
				fs, fb = 1-ab, 1-as
			}

			an := as*fs + ab*fb
			var c color.NRGBA
			if an > 0 {
				c = color.NRGBA{
					R: denorm((as*fs*rs + ab*fb*rb) / an),
					G: denorm((as*fs*gs + ab*fb*gb) / an),
					B: denorm((as*fs*bs + ab*fb*bbn) / an),
					A: denorm(an),
				}
			}
			bitmap.Img.SetNRGBA(bb.Min.X+x, bb.Min.Y+y, c)
		}
	}
	return bitmap
}

func norm(v uint8) float64 {
	return float64(v) / 255
}

func denorm(v float64) uint8 {
	return uint8(utils.Clamp(math.Round(v*255), 0, 255))
}
