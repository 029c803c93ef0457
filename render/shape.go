package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/esimov/icopack/imop"
	"github.com/esimov/icopack/utils"
	"github.com/fogleman/gg"
)

// ShapeKind enumerates the outlines an icon can be clipped to.
type ShapeKind int

const (
	Square ShapeKind = iota
	Circle
	Rounded
)

// DefaultCornerRadius is the corner radius of a rounded shape, as a fraction of its size.
const DefaultCornerRadius = 0.2

// Shape describes the outline of an icon.
type Shape struct {
	Kind ShapeKind
	// Radius is the corner radius of a Rounded shape, relative to the
	// shorter edge, in the [0, 0.5] range.
	Radius float64
}

// ParseShape parses "square", "circle", "rounded" or "rounded:<radius>".
func ParseShape(s string) (Shape, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch name {
	case "", "square":
		if hasArg {
			break
		}
		return Shape{Kind: Square}, nil
	case "circle":
		if hasArg {
			break
		}
		return Shape{Kind: Circle}, nil
	case "rounded":
		r := DefaultCornerRadius
		if hasArg {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil || v < 0 || v > 0.5 {
				return Shape{}, fmt.Errorf("invalid corner radius %q", arg)
			}
			r = v
		}
		return Shape{Kind: Rounded, Radius: r}, nil
	}
	return Shape{}, fmt.Errorf("unknown shape %q", s)
}

func (s Shape) String() string {
	switch s.Kind {
	case Circle:
		return "circle"
	case Rounded:
		return "rounded:" + strconv.FormatFloat(s.Radius, 'f', -1, 64)
	default:
		return "square"
	}
}

// Path appends the outline of the shape, fitted in the given box, to the current path.
func (s Shape) Path(dc *gg.Context, x, y, w, h float64) {
	switch s.Kind {
	case Circle:
		dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
	case Rounded:
		r := utils.Clamp(s.Radius, 0, 0.5) * utils.Min(w, h)
		dc.DrawRoundedRectangle(x, y, w, h, r)
	default:
		dc.DrawRectangle(x, y, w, h)
	}
}

// Mask returns an opaque white shape on a transparent width x height image.
func (s Shape) Mask(width, height int) *image.NRGBA {
	c := NewCanvas()
	if err := c.Acquire(width, height); err != nil {
		return image.NewNRGBA(image.Rect(0, 0, utils.Max(width, 0), utils.Max(height, 0)))
	}
	dc := c.dc
	dc.SetColor(color.White)
	s.Path(dc, 0, 0, float64(width), float64(height))
	dc.Fill()

	img, _ := c.Image()
	return img
}

// ApplyShape clips img to the shape. Square shapes return img unchanged.
func ApplyShape(img *image.NRGBA, s Shape) *image.NRGBA {
	if s.Kind == Square {
		return img
	}
	b := img.Bounds()
	op := imop.InitOp()
	op.Set(imop.DstIn)

	return op.Draw(nil, s.Mask(b.Dx(), b.Dy()), img).Img
}
