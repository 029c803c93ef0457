package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Style configures how a text label icon is drawn.
type Style struct {
	Shape      Shape
	Background color.Color
	Foreground color.Color
	// FontScale is the font size relative to the canvas height.
	FontScale float64
	// Shadow is the blur radius of the drop shadow in pixels, 0 disables it.
	Shadow float64
}

// DefaultStyle returns white text on a blue rounded square.
func DefaultStyle() Style {
	return Style{
		Shape:      Shape{Kind: Rounded, Radius: DefaultCornerRadius},
		Background: color.NRGBA{R: 0, G: 120, B: 212, A: 255},
		Foreground: color.White,
		FontScale:  0.6,
	}
}

// DrawLabel fills the acquired canvas with the shaped background and
// draws the text centered on it.
func DrawLabel(c *Canvas, text string, st Style) error {
	dc, err := c.Context()
	if err != nil {
		return err
	}
	w, h := float64(dc.Width()), float64(dc.Height())

	var inset float64
	if st.Shadow > 0 {
		inset = math.Ceil(st.Shadow * 1.5)
		if inset*2 >= math.Min(w, h) {
			inset = 0
		}
		shadow := gg.NewContext(dc.Width(), dc.Height())
		shadow.SetColor(color.NRGBA{A: 128})
		st.Shape.Path(shadow, inset, inset*1.5, w-2*inset, h-2*inset)
		shadow.Fill()
		dc.DrawImage(imaging.Blur(shadow.Image(), st.Shadow), 0, 0)
	}

	if st.Background != nil {
		dc.SetColor(st.Background)
		st.Shape.Path(dc, inset, inset, w-2*inset, h-2*inset)
		dc.Fill()
	}

	if text == "" {
		return nil
	}
	scale := st.FontScale
	if scale <= 0 {
		scale = DefaultStyle().FontScale
	}
	face, err := loadFontFace((h - 2*inset) * scale)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoContext, err)
	}
	defer face.Close()

	fg := st.Foreground
	if fg == nil {
		fg = color.White
	}
	dc.SetFontFace(face)
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, w/2, h/2, 0.5, 0.35)
	return nil
}

// RenderLabel draws a size x size label icon and returns its pixels.
func RenderLabel(size int, text string, st Style) (*image.NRGBA, error) {
	c := NewCanvas()
	if err := c.Acquire(size, size); err != nil {
		return nil, err
	}
	if err := DrawLabel(c, text, st); err != nil {
		return nil, err
	}
	return c.Image()
}

// loadFontFace loads the embedded Go Bold font at the given size.
func loadFontFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}
