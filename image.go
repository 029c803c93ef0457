package icopack

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImg decodes any registered image format from r.
func decodeImg(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: source image is empty", ErrInvalidArgument)
	}
	return img, nil
}

// encodeImg encodes the raster to a destination of type io.Writer.
// Files are encoded according to their extension, any other writer
// receives an icon container.
func encodeImg(p *Processor, w io.Writer, src *Raster) error {
	switch w := w.(type) {
	case *os.File:
		ext := strings.ToLower(filepath.Ext(w.Name()))
		switch ext {
		case "", ".ico":
			return p.encoder().EncodeTo(w, src, p.Sizes)
		case ".png":
			res, err := p.largest(src)
			if err != nil {
				return err
			}
			return png.Encode(w, res.view())
		case ".bmp":
			res, err := p.largest(src)
			if err != nil {
				return err
			}
			return bmp.Encode(w, res.view())
		default:
			return errors.New("unsupported image format")
		}
	default:
		return p.encoder().EncodeTo(w, src, p.Sizes)
	}
}

// RasterFromImage converts any image type to a Raster with its min-point at (0, 0).
// The returned raster never shares memory with img.
func RasterFromImage(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, invalidArgf("missing source image")
	}
	srcBounds := img.Bounds()
	if srcBounds.Empty() {
		return nil, invalidArgf("source image is empty")
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstW := srcBounds.Dx()
	dstH := srcBounds.Dy()
	pix := make([]uint8, dstW*dstH*4)
	rowSize := dstW * 4

	switch src := img.(type) {
	case *image.NRGBA:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dstY * rowSize
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dstY * rowSize
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				pix[di+0] = r
				pix[di+1] = g
				pix[di+2] = b
				pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dstY * rowSize
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				pix[di+0] = c.R
				pix[di+1] = c.G
				pix[di+2] = c.B
				pix[di+3] = c.A
				di += 4
			}
		}
	}

	return newRasterOwned(dstW, dstH, pix), nil
}

// rasterFromNRGBA takes ownership of an NRGBA image produced by this package.
func rasterFromNRGBA(img *image.NRGBA) *Raster {
	b := img.Bounds()
	if b.Min.X == 0 && b.Min.Y == 0 && img.Stride == b.Dx()*4 && len(img.Pix) == b.Dx()*b.Dy()*4 {
		return newRasterOwned(b.Dx(), b.Dy(), img.Pix)
	}
	r, _ := RasterFromImage(img)
	return r
}
