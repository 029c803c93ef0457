package icopack

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image/color"
	"strings"
	"testing"

	ico "github.com/sergeymakinen/go-ico"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opaqueWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// icoImage is one image read back from an icon container.
type icoImage struct {
	dirWidth, dirHeight uint8
	offset, length      uint32
	width, height       int32
	bitCount            uint16
	pixels              []byte // BGRA, bottom-up
	mask                []byte
}

// readICO parses an icon container without using any of the encoder types.
func readICO(t *testing.T, buf []byte) []icoImage {
	t.Helper()
	le := binary.LittleEndian

	require.GreaterOrEqual(t, len(buf), 6)
	require.Equal(t, uint16(0), le.Uint16(buf[0:]), "reserved")
	require.Equal(t, uint16(1), le.Uint16(buf[2:]), "type")
	count := int(le.Uint16(buf[4:]))
	require.GreaterOrEqual(t, len(buf), 6+16*count)

	images := make([]icoImage, count)
	for i := range images {
		e := buf[6+16*i:]
		img := icoImage{
			dirWidth:  e[0],
			dirHeight: e[1],
			length:    le.Uint32(e[8:]),
			offset:    le.Uint32(e[12:]),
		}
		require.Equal(t, uint8(0), e[2], "color count")
		require.Equal(t, uint8(0), e[3], "reserved")
		require.Equal(t, uint16(1), le.Uint16(e[4:]), "planes")
		require.Equal(t, uint16(32), le.Uint16(e[6:]), "bit count")
		require.LessOrEqual(t, int(img.offset)+int(img.length), len(buf))

		p := buf[img.offset : img.offset+img.length]
		require.Equal(t, uint32(40), le.Uint32(p[0:]))
		img.width = int32(le.Uint32(p[4:]))
		img.height = int32(le.Uint32(p[8:]))
		img.bitCount = le.Uint16(p[14:])

		w, h := int(img.width), int(img.height)/2
		img.pixels = p[40 : 40+w*h*4]
		img.mask = p[40+w*h*4:]
		images[i] = img
	}
	return images
}

func TestEncoder_ShouldMatchLengthFormula(t *testing.T) {
	src := gradientRaster(t, DefaultCanonicalSize, DefaultCanonicalSize)
	enc := NewEncoder()

	for s := 1; s <= 256; s++ {
		buf, err := enc.Encode(src, []int{s})
		require.NoError(t, err)

		rowBytes := (s + 31) / 32 * 4
		want := 6 + 16 + 40 + 4*s*s + rowBytes*s
		if len(buf) != want {
			t.Fatalf("size %d: got %d bytes, want %d", s, len(buf), want)
		}
	}
}

func TestEncoder_ShouldWriteContiguousImages(t *testing.T) {
	sizes := []int{16, 24, 32, 48, 256}
	buf, err := EncodeIcon(gradientRaster(t, 300, 300), sizes)
	require.NoError(t, err)

	images := readICO(t, buf)
	require.Len(t, images, len(sizes))

	offset := uint32(6 + 16*len(sizes))
	for i, img := range images {
		s := sizes[i]
		assert.Equal(t, offset, img.offset)
		assert.Equal(t, uint32(PayloadSize(s, s)), img.length)
		assert.Equal(t, int32(s), img.width)
		assert.Equal(t, int32(2*s), img.height)
		assert.Equal(t, uint16(32), img.bitCount)
		offset += img.length
	}
	assert.Equal(t, int(offset), len(buf))

	last := images[len(images)-1]
	assert.Equal(t, uint8(0), last.dirWidth)
	assert.Equal(t, uint8(0), last.dirHeight)
	assert.Equal(t, int32(256), last.width)
	assert.Equal(t, int32(512), last.height)
}

func TestEncoder_ShouldPreserveColors(t *testing.T) {
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 200}
	buf, err := EncodeIcon(solidRaster(t, 200, 200, c), []int{16, 48})
	require.NoError(t, err)

	for _, img := range readICO(t, buf) {
		for i := 0; i < len(img.pixels); i += 4 {
			assert.InDelta(t, c.B, img.pixels[i+0], 1)
			assert.InDelta(t, c.G, img.pixels[i+1], 1)
			assert.InDelta(t, c.R, img.pixels[i+2], 1)
			assert.InDelta(t, c.A, img.pixels[i+3], 1)
		}
		assert.Equal(t, make([]byte, len(img.mask)), img.mask)
	}
}

func TestEncoder_ShouldFlipRows(t *testing.T) {
	// Top half red, bottom half blue.
	pix := make([]uint8, 128*128*4)
	for i := 0; i < len(pix); i += 4 {
		if i < len(pix)/2 {
			pix[i+0] = 255
		} else {
			pix[i+2] = 255
		}
		pix[i+3] = 255
	}
	src, err := NewRaster(128, 128, pix)
	require.NoError(t, err)

	buf, err := EncodeIcon(src, []int{16})
	require.NoError(t, err)

	img := readICO(t, buf)[0]
	// The first stored row is the bottom row of the icon.
	assert.Equal(t, []byte{255, 0, 0, 255}, img.pixels[0:4])
	last := len(img.pixels) - 4
	assert.Equal(t, []byte{0, 0, 255, 255}, img.pixels[last:last+4])
}

func TestEncoder_ShouldDecodeWithThirdPartyReader(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	buf, err := EncodeIcon(solidRaster(t, 64, 64, c), []int{32})
	require.NoError(t, err)

	img, err := ico.Decode(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	got := color.NRGBAModel.Convert(img.At(img.Bounds().Min.X+16, img.Bounds().Min.Y+16)).(color.NRGBA)
	assert.Equal(t, c, got)
}

func TestEncoder_ShouldKeepDuplicateSizes(t *testing.T) {
	buf, err := EncodeIcon(gradientRaster(t, 64, 64), []int{32, 32})
	require.NoError(t, err)

	images := readICO(t, buf)
	require.Len(t, images, 2)
	assert.NotEqual(t, images[0].offset, images[1].offset)
	assert.Equal(t, images[0].pixels, images[1].pixels)
}

func TestEncoder_ShouldBeDeterministic(t *testing.T) {
	src := gradientRaster(t, 333, 333)
	a, err := EncodeIcon(src, DefaultSizes)
	require.NoError(t, err)
	b, err := EncodeIcon(src, DefaultSizes)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestEncoder_ShouldUseCanonicalRaster(t *testing.T) {
	src := gradientRaster(t, 512, 512)

	var steps []string
	rz := NewResizer(Box)
	rz.onStep = func(w, h int) { steps = append(steps, fmt.Sprintf("%dx%d", w, h)) }
	base, err := rz.Resize(src, 32, 32)
	require.NoError(t, err)

	// A canonical size equal to the requested one must not resample again.
	enc := &Encoder{CanonicalSize: 32, Filter: Box}
	buf, err := enc.Encode(src, []int{32})
	require.NoError(t, err)

	assert.Equal(t, Payload(base), buf[6+16:])
	assert.Equal(t, "256x256 128x128 64x64 32x32", strings.Join(steps, " "))
}

func TestEncoder_ShouldRejectInvalidInput(t *testing.T) {
	src := gradientRaster(t, 16, 16)
	for _, sizes := range [][]int{nil, {0}, {257}, {16, -1}} {
		buf, err := EncodeIcon(src, sizes)
		assert.ErrorIs(t, err, ErrInvalidArgument, "%v", sizes)
		assert.Nil(t, buf)
	}

	_, err := EncodeIcon(nil, []int{16})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEncoder_EncodeTo(t *testing.T) {
	src := gradientRaster(t, 64, 64)
	want, err := EncodeIcon(src, []int{16, 32})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewEncoder().EncodeTo(&out, src, []int{16, 32}))
	assert.Equal(t, want, out.Bytes())
}

func TestEncoder_DataURI(t *testing.T) {
	buf, err := EncodeIcon(solidRaster(t, 8, 8, opaqueWhite), []int{1})
	require.NoError(t, err)

	uri := DataURI(buf)
	require.True(t, strings.HasPrefix(uri, "data:image/x-icon;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/x-icon;base64,"))
	require.NoError(t, err)
	assert.Equal(t, buf, decoded)
}

func BenchmarkEncoder_Encode(b *testing.B) {
	src := gradientRaster(b, 1024, 1024)
	enc := NewEncoder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(src, DefaultSizes); err != nil {
			b.Fatal(err)
		}
	}
}
