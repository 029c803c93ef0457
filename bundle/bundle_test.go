package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esimov/icopack"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func sourceRaster(t *testing.T, c color.NRGBA) *icopack.Raster {
	t.Helper()
	pix := make([]uint8, 64*64*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	r, err := icopack.NewRaster(64, 64, pix)
	require.NoError(t, err)
	return r
}

func TestBundle_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	var logs bytes.Buffer

	m, err := Write(sourceRaster(t, color.NRGBA{R: 255, A: 255}), Options{
		Dir:        dir,
		Name:       "Example",
		ThemeColor: "#0078d4",
		Background: "#ffffff",
		Logger:     log.New(&logs, "", 0),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"favicon.ico",
		"favicon-16x16.png",
		"favicon-32x32.png",
		"apple-touch-icon.png",
		"android-chrome-192x192.png",
		"android-chrome-512x512.png",
		"site.webmanifest",
	}, m.Files)
	assert.Equal(t, len(m.Files), strings.Count(logs.String(), "wrote "))

	ico, err := os.ReadFile(filepath.Join(dir, IconFile))
	require.NoError(t, err)
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(ico[4:]))
	want := 6 + 3*16 + icopack.PayloadSize(16, 16) + icopack.PayloadSize(32, 32) + icopack.PayloadSize(48, 48)
	assert.Len(t, ico, want)

	for _, img := range DefaultPNGs {
		data, err := os.ReadFile(filepath.Join(dir, img.Name))
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, img.Size, img.Size), decoded.Bounds(), img.Name)
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Example", got.Name)
	assert.Equal(t, "Example", got.ShortName)
	assert.Equal(t, "#0078d4", got.ThemeColor)
	assert.Equal(t, "standalone", got.Display)
	assert.Equal(t, []ManifestIcon{
		{Src: "/android-chrome-192x192.png", Sizes: "192x192", Type: "image/png"},
		{Src: "/android-chrome-512x512.png", Sizes: "512x512", Type: "image/png"},
	}, got.Icons)
}

func TestBundle_ShouldFlattenAppleTouchIcon(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(sourceRaster(t, color.NRGBA{}), Options{
		Dir:        dir,
		Background: "#00ff00",
		PNGs:       []Image{{Name: appleIcon, Size: 180}, {Name: "plain.png", Size: 20}},
	})
	require.NoError(t, err)

	decode := func(name string) image.Image {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		return img
	}
	c := color.NRGBAModel.Convert(decode(appleIcon).At(90, 90)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, c)

	c = color.NRGBAModel.Convert(decode("plain.png").At(10, 10)).(color.NRGBA)
	assert.Equal(t, uint8(0), c.A)
}

func TestBundle_ShouldRejectInvalidOptions(t *testing.T) {
	src := sourceRaster(t, color.NRGBA{A: 255})
	testCases := []struct {
		name string
		opts Options
	}{
		{"missing dir", Options{}},
		{"icon size", Options{Dir: t.TempDir(), IconSizes: []int{512}}},
		{"theme color", Options{Dir: t.TempDir(), ThemeColor: "blue"}},
		{"file name", Options{Dir: t.TempDir(), PNGs: []Image{{Name: "../x.png", Size: 16}}}},
		{"png size", Options{Dir: t.TempDir(), PNGs: []Image{{Name: "x.png", Size: 0}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Write(src, tc.opts)
			assert.ErrorIs(t, err, icopack.ErrInvalidArgument)
		})
	}

	_, err := Write(nil, Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, icopack.ErrInvalidArgument)
}

func TestBundle_Archive(t *testing.T) {
	dir := t.TempDir()
	m, err := Write(sourceRaster(t, color.NRGBA{B: 255, A: 255}), Options{Dir: dir, Name: "x"})
	require.NoError(t, err)

	testCases := []struct {
		format Format
		open   func(io.Reader) (io.Reader, error)
	}{
		{TarXz, func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) }},
		{TarGz, func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }},
		{TarZst, func(r io.Reader) (io.Reader, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Archive(&buf, dir, m.Files, tc.format))

			zr, err := tc.open(&buf)
			require.NoError(t, err)

			var names []string
			tr := tar.NewReader(zr)
			for {
				hdr, err := tr.Next()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				names = append(names, hdr.Name)

				content, err := io.ReadAll(tr)
				require.NoError(t, err)
				want, err := os.ReadFile(filepath.Join(dir, hdr.Name))
				require.NoError(t, err)
				assert.Equal(t, want, content)
			}
			assert.Equal(t, m.Files, names)
		})
	}

	var buf bytes.Buffer
	assert.Error(t, Archive(&buf, dir, []string{"missing.png"}, TarGz))
	assert.Error(t, Archive(&buf, dir, m.Files, Format(7)))
}

func TestBundle_FormatFromPath(t *testing.T) {
	testCases := map[string]Format{
		"icons.tar.xz":      TarXz,
		"icons.txz":         TarXz,
		"out/ICONS.TAR.GZ":  TarGz,
		"icons.tgz":         TarGz,
		"icons.tar.zst":     TarZst,
		"/tmp/x/icons.tzst": TarZst,
	}
	for path, want := range testCases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("icons.zip")
	assert.Error(t, err)
}

func TestBundle_HTMLSnippet(t *testing.T) {
	html := HTMLSnippet([]string{
		"favicon.ico",
		"favicon-16x16.png",
		"favicon-32x32.png",
		"apple-touch-icon.png",
		"android-chrome-192x192.png",
		"site.webmanifest",
	})
	assert.Equal(t, `<link rel="icon" href="/favicon.ico" sizes="any">
<link rel="icon" type="image/png" sizes="16x16" href="/favicon-16x16.png">
<link rel="icon" type="image/png" sizes="32x32" href="/favicon-32x32.png">
<link rel="apple-touch-icon" sizes="180x180" href="/apple-touch-icon.png">
<link rel="manifest" href="/site.webmanifest">
`, html)
}
