// Package bundle writes the set of favicon files a web site usually ships:
// a multi-resolution favicon.ico, a few PNG renditions and a web app manifest.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/esimov/icopack"
	"github.com/esimov/icopack/render"
	"github.com/esimov/icopack/utils"
)

// File names of the bundle entries which are not PNG renditions.
const (
	IconFile     = "favicon.ico"
	ManifestFile = "site.webmanifest"
	appleIcon    = "apple-touch-icon.png"
)

// Image is a single PNG rendition of the bundle.
type Image struct {
	Name string
	Size int
}

var (
	// DefaultIconSizes are the resolutions packed into favicon.ico.
	DefaultIconSizes = []int{16, 32, 48}

	// DefaultPNGs are the PNG renditions written next to favicon.ico.
	DefaultPNGs = []Image{
		{Name: "favicon-16x16.png", Size: 16},
		{Name: "favicon-32x32.png", Size: 32},
		{Name: appleIcon, Size: 180},
		{Name: "android-chrome-192x192.png", Size: 192},
		{Name: "android-chrome-512x512.png", Size: 512},
	}
)

// Options configures the bundle writer. Zero values select the defaults.
type Options struct {
	Dir        string
	IconSizes  []int
	PNGs       []Image
	Filter     icopack.Filter
	Name       string
	ShortName  string
	ThemeColor string // hex color, like #0078d4
	Background string // hex color, also used to flatten the apple touch icon
	Logger     *log.Logger
}

// Manifest is the web app manifest written as site.webmanifest.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Icons           []ManifestIcon `json:"icons"`
	ThemeColor      string         `json:"theme_color,omitempty"`
	BackgroundColor string         `json:"background_color,omitempty"`
	Display         string         `json:"display"`

	// Files lists the written file names, relative to the bundle directory.
	Files []string `json:"-"`
}

// ManifestIcon references one of the PNG renditions.
type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Write renders src into every bundle file under opts.Dir.
func Write(src *icopack.Raster, opts Options) (*Manifest, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: missing source raster", icopack.ErrInvalidArgument)
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: missing bundle directory", icopack.ErrInvalidArgument)
	}
	sizes := opts.IconSizes
	if len(sizes) == 0 {
		sizes = DefaultIconSizes
	}
	if err := icopack.ValidateSizes(sizes); err != nil {
		return nil, err
	}
	pngs := opts.PNGs
	if pngs == nil {
		pngs = DefaultPNGs
	}

	for _, c := range []string{opts.ThemeColor, opts.Background} {
		if c == "" {
			continue
		}
		if _, err := utils.ParseHexColor(c); err != nil {
			return nil, fmt.Errorf("%w: %v", icopack.ErrInvalidArgument, err)
		}
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create the bundle directory: %w", err)
	}

	m := &Manifest{
		Name:            opts.Name,
		ShortName:       opts.ShortName,
		ThemeColor:      opts.ThemeColor,
		BackgroundColor: opts.Background,
		Display:         "standalone",
		Icons:           []ManifestIcon{},
	}
	if m.ShortName == "" {
		m.ShortName = m.Name
	}

	enc := &icopack.Encoder{CanonicalSize: icopack.DefaultCanonicalSize, Filter: opts.Filter}
	ico, err := enc.Encode(src, sizes)
	if err != nil {
		return nil, err
	}
	if err := m.write(opts, IconFile, ico); err != nil {
		return nil, err
	}

	rz := icopack.NewResizer(opts.Filter)
	for _, img := range pngs {
		data, err := encodePNG(rz, src, img, opts.Background)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", img.Name, err)
		}
		if err := m.write(opts, img.Name, data); err != nil {
			return nil, err
		}
		if img.Name != appleIcon && img.Size >= 192 {
			m.Icons = append(m.Icons, ManifestIcon{
				Src:   "/" + img.Name,
				Sizes: fmt.Sprintf("%dx%d", img.Size, img.Size),
				Type:  "image/png",
			})
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := m.write(opts, ManifestFile, append(data, '\n')); err != nil {
		return nil, err
	}
	return m, nil
}

func encodePNG(rz *icopack.Resizer, src *icopack.Raster, img Image, bg string) ([]byte, error) {
	if img.Name == "" || filepath.Base(img.Name) != img.Name {
		return nil, fmt.Errorf("%w: invalid file name %q", icopack.ErrInvalidArgument, img.Name)
	}
	res, err := rz.Resize(src, img.Size, img.Size)
	if err != nil {
		return nil, err
	}
	out := res.Image()

	// iOS renders transparent touch icons over black.
	if img.Name == appleIcon && bg != "" {
		c, err := utils.ParseHexColor(bg)
		if err != nil {
			return nil, err
		}
		out = render.Flatten(out, c)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Manifest) write(opts Options, name string, data []byte) error {
	path := filepath.Join(opts.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	m.Files = append(m.Files, name)

	if opts.Logger != nil {
		opts.Logger.Printf("wrote %s (%s)", path, utils.FormatSize(int64(len(data))))
	}
	return nil
}
