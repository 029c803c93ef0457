package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/esimov/icopack"
	"github.com/esimov/icopack/bundle"
	"github.com/esimov/icopack/render"
	"github.com/esimov/icopack/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┬┌─┐┌─┐┌─┐┌─┐┌─┐┬┌─
││  │ │├─┘├─┤│  ├┴┐
┴└─┘└─┘┴  ┴ ┴└─┘┴ ┴

Multi-resolution icon generator.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// labelSize is the edge length text label icons are rendered at.
const labelSize = 512

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image, directory or URL")
	destination = flag.String("out", pipeName, "Destination file or directory")
	sizes       = flag.String("sizes", "", "Comma separated icon sizes (default 16,24,32,48,64,128,256)")
	canonical   = flag.Int("canonical", 0, "Edge length of the canonical raster every size is derived from")
	filter      = flag.String("filter", "", "Resample filter: box, linear, catmullrom, lanczos")
	shape       = flag.String("shape", "", "Icon shape: square, circle, rounded or rounded:<radius>")
	background  = flag.String("bg", "", "Background color, like #0078d4")
	foreground  = flag.String("fg", "", "Text color of label icons")
	fit         = flag.Bool("fit", true, "Letterbox non square sources instead of stretching them")
	text        = flag.String("text", "", "Render a text label icon instead of reading a source image")
	bundleDir   = flag.String("bundle", "", "Write a favicon bundle into this directory")
	archive     = flag.String("archive", "", "Pack the bundle into a .tar.xz, .tar.gz or .tar.zst file")
	dataURI     = flag.Bool("datauri", false, "Print the icon as a base64 data URI")
	workers     = flag.Int("conc", 0, "Number of files to process concurrently")
	configFile  = flag.String("config", defaultConfigPath(), "Config file path")
	version     = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println(versionString())
		return
	}

	cfg := loadConfig(*configFile)

	// flag.Bool defaults to true, so -fit only overrides the config when it is set explicitly.
	var fitOverride *bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "fit" {
			fitOverride = fit
		}
	})

	if err := checkArchive(*archive, *bundleDir); err != nil {
		fatal(err)
	}

	err := applyOverrides(&cfg, overrides{
		Sizes:         *sizes,
		CanonicalSize: *canonical,
		Filter:        *filter,
		Shape:         *shape,
		Background:    *background,
		Foreground:    *foreground,
		Fit:           fitOverride,
		Workers:       *workers,
	})
	if err != nil {
		fatal(err)
	}

	proc, style, err := newProcessor(cfg)
	if err != nil {
		fatal(err)
	}

	if *text == "" && *bundleDir == "" && !*dataURI {
		err := proc.Execute(&icopack.Ops{
			Src:      *source,
			Dst:      *destination,
			PipeName: pipeName,
			Workers:  cfg.Workers,
		})
		if err != nil {
			fatal(err)
		}
		return
	}

	src, err := sourceRaster(proc, style)
	if err != nil {
		fatal(err)
	}

	switch {
	case *bundleDir != "":
		err = writeBundle(proc, src, cfg)
	case *dataURI:
		err = writeDataURI(proc, src)
	default:
		err = writeIcon(proc, src, *destination)
	}
	if err != nil {
		fatal(err)
	}
}

// checkArchive rejects -archive when no bundle is written.
func checkArchive(archive, bundleDir string) error {
	if archive != "" && bundleDir == "" {
		return errors.New("-archive packs a favicon bundle and requires -bundle")
	}
	return nil
}

func versionString() string {
	if Version == "" {
		return "icopack (devel)"
	}
	return "icopack " + Version
}

// newProcessor builds the processor and the label style out of the resolved config.
func newProcessor(cfg Config) (*icopack.Processor, render.Style, error) {
	style := render.DefaultStyle()

	f, err := icopack.ParseFilter(cfg.Filter)
	if err != nil {
		return nil, style, err
	}
	sh, err := render.ParseShape(cfg.Shape)
	if err != nil {
		return nil, style, err
	}
	fg, err := utils.ParseHexColor(cfg.Foreground)
	if err != nil {
		return nil, style, err
	}

	proc := icopack.NewProcessor()
	proc.Sizes = cfg.Sizes
	proc.CanonicalSize = cfg.CanonicalSize
	proc.Filter = f
	proc.Shape = sh
	proc.Fit = configFit(cfg)

	style.Shape = sh
	style.Foreground = fg
	if cfg.Background != "" {
		bg, err := utils.ParseHexColor(cfg.Background)
		if err != nil {
			return nil, style, err
		}
		proc.Background = bg
		style.Background = bg
	}
	return proc, style, nil
}

// sourceRaster renders the text label or loads the source image.
func sourceRaster(proc *icopack.Processor, style render.Style) (*icopack.Raster, error) {
	if *text != "" {
		return proc.Render(icopack.NewCanvasSurface(), labelSize, *text, style)
	}

	r, err := openSource(*source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return proc.Load(r)
}

// openSource opens a local file, a downloaded URL or stdin.
func openSource(in string) (io.ReadCloser, error) {
	if utils.IsValidUrl(in) {
		f, err := utils.DownloadImage(in)
		if err != nil {
			return nil, err
		}
		return &tempFile{f}, nil
	}
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return io.NopCloser(os.Stdin), nil
	}
	fi, err := os.Stat(in)
	if err != nil {
		return nil, fmt.Errorf("failed to load the source image: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory, only a single image can be used here", in)
	}
	return os.Open(in)
}

// tempFile removes the downloaded file once it is closed.
type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	os.Remove(t.Name())
	return err
}

func writeBundle(proc *icopack.Processor, src *icopack.Raster, cfg Config) error {
	m, err := bundle.Write(src, bundle.Options{
		Dir:        *bundleDir,
		Filter:     proc.Filter,
		Name:       *text,
		ThemeColor: cfg.Background,
		Background: cfg.Background,
		Logger:     log.New(os.Stderr, "", 0),
	})
	if err != nil {
		return err
	}

	if *archive != "" {
		format, err := bundle.FormatFromPath(*archive)
		if err != nil {
			return err
		}
		f, err := os.Create(*archive)
		if err != nil {
			return fmt.Errorf("unable to create the archive: %w", err)
		}
		if err := bundle.Archive(f, *bundleDir, m.Files, format); err != nil {
			f.Close()
			os.Remove(f.Name())
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		printSaved(*archive)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", utils.DecorateText("Paste the following tags into the <head> of your pages:", utils.StatusMessage))
	fmt.Print(bundle.HTMLSnippet(m.Files))
	return nil
}

func writeDataURI(proc *icopack.Processor, src *icopack.Raster) error {
	enc := &icopack.Encoder{CanonicalSize: proc.CanonicalSize, Filter: proc.Filter}
	buf, err := enc.Encode(src, proc.Sizes)
	if err != nil {
		return err
	}
	fmt.Println(icopack.DataURI(buf))
	return nil
}

func writeIcon(proc *icopack.Processor, src *icopack.Raster, out string) error {
	enc := &icopack.Encoder{CanonicalSize: proc.CanonicalSize, Filter: proc.Filter}

	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return enc.EncodeTo(os.Stdout, src, proc.Sizes)
	}

	if ext := filepath.Ext(out); ext != ".ico" {
		return fmt.Errorf("%v file type not supported, label icons are written as .ico", ext)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	if err := enc.EncodeTo(f, src, proc.Sizes); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printSaved(out)
	return nil
}

// printSaved displays the name and the size of a generated file.
func printSaved(fname string) {
	size := ""
	if fi, err := os.Stat(fname); err == nil {
		size = utils.FormatSize(fi.Size())
	}
	fmt.Fprintf(os.Stderr, "\nThe file has been saved as: %s %s%s\n",
		utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		utils.DecorateText(size, utils.DefaultMessage),
		utils.DefaultColor,
	)
}

func fatal(err error) {
	log.Fatalf("%s%s",
		utils.DecorateText("\nError: ", utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage),
	)
}
