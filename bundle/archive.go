package bundle

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Format is the compression applied to a bundle archive.
type Format int

// The supported archive formats.
const (
	TarXz Format = iota
	TarGz
	TarZst
)

var formatExts = map[Format][]string{
	TarXz:  {".tar.xz", ".txz"},
	TarGz:  {".tar.gz", ".tgz"},
	TarZst: {".tar.zst", ".tzst"},
}

func (f Format) String() string {
	if exts, ok := formatExts[f]; ok {
		return exts[0][1:]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the archive format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, f := range []Format{TarXz, TarGz, TarZst} {
		for _, ext := range formatExts[f] {
			if strings.HasSuffix(name, ext) {
				return f, nil
			}
		}
	}
	return TarXz, fmt.Errorf("unsupported archive type %q", filepath.Ext(path))
}

// Archive packs the given files of dir into a compressed tarball written to w.
// Entries are stored under their names relative to dir.
func Archive(w io.Writer, dir string, files []string, format Format) error {
	zw, err := compressor(w, format)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(zw)
	for _, name := range files {
		if err := addFile(tw, dir, name); err != nil {
			zw.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func compressor(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case TarXz:
		return xz.NewWriter(w)
	case TarGz:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case TarZst:
		return zstd.NewWriter(w, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	default:
		return nil, fmt.Errorf("unsupported archive format %v", format)
	}
}

func addFile(tw *tar.Writer, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", name)
	}

	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(name)
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
