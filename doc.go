/*
Package icopack packages raster images into multi-resolution icon containers
(the classic .ico format) as used by desktop applications and web browsers.

Each requested resolution is derived from a single canonical raster by a
progressive downsampler, converted into a 32 bits per pixel bitmap block and
stored behind an icon directory. The package also provides a command line
interface, supporting various flags for rendering, bundling and batch
conversion. To check the supported commands type:

	$ icopack --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/esimov/icopack"
	)

	func main() {
		p := icopack.NewProcessor()
		p.Sizes = []int{16, 32, 48, 256}

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error generating icon: %s", err.Error())
		}
	}

Sources can be any raster format registered with the image package, WebP,
BMP or an SVG document. The bundle sub package writes the favicon set of a
web site (favicon.ico, PNG renditions and a web manifest) out of one raster.

For lower level use, EncodeIcon turns a Raster into the container bytes and
ResizeRaster exposes the downsampler on its own.
*/
package icopack
