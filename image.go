/*
Copyright © 2024 the netcdf-explorer authors.
This file is part of netcdf-explorer.

netcdf-explorer is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

netcdf-explorer is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with netcdf-explorer.  If not, see <http://www.gnu.org/licenses/>.
*/

package explorer

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/gen2brain/webp"
)

// ImageEncoder writes rendered layer images in a particular file format.
type ImageEncoder interface {
	// Encode writes img to w.
	Encode(w io.Writer, img image.Image) error

	// Extension returns the file name extension, including the dot.
	Extension() string
}

// NewImageEncoder returns an encoder for the named format, "png" (the
// default when format is empty) or "webp". Quality applies to WebP only;
// a quality of 100 selects lossless compression.
func NewImageEncoder(format string, quality int) (ImageEncoder, error) {
	switch format {
	case "", "png":
		return pngEncoder{}, nil
	case "webp":
		if quality <= 0 {
			quality = 85
		}
		return webpEncoder{quality: quality}, nil
	default:
		return nil, fmt.Errorf("explorer: unsupported image format %q (supported: png, webp)", format)
	}
}

type pngEncoder struct{}

func (pngEncoder) Encode(w io.Writer, img image.Image) error { return png.Encode(w, img) }
func (pngEncoder) Extension() string                         { return ".png" }

type webpEncoder struct {
	quality int
}

func (e webpEncoder) Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, webp.Options{
		Lossless: e.quality >= 100,
		Quality:  e.quality,
	})
}

func (webpEncoder) Extension() string { return ".webp" }

// writeImage encodes img to a new file at path.
func writeImage(enc ImageEncoder, img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("explorer: creating image file: %v", err)
	}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("explorer: encoding image %s: %v", path, err)
	}
	return f.Close()
}
