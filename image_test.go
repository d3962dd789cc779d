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
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestNewImageEncoder(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{format: "", ext: ".png"},
		{format: "png", ext: ".png"},
		{format: "webp", ext: ".webp"},
	}
	for _, test := range tests {
		enc, err := NewImageEncoder(test.format, 0)
		if err != nil {
			t.Fatal(err)
		}
		if enc.Extension() != test.ext {
			t.Errorf("%q: have extension %s, want %s", test.format, enc.Extension(), test.ext)
		}
	}
	if _, err := NewImageEncoder("gif", 0); err == nil {
		t.Error("gif should not be supported")
	}
}

func TestPNGEncoder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	enc, _ := NewImageEncoder("png", 0)
	var b bytes.Buffer
	if err := enc.Encode(&b, img); err != nil {
		t.Fatal(err)
	}
	o, err := png.Decode(&b)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, a := o.At(1, 0).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("have %v, want opaque red", o.At(1, 0))
	}
	if _, _, _, a := o.At(0, 0).RGBA(); a != 0 {
		t.Errorf("have %v, want transparent", o.At(0, 0))
	}
}
