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

package colour

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ctessum/sparse"
)

// Legend dimensions in pixels.
const (
	LegendWidth  = 200
	LegendHeight = 20
)

func checkRaster(a *sparse.DenseArray) (h, w int, err error) {
	if len(a.Shape) != 2 {
		return 0, 0, fmt.Errorf("colour: raster must be 2-dimensional but has shape %v", a.Shape)
	}
	return a.Shape[0], a.Shape[1], nil
}

// Continuous renders the 2D array a, where the first dimension is the
// image row, by mapping each value through t between vmin and vmax.
// NaN values are transparent.
func Continuous(a *sparse.DenseArray, t *Table, vmin, vmax float64) (*image.NRGBA, error) {
	h, w, err := checkRaster(a)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			img.SetNRGBA(i, j, t.At(a.Get(j, i), vmin, vmax))
		}
	}
	return img, nil
}

// FalseColour composes an RGB image from three bands. Each band is
// normalised to its own NaN-ignoring range, gamma corrected as v^gamma
// and scaled to 0-255. NaN values become 0.
func FalseColour(red, green, blue *sparse.DenseArray, redGamma, greenGamma, blueGamma float64) (*image.NRGBA, error) {
	h, w, err := checkRaster(red)
	if err != nil {
		return nil, err
	}
	bands := []*sparse.DenseArray{red, green, blue}
	gammas := []float64{redGamma, greenGamma, blueGamma}
	channels := make([][]uint8, 3)
	for c, band := range bands {
		bh, bw, err := checkRaster(band)
		if err != nil {
			return nil, err
		}
		if bh != h || bw != w {
			return nil, fmt.Errorf("colour: false colour bands have different shapes %v and %v", red.Shape, band.Shape)
		}
		channels[c] = gammaScale(band.Elements, gammas[c])
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			k := j*w + i
			img.SetNRGBA(i, j, color.NRGBA{R: channels[0][k], G: channels[1][k], B: channels[2][k], A: 255})
		}
	}
	return img, nil
}

func gammaScale(v []float64, gamma float64) []uint8 {
	lo, hi := NaNRange(v)
	o := make([]uint8, len(v))
	for i, x := range v {
		n := (x - lo) / (hi - lo)
		if math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		n = math.Pow(n, gamma) * 255
		if n < 0 {
			n = 0
		} else if n > 255 {
			n = 255
		}
		o[i] = uint8(n)
	}
	return o
}

// NaNRange returns the minimum and maximum of the non-NaN values in v.
// Both are NaN if there are no such values.
func NaNRange(v []float64) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if math.IsNaN(lo) || x < lo {
			lo = x
		}
		if math.IsNaN(hi) || x > hi {
			hi = x
		}
	}
	return lo, hi
}

// Mask renders an overlay that is c where a is greater than zero and
// fully transparent elsewhere.
func Mask(a *sparse.DenseArray, c color.NRGBA) (*image.NRGBA, error) {
	h, w, err := checkRaster(a)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			p := c
			if v := a.Get(j, i); !(v > 0) {
				p.A = 0
			} else {
				p.A = 255
			}
			img.SetNRGBA(i, j, p)
		}
	}
	return img, nil
}

// Discrete renders a classification by looking up the integer part of
// each value in lookup. Values without an entry are opaque black.
func Discrete(a *sparse.DenseArray, lookup map[int]color.NRGBA) (*image.NRGBA, error) {
	h, w, err := checkRaster(a)
	if err != nil {
		return nil, err
	}
	unknown := color.NRGBA{A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			p := unknown
			if v := a.Get(j, i); !math.IsNaN(v) && !math.IsInf(v, 0) {
				if c, ok := lookup[int(v)]; ok {
					p = c
				}
			}
			img.SetNRGBA(i, j, p)
		}
	}
	return img, nil
}

// Legend renders a horizontal gradient strip of LegendWidth by
// LegendHeight pixels spanning vmin to vmax.
func Legend(t *Table, vmin, vmax float64) (*image.NRGBA, error) {
	a := sparse.ZerosDense(LegendHeight, LegendWidth)
	for i := 0; i < LegendWidth; i++ {
		v := vmin + float64(i)/LegendWidth*(vmax-vmin)
		for j := 0; j < LegendHeight; j++ {
			a.Set(v, j, i)
		}
	}
	return Continuous(a, t, vmin, vmax)
}
