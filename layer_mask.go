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
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/surftemp/netcdf-explorer/colour"
)

// Mask draws the pixels where a variable is positive in one colour and
// leaves the rest transparent.
type Mask struct {
	layerBase
	band   string
	colour color.NRGBA

	// bits, if set, is ANDed with the integer value of each pixel.
	bits *int64
}

func (l *Mask) Check(ds *Dataset) error {
	if err := l.check(ds); err != nil {
		return err
	}
	return l.checkBand(ds, l.band)
}

func (l *Mask) Build(_ context.Context, ds *Dataset, path string) error {
	a, err := l.getData(ds, l.band)
	if err != nil {
		return err
	}
	m := newArray(a.Shape)
	for i, v := range a.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		n := int64(v)
		if l.bits != nil {
			n &= *l.bits
		}
		m.Elements[i] = float64(n)
	}
	img, err := colour.Mask(m, l.colour)
	if err != nil {
		return fmt.Errorf("explorer: layer %s: %v", l.name, err)
	}
	return writeImage(l.conv.Images, img, path)
}
