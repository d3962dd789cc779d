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

	"github.com/surftemp/netcdf-explorer/colour"
)

// Discrete draws a variable of integer classes, each with its own
// colour. Values that are not a known class are drawn in opaque black.
type Discrete struct {
	layerBase
	band    string
	classes DiscreteValues
	lookup  map[int]color.NRGBA
}

// Classes returns the configured classes.
func (l *Discrete) Classes() DiscreteValues { return l.classes }

func (l *Discrete) Check(ds *Dataset) error {
	if err := l.check(ds); err != nil {
		return err
	}
	if err := l.checkBand(ds, l.band); err != nil {
		return err
	}
	lookup := make(map[int]color.NRGBA, len(l.classes))
	for _, c := range l.classes {
		rgb, err := colour.Lookup(c.Colour)
		if err != nil {
			return l.checkErr(fmt.Sprintf("Invalid colour %s", c.Colour), err)
		}
		lookup[c.Value] = rgb
	}
	l.lookup = lookup
	return nil
}

func (l *Discrete) Build(_ context.Context, ds *Dataset, path string) error {
	a, err := l.getData(ds, l.band)
	if err != nil {
		return err
	}
	img, err := colour.Discrete(a, l.lookup)
	if err != nil {
		return fmt.Errorf("explorer: layer %s: %v", l.name, err)
	}
	return writeImage(l.conv.Images, img, path)
}
