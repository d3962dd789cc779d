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

	"github.com/surftemp/netcdf-explorer/colour"
)

// DefaultGamma is the gamma correction applied to each band of an RGB
// layer unless configured otherwise.
const DefaultGamma = 0.5

// RGB composes a false colour image from three variables.
type RGB struct {
	layerBase
	red, green, blue                string
	redGamma, greenGamma, blueGamma float64
}

func (l *RGB) Check(ds *Dataset) error {
	if err := l.check(ds); err != nil {
		return err
	}
	for _, band := range []string{l.red, l.green, l.blue} {
		if err := l.checkBand(ds, band); err != nil {
			return err
		}
	}
	return nil
}

func (l *RGB) Build(_ context.Context, ds *Dataset, path string) error {
	r, err := l.getData(ds, l.red)
	if err != nil {
		return err
	}
	g, err := l.getData(ds, l.green)
	if err != nil {
		return err
	}
	b, err := l.getData(ds, l.blue)
	if err != nil {
		return err
	}
	img, err := colour.FalseColour(r, g, b, l.redGamma, l.greenGamma, l.blueGamma)
	if err != nil {
		return fmt.Errorf("explorer: layer %s: %v", l.name, err)
	}
	return writeImage(l.conv.Images, img, path)
}
