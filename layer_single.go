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

// SingleBand draws one variable through a continuous colour map.
type SingleBand struct {
	layerBase
	band       string
	vmin, vmax float64
	cmap       string
	table      *colour.Table
	data       map[string]interface{}
}

// ColourMap returns the name of the layer's colour map.
func (l *SingleBand) ColourMap() string { return l.cmap }

// Table returns the layer's colour table.
func (l *SingleBand) Table() *colour.Table { return l.table }

func (l *SingleBand) Check(ds *Dataset) error {
	if err := l.check(ds); err != nil {
		return err
	}
	return l.checkBand(ds, l.band)
}

func (l *SingleBand) Build(_ context.Context, ds *Dataset, path string) error {
	a, err := l.getData(ds, l.band)
	if err != nil {
		return err
	}
	img, err := colour.Continuous(a, l.table, l.vmin, l.vmax)
	if err != nil {
		return fmt.Errorf("explorer: layer %s: %v", l.name, err)
	}
	return writeImage(l.conv.Images, img, path)
}

func (l *SingleBand) HasLegend() bool { return true }

func (l *SingleBand) BuildLegend(path string) error {
	img, err := colour.Legend(l.table, l.vmin, l.vmax)
	if err != nil {
		return fmt.Errorf("explorer: legend for layer %s: %v", l.name, err)
	}
	return writeImage(l.conv.Images, img, path)
}

// SaveData returns true when display options were configured for the
// layer's data.
func (l *SingleBand) SaveData() bool { return l.data != nil }

func (l *SingleBand) BuildData(ds *Dataset, path string) (map[string]interface{}, error) {
	a, err := l.getData(ds, l.band)
	if err != nil {
		return nil, err
	}
	if err := writeDataFile(path, a); err != nil {
		return nil, err
	}
	return l.data, nil
}
