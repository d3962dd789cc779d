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
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/surftemp/netcdf-explorer/colour"
)

// DefaultWMSTimeout is the time limit for a single WMS image request.
const DefaultWMSTimeout = 30 * time.Second

// Converter holds the settings that every layer falls back on: the names
// of the case, x and y dimensions and of the x, y and time coordinates,
// and the size of the data grid. It also carries the shared rendering
// resources.
type Converter struct {
	CaseDimension string
	XDimension    string
	YDimension    string

	XCoordinate    string
	YCoordinate    string
	TimeCoordinate string

	// DataWidth and DataHeight are the lengths of the x and y dimensions.
	DataWidth, DataHeight int

	// Images encodes rendered images.
	Images ImageEncoder

	// Tables resolves colour map names.
	Tables *colour.Tables

	// HTTPClient is used for WMS requests.
	HTTPClient *http.Client

	Log logrus.FieldLogger
}

// NewConverter resolves the converter settings from cfg for dataset ds.
func NewConverter(cfg *Config, ds *Dataset) (*Converter, error) {
	c := &Converter{
		CaseDimension:  cfg.Dimensions.Case,
		XDimension:     cfg.Dimensions.X,
		YDimension:     cfg.Dimensions.Y,
		XCoordinate:    cfg.Coordinates.X,
		YCoordinate:    cfg.Coordinates.Y,
		TimeCoordinate: cfg.Coordinates.Time,
		Tables:         &colour.Tables{Dir: cfg.ColourMapDir},
		HTTPClient:     &http.Client{Timeout: DefaultWMSTimeout},
		Log:            logrus.StandardLogger(),
	}
	if c.XDimension != "" {
		c.DataWidth = ds.Size(c.XDimension)
	}
	if c.YDimension != "" {
		c.DataHeight = ds.Size(c.YDimension)
	}
	enc, err := NewImageEncoder(cfg.Image.Format, cfg.Image.Quality)
	if err != nil {
		return nil, err
	}
	c.Images = enc
	return c, nil
}

func (c *Converter) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// coords returns the values of coordinate variable name, taking case
// forCase if the coordinate varies along the case dimension.
func coords(ds *Dataset, name, caseDim string, forCase int) (*Variable, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, err
	}
	if caseDim != "" && v.HasDim(caseDim) {
		v, err = v.Isel(map[string]int{caseDim: forCase})
		if err != nil {
			return nil, err
		}
		v = v.Squeeze()
	}
	return v, nil
}

// ImageDimensions returns the width and height of images drawn from ds,
// which are the lengths of the 1D x and y coordinates.
func (c *Converter) ImageDimensions(ds *Dataset) (width, height int, err error) {
	x, err := coords(ds, c.XCoordinate, c.CaseDimension, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("explorer: determining image dimensions: %v", err)
	}
	y, err := coords(ds, c.YCoordinate, c.CaseDimension, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("explorer: determining image dimensions: %v", err)
	}
	if len(x.Dims) != 1 || len(y.Dims) != 1 {
		return 0, 0, fmt.Errorf("explorer: unable to determine image dimensions from dataset")
	}
	return x.Len(), y.Len(), nil
}
