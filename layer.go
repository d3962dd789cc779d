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

	"github.com/ctessum/sparse"
)

// Layer is one configured rendering rule. Check must be called, and must
// succeed, before any of the Build methods.
type Layer interface {
	// Name returns the unique key of the layer, used in file names.
	Name() string

	// Label returns the display name of the layer.
	Label() string

	// Check verifies that the layer can be drawn from ds and fixes the
	// layer's orientation and whether it varies by case. A non-nil
	// error means that the layer should be left out.
	Check(ds *Dataset) error

	// Build draws the layer from ds to the image file at path.
	Build(ctx context.Context, ds *Dataset, path string) error

	// HasLegend returns whether BuildLegend draws a legend.
	HasLegend() bool
	BuildLegend(path string) error

	// SaveData returns whether BuildData writes a data file.
	SaveData() bool

	// BuildData writes the layer's values to the data file at path and
	// returns the display options for the viewer.
	BuildData(ds *Dataset, path string) (map[string]interface{}, error)

	// Group returns the group the layer belongs to, or nil.
	Group() *LayerGroup

	// CaseWise returns whether the layer must be drawn once per case
	// rather than once for all cases.
	CaseWise() bool

	GridView() bool
	OverlayView() bool

	// Sublayers returns the members of a group, or nil for any other
	// layer.
	Sublayers() []Layer
}

// layerBase holds the settings shared by all leaf layers and implements
// the methods that do not depend on the layer type.
type layerBase struct {
	name, label string
	conv        *Converter
	selectors   map[string]int

	caseDimension  string
	xDimension     string
	yDimension     string
	xCoordinate    string
	yCoordinate    string
	timeCoordinate string

	fliplr, flipud bool
	caseWise       bool
	gridView       bool
	overlayView    bool
	group          *LayerGroup
}

func newLayerBase(conv *Converter, name string, spec *LayerSpec) layerBase {
	b := layerBase{
		name:           name,
		label:          spec.Label,
		conv:           conv,
		selectors:      spec.Selectors,
		caseDimension:  conv.CaseDimension,
		xDimension:     conv.XDimension,
		yDimension:     conv.YDimension,
		xCoordinate:    conv.XCoordinate,
		yCoordinate:    conv.YCoordinate,
		timeCoordinate: conv.TimeCoordinate,
	}
	if b.label == "" {
		b.label = name
	}
	override := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	override(&b.caseDimension, spec.Dimensions.Case)
	override(&b.xDimension, spec.Dimensions.X)
	override(&b.yDimension, spec.Dimensions.Y)
	override(&b.xCoordinate, spec.Coordinates.X)
	override(&b.yCoordinate, spec.Coordinates.Y)
	override(&b.timeCoordinate, spec.Coordinates.Time)
	return b
}

func (b *layerBase) Name() string       { return b.name }
func (b *layerBase) Label() string      { return b.label }
func (b *layerBase) Group() *LayerGroup { return b.group }
func (b *layerBase) CaseWise() bool     { return b.caseWise }
func (b *layerBase) Sublayers() []Layer { return nil }
func (b *layerBase) HasLegend() bool    { return false }
func (b *layerBase) SaveData() bool     { return false }

// GridView returns whether the layer is shown in the grid view. Members
// of a group follow the group.
func (b *layerBase) GridView() bool {
	if b.group != nil {
		return b.group.GridView()
	}
	return b.gridView
}

// OverlayView returns whether the layer is shown in the overlay view.
func (b *layerBase) OverlayView() bool {
	if b.group != nil {
		return b.group.OverlayView()
	}
	return b.overlayView
}

func (b *layerBase) BuildLegend(path string) error {
	return fmt.Errorf("explorer: layer %s has no legend", b.name)
}

func (b *layerBase) BuildData(ds *Dataset, path string) (map[string]interface{}, error) {
	return nil, fmt.Errorf("explorer: layer %s has no data", b.name)
}

func (b *layerBase) setGroup(g *LayerGroup) { b.group = g }

func (b *layerBase) checkErr(reason string, err error) error {
	return &CheckError{Layer: b.name, Reason: reason, Err: err}
}

// check verifies the coordinates and sets the orientation flags.
func (b *layerBase) check(ds *Dataset) error {
	for _, name := range []string{b.xCoordinate, b.yCoordinate, b.timeCoordinate} {
		if name == "" {
			continue
		}
		if _, err := ds.Var(name); err != nil {
			return b.checkErr(fmt.Sprintf("No variable %s", name), err)
		}
	}
	if b.xCoordinate == "" || b.yCoordinate == "" {
		return b.checkErr("x and y coordinates must be configured", nil)
	}
	xc, err := coords(ds, b.xCoordinate, b.caseDimension, 0)
	if err != nil {
		return b.checkErr(err.Error(), err)
	}
	yc, err := coords(ds, b.yCoordinate, b.caseDimension, 0)
	if err != nil {
		return b.checkErr(err.Error(), err)
	}
	if len(xc.Dims) != 1 || xc.Data == nil {
		return b.checkErr(fmt.Sprintf("x_coordinate %s must be 1-dimensional", b.xCoordinate), nil)
	}
	if len(yc.Dims) != 1 || yc.Data == nil {
		return b.checkErr(fmt.Sprintf("y_coordinate %s must be 1-dimensional", b.yCoordinate), nil)
	}
	b.fliplr, b.flipud = orientation(xc.Values(), yc.Values())
	return nil
}

// checkBand verifies that band is in ds and marks the layer as case-wise
// if the band varies along the case dimension.
func (b *layerBase) checkBand(ds *Dataset, band string) error {
	v, err := ds.Var(band)
	if err != nil {
		return b.checkErr(fmt.Sprintf("No variable %s", band), err)
	}
	if v.Data == nil {
		return b.checkErr(fmt.Sprintf("variable %s is not numeric", band), nil)
	}
	if b.caseDimension != "" && v.HasDim(b.caseDimension) {
		b.caseWise = true
	}
	return nil
}

// getData returns the named variable of ds as a raster with the y
// dimension first, oriented so that row 0 is the top of the image and
// column 0 is its left edge. The result may share storage with ds and
// must not be modified.
func (b *layerBase) getData(ds *Dataset, band string) (*sparse.DenseArray, error) {
	v, err := ds.Var(band)
	if err != nil {
		return nil, err
	}
	if v.Data == nil {
		return nil, fmt.Errorf("explorer: layer %s: variable %s is not numeric", b.name, band)
	}
	if len(b.selectors) > 0 {
		if v, err = v.Isel(b.selectors); err != nil {
			return nil, err
		}
	}
	v = v.Squeeze()
	a := v.Data
	dims := v.Dims
	if len(dims) == 1 {
		shape := []int{b.conv.DataHeight, b.conv.DataWidth}
		to := []string{b.conv.YDimension, b.conv.XDimension}
		if dims[0] != to[0] && dims[0] != to[1] {
			return nil, &ShapeError{Layer: b.name, Dims: dims}
		}
		if a, err = broadcast(a, dims, to, shape); err != nil {
			return nil, fmt.Errorf("explorer: layer %s: %v", b.name, err)
		}
		dims = to
	}
	if len(dims) != 2 {
		return nil, &ShapeError{Layer: b.name, Dims: dims}
	}
	xi, yi := indexOf(dims, b.xDimension), indexOf(dims, b.yDimension)
	if xi < 0 || yi < 0 {
		return nil, &ShapeError{Layer: b.name, Dims: dims}
	}
	if yi > xi {
		a = transpose2(a)
	}
	if b.flipud {
		a = flipUD(a)
	}
	if b.fliplr {
		a = flipLR(a)
	}
	return a, nil
}

func indexOf(s []string, v string) int {
	for i, e := range s {
		if e == v {
			return i
		}
	}
	return -1
}
