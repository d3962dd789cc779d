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
	"image/color"

	"github.com/spf13/cast"
	"github.com/surftemp/netcdf-explorer/colour"
)

// Layer types.
const (
	TypeSingle     = "single"
	TypeRGB        = "rgb"
	TypeMask       = "mask"
	TypeDiscrete   = "discrete"
	TypeWMS        = "wms"
	TypeLayerGroup = "layer_group"
)

// NewLayer creates the layer described by spec. Top-level layers are
// shown in both views unless grid_view or overlay_view is false; members
// of a group follow the group.
func NewLayer(conv *Converter, name string, spec *LayerSpec) (Layer, error) {
	l, err := newLayer(conv, name, spec, false)
	if err != nil {
		return nil, err
	}
	grid, overlay := true, true
	if spec.GridView != nil {
		grid = *spec.GridView
	}
	if spec.OverlayView != nil {
		overlay = *spec.OverlayView
	}
	switch t := l.(type) {
	case *LayerGroup:
		t.gridView, t.overlayView = grid, overlay
	case interface{ base() *layerBase }:
		b := t.base()
		b.gridView, b.overlayView = grid, overlay
	}
	return l, nil
}

func (b *layerBase) base() *layerBase { return b }

// NewLayers creates the configured layers in declaration order.
func NewLayers(conv *Converter, layers LayerList) ([]Layer, error) {
	o := make([]Layer, 0, len(layers))
	for _, nl := range layers {
		l, err := NewLayer(conv, nl.Name, nl.Spec)
		if err != nil {
			return nil, err
		}
		o = append(o, l)
	}
	return o, nil
}

func newLayer(conv *Converter, name string, spec *LayerSpec, inGroup bool) (Layer, error) {
	if spec == nil {
		return nil, &ConfigError{Layer: name, Msg: "empty layer definition"}
	}
	band := spec.Band
	if band == "" {
		band = name
	}
	switch spec.Type {
	case TypeLayerGroup:
		if inGroup {
			return nil, &ConfigError{Layer: name, Msg: "Cannot nest layer groups"}
		}
		g := &LayerGroup{name: name, label: spec.Label}
		if g.label == "" {
			g.label = name
		}
		for _, nl := range spec.Layers {
			sub, err := newLayer(conv, name+"_"+nl.Name, nl.Spec, true)
			if err != nil {
				return nil, err
			}
			g.layers = append(g.layers, sub)
		}
		if len(g.layers) == 0 {
			return nil, &ConfigError{Layer: name, Msg: "Layer group should contain at least one layer"}
		}
		for _, sub := range g.layers {
			sub.(interface{ setGroup(*LayerGroup) }).setGroup(g)
		}
		return g, nil

	case TypeSingle:
		if spec.MinValue == nil || spec.MaxValue == nil {
			return nil, &ConfigError{Layer: name, Msg: "min_value and max_value are required"}
		}
		cmap := spec.Cmap
		if cmap == "" {
			cmap = colour.DefaultColourMap
		}
		table, err := conv.Tables.Get(cmap)
		if err != nil {
			return nil, &ConfigError{Layer: name, Msg: err.Error(), Err: err}
		}
		data, err := dataOptions(spec.Data)
		if err != nil {
			return nil, &ConfigError{Layer: name, Msg: err.Error(), Err: err}
		}
		return &SingleBand{
			layerBase: newLayerBase(conv, name, spec),
			band:      band,
			vmin:      *spec.MinValue,
			vmax:      *spec.MaxValue,
			cmap:      cmap,
			table:     table,
			data:      data,
		}, nil

	case TypeRGB:
		if spec.RedBand == "" || spec.GreenBand == "" || spec.BlueBand == "" {
			return nil, &ConfigError{Layer: name, Msg: "red_band, green_band and blue_band are required"}
		}
		gamma := func(g *float64) float64 {
			if g == nil {
				return DefaultGamma
			}
			return *g
		}
		return &RGB{
			layerBase:  newLayerBase(conv, name, spec),
			red:        spec.RedBand,
			green:      spec.GreenBand,
			blue:       spec.BlueBand,
			redGamma:   gamma(spec.RedGamma),
			greenGamma: gamma(spec.GreenGamma),
			blueGamma:  gamma(spec.BlueGamma),
		}, nil

	case TypeMask:
		c, err := maskColour(spec)
		if err != nil {
			return nil, &ConfigError{Layer: name, Msg: err.Error(), Err: err}
		}
		return &Mask{
			layerBase: newLayerBase(conv, name, spec),
			band:      band,
			colour:    c,
			bits:      spec.Mask,
		}, nil

	case TypeDiscrete:
		if len(spec.Values) == 0 {
			return nil, &ConfigError{Layer: name, Msg: "values are required"}
		}
		return &Discrete{
			layerBase: newLayerBase(conv, name, spec),
			band:      band,
			classes:   spec.Values,
		}, nil

	case TypeWMS:
		if spec.URL == "" {
			return nil, &ConfigError{Layer: name, Msg: "url is required"}
		}
		scale := 1.0
		if spec.Scale != nil {
			scale = *spec.Scale
		}
		return &WMS{
			layerBase: newLayerBase(conv, name, spec),
			url:       spec.URL,
			scale:     scale,
		}, nil

	default:
		return nil, &ConfigError{Layer: name, Msg: fmt.Sprintf("Unknown layer type %q", spec.Type)}
	}
}

// maskColour returns the named colour of a mask layer if there is one,
// and otherwise its r, g and b components, which default to 0.
func maskColour(spec *LayerSpec) (color.NRGBA, error) {
	if spec.Colour != "" {
		return colour.Lookup(spec.Colour)
	}
	c := color.NRGBA{A: 255}
	for _, p := range []struct {
		name string
		v    *int
		dst  *uint8
	}{{"r", spec.R, &c.R}, {"g", spec.G, &c.G}, {"b", spec.B, &c.B}} {
		if p.v == nil {
			continue
		}
		if *p.v < 0 || *p.v > 255 {
			return c, fmt.Errorf("Invalid %s value %d, must be between 0 and 255", p.name, *p.v)
		}
		*p.dst = uint8(*p.v)
	}
	return c, nil
}

func dataOptions(v interface{}) (map[string]interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !t {
			return nil, nil
		}
		return map[string]interface{}{}, nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("data options must be a mapping: %v", err)
	}
	return m, nil
}
