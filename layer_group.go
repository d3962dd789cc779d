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
)

// LayerGroup is a set of layers that share one slot in the viewer, which
// lets the user switch between them. Groups cannot be nested.
type LayerGroup struct {
	name, label string
	layers      []Layer
	gridView    bool
	overlayView bool
}

func (g *LayerGroup) Name() string       { return g.name }
func (g *LayerGroup) Label() string      { return g.label }
func (g *LayerGroup) Group() *LayerGroup { return nil }
func (g *LayerGroup) Sublayers() []Layer { return g.layers }
func (g *LayerGroup) GridView() bool     { return g.gridView }
func (g *LayerGroup) OverlayView() bool  { return g.overlayView }
func (g *LayerGroup) SaveData() bool     { return false }

// CaseWise returns whether any member varies by case.
func (g *LayerGroup) CaseWise() bool {
	for _, l := range g.layers {
		if l.CaseWise() {
			return true
		}
	}
	return false
}

// Check checks every member and returns the first failure.
func (g *LayerGroup) Check(ds *Dataset) error {
	for _, l := range g.layers {
		if err := l.Check(ds); err != nil {
			return err
		}
	}
	return nil
}

// Build draws every member to path. The driver draws members to their
// own files; Build is only useful for single-member groups.
func (g *LayerGroup) Build(ctx context.Context, ds *Dataset, path string) error {
	for _, l := range g.layers {
		if err := l.Build(ctx, ds, path); err != nil {
			return err
		}
	}
	return nil
}

// HasLegend and BuildLegend use the first member.
func (g *LayerGroup) HasLegend() bool { return g.layers[0].HasLegend() }

func (g *LayerGroup) BuildLegend(path string) error { return g.layers[0].BuildLegend(path) }

func (g *LayerGroup) BuildData(ds *Dataset, path string) (map[string]interface{}, error) {
	return nil, fmt.Errorf("explorer: layer group %s has no data", g.name)
}

// flattenLayers replaces each group in layers by its members, optionally
// keeping only layers shown in the grid or overlay view.
func flattenLayers(layers []Layer, onlyGridView, onlyOverlayView bool) []Layer {
	var o []Layer
	for _, l := range layers {
		if onlyGridView && !l.GridView() {
			continue
		}
		if onlyOverlayView && !l.OverlayView() {
			continue
		}
		if sub := l.Sublayers(); sub != nil {
			o = append(o, sub...)
		} else {
			o = append(o, l)
		}
	}
	return o
}
