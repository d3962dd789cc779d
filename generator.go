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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"github.com/surftemp/netcdf-explorer/colour"
)

// DefaultSliceCacheSize is the number of per-case dataset slices kept in
// memory by a Generator.
const DefaultSliceCacheSize = 32

// LayerInfo describes a layer in the scene index.
type LayerInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	HasData bool   `json:"has_data"`
	WMSURL  string `json:"wms_url,omitempty"`
}

// DataSource is a data file written for a layer and the display options
// that go with it.
type DataSource struct {
	URL     string                 `json:"url"`
	Options map[string]interface{} `json:"options"`
}

// Scene is the record of one case in the scene index. Paths are relative
// to the output folder.
type Scene struct {
	Timestamp string                `json:"timestamp"`
	ImageSrcs map[string]string     `json:"image_srcs"`
	DataSrcs  map[string]DataSource `json:"data_srcs"`
	Info      map[string]string     `json:"info"`
	Pos       int                   `json:"pos"`

	// Bounds of the scene, set when there is a WMS layer.
	XMin *float64 `json:"x_min,omitempty"`
	XMax *float64 `json:"x_max,omitempty"`
	YMin *float64 `json:"y_min,omitempty"`
	YMax *float64 `json:"y_max,omitempty"`
}

// SceneIndex is the content of scenes.json, which drives the viewer.
type SceneIndex struct {
	Layers      []LayerInfo         `json:"layers"`
	Index       []Scene             `json:"index"`
	LayerGroups map[string][]string `json:"layer_groups"`
}

// LabelValues is the content of labels.json: for each label group, the
// label of every scene in scene order.
type LabelValues struct {
	CaseDimension  string                   `json:"case_dimension"`
	Values         map[string][]interface{} `json:"values"`
	Schema         map[string][]string      `json:"schema"`
	NetCDFFilename string                   `json:"netcdf_filename,omitempty"`
}

// Generator renders a dataset into an output folder according to a
// Config.
type Generator struct {
	Title        string
	OutputFolder string

	// DownloadFilename is the name of a copy of the dataset in the
	// output folder that the viewer links to, if any.
	DownloadFilename string

	// FilterControls adds month filter controls to the grid view.
	FilterControls bool

	Log logrus.FieldLogger

	cfg    *Config
	ds     *Dataset
	conv   *Converter
	layers []Layer
	info   *InfoRenderer
	slices *lru.Cache
}

// NewGenerator prepares ds for rendering: it makes the x and y
// coordinates 1-dimensional, adds the derived bands and creates the
// layers. Configuration errors are returned here, before anything is
// drawn.
func NewGenerator(cfg *Config, ds *Dataset, outputFolder, title string) (*Generator, error) {
	for _, c := range []string{cfg.Coordinates.X, cfg.Coordinates.Y} {
		if c == "" {
			continue
		}
		if err := ReduceCoordinate(ds, c, cfg.Dimensions.Case); err != nil {
			return nil, err
		}
	}
	for _, kv := range cfg.DeriveBands {
		if err := DeriveBand(ds, kv.Key, kv.Value); err != nil {
			return nil, fmt.Errorf("explorer: deriving band %s: %v", kv.Key, err)
		}
	}
	conv, err := NewConverter(cfg, ds)
	if err != nil {
		return nil, err
	}
	layers, err := NewLayers(conv, cfg.Layers)
	if err != nil {
		return nil, err
	}
	info, err := NewInfoRenderer(cfg.Info, cfg.CRS, cfg.Coordinates.X, cfg.Coordinates.Y)
	if err != nil {
		return nil, err
	}
	return &Generator{
		Title:        title,
		OutputFolder: outputFolder,
		cfg:          cfg,
		ds:           ds,
		conv:         conv,
		layers:       layers,
		info:         info,
		slices:       lru.New(DefaultSliceCacheSize),
	}, nil
}

// Converter returns the settings shared by the generator's layers.
func (g *Generator) Converter() *Converter { return g.conv }

// Layers returns the active layers.
func (g *Generator) Layers() []Layer { return g.layers }

func (g *Generator) log() logrus.FieldLogger {
	if g.Log == nil {
		return logrus.StandardLogger()
	}
	return g.Log
}

// caseSlice returns the data of case i.
func (g *Generator) caseSlice(i int) (*Dataset, error) {
	if s, ok := g.slices.Get(i); ok {
		return s.(*Dataset), nil
	}
	s, err := g.ds.Isel(map[string]int{g.conv.CaseDimension: i})
	if err != nil {
		return nil, fmt.Errorf("explorer: selecting case %d: %v", i, err)
	}
	g.slices.Add(i, s)
	return s, nil
}

type sceneCase struct {
	index     int
	timestamp string
}

// cases returns the case indexes in display order: sorted by timestamp
// when there is a time coordinate, otherwise in natural order.
func (g *Generator) cases() ([]sceneCase, error) {
	n := g.ds.Size(g.conv.CaseDimension)
	cases := make([]sceneCase, n)
	for i := range cases {
		cases[i].index = i
	}
	if g.conv.TimeCoordinate == "" {
		return cases, nil
	}
	tv, err := g.ds.Var(g.conv.TimeCoordinate)
	if err != nil {
		return nil, err
	}
	ts, err := Timestamps(tv)
	if err != nil {
		return nil, err
	}
	if len(ts) != n {
		return nil, fmt.Errorf("explorer: time coordinate %s has %d values for %d cases", tv.Name, len(ts), n)
	}
	for i := range cases {
		cases[i].timestamp = timestamp(ts[i])
	}
	sortCases(cases)
	return cases, nil
}

func sortCases(cases []sceneCase) {
	sort.SliceStable(cases, func(i, j int) bool { return cases[i].timestamp < cases[j].timestamp })
}

// checkLayers removes the layers that cannot be drawn from the dataset.
func (g *Generator) checkLayers() {
	active := g.layers[:0]
	for _, l := range g.layers {
		if err := l.Check(g.ds); err != nil {
			g.log().WithField("layer", l.Name()).Errorf("Unable to add layer %s: %v", l.Name(), err)
			continue
		}
		active = append(active, l)
	}
	g.layers = active
}

func (g *Generator) imagePath(key string, index int) (src, dst string) {
	name := key
	if index >= 0 {
		name = fmt.Sprintf("%s_%d", key, index)
	}
	src = path.Join("images", name+g.conv.Images.Extension())
	return src, filepath.Join(g.OutputFolder, filepath.FromSlash(src))
}

func (g *Generator) dataPath(key string, index int) (src, dst string) {
	name := key
	if index >= 0 {
		name = fmt.Sprintf("%s_%d", key, index)
	}
	src = path.Join("data", name+".gz")
	return src, filepath.Join(g.OutputFolder, filepath.FromSlash(src))
}

// Run draws every layer for every case, writes the scene index and the
// other viewer files, and returns the scene index. A layer that fails to
// draw stops the run.
func (g *Generator) Run(ctx context.Context) (*SceneIndex, error) {
	g.info.Log = g.log()
	for _, dir := range []string{"images", "data", "cmaps", "service_info"} {
		if err := os.MkdirAll(filepath.Join(g.OutputFolder, dir), os.ModePerm); err != nil {
			return nil, fmt.Errorf("explorer: creating output folder: %v", err)
		}
	}
	index := &SceneIndex{Layers: []LayerInfo{}, Index: []Scene{}, LayerGroups: map[string][]string{}}
	var labels *LabelValues
	legends := make(map[string]string)

	if len(g.layers) > 0 {
		if g.conv.CaseDimension == "" {
			return nil, fmt.Errorf("explorer: a case dimension must be configured")
		}
		if _, _, err := g.conv.ImageDimensions(g.ds); err != nil {
			return nil, err
		}
		cases, err := g.cases()
		if err != nil {
			return nil, err
		}
		g.checkLayers()
		flat := flattenLayers(g.layers, false, false)

		for _, l := range flat {
			if !l.HasLegend() {
				continue
			}
			src, dst := g.imagePath(l.Name()+"_legend", -1)
			if err := l.BuildLegend(dst); err != nil {
				return nil, err
			}
			legends[l.Name()] = src
		}
		if err := g.writeColourMaps(flat); err != nil {
			return nil, err
		}

		staticImages := make(map[string]string)
		staticData := make(map[string]DataSource)
		for _, l := range flat {
			if l.CaseWise() {
				continue
			}
			if err := g.buildLayer(ctx, l, g.ds, -1, staticImages, staticData); err != nil {
				return nil, err
			}
		}

		if len(g.cfg.Labels) > 0 {
			labels = g.newLabelValues()
		}
		for n, c := range cases {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			g.log().WithFields(logrus.Fields{"case": c.index, "timestamp": c.timestamp}).
				Debugf("building case %d of %d", n+1, len(cases))
			ds, err := g.caseSlice(c.index)
			if err != nil {
				return nil, err
			}
			scene := Scene{
				Timestamp: c.timestamp,
				ImageSrcs: make(map[string]string),
				DataSrcs:  make(map[string]DataSource),
				Pos:       c.index,
			}
			for _, l := range flat {
				if !l.CaseWise() {
					scene.ImageSrcs[l.Name()] = staticImages[l.Name()]
					if l.SaveData() {
						scene.DataSrcs[l.Name()] = staticData[l.Name()]
					}
					continue
				}
				if err := g.buildLayer(ctx, l, ds, c.index, scene.ImageSrcs, scene.DataSrcs); err != nil {
					return nil, err
				}
			}
			for _, l := range flat {
				if wms, ok := l.(*WMS); ok {
					b, err := wms.Bounds(ds)
					if err != nil {
						return nil, fmt.Errorf("explorer: layer %s, case %d: %v", l.Name(), c.index, err)
					}
					xmin, xmax, ymin, ymax := b.Min.X(), b.Max.X(), b.Min.Y(), b.Max.Y()
					scene.XMin, scene.XMax, scene.YMin, scene.YMax = &xmin, &xmax, &ymin, &ymax
				}
			}
			scene.Info = g.info.Render(c.index, c.timestamp, ds)
			if labels != nil {
				g.appendLabels(labels, ds)
			}
			index.Index = append(index.Index, scene)
		}
		g.log().Infof("built %d layers for %d cases", len(flat), len(cases))

		for _, l := range flat {
			info := LayerInfo{Name: l.Name(), Label: l.Label(), HasData: l.SaveData()}
			if wms, ok := l.(*WMS); ok {
				info.WMSURL = wms.URL()
			}
			index.Layers = append([]LayerInfo{info}, index.Layers...)
			if grp := l.Group(); grp != nil {
				index.LayerGroups[grp.Name()] = append(index.LayerGroups[grp.Name()], l.Name())
			}
		}
	}

	var timeseries []Timeseries
	if len(g.cfg.Timeseries.Plots) > 0 && g.conv.CaseDimension != "" {
		var err error
		timeseries, err = WriteTimeseries(g.OutputFolder, g.ds, g.conv.CaseDimension, g.conv.TimeCoordinate,
			g.cfg.Timeseries.Plots, g.caseSlice)
		if err != nil {
			return nil, err
		}
		if len(timeseries) > 0 {
			if err := writeJSON(filepath.Join(g.OutputFolder, "timeseries.json"), timeseries); err != nil {
				return nil, err
			}
		}
	}

	if err := writeJSON(filepath.Join(g.OutputFolder, "scenes.json"), index); err != nil {
		return nil, err
	}
	if labels != nil {
		if err := writeJSON(filepath.Join(g.OutputFolder, "labels.json"), labels); err != nil {
			return nil, err
		}
	}
	if err := writeJSON(filepath.Join(g.OutputFolder, "service_info", "services.json"), struct{}{}); err != nil {
		return nil, err
	}
	if err := g.writeGridView(index, legends, timeseries); err != nil {
		return nil, err
	}
	return index, nil
}

// buildLayer draws layer l from ds, and its data file if it has one, and
// records the paths. A negative index means the layer is static.
func (g *Generator) buildLayer(ctx context.Context, l Layer, ds *Dataset, index int, images map[string]string, data map[string]DataSource) error {
	src, dst := g.imagePath(l.Name(), index)
	if err := l.Build(ctx, ds, dst); err != nil {
		return fmt.Errorf("explorer: building layer %s for case %d: %w", l.Name(), index, err)
	}
	images[l.Name()] = src
	if !l.SaveData() {
		return nil
	}
	dsrc, ddst := g.dataPath(l.Name(), index)
	opts, err := l.BuildData(ds, ddst)
	if err != nil {
		return fmt.Errorf("explorer: building data for layer %s for case %d: %w", l.Name(), index, err)
	}
	data[l.Name()] = DataSource{URL: dsrc, Options: opts}
	return nil
}

// writeColourMaps writes the selectable colour tables and those of the
// single band layers to the cmaps folder so that the viewer can recolour
// layer data.
func (g *Generator) writeColourMaps(layers []Layer) error {
	for _, name := range colour.Selectable() {
		t, err := g.conv.Tables.Get(name)
		if err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(g.OutputFolder, "cmaps", name+".json"), t); err != nil {
			return err
		}
	}
	for _, l := range layers {
		sb, ok := l.(*SingleBand)
		if !ok {
			continue
		}
		p := filepath.Join(g.OutputFolder, "cmaps", sb.ColourMap()+".json")
		if err := writeJSON(p, sb.Table()); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) newLabelValues() *LabelValues {
	lv := &LabelValues{
		CaseDimension:  g.conv.CaseDimension,
		Values:         make(map[string][]interface{}),
		Schema:         make(map[string][]string),
		NetCDFFilename: g.DownloadFilename,
	}
	for _, grp := range g.cfg.Labels {
		lv.Schema[grp.Name] = append([]string{}, grp.Labels...)
		lv.Values[grp.Name] = []interface{}{}
	}
	return lv
}

// appendLabels records the value of each label group variable of a
// scene, or nil if the dataset has no such variable.
func (g *Generator) appendLabels(lv *LabelValues, ds *Dataset) {
	for _, grp := range g.cfg.Labels {
		var value interface{}
		if v, err := ds.Var(grp.Name); err == nil {
			if v.Data == nil && len(v.Text) == 1 {
				value = v.Text[0]
			} else if x, err := v.Item(); err == nil && !math.IsNaN(x) {
				value = x
			}
		}
		lv.Values[grp.Name] = append(lv.Values[grp.Name], value)
	}
}

func writeJSON(p string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("explorer: encoding %s: %v", filepath.Base(p), err)
	}
	if err := ioutil.WriteFile(p, b, 0644); err != nil {
		return fmt.Errorf("explorer: writing %s: %v", p, err)
	}
	return nil
}
