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
	"errors"
	"fmt"
	"image/png"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kr/pretty"
)

func testConverter(t *testing.T, cfg *Config, ds *Dataset) *Converter {
	t.Helper()
	c, err := NewConverter(cfg, ds)
	if err != nil {
		t.Fatal(err)
	}
	c.Log = testLogger()
	return c
}

func testLayer(t *testing.T, cfg *Config, ds *Dataset, name string) Layer {
	t.Helper()
	for _, nl := range cfg.Layers {
		if nl.Name != name {
			continue
		}
		l, err := NewLayer(testConverter(t, cfg, ds), nl.Name, nl.Spec)
		if err != nil {
			t.Fatal(err)
		}
		if err := l.Check(ds); err != nil {
			t.Fatal(err)
		}
		return l
	}
	t.Fatalf("no layer %s", name)
	return nil
}

func TestGetDataOrientation(t *testing.T) {
	ds := testDataset(t)
	cfg := testConfig(t, testConfigYAML)
	l := testLayer(t, cfg, ds, "land").(*Mask)
	if !l.flipud || l.fliplr {
		t.Fatalf("have flipud %v, fliplr %v; want true, false", l.flipud, l.fliplr)
	}
	a, err := l.getData(ds, "land")
	if err != nil {
		t.Fatal(err)
	}
	// y ascends, so the last row of the data is the top of the image.
	want := []float64{1, 1, 1, 1, 0, 1, 1, 1, 0, 0, 1, 1}
	if diff := pretty.Diff(a.Elements, want); len(diff) > 0 {
		t.Errorf("values: %v", diff)
	}
	if l.CaseWise() {
		t.Error("land does not vary by case")
	}
}

func TestGetDataTransposeAndBroadcast(t *testing.T) {
	ds := testDataset(t)
	xy := make([]float64, 12)
	for i := range xy {
		xy[i] = float64(i)
	}
	v, err := NewVariable("xy", []string{"x", "y"}, []int{4, 3}, xy)
	if err != nil {
		t.Fatal(err)
	}
	ds.Set(v)
	row, err := NewVariable("row", []string{"y"}, []int{3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	ds.Set(row)
	cfg := testConfig(t, testConfigYAML)
	l := testLayer(t, cfg, ds, "land").(*Mask)

	a, err := l.getData(ds, "xy")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(a.Shape, []int{3, 4}); len(diff) > 0 {
		t.Errorf("transposed shape: %v", diff)
	}
	want := []float64{2, 5, 8, 11, 1, 4, 7, 10, 0, 3, 6, 9}
	if diff := pretty.Diff(a.Elements, want); len(diff) > 0 {
		t.Errorf("transposed values: %v", diff)
	}

	a, err = l.getData(ds, "row")
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{3, 3, 3, 3, 2, 2, 2, 2, 1, 1, 1, 1}
	if diff := pretty.Diff(a.Elements, want); len(diff) > 0 {
		t.Errorf("broadcast values: %v", diff)
	}
}

func TestGetDataShapeError(t *testing.T) {
	ds := testDataset(t)
	cfg := testConfig(t, testConfigYAML)
	l := testLayer(t, cfg, ds, "land").(*Mask)
	_, err := l.getData(ds, "sst")
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("have error %v, want a ShapeError", err)
	}

	l.selectors = map[string]int{"time": 1}
	a, err := l.getData(ds, "sst")
	if err != nil {
		t.Fatal(err)
	}
	if a.Elements[0] != 20 {
		t.Errorf("have top left %g, want 20", a.Elements[0])
	}
}

func TestCheckErrors(t *testing.T) {
	ds := testDataset(t)
	tests := []struct {
		layer string
		want  string
	}{
		{
			layer: "a:\n    type: single\n    band: nothing\n    min_value: 0\n    max_value: 1\n",
			want:  "No variable nothing",
		},
		{
			layer: "a:\n    type: mask\n    band: land\n    coordinates: {x: longitude}\n",
			want:  "No variable longitude",
		},
		{
			layer: "a:\n    type: discrete\n    band: land\n    values: {0: [sea, blue], 1: [land, notacolour]}\n",
			want:  "Invalid colour notacolour",
		},
	}
	for _, test := range tests {
		cfg := testConfig(t, testConfigYAML+"  "+test.layer)
		nl := cfg.Layers[len(cfg.Layers)-1]
		l, err := NewLayer(testConverter(t, cfg, ds), nl.Name, nl.Spec)
		if err != nil {
			t.Fatal(err)
		}
		err = l.Check(ds)
		var ce *CheckError
		if !errors.As(err, &ce) {
			t.Errorf("have error %v, want a CheckError", err)
			continue
		}
		if ce.Reason != test.want {
			t.Errorf("have reason %q, want %q", ce.Reason, test.want)
		}
	}
	var ce *CheckError
	l := &Mask{layerBase: layerBase{name: "m"}}
	if err := l.check(ds); !errors.As(err, &ce) {
		t.Errorf("missing coordinates: have %v, want a CheckError", err)
	}
}

func TestNewLayerErrors(t *testing.T) {
	ds := testDataset(t)
	tests := []struct {
		layer string
		want  string
	}{
		{layer: "a:\n    type: nonsense\n", want: `Unknown layer type "nonsense"`},
		{layer: "a:\n    type: single\n    band: sst\n", want: "min_value and max_value are required"},
		{layer: "a:\n    type: single\n    band: sst\n    min_value: 0\n    max_value: 1\n    cmap: nonsense\n", want: `colour: unknown colour map "nonsense"`},
		{layer: "a:\n    type: rgb\n    red_band: sst\n", want: "red_band, green_band and blue_band are required"},
		{layer: "a:\n    type: mask\n    colour: nonsense\n", want: `colour: unknown colour "nonsense"`},
		{layer: "a:\n    type: mask\n    r: 300\n", want: "Invalid r value 300, must be between 0 and 255"},
		{layer: "a:\n    type: mask\n    r: 0\n    b: -1\n", want: "Invalid b value -1, must be between 0 and 255"},
		{layer: "a:\n    type: discrete\n", want: "values are required"},
		{layer: "a:\n    type: wms\n", want: "url is required"},
		{layer: "a:\n    type: layer_group\n    layers: {}\n", want: "Layer group should contain at least one layer"},
		{
			layer: "a:\n    type: layer_group\n    layers:\n      b:\n        type: layer_group\n        layers:\n          c: {type: mask}\n",
			want:  "Cannot nest layer groups",
		},
	}
	for _, test := range tests {
		cfg := testConfig(t, testConfigYAML+"  "+test.layer)
		nl := cfg.Layers[len(cfg.Layers)-1]
		_, err := NewLayer(testConverter(t, cfg, ds), nl.Name, nl.Spec)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: have error %v, want a ConfigError", test.want, err)
			continue
		}
		if ce.Msg != test.want {
			t.Errorf("have message %q, want %q", ce.Msg, test.want)
		}
	}
}

func TestLayerGroup(t *testing.T) {
	ds := testDataset(t)
	cfg := testConfig(t, testConfigYAML+`  both:
    type: layer_group
    grid_view: false
    layers:
      land:
        type: mask
        band: land
        colour: green
      sea:
        type: single
        band: sst
        min_value: 0
        max_value: 23
`)
	g := testLayer(t, cfg, ds, "both").(*LayerGroup)
	var names []string
	for _, l := range g.Sublayers() {
		names = append(names, l.Name())
		if l.Group() != g {
			t.Errorf("layer %s should belong to the group", l.Name())
		}
		if l.GridView() {
			t.Errorf("layer %s should follow the group's grid view setting", l.Name())
		}
		if !l.OverlayView() {
			t.Errorf("layer %s should follow the group's overlay view setting", l.Name())
		}
	}
	if diff := pretty.Diff(names, []string{"both_land", "both_sea"}); len(diff) > 0 {
		t.Errorf("names: %v", diff)
	}
	if !g.CaseWise() {
		t.Error("the group has a case-wise member")
	}
	if g.HasLegend() {
		t.Error("the group's first member has no legend")
	}

	flat := flattenLayers([]Layer{g}, false, false)
	if len(flat) != 2 {
		t.Errorf("have %d flattened layers, want 2", len(flat))
	}
	if flat := flattenLayers([]Layer{g}, true, false); len(flat) != 0 {
		t.Errorf("have %d grid view layers, want 0", len(flat))
	}
}

func TestDataOptions(t *testing.T) {
	tests := []struct {
		in   interface{}
		want map[string]interface{}
	}{
		{in: nil},
		{in: false},
		{in: true, want: map[string]interface{}{}},
		{in: map[string]interface{}{"units": "K"}, want: map[string]interface{}{"units": "K"}},
	}
	for _, test := range tests {
		have, err := dataOptions(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(have, test.want); len(diff) > 0 {
			t.Errorf("%v: %v", test.in, diff)
		}
	}
	if _, err := dataOptions("yes"); err == nil {
		t.Error("a string is not valid data options")
	}
}

func wmsLayer(t *testing.T, ds *Dataset, url string) *WMS {
	cfg := testConfig(t, testConfigYAML+fmt.Sprintf("  basemap:\n    type: wms\n    url: %q\n", url))
	return testLayer(t, cfg, ds, "basemap").(*WMS)
}

func TestWMSRequestURL(t *testing.T) {
	ds := testDataset(t)
	l := wmsLayer(t, ds, "http://example.com/wms?BBOX={XMIN},{YMIN},{XMAX},{YMAX}&WIDTH={WIDTH}&HEIGHT={HEIGHT}")
	have, err := l.requestURL(ds)
	if err != nil {
		t.Fatal(err)
	}
	want := "http://example.com/wms?BBOX=-3.5,49.5,0.5,52.5&WIDTH=4&HEIGHT=3"
	if have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if l.CaseWise() {
		t.Error("a WMS layer over fixed coordinates is static")
	}
}

func TestWMSCache(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte("image"))
	}))
	defer srv.Close()

	dir, err := ioutil.TempDir("", "explorer_wms")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ds := testDataset(t)
	l := wmsLayer(t, ds, srv.URL+"/wms?w={WIDTH}")
	for i := 0; i < 2; i++ {
		p := filepath.Join(dir, fmt.Sprintf("basemap_%d.png", i))
		if err := l.Build(context.Background(), ds, p); err != nil {
			t.Fatal(err)
		}
		b, err := ioutil.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "image" {
			t.Errorf("have %q, want image", b)
		}
	}
	if l.fetches != 1 || atomic.LoadInt32(&requests) != 1 {
		t.Errorf("have %d fetches and %d requests, want 1", l.fetches, requests)
	}
}

func TestWMSFailureNotRetried(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir, err := ioutil.TempDir("", "explorer_wms")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ds := testDataset(t)
	l := wmsLayer(t, ds, srv.URL+"/wms")
	for i := 0; i < 3; i++ {
		p := filepath.Join(dir, fmt.Sprintf("basemap_%d.png", i))
		if err := l.Build(context.Background(), ds, p); err != nil {
			t.Errorf("a failed WMS request should not be an error: %v", err)
		}
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("no image should be written after a failure: %v", err)
		}
	}
	if have := atomic.LoadInt32(&requests); have != 1 {
		t.Errorf("have %d requests, want 1", have)
	}
}

func TestMaskKeepsSharedBand(t *testing.T) {
	ds := NewDataset()
	for _, v := range []struct {
		name   string
		dims   []string
		shape  []int
		values []float64
	}{
		{name: "y", dims: []string{"y"}, shape: []int{2}, values: []float64{51, 50}},
		{name: "x", dims: []string{"x"}, shape: []int{2}, values: []float64{0, 1}},
		{name: "flags", dims: []string{"y", "x"}, shape: []int{2, 2}, values: []float64{1, 2, 3, 2.5}},
	} {
		nv, err := NewVariable(v.name, v.dims, v.shape, v.values)
		if err != nil {
			t.Fatal(err)
		}
		if err := ds.Set(nv); err != nil {
			t.Fatal(err)
		}
	}
	cfg := testConfig(t, `
dimensions: {x: x, y: y}
coordinates: {x: x, y: y}
layers:
  odd:
    type: mask
    band: flags
    mask: 1
    colour: red
  flags:
    type: single
    band: flags
    min_value: 0
    max_value: 3
`)
	mask := testLayer(t, cfg, ds, "odd").(*Mask)
	single := testLayer(t, cfg, ds, "flags").(*SingleBand)

	dir, err := ioutil.TempDir("", "explorer_mask")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	p := filepath.Join(dir, "odd.png")
	if err := mask.Build(context.Background(), ds, p); err != nil {
		t.Fatal(err)
	}

	want := []float64{1, 2, 3, 2.5}
	v, _ := ds.Var("flags")
	if diff := pretty.Diff(v.Values(), want); len(diff) > 0 {
		t.Errorf("dataset band changed: %v", diff)
	}
	a, err := single.getData(ds, "flags")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(a.Elements, want); len(diff) > 0 {
		t.Errorf("single band layer data: %v", diff)
	}

	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	for _, px := range []struct {
		x, y  int
		alpha uint32
	}{{0, 0, 0xffff}, {1, 0, 0}, {0, 1, 0xffff}, {1, 1, 0}} {
		if _, _, _, a := img.At(px.x, px.y).RGBA(); a != px.alpha {
			t.Errorf("pixel (%d, %d): have alpha %#x, want %#x", px.x, px.y, a, px.alpha)
		}
	}
}
