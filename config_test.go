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
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
)

// writeConfig writes a configuration file called name with contents doc
// to a temporary directory and returns its path.
func writeConfig(t *testing.T, name, doc string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "explorer_config")
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := ioutil.WriteFile(p, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func layerNames(l LayerList) []string {
	var o []string
	for _, nl := range l {
		o = append(o, nl.Name)
	}
	return o
}

func TestLoadConfigYAMLOrder(t *testing.T) {
	p := writeConfig(t, "config.yml", `
dimensions: {case: t, x: lon, y: lat}
coordinates: {x: lon, y: lat, time: t}
cmaps: colours
layers:
  zeta: {type: mask, r: 255}
  alpha:
    type: discrete
    values:
      2: [cloud, white]
      0: [sea, blue]
  mid: {type: single, min_value: 0, max_value: 1, data: true, selectors: {band: 2}}
info:
  z: "{z}"
  a: "{a}"
derive_bands:
  second: "first * 2"
  first: "a + 1"
timeseries:
  plots:
    temperature: {variables: ["sst:max"], masks: [land]}
`)
	defer os.RemoveAll(filepath.Dir(p))
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(layerNames(cfg.Layers), []string{"zeta", "alpha", "mid"}); len(diff) > 0 {
		t.Errorf("layer order: %v", diff)
	}
	wantValues := DiscreteValues{
		{Value: 2, Label: "cloud", Colour: "white"},
		{Value: 0, Label: "sea", Colour: "blue"},
	}
	if diff := pretty.Diff(cfg.Layers[1].Spec.Values, wantValues); len(diff) > 0 {
		t.Errorf("discrete values: %v", diff)
	}
	mid := cfg.Layers[2].Spec
	if *mid.MaxValue != 1 || mid.Data != true || mid.Selectors["band"] != 2 {
		t.Errorf("have single band settings %# v", pretty.Formatter(mid))
	}
	if *cfg.Layers[0].Spec.R != 255 || cfg.Layers[0].Spec.G != nil {
		t.Errorf("mask colour components were not decoded")
	}
	wantInfo := KeyValues{{Key: "z", Value: "{z}"}, {Key: "a", Value: "{a}"}}
	if diff := pretty.Diff(cfg.Info, wantInfo); len(diff) > 0 {
		t.Errorf("info: %v", diff)
	}
	if cfg.DeriveBands[0].Key != "second" {
		t.Errorf("have first derived band %s, want second", cfg.DeriveBands[0].Key)
	}
	wantPlots := TimeseriesPlots{{Name: "temperature", Variables: []string{"sst:max"}, Masks: []string{"land"}}}
	if diff := pretty.Diff(cfg.Timeseries.Plots, wantPlots); len(diff) > 0 {
		t.Errorf("timeseries: %v", diff)
	}
	if want := filepath.Join(filepath.Dir(p), "colours"); cfg.ColourMapDir != want {
		t.Errorf("have colour map directory %s, want %s", cfg.ColourMapDir, want)
	}
	if cfg.Dimensions.Case != "t" || cfg.Coordinates.Time != "t" {
		t.Errorf("have dimensions %+v and coordinates %+v", cfg.Dimensions, cfg.Coordinates)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	p := writeConfig(t, "config.toml", `
[dimensions]
case = "time"
x = "x"
y = "y"

[image]
grid-width = 300
format = "webp"

[layers.zeta]
type = "single"
min_value = 270.0
max_value = 300
cmap = "Blues"

[layers.alpha]
type = "mask"
colour = "#00ff00"

[labels]
quality = ["good", "bad"]
`)
	defer os.RemoveAll(filepath.Dir(p))
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(layerNames(cfg.Layers), []string{"zeta", "alpha"}); len(diff) > 0 {
		t.Errorf("layer order: %v", diff)
	}
	zeta := cfg.Layers[0].Spec
	if *zeta.MinValue != 270 || *zeta.MaxValue != 300 || zeta.Cmap != "Blues" {
		t.Errorf("have %# v", pretty.Formatter(zeta))
	}
	if cfg.Image.GridWidth != 300 || cfg.Image.Format != "webp" {
		t.Errorf("have image settings %+v", cfg.Image)
	}
	want := LabelGroups{{Name: "quality", Labels: []string{"good", "bad"}}}
	if diff := pretty.Diff(cfg.Labels, want); len(diff) > 0 {
		t.Errorf("labels: %v", diff)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	p := writeConfig(t, "config.json", `{"dimensions": {"case": "time"}, "layers": {"b": {"type": "wms", "url": "http://x"}, "a": {"type": "mask"}}}`)
	defer os.RemoveAll(filepath.Dir(p))
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(layerNames(cfg.Layers), []string{"b", "a"}); len(diff) > 0 {
		t.Errorf("layer order: %v", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name, doc string
	}{
		{name: "config.txt", doc: "dimensions: {case: time}"},
		{name: "config.yaml", doc: "layers: [a, b]"},
		{name: "config.yaml", doc: "layers: {a: {type: discrete, values: {x: [a, red]}}}"},
		{name: "config.yaml", doc: "layers: {a: {type: discrete, values: {1: [a]}}}"},
		{name: "config.toml", doc: "layers = ["},
	}
	for _, test := range tests {
		p := writeConfig(t, test.name, test.doc)
		if _, err := LoadConfig(p); err == nil {
			t.Errorf("%s: %q should not load", test.name, test.doc)
		}
		os.RemoveAll(filepath.Dir(p))
	}
	if _, err := LoadConfig("/no/such/config.yaml"); err == nil {
		t.Error("a missing file should not load")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	p := writeConfig(t, "config.yaml", "dimensions: {case: time}")
	defer os.RemoveAll(filepath.Dir(p))
	os.Setenv("EXPLORER_TEST_CONFIG_DIR", filepath.Dir(p))
	defer os.Unsetenv("EXPLORER_TEST_CONFIG_DIR")
	cfg, err := LoadConfig("${EXPLORER_TEST_CONFIG_DIR}/config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dimensions.Case != "time" {
		t.Errorf("have case dimension %q, want time", cfg.Dimensions.Case)
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	ds := testDataset(t)
	cfg := testConfig(t, testConfigYAML+"  bad: {type: single, band: sst, min_value: 0, max_value: 1, cmap: nope}\n")
	_, err := NewLayers(testConverter(t, cfg, ds), cfg.Layers)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Layer != "bad" {
		t.Fatalf("have error %v, want a ConfigError for layer bad", err)
	}
	if ce.Err == nil {
		t.Error("the colour map error should be wrapped")
	}
}
