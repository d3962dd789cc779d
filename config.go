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
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config is the declarative description of a report: which dimensions
// and coordinates to use and which layers to draw.
type Config struct {
	Dimensions struct {
		Case string `yaml:"case"`
		X    string `yaml:"x"`
		Y    string `yaml:"y"`
	} `yaml:"dimensions"`

	Coordinates struct {
		X    string `yaml:"x"`
		Y    string `yaml:"y"`
		Time string `yaml:"time"`
	} `yaml:"coordinates"`

	Image ImageConfig `yaml:"image"`

	// Layers are the layer definitions in declaration order.
	Layers LayerList `yaml:"layers"`

	// Info maps display keys to info text templates.
	Info KeyValues `yaml:"info"`

	// CRS is the coordinate reference system of the x and y coordinates,
	// used to report the longitude and latitude of each scene.
	CRS string `yaml:"crs"`

	// Labels maps label groups to the labels that can be assigned to
	// each scene.
	Labels LabelGroups `yaml:"labels"`

	// DeriveBands maps new variable names to expressions over existing
	// variables.
	DeriveBands KeyValues `yaml:"derive_bands"`

	Timeseries struct {
		Plots TimeseriesPlots `yaml:"plots"`
	} `yaml:"timeseries"`

	// ColourMapDir is a directory of colour table side files.
	ColourMapDir string `yaml:"cmaps"`
}

// ImageConfig holds image sizing and format settings.
type ImageConfig struct {
	MaxZoom   float64 `yaml:"max-zoom"`
	GridWidth int     `yaml:"grid-width"`

	// Format is "png" (the default) or "webp".
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
}

// LayerSpec is the definition of one layer. Which fields apply depends
// on Type, one of "single", "rgb", "mask", "discrete", "wms" or
// "layer_group".
type LayerSpec struct {
	Type  string `yaml:"type"`
	Label string `yaml:"label"`

	// Selectors index dimensions by position before drawing.
	Selectors map[string]int `yaml:"selectors"`

	Dimensions struct {
		Case *string `yaml:"case"`
		X    *string `yaml:"x"`
		Y    *string `yaml:"y"`
	} `yaml:"dimensions"`
	Coordinates struct {
		X    *string `yaml:"x"`
		Y    *string `yaml:"y"`
		Time *string `yaml:"time"`
	} `yaml:"coordinates"`

	GridView    *bool `yaml:"grid_view"`
	OverlayView *bool `yaml:"overlay_view"`

	// single, mask and discrete
	Band string `yaml:"band"`

	// single
	MinValue *float64 `yaml:"min_value"`
	MaxValue *float64 `yaml:"max_value"`
	Cmap     string   `yaml:"cmap"`

	// Data holds display options for the layer's data file. A mapping
	// is passed to the viewer as it is; true is the same as an empty
	// mapping; a missing value or false means that no data file is
	// written.
	Data interface{} `yaml:"data"`

	// rgb
	RedBand    string   `yaml:"red_band"`
	GreenBand  string   `yaml:"green_band"`
	BlueBand   string   `yaml:"blue_band"`
	RedGamma   *float64 `yaml:"red_gamma"`
	GreenGamma *float64 `yaml:"green_gamma"`
	BlueGamma  *float64 `yaml:"blue_gamma"`

	// mask
	Colour string `yaml:"colour"`
	R      *int   `yaml:"r"`
	G      *int   `yaml:"g"`
	B      *int   `yaml:"b"`
	Mask   *int64 `yaml:"mask"`

	// discrete
	Values DiscreteValues `yaml:"values"`

	// wms
	URL   string   `yaml:"url"`
	Scale *float64 `yaml:"scale"`

	// layer_group
	Layers LayerList `yaml:"layers"`
}

// NamedLayer is a layer definition and its name.
type NamedLayer struct {
	Name string
	Spec *LayerSpec
}

// LayerList is a mapping from layer names to definitions that keeps the
// declaration order.
type LayerList []NamedLayer

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *LayerList) UnmarshalYAML(n *yaml.Node) error {
	return eachPair(n, func(k string, v *yaml.Node) error {
		spec := new(LayerSpec)
		if err := v.Decode(spec); err != nil {
			return fmt.Errorf("layer %s: %v", k, err)
		}
		*l = append(*l, NamedLayer{Name: k, Spec: spec})
		return nil
	})
}

// KeyValue is one entry of an ordered string mapping.
type KeyValue struct {
	Key, Value string
}

// KeyValues is an ordered string mapping.
type KeyValues []KeyValue

// UnmarshalYAML implements yaml.Unmarshaler.
func (kv *KeyValues) UnmarshalYAML(n *yaml.Node) error {
	return eachPair(n, func(k string, v *yaml.Node) error {
		var s string
		if err := v.Decode(&s); err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		*kv = append(*kv, KeyValue{Key: k, Value: s})
		return nil
	})
}

// LabelGroup is a named set of labels.
type LabelGroup struct {
	Name   string
	Labels []string
}

// LabelGroups is an ordered mapping of label group names to labels.
type LabelGroups []LabelGroup

// UnmarshalYAML implements yaml.Unmarshaler.
func (lg *LabelGroups) UnmarshalYAML(n *yaml.Node) error {
	return eachPair(n, func(k string, v *yaml.Node) error {
		var labels []string
		if err := v.Decode(&labels); err != nil {
			return fmt.Errorf("label group %s: %v", k, err)
		}
		*lg = append(*lg, LabelGroup{Name: k, Labels: labels})
		return nil
	})
}

// TimeseriesPlot defines one timeseries CSV file. Variables may carry an
// aggregation suffix, e.g. "sst:max".
type TimeseriesPlot struct {
	Name      string   `yaml:"-" json:"-"`
	Variables []string `yaml:"variables" json:"variables"`
	Masks     []string `yaml:"masks" json:"masks,omitempty"`
}

// TimeseriesPlots is an ordered mapping of plot names to definitions.
type TimeseriesPlots []TimeseriesPlot

// UnmarshalYAML implements yaml.Unmarshaler.
func (tp *TimeseriesPlots) UnmarshalYAML(n *yaml.Node) error {
	return eachPair(n, func(k string, v *yaml.Node) error {
		var p TimeseriesPlot
		if err := v.Decode(&p); err != nil {
			return fmt.Errorf("timeseries plot %s: %v", k, err)
		}
		p.Name = k
		*tp = append(*tp, p)
		return nil
	})
}

// DiscreteClass is the label and colour name of one class of a discrete
// layer.
type DiscreteClass struct {
	Value  int
	Label  string
	Colour string
}

// DiscreteValues are the classes of a discrete layer, in declaration
// order. In a configuration file they are written as a mapping from
// integer values to [label, colour] pairs.
type DiscreteValues []DiscreteClass

// UnmarshalYAML implements yaml.Unmarshaler.
func (dv *DiscreteValues) UnmarshalYAML(n *yaml.Node) error {
	return eachPair(n, func(k string, v *yaml.Node) error {
		value, err := cast.ToIntE(k)
		if err != nil {
			return fmt.Errorf("discrete value %q is not an integer", k)
		}
		var pair []string
		if err := v.Decode(&pair); err != nil {
			return fmt.Errorf("discrete value %s: %v", k, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("discrete value %s must be [label, colour], not %v", k, pair)
		}
		*dv = append(*dv, DiscreteClass{Value: value, Label: pair[0], Colour: pair[1]})
		return nil
	})
}

// eachPair calls f for every key and value of a mapping node.
func eachPair(n *yaml.Node, f func(k string, v *yaml.Node) error) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := f(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads a configuration file. JSON (.json) and YAML (.yml,
// .yaml) files are read with the same decoder; TOML (.toml) files are
// also accepted. Environment variables in path are expanded.
func LoadConfig(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("explorer: reading configuration file: %v", err)
	}
	var root yaml.Node
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yml", ".yaml":
		if err := yaml.Unmarshal(b, &root); err != nil {
			return nil, fmt.Errorf("explorer: parsing configuration file %s: %v", path, err)
		}
	case ".toml":
		n, err := tomlNode(string(b))
		if err != nil {
			return nil, fmt.Errorf("explorer: parsing configuration file %s: %v", path, err)
		}
		root = *n
	default:
		return nil, fmt.Errorf("explorer: configuration file %s should be JSON (.json), YAML (.yml or .yaml) or TOML (.toml)", path)
	}
	cfg := new(Config)
	if root.Kind == 0 {
		return cfg, nil
	}
	if err := root.Decode(cfg); err != nil {
		return nil, fmt.Errorf("explorer: decoding configuration file %s: %v", path, err)
	}
	if cfg.ColourMapDir != "" {
		cfg.ColourMapDir = os.ExpandEnv(cfg.ColourMapDir)
		if !filepath.IsAbs(cfg.ColourMapDir) {
			cfg.ColourMapDir = filepath.Join(filepath.Dir(path), cfg.ColourMapDir)
		}
	}
	return cfg, nil
}

// tomlNode decodes a TOML document into a YAML node tree so that it can
// be decoded in the same way as the other formats. Table keys keep their
// order of appearance in the document.
func tomlNode(doc string) (*yaml.Node, error) {
	var data map[string]interface{}
	md, err := toml.Decode(doc, &data)
	if err != nil {
		return nil, err
	}
	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, k := range md.Keys() {
		if len(k) == 0 {
			continue
		}
		parent := strings.Join(k[:len(k)-1], "\x00")
		full := strings.Join(k, "\x00")
		if !seen[full] {
			seen[full] = true
			order[parent] = append(order[parent], k[len(k)-1])
		}
	}
	return toNode(data, nil, order), nil
}

func toNode(v interface{}, path []string, order map[string][]string) *yaml.Node {
	switch t := v.(type) {
	case map[string]interface{}:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := order[strings.Join(path, "\x00")]
		if len(keys) != len(t) {
			// Keys inside arrays of tables are not in the order list.
			keys = keys[:0:0]
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
		}
		for _, k := range keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toNode(t[k], append(append([]string{}, path...), k), order))
		}
		return n
	case []map[string]interface{}:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n.Content = append(n.Content, toNode(e, nil, nil))
		}
		return n
	case []interface{}:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n.Content = append(n.Content, toNode(e, nil, nil))
		}
		return n
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case time.Time:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.Format(time.RFC3339)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}
