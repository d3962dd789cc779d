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

package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ghodss/yaml"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// DefaultColourMap is the colour map used by single band layers that
// do not specify one.
const DefaultColourMap = "coolwarm"

// continuousSize is the number of entries in tables that are built by
// interpolating between a few control colours.
const continuousSize = 256

// A Table is an ordered sequence of opaque colours that represents a
// colour map. Scalars are mapped to entries by their position between
// a minimum and maximum value.
type Table struct {
	Name    string
	Colours []color.NRGBA
}

// Index returns the index of the entry that v maps to when the table spans
// vmin to vmax: floor((v-vmin)/(vmax-vmin)*N), clamped to [0, N-1].
// NaN values return -1.
func (t *Table) Index(v, vmin, vmax float64) int {
	if math.IsNaN(v) {
		return -1
	}
	n := len(t.Colours)
	if vmax == vmin {
		if v <= vmin {
			return 0
		}
		return n - 1
	}
	f := math.Floor((v - vmin) / (vmax - vmin) * float64(n))
	if f < 0 {
		return 0
	}
	if f > float64(n-1) {
		return n - 1
	}
	return int(f)
}

// At returns the colour that v maps to. NaN values map to a fully
// transparent colour.
func (t *Table) At(v, vmin, vmax float64) color.NRGBA {
	i := t.Index(v, vmin, vmax)
	if i < 0 {
		return color.NRGBA{}
	}
	return t.Colours[i]
}

// Reverse returns a copy of t with the order of its colours reversed.
func (t *Table) Reverse() *Table {
	o := &Table{Name: t.Name + "_r", Colours: make([]color.NRGBA, len(t.Colours))}
	for i, c := range t.Colours {
		o.Colours[len(t.Colours)-1-i] = c
	}
	return o
}

// MarshalJSON writes the table as a list of [r, g, b] triples scaled to
// the range 0 to 1, the format that the viewer uses to recolour data
// on the client side.
func (t *Table) MarshalJSON() ([]byte, error) {
	o := make([][3]float64, len(t.Colours))
	for i, c := range t.Colours {
		o[i] = [3]float64{round4(float64(c.R) / 255), round4(float64(c.G) / 255), round4(float64(c.B) / 255)}
	}
	return json.Marshal(o)
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

// UnknownColourMapError is returned when a colour map name cannot be
// resolved.
type UnknownColourMapError struct {
	Name string
}

func (e *UnknownColourMapError) Error() string {
	return fmt.Sprintf("colour: unknown colour map %q", e.Name)
}

// morelandMaps are the perceptually uniform maps from the moreland package.
var morelandMaps = map[string]func() palette.ColorMap{
	DefaultColourMap:       func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"smooth_blue_tan":      func() palette.ColorMap { return moreland.SmoothBlueTan() },
	"smooth_green_purple":  func() palette.ColorMap { return moreland.SmoothGreenPurple() },
	"smooth_green_red":     func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"smooth_purple_orange": func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
	"blackbody":            moreland.BlackBody,
	"extended_blackbody":   moreland.ExtendedBlackBody,
	"kindlmann":            moreland.Kindlmann,
	"extended_kindlmann":   moreland.ExtendedKindlmann,
}

// brewerMaps lists the ColorBrewer palettes that are available and the
// number of control colours to request. Qualitative palettes are used
// as they are; the others are interpolated to a continuous table.
var brewerMaps = map[string]struct {
	n           int
	qualitative bool
}{
	"Blues": {9, false}, "Greens": {9, false}, "Greys": {9, false}, "Oranges": {9, false},
	"Purples": {9, false}, "Reds": {9, false}, "BuGn": {9, false}, "BuPu": {9, false},
	"GnBu": {9, false}, "OrRd": {9, false}, "PuBu": {9, false}, "PuBuGn": {9, false},
	"PuRd": {9, false}, "RdPu": {9, false}, "YlGn": {9, false}, "YlGnBu": {9, false},
	"YlOrBr": {9, false}, "YlOrRd": {9, false},
	"BrBG": {11, false}, "PiYG": {11, false}, "PRGn": {11, false}, "PuOr": {11, false},
	"RdBu": {11, false}, "RdGy": {11, false}, "RdYlBu": {11, false}, "RdYlGn": {11, false},
	"Spectral": {11, false},
	"Accent": {8, true}, "Dark2": {8, true}, "Paired": {12, true}, "Pastel1": {9, true},
	"Pastel2": {8, true}, "Set1": {9, true}, "Set2": {8, true}, "Set3": {12, true},
}

func builtin(name string) (*Table, error) {
	if f, ok := morelandMaps[name]; ok {
		cm := f()
		cm.SetMin(0)
		cm.SetMax(1)
		t := &Table{Name: name, Colours: make([]color.NRGBA, continuousSize)}
		for i := range t.Colours {
			c, err := cm.At(float64(i) / float64(continuousSize-1))
			if err != nil {
				return nil, fmt.Errorf("colour: building %s: %v", name, err)
			}
			t.Colours[i] = toNRGBA(c)
		}
		return t, nil
	}
	if b, ok := brewerMaps[name]; ok {
		p, err := brewer.GetPalette(brewer.TypeAny, name, b.n)
		if err != nil {
			return nil, fmt.Errorf("colour: building %s: %v", name, err)
		}
		ctrl := make([]color.NRGBA, 0, b.n)
		for _, c := range p.Colors() {
			ctrl = append(ctrl, toNRGBA(c))
		}
		if b.qualitative {
			return &Table{Name: name, Colours: ctrl}, nil
		}
		return &Table{Name: name, Colours: interpolate(ctrl, continuousSize)}, nil
	}
	if t, ok := matplotlibTable(name); ok {
		return t, nil
	}
	return nil, &UnknownColourMapError{Name: name}
}

func toNRGBA(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

// interpolate linearly interpolates between the control colours to
// create a table with n entries.
func interpolate(ctrl []color.NRGBA, n int) []color.NRGBA {
	o := make([]color.NRGBA, n)
	if len(ctrl) == 1 {
		for i := range o {
			o[i] = ctrl[0]
		}
		return o
	}
	for i := range o {
		pos := float64(i) / float64(n-1) * float64(len(ctrl)-1)
		j := int(pos)
		if j >= len(ctrl)-1 {
			j = len(ctrl) - 2
		}
		frac := pos - float64(j)
		a, b := ctrl[j], ctrl[j+1]
		o[i] = color.NRGBA{
			R: lerp(a.R, b.R, frac),
			G: lerp(a.G, b.G, frac),
			B: lerp(a.B, b.B, frac),
			A: 255,
		}
	}
	return o
}

func lerp(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}

// LoadTableFile reads a colour table from a JSON or YAML file holding a
// list of [r, g, b] triples. Components may either be in the range
// 0 to 1 or 0 to 255.
func LoadTableFile(path string) (*Table, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("colour: reading colour table: %v", err)
	}
	var rows [][]float64
	if err := yaml.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("colour: parsing colour table %s: %v", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("colour: colour table %s is empty", path)
	}
	scale := 255.
	for _, r := range rows {
		if len(r) < 3 {
			return nil, fmt.Errorf("colour: colour table %s: entry %v does not have 3 components", path, r)
		}
		for _, v := range r[:3] {
			if v > 1 {
				scale = 1
			}
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t := &Table{Name: name, Colours: make([]color.NRGBA, len(rows))}
	for i, r := range rows {
		t.Colours[i] = color.NRGBA{
			R: clampByte(r[0] * scale),
			G: clampByte(r[1] * scale),
			B: clampByte(r[2] * scale),
			A: 255,
		}
	}
	return t, nil
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	} else if v > 255 {
		return 255
	}
	return uint8(v)
}

// Tables resolves colour map names to tables. Names are looked up first
// as side files in Dir (<name>.json, <name>.yaml or <name>.yml) and then
// among the built in maps. A name ending in "_r" refers to the reversed
// version of the named map. Resolved tables are cached, and Tables is
// safe for concurrent use.
type Tables struct {
	Dir string

	mu    sync.Mutex
	cache map[string]*Table
}

// Get returns the table with the given name.
func (ts *Tables) Get(name string) (*Table, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.cache[name]; ok {
		return t, nil
	}
	t, err := ts.load(name)
	if err != nil {
		return nil, err
	}
	if ts.cache == nil {
		ts.cache = make(map[string]*Table)
	}
	ts.cache[name] = t
	return t, nil
}

func (ts *Tables) load(name string) (*Table, error) {
	if ts.Dir != "" {
		for _, ext := range []string{".json", ".yaml", ".yml"} {
			path := filepath.Join(ts.Dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadTableFile(path)
			}
		}
	}
	t, err := builtin(name)
	if _, unknown := err.(*UnknownColourMapError); unknown && strings.HasSuffix(name, "_r") {
		base, err2 := ts.load(strings.TrimSuffix(name, "_r"))
		if err2 != nil {
			return nil, &UnknownColourMapError{Name: name}
		}
		return base.Reverse(), nil
	}
	return t, err
}
