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
	"image/color"
	"math"
	"sort"
	"strings"
)

// selectable lists the colour maps that the viewer offers for recolouring
// layer data on the client side.
var selectable = []string{
	"Accent", "afmhot", "autumn", "binary", "Blues", "bone", "BrBG", "brg",
	"BuGn", "BuPu", "bwr", "cividis", "CMRmap", "cool", "coolwarm", "copper",
	"cubehelix", "Dark2", "flag", "gist_earth", "gist_gray", "gist_heat",
	"gist_ncar", "gist_rainbow", "gist_stern", "gist_yarg", "GnBu", "gnuplot",
	"gnuplot2", "gray", "Greens", "Greys", "hot", "hsv", "inferno", "jet",
	"magma", "nipy_spectral", "ocean", "Oranges", "OrRd", "Paired", "Pastel1",
	"pink", "PiYG", "plasma", "PRGn", "prism", "PuBu", "PuBuGn",
	"PuOr", "PuRd", "Purples", "rainbow", "RdBu", "RdGy", "RdPu", "RdYlBu",
	"RdYlGn", "Reds", "seismic", "Set1", "Set2", "Set3", "Spectral", "spring",
	"summer", "tab10", "tab20", "tab20b", "tab20c", "terrain", "turbo",
	"twilight", "twilight_shifted", "viridis", "winter", "Wistia", "YlGn",
	"YlGnBu", "YlOrBr", "YlOrRd",
}

// Selectable returns the names of the built in colour maps that are
// written for the viewer, sorted without regard to case.
func Selectable() []string {
	o := append([]string{}, selectable...)
	sort.Slice(o, func(i, j int) bool { return strings.ToLower(o[i]) < strings.ToLower(o[j]) })
	return o
}

// segment is one row of a piecewise linear channel definition: the
// channel reaches y0 at x from below and continues from y1 above it.
type segment struct{ x, y0, y1 float64 }

type segmentMap struct{ r, g, b []segment }

// evalSegments evaluates a channel at x in [0, 1].
func evalSegments(s []segment, x float64) float64 {
	if x <= s[0].x {
		return s[0].y1
	}
	for i := 1; i < len(s); i++ {
		if x < s[i].x {
			lo, hi := s[i-1], s[i]
			return lo.y1 + (x-lo.x)/(hi.x-lo.x)*(hi.y0-lo.y1)
		}
	}
	return s[len(s)-1].y0
}

// linear returns a channel that steps evenly through the values.
func linear(v ...float64) []segment {
	s := make([]segment, len(v))
	for i, y := range v {
		s[i] = segment{x: float64(i) / float64(len(v)-1), y0: y, y1: y}
	}
	return s
}

// points returns a continuous channel through the (x, y) pairs xy.
func points(xy ...float64) []segment {
	s := make([]segment, len(xy)/2)
	for i := range s {
		s[i] = segment{x: xy[2*i], y0: xy[2*i+1], y1: xy[2*i+1]}
	}
	return s
}

var segmentMaps = map[string]segmentMap{
	"gray":      {r: linear(0, 1), g: linear(0, 1), b: linear(0, 1)},
	"gist_gray": {r: linear(0, 1), g: linear(0, 1), b: linear(0, 1)},
	"binary":    {r: linear(1, 0), g: linear(1, 0), b: linear(1, 0)},
	"gist_yarg": {r: linear(1, 0), g: linear(1, 0), b: linear(1, 0)},
	"autumn":    {r: linear(1, 1), g: linear(0, 1), b: linear(0, 0)},
	"spring":    {r: linear(1, 1), g: linear(0, 1), b: linear(1, 0)},
	"summer":    {r: linear(0, 1), g: linear(0.5, 1), b: linear(0.4, 0.4)},
	"winter":    {r: linear(0, 0), g: linear(0, 1), b: linear(1, 0.5)},
	"cool":      {r: linear(0, 1), g: linear(1, 0), b: linear(1, 1)},
	"bwr":       {r: linear(0, 1, 1), g: linear(0, 1, 0), b: linear(1, 1, 0)},
	"seismic":   {r: linear(0, 0, 1, 1, 0.5), g: linear(0, 0, 1, 0, 0), b: linear(0.3, 1, 1, 0, 0)},
	"brg":       {r: linear(0, 1, 0), g: linear(0, 0, 1), b: linear(1, 0, 0)},
	"copper": {
		r: points(0, 0, 0.809524, 1, 1, 1),
		g: points(0, 0, 1, 0.7812),
		b: points(0, 0, 1, 0.4975),
	},
	"bone": {
		r: points(0, 0, 0.746032, 0.652778, 1, 1),
		g: points(0, 0, 0.365079, 0.319444, 0.746032, 0.777778, 1, 1),
		b: points(0, 0, 0.365079, 0.444444, 1, 1),
	},
	"hot": {
		r: points(0, 0.0416, 0.365079, 1, 1, 1),
		g: points(0, 0, 0.365079, 0, 0.746032, 1, 1, 1),
		b: points(0, 0, 0.746032, 0, 1, 1),
	},
	"jet": {
		r: points(0, 0, 0.35, 0, 0.66, 1, 0.89, 1, 1, 0.5),
		g: points(0, 0, 0.125, 0, 0.375, 1, 0.64, 1, 0.91, 0, 1, 0),
		b: points(0, 0.5, 0.11, 1, 0.34, 1, 0.65, 0, 1, 0),
	},
	"hsv": {
		r: points(0, 1, 0.158730, 1, 0.174603, 0.96875, 0.333333, 0.03125, 0.349206, 0,
			0.666667, 0, 0.682540, 0.03125, 0.841270, 0.96875, 0.857143, 1, 1, 1),
		g: points(0, 0, 0.158730, 0.9375, 0.174603, 1, 0.507937, 1, 0.666667, 0.0625,
			0.682540, 0, 1, 0),
		b: points(0, 0, 0.333333, 0, 0.349206, 0.0625, 0.507937, 1, 0.841270, 1,
			0.857143, 0.9375, 1, 0.09375),
	},
	"terrain": {
		r: points(0, 0.2, 0.15, 0, 0.25, 0, 0.5, 1, 0.75, 0.5, 1, 1),
		g: points(0, 0.2, 0.15, 0.6, 0.25, 0.8, 0.5, 1, 0.75, 0.36, 1, 1),
		b: points(0, 0.6, 0.15, 1, 0.25, 0.4, 0.5, 0.6, 0.75, 0.33, 1, 1),
	},
	"CMRmap": {
		r: points(0, 0, 0.125, 0.15, 0.25, 0.3, 0.375, 0.6, 0.5, 1, 0.625, 0.9, 0.75, 0.9, 0.875, 0.9, 1, 1),
		g: points(0, 0, 0.125, 0.15, 0.25, 0.15, 0.375, 0.2, 0.5, 0.25, 0.625, 0.5, 0.75, 0.75, 0.875, 0.9, 1, 1),
		b: points(0, 0, 0.125, 0.5, 0.25, 0.75, 0.375, 0.5, 0.5, 0.15, 0.625, 0, 0.75, 0.1, 0.875, 0.5, 1, 1),
	},
	"gist_rainbow": {
		r: points(0, 1, 0.030, 1, 0.215, 1, 0.400, 0, 0.586, 0, 0.770, 0, 0.954, 1, 1, 1),
		g: points(0, 0, 0.030, 0, 0.215, 1, 0.400, 1, 0.586, 1, 0.770, 0, 0.954, 0, 1, 0),
		b: points(0, 0.16, 0.030, 0, 0.215, 0, 0.400, 0, 0.586, 1, 0.770, 1, 0.954, 1, 1, 0.75),
	},
	"gist_stern": {
		r: []segment{{0, 0, 0}, {0.0547, 1, 1}, {0.25, 0.027, 0.25}, {1, 1, 1}},
		g: points(0, 0, 1, 1),
		b: points(0, 0, 0.5, 1, 0.735, 0, 1, 1),
	},
	"nipy_spectral": {
		r: linear(0, 0.4667, 0.5333, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.7333, 0.9333, 1, 1, 1, 0.8667, 0.8, 0.8),
		g: linear(0, 0, 0, 0, 0, 0.4667, 0.6, 0.6667, 0.6667, 0.6, 0.7333, 0.8667, 1, 1, 0.9333, 0.8, 0.6, 0, 0, 0, 0.8),
		b: linear(0, 0.5333, 0.6, 0.6667, 0.8667, 0.8667, 0.8667, 0.6667, 0.5333, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.8),
	},
	// gist_earth and gist_ncar are reduced to their main control points.
	"gist_earth": {
		r: points(0, 0, 0.2824, 0.1882, 0.4588, 0.2714, 0.5490, 0.4719, 0.6980, 0.7176, 0.7882, 0.7553, 1, 0.9922),
		g: points(0, 0, 0.0275, 0, 0.1098, 0.1893, 0.1647, 0.3035, 0.2078, 0.3841, 0.2824, 0.5020,
			0.5216, 0.6397, 0.6980, 0.7171, 0.7882, 0.6392, 0.8667, 0.6991, 0.9412, 0.8275, 1, 0.9843),
		b: points(0, 0, 0.0039, 0.1684, 0.0275, 0.4329, 0.2824, 0.5004, 0.4667, 0.2748, 0.5451, 0.3205,
			0.7843, 0.3961, 0.8941, 0.6651, 1, 0.9843),
	},
	"gist_ncar": {
		r: points(0, 0, 0.3098, 0, 0.3725, 0.3993, 0.4235, 0.5003, 0.5333, 1, 0.7922, 1, 0.8471, 0.6218,
			0.8980, 0.9235, 1, 0.9961),
		g: points(0, 0, 0.0510, 0.3722, 0.1059, 0, 0.1569, 0.7202, 0.2157, 1, 0.2588, 0.9804, 0.3176, 1,
			0.3686, 0.8081, 0.4275, 1, 0.5216, 1, 0.6314, 0.7292, 0.6863, 0.2796, 0.7451, 0, 0.7922, 0,
			0.8431, 0.1753, 0.8980, 0.5, 1, 0.9725),
		b: points(0, 0.5020, 0.0510, 0.0222, 0.1098, 1, 0.2039, 1, 0.2627, 0.6145, 0.3216, 0, 0.4157, 0,
			0.4745, 0.2342, 0.5333, 0, 0.6314, 0.0549, 0.6902, 0, 0.7373, 0, 0.7922, 0.9738, 0.8, 1,
			0.8431, 1, 0.8980, 0.9341, 1, 0.9961),
	},
}

// gnuplot returns the channel function with the given number in the
// gnuplot "rgbformulae" palette.
func gnuplot(n int) func(float64) float64 {
	switch n {
	case 3:
		return func(x float64) float64 { return x }
	case 5:
		return func(x float64) float64 { return x * x * x }
	case 7:
		return math.Sqrt
	case 10:
		return func(x float64) float64 { return math.Cos(x * math.Pi / 2) }
	case 13:
		return func(x float64) float64 { return math.Sin(x * math.Pi) }
	case 15:
		return func(x float64) float64 { return math.Sin(x * 2 * math.Pi) }
	case 23:
		return func(x float64) float64 { return 3*x - 2 }
	case 28:
		return func(x float64) float64 { return math.Abs((3*x - 1) / 2) }
	case 30:
		return func(x float64) float64 { return x/0.32 - 0.78125 }
	case 31:
		return func(x float64) float64 { return 2*x - 0.84 }
	case 32:
		return func(x float64) float64 {
			switch {
			case x < 0.25:
				return 4 * x
			case x < 0.92:
				return -2*x + 1.84
			}
			return x/0.08 - 11.5
		}
	case 33:
		return func(x float64) float64 { return math.Abs(2*x - 0.5) }
	case 34:
		return func(x float64) float64 { return 2 * x }
	case 35:
		return func(x float64) float64 { return 2*x - 0.5 }
	case 36:
		return func(x float64) float64 { return 2*x - 1 }
	}
	panic("colour: unsupported gnuplot formula")
}

type funcMap func(x float64) (r, g, b float64)

func formulae(r, g, b int) funcMap {
	fr, fg, fb := gnuplot(r), gnuplot(g), gnuplot(b)
	return func(x float64) (float64, float64, float64) { return fr(x), fg(x), fb(x) }
}

var funcMaps = map[string]funcMap{
	"gnuplot":  formulae(7, 5, 15),
	"gnuplot2": formulae(30, 31, 32),
	"ocean":    formulae(23, 28, 3),
	"rainbow":  formulae(33, 13, 10),
	"afmhot":   formulae(34, 35, 36),
	"gist_heat": func(x float64) (float64, float64, float64) {
		return 1.5 * x, 2*x - 1, 4*x - 3
	},
	"pink": func(x float64) (float64, float64, float64) {
		hr := evalSegments(segmentMaps["hot"].r, x)
		hg := evalSegments(segmentMaps["hot"].g, x)
		hb := evalSegments(segmentMaps["hot"].b, x)
		return math.Sqrt((2*x + hr) / 3), math.Sqrt((2*x + hg) / 3), math.Sqrt((2*x + hb) / 3)
	},
	"flag": func(x float64) (float64, float64, float64) {
		return 0.75*math.Sin((x*31.5+0.25)*math.Pi) + 0.5,
			math.Sin(x * 31.5 * math.Pi),
			0.75*math.Sin((x*31.5-0.25)*math.Pi) + 0.5
	},
	"prism": func(x float64) (float64, float64, float64) {
		return 0.75*math.Sin((x*20.9+0.25)*math.Pi) + 0.67,
			0.75*math.Sin((x*20.9-0.25)*math.Pi) + 0.33,
			-1.1 * math.Sin(x*20.9*math.Pi)
	},
	"cubehelix": func(x float64) (float64, float64, float64) {
		const s, rot, h = 0.5, -1.5, 1.0
		a := h * x * (1 - x) / 2
		phi := 2 * math.Pi * (s/3 + rot*x)
		c, sn := math.Cos(phi), math.Sin(phi)
		return x + a*(-0.14861*c+1.78277*sn), x + a*(-0.29227*c-0.90649*sn), x + a*1.97294*c
	},
	"turbo": func(x float64) (float64, float64, float64) {
		poly := func(c ...float64) float64 {
			v := 0.
			for i := len(c) - 1; i >= 0; i-- {
				v = v*x + c[i]
			}
			return v
		}
		return poly(0.13572138, 4.61539260, -42.66032258, 132.13108234, -152.94239396, 59.28637943),
			poly(0.09140261, 2.19418839, 4.84296658, -14.18503333, 4.27729857, 2.82956604),
			poly(0.10667330, 12.64194608, -60.58204836, 110.36276771, -89.90310912, 27.34824973)
	},
}

// listedMap is a map given by its colours. Continuous maps are
// interpolated between them; qualitative ones are used as they are.
type listedMap struct {
	colours     [][3]uint8
	qualitative bool
}

var listedMaps = map[string]listedMap{
	"viridis": {colours: [][3]uint8{
		{68, 1, 84}, {72, 35, 116}, {64, 67, 135}, {52, 94, 141}, {41, 120, 142}, {32, 144, 140},
		{34, 167, 132}, {68, 190, 112}, {121, 209, 81}, {189, 222, 38}, {253, 231, 37},
	}},
	"plasma": {colours: [][3]uint8{
		{13, 8, 135}, {75, 3, 161}, {125, 3, 168}, {168, 34, 150}, {203, 70, 121},
		{229, 107, 93}, {248, 148, 65}, {253, 195, 40}, {240, 249, 33},
	}},
	"inferno": {colours: [][3]uint8{
		{0, 0, 4}, {40, 11, 84}, {101, 21, 110}, {159, 42, 99}, {212, 72, 66},
		{245, 125, 21}, {250, 193, 39}, {252, 255, 164},
	}},
	"magma": {colours: [][3]uint8{
		{0, 0, 4}, {28, 16, 68}, {79, 18, 123}, {129, 37, 129}, {181, 54, 122},
		{229, 80, 100}, {251, 135, 97}, {254, 194, 135}, {252, 253, 191},
	}},
	"cividis": {colours: [][3]uint8{
		{0, 32, 77}, {0, 54, 112}, {60, 78, 109}, {94, 100, 110}, {124, 124, 120},
		{155, 149, 120}, {189, 175, 112}, {222, 202, 96}, {254, 233, 56},
	}},
	"twilight": {colours: [][3]uint8{
		{226, 217, 226}, {168, 184, 204}, {110, 130, 190}, {95, 66, 155}, {47, 20, 54},
		{131, 36, 78}, {184, 90, 73}, {205, 158, 138}, {226, 217, 226},
	}},
	"Wistia": {colours: [][3]uint8{
		{228, 255, 122}, {255, 232, 26}, {255, 189, 0}, {255, 160, 0}, {252, 127, 0},
	}},
	"tab10": {qualitative: true, colours: [][3]uint8{
		{31, 119, 180}, {255, 127, 14}, {44, 160, 44}, {214, 39, 40}, {148, 103, 189},
		{140, 86, 75}, {227, 119, 194}, {127, 127, 127}, {188, 189, 34}, {23, 190, 207},
	}},
	"tab20": {qualitative: true, colours: [][3]uint8{
		{31, 119, 180}, {174, 199, 232}, {255, 127, 14}, {255, 187, 120}, {44, 160, 44},
		{152, 223, 138}, {214, 39, 40}, {255, 152, 150}, {148, 103, 189}, {197, 176, 213},
		{140, 86, 75}, {196, 156, 148}, {227, 119, 194}, {247, 182, 210}, {127, 127, 127},
		{199, 199, 199}, {188, 189, 34}, {219, 219, 141}, {23, 190, 207}, {158, 218, 229},
	}},
	"tab20b": {qualitative: true, colours: [][3]uint8{
		{57, 59, 121}, {82, 84, 163}, {107, 110, 207}, {156, 158, 222}, {99, 121, 57},
		{140, 162, 82}, {181, 207, 107}, {206, 219, 156}, {140, 109, 49}, {189, 158, 57},
		{231, 186, 82}, {231, 203, 148}, {132, 60, 57}, {173, 73, 74}, {214, 97, 107},
		{231, 150, 156}, {123, 65, 115}, {165, 81, 148}, {206, 109, 189}, {222, 158, 214},
	}},
	"tab20c": {qualitative: true, colours: [][3]uint8{
		{49, 130, 189}, {107, 174, 214}, {158, 202, 225}, {198, 219, 239}, {230, 85, 13},
		{253, 141, 60}, {253, 174, 107}, {253, 208, 162}, {49, 163, 84}, {116, 196, 118},
		{161, 217, 155}, {199, 233, 192}, {117, 107, 177}, {158, 154, 200}, {188, 189, 220},
		{218, 218, 235}, {99, 99, 99}, {150, 150, 150}, {189, 189, 189}, {217, 217, 217},
	}},
}

// matplotlibTable builds the table for one of the segment, formula or
// listed maps, reporting whether name is one of them.
func matplotlibTable(name string) (*Table, bool) {
	if name == "twilight_shifted" {
		t, _ := matplotlibTable("twilight")
		n := len(t.Colours)
		shifted := append(append([]color.NRGBA{}, t.Colours[n/2:]...), t.Colours[:n/2]...)
		o := (&Table{Colours: shifted}).Reverse()
		o.Name = name
		return o, true
	}
	if m, ok := segmentMaps[name]; ok {
		return sampled(name, func(x float64) (float64, float64, float64) {
			return evalSegments(m.r, x), evalSegments(m.g, x), evalSegments(m.b, x)
		}), true
	}
	if f, ok := funcMaps[name]; ok {
		return sampled(name, f), true
	}
	if l, ok := listedMaps[name]; ok {
		ctrl := make([]color.NRGBA, len(l.colours))
		for i, c := range l.colours {
			ctrl[i] = color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255}
		}
		if l.qualitative {
			return &Table{Name: name, Colours: ctrl}, true
		}
		return &Table{Name: name, Colours: interpolate(ctrl, continuousSize)}, true
	}
	return nil, false
}

// sampled evaluates f, whose channels are clipped to [0, 1], at evenly
// spaced points.
func sampled(name string, f funcMap) *Table {
	t := &Table{Name: name, Colours: make([]color.NRGBA, continuousSize)}
	for i := range t.Colours {
		r, g, b := f(float64(i) / float64(continuousSize-1))
		t.Colours[i] = color.NRGBA{R: clampByte(r * 255), G: clampByte(g * 255), B: clampByte(b * 255), A: 255}
	}
	return t
}
