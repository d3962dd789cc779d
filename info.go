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
	"math"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// wgs84 is the spatial reference that info text longitudes and
// latitudes are reported in.
const wgs84 = "+proj=longlat +datum=WGS84 +no_defs"

// knownCRS maps EPSG codes that cannot be parsed directly to proj4
// definitions.
var knownCRS = map[string]string{
	"EPSG:4326": wgs84,
	"EPSG:3857": "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
}

// infoFunctions are the functions available in info text templates.
// They skip NaN values.
var infoFunctions = map[string]govaluate.ExpressionFunction{
	"mean": nanFunc("mean", func(v []float64) float64 { return stat.Mean(v, nil) }),
	"min":  nanFunc("min", floats.Min),
	"max":  nanFunc("max", floats.Max),
	"sum":  nanFunc("sum", floats.Sum),
	"count": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("explorer: got %d arguments for function 'count', but needs 1", len(args))
		}
		return float64(len(notNaN(args[0]))), nil
	},
}

func nanFunc(name string, f func([]float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("explorer: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		v := notNaN(args[0])
		if len(v) == 0 {
			return math.NaN(), nil
		}
		return f(v), nil
	}
}

func notNaN(arg interface{}) []float64 {
	var in []float64
	switch t := arg.(type) {
	case []float64:
		in = t
	case float64:
		in = []float64{t}
	}
	o := make([]float64, 0, len(in))
	for _, x := range in {
		if !math.IsNaN(x) {
			o = append(o, x)
		}
	}
	return o
}

// infoField is a parsed info text template: literal text and
// placeholders alternate.
type infoField struct {
	key     string
	literal []string
	exprs   []*govaluate.EvaluableExpression
	formats []string
}

// InfoRenderer renders the info text of each scene.
type InfoRenderer struct {
	fields []infoField

	xCoordinate, yCoordinate string
	toLonLat                 proj.Transformer

	Log logrus.FieldLogger
}

// NewInfoRenderer parses the info templates. Placeholders are written
// {expression} or {expression:%format}. If crs is not empty, lon and lat
// are available in expressions; they are the mean x and y coordinates
// of a scene transformed from crs.
func NewInfoRenderer(templates KeyValues, crs, xCoordinate, yCoordinate string) (*InfoRenderer, error) {
	r := &InfoRenderer{xCoordinate: xCoordinate, yCoordinate: yCoordinate}
	for _, kv := range templates {
		f, err := parseInfoTemplate(kv.Key, kv.Value)
		if err != nil {
			return nil, err
		}
		r.fields = append(r.fields, f)
	}
	if crs != "" {
		t, err := lonLatTransform(crs)
		if err != nil {
			return nil, err
		}
		r.toLonLat = t
	}
	return r, nil
}

func lonLatTransform(crs string) (proj.Transformer, error) {
	if def, ok := knownCRS[strings.ToUpper(crs)]; ok {
		crs = def
	}
	src, err := proj.Parse(crs)
	if err != nil {
		return nil, fmt.Errorf("explorer: parsing crs %q: %v", crs, err)
	}
	dst, err := proj.Parse(wgs84)
	if err != nil {
		return nil, err
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("explorer: creating transform from crs %q: %v", crs, err)
	}
	return t, nil
}

func parseInfoTemplate(key, tmpl string) (infoField, error) {
	f := infoField{key: key}
	rest := tmpl
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			f.literal = append(f.literal, rest)
			return f, nil
		}
		end := strings.Index(rest[open:], "}")
		if end < 0 {
			return f, fmt.Errorf("explorer: info %s: unclosed '{' in %q", key, tmpl)
		}
		end += open
		f.literal = append(f.literal, rest[:open])
		src := rest[open+1 : end]
		format := ""
		if i := strings.LastIndex(src, ":%"); i >= 0 {
			src, format = src[:i], src[i+1:]
		}
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, infoFunctions)
		if err != nil {
			return f, fmt.Errorf("explorer: info %s: %v", key, err)
		}
		f.exprs = append(f.exprs, expr)
		f.formats = append(f.formats, format)
		rest = rest[end+1:]
	}
}

func (r *InfoRenderer) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Render returns the info text of the scene with the given index and
// data. Fields that cannot be rendered are logged and left out.
func (r *InfoRenderer) Render(index int, timestamp string, ds *Dataset) map[string]string {
	o := make(map[string]string, len(r.fields))
	if len(r.fields) == 0 {
		return o
	}
	params := r.parameters(index, timestamp, ds)
	for _, f := range r.fields {
		s, err := f.render(params)
		if err != nil {
			r.log().WithFields(logrus.Fields{"key": f.key, "case": index}).Errorf("Unable to render info for key: %v", err)
			continue
		}
		o[f.key] = s
	}
	return o
}

func (r *InfoRenderer) parameters(index int, timestamp string, ds *Dataset) map[string]interface{} {
	params := map[string]interface{}{
		"index":     float64(index),
		"timestamp": timestamp,
	}
	for _, name := range ds.Variables() {
		v, _ := ds.Var(name)
		switch {
		case v.Data == nil && len(v.Text) == 1:
			params[name] = v.Text[0]
		case v.Data == nil:
			params[name] = v.Text
		case len(v.Data.Elements) == 1:
			params[name] = v.Data.Elements[0]
		default:
			params[name] = v.Data.Elements
		}
	}
	if r.toLonLat != nil {
		x, errX := ds.Var(r.xCoordinate)
		y, errY := ds.Var(r.yCoordinate)
		if errX == nil && errY == nil {
			lon, lat, err := r.toLonLat(stat.Mean(x.Values(), nil), stat.Mean(y.Values(), nil))
			if err == nil {
				params["lon"] = lon
				params["lat"] = lat
			} else {
				r.log().WithField("case", index).Warnf("computing scene longitude and latitude: %v", err)
			}
		}
	}
	return params
}

func (f *infoField) render(params map[string]interface{}) (string, error) {
	var b strings.Builder
	for i, lit := range f.literal {
		b.WriteString(lit)
		if i >= len(f.exprs) {
			continue
		}
		v, err := f.exprs[i].Evaluate(params)
		if err != nil {
			return "", err
		}
		if f.formats[i] != "" {
			b.WriteString(fmt.Sprintf(f.formats[i], v))
		} else {
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String(), nil
}
