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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Timeseries describes a written timeseries file for the viewer.
type Timeseries struct {
	Name   string         `json:"name"`
	Spec   TimeseriesPlot `json:"spec"`
	CSVURL string         `json:"csv_url"`
}

// aggregate reduces the values of a variable inside a mask.
type aggregate func([]float64) float64

func aggregation(name string) (aggregate, error) {
	nan := func(f aggregate) aggregate {
		return func(v []float64) float64 {
			v = notNaN(v)
			if len(v) == 0 {
				return math.NaN()
			}
			return f(v)
		}
	}
	switch name {
	case "", "mean":
		return nan(func(v []float64) float64 { return stat.Mean(v, nil) }), nil
	case "min":
		return nan(floats.Min), nil
	case "max":
		return nan(floats.Max), nil
	}
	return nil, fmt.Errorf("explorer: Cannot apply unrecognised aggregation function %s", name)
}

// splitVariable splits "name:aggregation" into its parts.
func splitVariable(v string) (name, agg string) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// validPlots drops the variables that are not in ds from each plot, and
// plots that are left without variables.
func validPlots(ds *Dataset, plots TimeseriesPlots) TimeseriesPlots {
	var o TimeseriesPlots
	for _, p := range plots {
		var vars []string
		for _, v := range p.Variables {
			if name, _ := splitVariable(v); ds.Has(name) {
				vars = append(vars, v)
			}
		}
		if len(vars) > 0 {
			p.Variables = vars
			o = append(o, p)
		}
	}
	return o
}

// WriteTimeseries writes one CSV file per plot to the timeseries folder
// of outputDir. Each row holds the date of a case and, for each
// variable, its value or, if masks are given, its aggregated value
// inside each mask. slice returns the data of one case; if it is nil the
// cases are selected from ds.
func WriteTimeseries(outputDir string, ds *Dataset, caseDim, timeCoord string, plots TimeseriesPlots, slice func(int) (*Dataset, error)) ([]Timeseries, error) {
	plots = validPlots(ds, plots)
	if len(plots) == 0 {
		return nil, nil
	}
	dir := filepath.Join(outputDir, "timeseries")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("explorer: creating timeseries folder: %v", err)
	}
	var dates []string
	if timeCoord != "" {
		tv, err := ds.Var(timeCoord)
		if err != nil {
			return nil, fmt.Errorf("explorer: timeseries: %v", err)
		}
		if dates, err = Timestamps(tv); err != nil {
			return nil, err
		}
	}
	if slice == nil {
		slice = func(i int) (*Dataset, error) { return ds.Isel(map[string]int{caseDim: i}) }
	}
	n := ds.Size(caseDim)
	var o []Timeseries
	for _, p := range plots {
		rows, err := timeseriesRows(slice, dates, n, p)
		if err != nil {
			return nil, fmt.Errorf("explorer: timeseries %s: %v", p.Name, err)
		}
		f, err := os.Create(filepath.Join(dir, p.Name+".csv"))
		if err != nil {
			return nil, fmt.Errorf("explorer: creating timeseries file: %v", err)
		}
		w := csv.NewWriter(f)
		if err := w.WriteAll(rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("explorer: writing timeseries %s: %v", p.Name, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		o = append(o, Timeseries{Name: p.Name, Spec: p, CSVURL: path.Join("timeseries", p.Name+".csv")})
	}
	return o, nil
}

func timeseriesRows(sliceFor func(int) (*Dataset, error), dates []string, n int, p TimeseriesPlot) ([][]string, error) {
	header := []string{"datetime"}
	if len(p.Masks) > 0 {
		for _, m := range p.Masks {
			for _, v := range p.Variables {
				header = append(header, m+"_"+strings.Replace(v, ":", "_", -1))
			}
		}
	} else {
		header = append(header, p.Variables...)
	}
	rows := [][]string{header}
	for i := 0; i < n; i++ {
		slice, err := sliceFor(i)
		if err != nil {
			return nil, err
		}
		date := ""
		if i < len(dates) {
			date = timestamp(dates[i])
		}
		row := []string{date}
		if len(p.Masks) > 0 {
			for _, m := range p.Masks {
				mask, err := slice.Var(m)
				if err != nil {
					return nil, err
				}
				mask = mask.Squeeze()
				for _, v := range p.Variables {
					name, aggName := splitVariable(v)
					agg, err := aggregation(aggName)
					if err != nil {
						return nil, err
					}
					values, err := masked(slice, name, mask)
					if err != nil {
						return nil, err
					}
					row = append(row, formatValue(agg(values)))
				}
			}
		} else {
			for _, v := range p.Variables {
				name, _ := splitVariable(v)
				sv, err := slice.Var(name)
				if err != nil {
					return nil, err
				}
				x, err := sv.Item()
				if err != nil {
					return nil, err
				}
				row = append(row, formatValue(x))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// masked returns the values of the named variable where mask is
// non-zero; other values are NaN.
func masked(ds *Dataset, name string, mask *Variable) ([]float64, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, err
	}
	v = v.Squeeze()
	if v.Data == nil || mask.Data == nil {
		return nil, fmt.Errorf("variables %s and %s must be numeric", name, mask.Name)
	}
	m := mask.Data
	if len(mask.Dims) != len(v.Dims) || strings.Join(mask.Dims, ",") != strings.Join(v.Dims, ",") {
		if m, err = broadcast(mask.Data, mask.Dims, v.Dims, v.Shape()); err != nil {
			return nil, err
		}
	}
	o := make([]float64, len(v.Data.Elements))
	for i, x := range v.Data.Elements {
		if mv := m.Elements[i]; mv != 0 && !math.IsNaN(mv) {
			o[i] = x
		} else {
			o[i] = math.NaN()
		}
	}
	return o, nil
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
