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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
)

func readCSV(t *testing.T, p string) [][]string {
	t.Helper()
	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteTimeseries(t *testing.T) {
	dir, err := ioutil.TempDir("", "explorer_timeseries")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ds := testDataset(t)
	plots := TimeseriesPlots{
		{Name: "cloud", Variables: []string{"cloud"}},
		{Name: "sst", Variables: []string{"sst:min", "sst:max"}, Masks: []string{"land"}},
		{Name: "missing", Variables: []string{"nothing"}},
	}
	ts, err := WriteTimeseries(dir, ds, "time", "time", plots, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []Timeseries{
		{Name: "cloud", Spec: plots[0], CSVURL: "timeseries/cloud.csv"},
		{Name: "sst", Spec: plots[1], CSVURL: "timeseries/sst.csv"},
	}
	if diff := pretty.Diff(ts, want); len(diff) > 0 {
		t.Errorf("timeseries: %v", diff)
	}

	have := readCSV(t, filepath.Join(dir, "timeseries", "cloud.csv"))
	wantRows := [][]string{
		{"datetime", "cloud"},
		{"2020-01-01", "0.25"},
		{"2020-01-02", "0.5"},
	}
	if diff := pretty.Diff(have, wantRows); len(diff) > 0 {
		t.Errorf("cloud.csv: %v", diff)
	}

	// land is 1 at flat positions 2, 3 and 5 to 11.
	have = readCSV(t, filepath.Join(dir, "timeseries", "sst.csv"))
	wantRows = [][]string{
		{"datetime", "land_sst_min", "land_sst_max"},
		{"2020-01-01", "2", "11"},
		{"2020-01-02", "14", "23"},
	}
	if diff := pretty.Diff(have, wantRows); len(diff) > 0 {
		t.Errorf("sst.csv: %v", diff)
	}
}

func TestAggregation(t *testing.T) {
	if _, err := aggregation("median"); err == nil {
		t.Error("median is not an aggregation function")
	}
	for _, test := range []struct {
		name string
		want float64
	}{
		{name: "", want: 2},
		{name: "mean", want: 2},
		{name: "min", want: 1},
		{name: "max", want: 3},
	} {
		f, err := aggregation(test.name)
		if err != nil {
			t.Fatal(err)
		}
		if have := f([]float64{1, 3, math.NaN()}); have != test.want {
			t.Errorf("%s: have %g, want %g", test.name, have, test.want)
		}
	}
	name, agg := splitVariable("sst:max")
	if name != "sst" || agg != "max" {
		t.Errorf("have %s, %s; want sst, max", name, agg)
	}
}
