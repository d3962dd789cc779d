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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/kr/pretty"
)

// writeTestNetCDF writes ds to a temporary file and returns its path.
func writeTestNetCDF(t *testing.T, ds *Dataset) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "explorer_netcdf")
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, "test.nc")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteNetCDF(f, ds); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNetCDFRoundTrip(t *testing.T) {
	ds := testDataset(t)
	ds.Attrs["title"] = "test data"
	id := &Variable{Name: "scene_id", Dims: []string{"time"}, Text: []string{"first", "second scene"}}
	if err := ds.Set(id); err != nil {
		t.Fatal(err)
	}
	p := writeTestNetCDF(t, ds)
	defer os.RemoveAll(filepath.Dir(p))

	o, err := OpenNetCDF(p)
	if err != nil {
		t.Fatal(err)
	}
	if o.Attrs["title"] != "test data" {
		t.Errorf("have title %v, want test data", o.Attrs["title"])
	}
	for _, name := range []string{"time", "y", "x", "sst", "land", "cloud"} {
		want, _ := ds.Var(name)
		have, err := o.Var(name)
		if err != nil {
			t.Error(err)
			continue
		}
		if diff := pretty.Diff(have.Dims, want.Dims); len(diff) > 0 {
			t.Errorf("%s dims: %v", name, diff)
		}
		if diff := pretty.Diff(have.Values(), want.Values()); len(diff) > 0 {
			t.Errorf("%s values: %v", name, diff)
		}
	}
	tv, _ := o.Var("time")
	if tv.Attrs["units"] != "days since 2020-01-01 00:00:00" {
		t.Errorf("have time units %v", tv.Attrs["units"])
	}
	ids, err := o.Var("scene_id")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(ids.Text, []string{"first", "second scene"}); len(diff) > 0 {
		t.Errorf("text variable: %v", diff)
	}
}

func TestLoadNetCDFPacked(t *testing.T) {
	dir, err := ioutil.TempDir("", "explorer_netcdf")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	p := filepath.Join(dir, "packed.nc")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	h := cdf.NewHeader([]string{"x"}, []int{3})
	h.AddVariable("temp", []string{"x"}, []int16{0})
	h.AddAttribute("temp", "scale_factor", []float64{0.5})
	h.AddAttribute("temp", "add_offset", []float64{270})
	h.AddAttribute("temp", "_FillValue", []int16{-999})
	h.Define()
	cf, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeVariable(cf.Writer("temp", nil, nil), []int16{0, 10, -999}, 3); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ds, err := OpenNetCDF(p)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ds.Var("temp")
	if err != nil {
		t.Fatal(err)
	}
	e := v.Values()
	if e[0] != 270 || e[1] != 275 || !math.IsNaN(e[2]) {
		t.Errorf("have %v, want [270 275 NaN]", e)
	}
}

func TestOpenNetCDFMissing(t *testing.T) {
	if _, err := OpenNetCDF("/no/such/file.nc"); err == nil {
		t.Error("opening a missing file should fail")
	}
}

func TestWriteVariable(t *testing.T) {
	dir, err := ioutil.TempDir("", "explorer_netcdf")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f, err := os.Create(filepath.Join(dir, "short.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	h := cdf.NewHeader([]string{"x"}, []int{3})
	h.AddVariable("a", []string{"x"}, []float64{0})
	h.AddVariable("b", []string{"x"}, []float64{0})
	h.Define()
	cf, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeVariable(cf.Writer("a", nil, nil), []float64{1, 2, 3}, 3); err != nil {
		t.Errorf("complete write: %v", err)
	}
	if err := writeVariable(cf.Writer("b", nil, nil), []float64{1, 2}, 3); err == nil {
		t.Error("a short write should fail")
	}
}
