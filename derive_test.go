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
	"math"
	"testing"

	"github.com/kr/pretty"
)

func TestParseExpressionPrecedence(t *testing.T) {
	ds := NewDataset()
	for _, v := range []struct {
		name   string
		values []float64
	}{
		{name: "a", values: []float64{1, 2, 3, 4}},
		{name: "qa", values: []float64{0, 4, 5, 8}},
		{name: "cloud", values: []float64{0, 0, 1, 0}},
	} {
		nv, err := NewVariable(v.name, []string{"x"}, []int{4}, v.values)
		if err != nil {
			t.Fatal(err)
		}
		ds.Set(nv)
	}
	tests := []struct {
		expr string
		want []float64
	}{
		{expr: "a + 2 * 3", want: []float64{7, 8, 9, 10}},
		{expr: "(a + 2) * 3", want: []float64{9, 12, 15, 18}},
		{expr: "a - 1 - 1", want: []float64{-1, 0, 1, 2}},
		{expr: "-a + 1", want: []float64{0, -1, -2, -3}},
		{expr: "qa & 4", want: []float64{0, 4, 4, 0}},
		{expr: "qa | 1", want: []float64{1, 5, 5, 9}},
		{expr: "qa & 4 == 0", want: []float64{1, 0, 0, 1}},
		{expr: "(qa & 4) == 0 and not cloud", want: []float64{1, 0, 0, 1}},
		{expr: "a == 1 or a == 4", want: []float64{1, 0, 0, 1}},
		{expr: "a / 2", want: []float64{0.5, 1, 1.5, 2}},
		{expr: "a * 1e1", want: []float64{10, 20, 30, 40}},
	}
	for _, test := range tests {
		e, err := ParseExpression(test.expr)
		if err != nil {
			t.Errorf("%s: %v", test.expr, err)
			continue
		}
		v, err := e.Evaluate(ds)
		if err != nil {
			t.Errorf("%s: %v", test.expr, err)
			continue
		}
		if diff := pretty.Diff(v.Values(), test.want); len(diff) > 0 {
			t.Errorf("%s: have %v, want %v", test.expr, v.Values(), test.want)
		}
	}
}

func TestParseExpressionErrors(t *testing.T) {
	for _, expr := range []string{
		"a = 1",
		"(a + 1",
		"a +",
		"a b",
		"and a",
		"a % 2",
	} {
		if _, err := ParseExpression(expr); err == nil {
			t.Errorf("%q should not parse", expr)
		}
	}
}

func TestExpressionBands(t *testing.T) {
	e, err := ParseExpression("b1 * 2 + b2 - b1 / b3")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b1", "b2", "b3"}
	if diff := pretty.Diff(e.Bands(), want); len(diff) > 0 {
		t.Errorf("have %v, want %v", e.Bands(), want)
	}
}

func TestDeriveBandBroadcast(t *testing.T) {
	ds := testDataset(t)
	if err := DeriveBand(ds, "warm_land", "(sst > 10)"); err == nil {
		t.Error("'>' is not a supported operator")
	}
	if err := DeriveBand(ds, "sst_land", "sst * land"); err != nil {
		t.Fatal(err)
	}
	v, err := ds.Var("sst_land")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(v.Dims, []string{"time", "y", "x"}); len(diff) > 0 {
		t.Errorf("dims: %v", diff)
	}
	// land is 0 in the top left corner and 1 in the bottom right.
	e := v.Values()
	if e[0] != 0 || e[23] != 23 || e[14] != 14 {
		t.Errorf("have %v", e)
	}

	if err := DeriveBand(ds, "scaled_cloud", "cloud * 2"); err != nil {
		t.Fatal(err)
	}
	v, _ = ds.Var("scaled_cloud")
	if diff := pretty.Diff(v.Values(), []float64{0.5, 1}); len(diff) > 0 {
		t.Errorf("scaled cloud: %v", diff)
	}

	if err := DeriveBand(ds, "bad", "missing + 1"); err == nil {
		t.Error("a missing variable should be an error")
	}
}

func TestToInt(t *testing.T) {
	if toInt(math.NaN()) != 0 {
		t.Error("NaN should convert to 0")
	}
	if toInt(5.9) != 5 {
		t.Errorf("have %d, want 5", toInt(5.9))
	}
}
