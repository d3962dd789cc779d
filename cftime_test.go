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

func TestTimestamps(t *testing.T) {
	tests := []struct {
		units  string
		values []float64
		want   []string
	}{
		{
			units:  "days since 1981-01-01 00:00:00",
			values: []float64{0, 1.5, 365},
			want:   []string{"1981-01-01T00:00:00", "1981-01-02T12:00:00", "1982-01-01T00:00:00"},
		},
		{
			units:  "seconds since 1970-01-01",
			values: []float64{86400},
			want:   []string{"1970-01-02T00:00:00"},
		},
		{
			units:  "hours since 2000-01-01T06:00:00Z",
			values: []float64{-6, math.NaN()},
			want:   []string{"2000-01-01T00:00:00", ""},
		},
		{
			units:  "",
			values: []float64{3, 4.5},
			want:   []string{"3", "4.5"},
		},
	}
	for _, test := range tests {
		v, err := NewVariable("time", []string{"time"}, []int{len(test.values)}, test.values)
		if err != nil {
			t.Fatal(err)
		}
		v.Attrs = map[string]interface{}{"units": test.units}
		have, err := Timestamps(v)
		if err != nil {
			t.Errorf("%s: %v", test.units, err)
			continue
		}
		if diff := pretty.Diff(have, test.want); len(diff) > 0 {
			t.Errorf("%s: have %v, want %v", test.units, have, test.want)
		}
	}
}

func TestTimestampsText(t *testing.T) {
	v := &Variable{Name: "time", Dims: []string{"time"}, Text: []string{"2020-05-01 10:00"}}
	have, err := Timestamps(v)
	if err != nil {
		t.Fatal(err)
	}
	if timestamp(have[0]) != "2020-05-01" {
		t.Errorf("have %s, want 2020-05-01", timestamp(have[0]))
	}
}

func TestParseTimeUnitsErrors(t *testing.T) {
	for _, units := range []string{
		"fortnights since 2000-01-01",
		"days since yesterday",
		"days after 2000-01-01",
	} {
		if _, _, err := parseTimeUnits(units); err == nil {
			t.Errorf("%q should not parse", units)
		}
	}
}
