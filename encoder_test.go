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
	"bytes"
	"testing"

	"github.com/kr/pretty"
)

func TestEncodeDecodeData(t *testing.T) {
	a := testArray(3, 4)
	a.Elements[5] = 0.5
	var b bytes.Buffer
	if err := EncodeData(&b, a); err != nil {
		t.Fatal(err)
	}
	o, err := DecodeData(&b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(o.Shape, a.Shape); len(diff) > 0 {
		t.Errorf("shape: %v", diff)
	}
	if diff := pretty.Diff(o.Elements, a.Elements); len(diff) > 0 {
		t.Errorf("values: %v", diff)
	}
}

func TestEncodeDataNot2D(t *testing.T) {
	var b bytes.Buffer
	if err := EncodeData(&b, reshape(testArray(3, 4), []int{12})); err == nil {
		t.Error("encoding a 1D array should fail")
	}
}
