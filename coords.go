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

import "fmt"

// ReduceCoordinate makes the named coordinate variable usable as an image
// axis. A coordinate that, ignoring the case dimension, is already
// 1-dimensional is left unchanged. A 2-dimensional coordinate whose first
// and last rows are identical is replaced by its first row, and one whose
// first and last columns are identical is replaced by its first column.
// Anything else is an error. Coordinates that are not in ds are left for
// the layer checks to report.
func ReduceCoordinate(ds *Dataset, name, caseDim string) error {
	if !ds.Has(name) {
		return nil
	}
	v, _ := ds.Var(name)
	ndims := len(v.Dims)
	hasCase := caseDim != "" && v.HasDim(caseDim)
	if hasCase {
		ndims--
	}
	if ndims == 1 {
		return nil
	}
	if ndims == 2 && !hasCase && v.Data != nil {
		h, w := v.Data.Shape[0], v.Data.Shape[1]
		if h == 0 || w == 0 {
			return fmt.Errorf("explorer: spatial coordinate %s has no values", name)
		}
		e := v.Data.Elements
		if equalSlices(e[:w], e[(h-1)*w:]) {
			row, err := NewVariable(name, v.Dims[1:], []int{w}, e[:w])
			if err != nil {
				return err
			}
			row.Attrs = v.Attrs
			return ds.Set(row)
		}
		first, last := make([]float64, h), make([]float64, h)
		for j := 0; j < h; j++ {
			first[j] = e[j*w]
			last[j] = e[j*w+w-1]
		}
		if equalSlices(first, last) {
			col, err := NewVariable(name, v.Dims[:1], []int{h}, first)
			if err != nil {
				return err
			}
			col.Attrs = v.Attrs
			return ds.Set(col)
		}
	}
	return fmt.Errorf("explorer: unable to make spatial coordinate %s 1-dimensional", name)
}

func equalSlices(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// orientation returns whether an image drawn from data on the axes x and
// y must be mirrored horizontally (x descends) or flipped vertically
// (y ascends, while image row 0 is the top).
func orientation(x, y []float64) (fliplr, flipud bool) {
	if len(x) > 0 && x[0] > x[len(x)-1] {
		fliplr = true
	}
	if len(y) > 0 && y[0] < y[len(y)-1] {
		flipud = true
	}
	return fliplr, flipud
}
