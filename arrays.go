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

	"github.com/ctessum/sparse"
)

// newArray returns a zeroed array with the given shape. The shape
// slice is copied.
func newArray(shape []int) *sparse.DenseArray {
	s := make([]int, len(shape))
	copy(s, shape)
	return sparse.ZerosDense(s...)
}

// span returns the products of the dimension lengths before and after
// axis.
func span(shape []int, axis int) (outer, inner int) {
	outer, inner = 1, 1
	for _, l := range shape[:axis] {
		outer *= l
	}
	for _, l := range shape[axis+1:] {
		inner *= l
	}
	return outer, inner
}

// selectIndex returns the slice of a at position index along axis,
// with axis removed.
func selectIndex(a *sparse.DenseArray, axis, index int) (*sparse.DenseArray, error) {
	if axis < 0 || axis >= len(a.Shape) {
		return nil, fmt.Errorf("explorer: axis %d out of range for shape %v", axis, a.Shape)
	}
	n := a.Shape[axis]
	if index < 0 || index >= n {
		return nil, fmt.Errorf("explorer: index %d out of range for axis %d of length %d", index, axis, n)
	}
	shape := append(append([]int{}, a.Shape[:axis]...), a.Shape[axis+1:]...)
	o := newArray(shape)
	outer, inner := span(a.Shape, axis)
	for i := 0; i < outer; i++ {
		src := (i*n + index) * inner
		copy(o.Elements[i*inner:(i+1)*inner], a.Elements[src:src+inner])
	}
	return o, nil
}

// takeIndexes returns the positions listed in indexes along axis, in
// the given order.
func takeIndexes(a *sparse.DenseArray, axis int, indexes []int) (*sparse.DenseArray, error) {
	if axis < 0 || axis >= len(a.Shape) {
		return nil, fmt.Errorf("explorer: axis %d out of range for shape %v", axis, a.Shape)
	}
	n := a.Shape[axis]
	shape := append([]int{}, a.Shape...)
	shape[axis] = len(indexes)
	o := newArray(shape)
	outer, inner := span(a.Shape, axis)
	m := len(indexes)
	for i := 0; i < outer; i++ {
		for j, index := range indexes {
			if index < 0 || index >= n {
				return nil, fmt.Errorf("explorer: index %d out of range for axis %d of length %d", index, axis, n)
			}
			src := (i*n + index) * inner
			dst := (i*m + j) * inner
			copy(o.Elements[dst:dst+inner], a.Elements[src:src+inner])
		}
	}
	return o, nil
}

// reshape returns a copy of a with a new shape of the same size.
func reshape(a *sparse.DenseArray, shape []int) *sparse.DenseArray {
	o := newArray(shape)
	copy(o.Elements, a.Elements)
	return o
}

// transpose2 swaps the axes of a 2D array.
func transpose2(a *sparse.DenseArray) *sparse.DenseArray {
	h, w := a.Shape[0], a.Shape[1]
	o := newArray([]int{w, h})
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			o.Elements[i*h+j] = a.Elements[j*w+i]
		}
	}
	return o
}

// flipUD reverses the order of the rows of a 2D array.
func flipUD(a *sparse.DenseArray) *sparse.DenseArray {
	h, w := a.Shape[0], a.Shape[1]
	o := newArray(a.Shape)
	for j := 0; j < h; j++ {
		copy(o.Elements[(h-1-j)*w:(h-j)*w], a.Elements[j*w:(j+1)*w])
	}
	return o
}

// flipLR reverses the order of the columns of a 2D array.
func flipLR(a *sparse.DenseArray) *sparse.DenseArray {
	h, w := a.Shape[0], a.Shape[1]
	o := newArray(a.Shape)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			o.Elements[j*w+w-1-i] = a.Elements[j*w+i]
		}
	}
	return o
}

// broadcast expands a, whose axes are named by dims, onto the axes named
// by toDims with lengths toShape. Every name in dims must appear in
// toDims with the same length.
func broadcast(a *sparse.DenseArray, dims, toDims []string, toShape []int) (*sparse.DenseArray, error) {
	pos := make([]int, len(dims))
	for i, d := range dims {
		pos[i] = -1
		for j, td := range toDims {
			if d == td {
				pos[i] = j
			}
		}
		if pos[i] < 0 {
			return nil, fmt.Errorf("explorer: cannot broadcast dimension %q onto %v", d, toDims)
		}
		if a.Shape[i] != toShape[pos[i]] {
			return nil, fmt.Errorf("explorer: cannot broadcast dimension %q of length %d onto length %d",
				d, a.Shape[i], toShape[pos[i]])
		}
	}
	o := newArray(toShape)
	idx := make([]int, len(toShape))
	src := make([]int, len(dims))
	for k := range o.Elements {
		rem := k
		for j := len(toShape) - 1; j >= 0; j-- {
			idx[j] = rem % toShape[j]
			rem /= toShape[j]
		}
		for i := range dims {
			src[i] = idx[pos[i]]
		}
		o.Elements[k] = a.Elements[flatIndex(a.Shape, src)]
	}
	return o, nil
}

func flatIndex(shape, index []int) int {
	k := 0
	for i, l := range shape {
		k = k*l + index[i]
	}
	return k
}
