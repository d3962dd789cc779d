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
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// ErrNoVariable is returned when a requested variable is not in a Dataset.
var ErrNoVariable = errors.New("no variable")

// Variable is a named array with an ordered list of dimension names.
// Numeric variables hold their values in Data. Character variables hold
// one string per element of their dimensions in Text instead, and Data
// is nil.
type Variable struct {
	Name  string
	Dims  []string
	Data  *sparse.DenseArray
	Text  []string
	Attrs map[string]interface{}
}

// NewVariable creates a numeric variable with the given dimensions and
// shape, filled with values (which may be nil for zeros).
func NewVariable(name string, dims []string, shape []int, values []float64) (*Variable, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("explorer: variable %s has %d dimensions but shape %v", name, len(dims), shape)
	}
	a := newArray(shape)
	if values != nil {
		if len(values) != len(a.Elements) {
			return nil, fmt.Errorf("explorer: variable %s has shape %v but %d values", name, shape, len(values))
		}
		copy(a.Elements, values)
	}
	return &Variable{Name: name, Dims: append([]string{}, dims...), Data: a}, nil
}

// Shape returns the lengths of the variable's dimensions.
func (v *Variable) Shape() []int {
	if v.Data != nil {
		return v.Data.Shape
	}
	if len(v.Dims) == 0 {
		return []int{}
	}
	return []int{len(v.Text)}
}

// HasDim returns whether the variable has the named dimension.
func (v *Variable) HasDim(dim string) bool {
	return v.dimIndex(dim) >= 0
}

func (v *Variable) dimIndex(dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// Len returns the number of elements in the variable.
func (v *Variable) Len() int {
	if v.Data != nil {
		return len(v.Data.Elements)
	}
	return len(v.Text)
}

// Values returns the numeric values of the variable in row-major order.
func (v *Variable) Values() []float64 {
	if v.Data == nil {
		return nil
	}
	return v.Data.Elements
}

// Item returns the single value of a variable with one element.
func (v *Variable) Item() (float64, error) {
	if v.Data == nil || len(v.Data.Elements) != 1 {
		return math.NaN(), fmt.Errorf("explorer: variable %s does not have exactly one numeric value", v.Name)
	}
	return v.Data.Elements[0], nil
}

// Copy returns a deep copy of the variable.
func (v *Variable) Copy() *Variable {
	o := &Variable{
		Name:  v.Name,
		Dims:  append([]string{}, v.Dims...),
		Text:  append([]string(nil), v.Text...),
		Attrs: make(map[string]interface{}, len(v.Attrs)),
	}
	if v.Data != nil {
		o.Data = reshape(v.Data, v.Data.Shape)
	}
	for k, a := range v.Attrs {
		o.Attrs[k] = a
	}
	return o
}

// Isel returns the variable indexed by position along the selected
// dimensions, which are removed from the result. Selectors for
// dimensions that the variable does not have are ignored.
func (v *Variable) Isel(sel map[string]int) (*Variable, error) {
	o := v
	for dim, index := range sel {
		axis := o.dimIndex(dim)
		if axis < 0 {
			continue
		}
		n := &Variable{Name: v.Name, Attrs: v.Attrs}
		n.Dims = append(append([]string{}, o.Dims[:axis]...), o.Dims[axis+1:]...)
		if o.Data != nil {
			a, err := selectIndex(o.Data, axis, index)
			if err != nil {
				return nil, fmt.Errorf("explorer: selecting %s=%d from %s: %v", dim, index, v.Name, err)
			}
			n.Data = a
		} else {
			if axis != 0 || len(o.Dims) != 1 || index < 0 || index >= len(o.Text) {
				return nil, fmt.Errorf("explorer: unsupported selection %s=%d from text variable %s", dim, index, v.Name)
			}
			n.Text = []string{o.Text[index]}
		}
		o = n
	}
	return o, nil
}

// Take returns the variable restricted to the listed positions along
// dim. The dimension is kept.
func (v *Variable) Take(dim string, indexes []int) (*Variable, error) {
	axis := v.dimIndex(dim)
	if axis < 0 {
		return v, nil
	}
	o := &Variable{Name: v.Name, Dims: append([]string{}, v.Dims...), Attrs: v.Attrs}
	if v.Data != nil {
		a, err := takeIndexes(v.Data, axis, indexes)
		if err != nil {
			return nil, fmt.Errorf("explorer: subsetting %s along %s: %v", v.Name, dim, err)
		}
		o.Data = a
		return o, nil
	}
	for _, i := range indexes {
		if i < 0 || i >= len(v.Text) {
			return nil, fmt.Errorf("explorer: index %d out of range for %s", i, v.Name)
		}
		o.Text = append(o.Text, v.Text[i])
	}
	return o, nil
}

// Squeeze returns the variable with all dimensions of length 1 removed.
func (v *Variable) Squeeze() *Variable {
	if v.Data == nil {
		return v
	}
	var dims []string
	var shape []int
	for i, l := range v.Data.Shape {
		if l != 1 {
			dims = append(dims, v.Dims[i])
			shape = append(shape, l)
		}
	}
	if len(dims) == len(v.Dims) {
		return v
	}
	return &Variable{Name: v.Name, Dims: dims, Data: reshape(v.Data, shape), Attrs: v.Attrs}
}

// Dataset is a collection of variables that share a set of named
// dimensions.
type Dataset struct {
	dimNames []string
	dims     map[string]int
	varNames []string
	vars     map[string]*Variable

	// Attrs holds the global attributes.
	Attrs map[string]interface{}
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		dims:  make(map[string]int),
		vars:  make(map[string]*Variable),
		Attrs: make(map[string]interface{}),
	}
}

// AddDim adds a dimension to the dataset. Adding an existing dimension
// with a different length is an error.
func (ds *Dataset) AddDim(name string, length int) error {
	if l, ok := ds.dims[name]; ok {
		if l != length {
			return fmt.Errorf("explorer: dimension %s has length %d, not %d", name, l, length)
		}
		return nil
	}
	ds.dims[name] = length
	ds.dimNames = append(ds.dimNames, name)
	return nil
}

// Set adds or replaces a variable. Dimensions that the dataset does not
// yet have are added.
func (ds *Dataset) Set(v *Variable) error {
	shape := v.Shape()
	if len(shape) != len(v.Dims) {
		return fmt.Errorf("explorer: variable %s has dimensions %v but shape %v", v.Name, v.Dims, shape)
	}
	for i, d := range v.Dims {
		if err := ds.AddDim(d, shape[i]); err != nil {
			return fmt.Errorf("explorer: setting variable %s: %v", v.Name, err)
		}
	}
	if _, ok := ds.vars[v.Name]; !ok {
		ds.varNames = append(ds.varNames, v.Name)
	}
	ds.vars[v.Name] = v
	return nil
}

// Var returns the named variable.
func (ds *Dataset) Var(name string) (*Variable, error) {
	v, ok := ds.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoVariable, name)
	}
	return v, nil
}

// Has returns whether the dataset contains the named variable.
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.vars[name]
	return ok
}

// Variables returns the variable names in the order they were added.
func (ds *Dataset) Variables() []string {
	return append([]string{}, ds.varNames...)
}

// Dims returns the dimension names in the order they were added.
func (ds *Dataset) Dims() []string {
	return append([]string{}, ds.dimNames...)
}

// Size returns the length of the named dimension, or 0 if the dataset
// does not have it.
func (ds *Dataset) Size(dim string) int {
	return ds.dims[dim]
}

// HasDim returns whether the dataset has the named dimension.
func (ds *Dataset) HasDim(dim string) bool {
	_, ok := ds.dims[dim]
	return ok
}

// Isel returns a new dataset where every variable is indexed by position
// along the selected dimensions, which are removed.
func (ds *Dataset) Isel(sel map[string]int) (*Dataset, error) {
	o := NewDataset()
	o.Attrs = ds.Attrs
	for _, d := range ds.dimNames {
		if _, ok := sel[d]; !ok {
			o.AddDim(d, ds.dims[d])
		}
	}
	for _, name := range ds.varNames {
		v, err := ds.vars[name].Isel(sel)
		if err != nil {
			return nil, err
		}
		if err := o.Set(v); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Subset returns a new dataset restricted to the listed positions along
// dim.
func (ds *Dataset) Subset(dim string, indexes []int) (*Dataset, error) {
	o := NewDataset()
	o.Attrs = ds.Attrs
	for _, d := range ds.dimNames {
		l := ds.dims[d]
		if d == dim {
			l = len(indexes)
		}
		o.AddDim(d, l)
	}
	for _, name := range ds.varNames {
		v, err := ds.vars[name].Take(dim, indexes)
		if err != nil {
			return nil, err
		}
		if err := o.Set(v); err != nil {
			return nil, err
		}
	}
	return o, nil
}
