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
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
)

// OpenNetCDF reads the NetCDF (classic format) file at path into a
// Dataset.
func OpenNetCDF(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("explorer: opening input data: %v", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("explorer: opening input data: %v", err)
	}
	return LoadNetCDF(f, fi.Size())
}

// LoadNetCDF reads every variable in the NetCDF file rw, of length size
// bytes, into a Dataset. Values equal to the variable's _FillValue or
// missing_value attributes become NaN and the scale_factor and
// add_offset attributes are applied. Character variables are read as
// one string per element of their leading dimension.
func LoadNetCDF(rw cdf.ReaderWriterAt, size int64) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
	}
	h := f.Header
	nrec := int(h.NumRecs(size))

	ds := NewDataset()
	for _, a := range h.Attributes("") {
		ds.Attrs[a] = h.GetAttribute("", a)
	}
	dimNames := h.Dimensions("")
	for i, l := range h.Lengths("") {
		if l == 0 {
			l = nrec
		}
		if err := ds.AddDim(dimNames[i], l); err != nil {
			return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
		}
	}

	for _, name := range h.Variables() {
		dims := h.Dimensions(name)
		lengths := append([]int{}, h.Lengths(name)...)
		var end []int
		if h.IsRecordVariable(name) {
			lengths[0] = nrec
			end = make([]int, len(lengths))
			for i, l := range lengths {
				end[i] = l - 1
			}
		}
		n := 1
		for _, l := range lengths {
			n *= l
		}
		attrs := make(map[string]interface{})
		for _, a := range h.Attributes(name) {
			attrs[a] = h.GetAttribute(name, a)
		}
		if n == 0 {
			v, err := NewVariable(name, dims, lengths, nil)
			if err != nil {
				return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
			}
			v.Attrs = attrs
			if err := ds.Set(v); err != nil {
				return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
			}
			continue
		}
		r := f.Reader(name, nil, end)

		if _, isChar := h.ZeroValue(name, 0).(string); isChar {
			buf := make([]byte, n)
			if _, err := r.Read(buf); err != nil {
				return nil, fmt.Errorf("explorer.LoadNetCDF: reading %s: %v", name, err)
			}
			v, ok := textVariable(name, dims, lengths, buf)
			if !ok {
				continue
			}
			v.Attrs = attrs
			if err := ds.Set(v); err != nil {
				return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
			}
			continue
		}

		v, err := NewVariable(name, dims, lengths, nil)
		if err != nil {
			return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
		}
		v.Attrs = attrs
		if err := readNumeric(r, h.ZeroValue(name, n), v.Data.Elements); err != nil {
			return nil, fmt.Errorf("explorer.LoadNetCDF: reading %s: %v", name, err)
		}
		unpack(v)
		if err := ds.Set(v); err != nil {
			return nil, fmt.Errorf("explorer.LoadNetCDF: %v", err)
		}
	}
	return ds, nil
}

// readNumeric reads typed values from r and converts them to float64.
func readNumeric(r cdf.Reader, tmp interface{}, dst []float64) error {
	if _, err := r.Read(tmp); err != nil {
		return err
	}
	switch t := tmp.(type) {
	case []uint8:
		for i, e := range t {
			dst[i] = float64(int8(e))
		}
	case []int16:
		for i, e := range t {
			dst[i] = float64(e)
		}
	case []int32:
		for i, e := range t {
			dst[i] = float64(e)
		}
	case []float32:
		for i, e := range t {
			dst[i] = float64(e)
		}
	case []float64:
		copy(dst, t)
	default:
		return fmt.Errorf("unsupported data type %T", tmp)
	}
	return nil
}

// textVariable converts character data, whose last dimension is the
// string length, into a text variable. Only scalar and 1D strings are
// supported.
func textVariable(name string, dims []string, lengths []int, buf []byte) (*Variable, bool) {
	if len(dims) == 0 || len(dims) > 2 {
		return nil, false
	}
	strlen := lengths[len(lengths)-1]
	v := &Variable{Name: name, Dims: append([]string{}, dims[:len(dims)-1]...)}
	for i := 0; i+strlen <= len(buf); i += strlen {
		v.Text = append(v.Text, strings.TrimRight(string(buf[i:i+strlen]), "\x00 "))
	}
	return v, true
}

// attrFloat returns the first value of a numeric attribute.
func attrFloat(attrs map[string]interface{}, name string) (float64, bool) {
	switch t := attrs[name].(type) {
	case []uint8:
		if len(t) > 0 {
			return float64(int8(t[0])), true
		}
	case []int16:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	case []int32:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	case []float32:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	case []float64:
		if len(t) > 0 {
			return t[0], true
		}
	}
	return 0, false
}

// attrString returns the value of a text attribute.
func attrString(attrs map[string]interface{}, name string) string {
	s, _ := attrs[name].(string)
	return strings.TrimRight(s, "\x00")
}

// unpack masks fill values and applies scaling attributes.
func unpack(v *Variable) {
	var missing []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		if m, ok := attrFloat(v.Attrs, a); ok {
			missing = append(missing, m)
		}
	}
	scale, hasScale := attrFloat(v.Attrs, "scale_factor")
	offset, hasOffset := attrFloat(v.Attrs, "add_offset")
	if !hasScale {
		scale = 1
	}
	if len(missing) == 0 && !hasScale && !hasOffset {
		return
	}
	for i, e := range v.Data.Elements {
		isMissing := false
		for _, m := range missing {
			if e == m || float64(float32(e)) == float64(float32(m)) {
				isMissing = true
			}
		}
		if isMissing {
			v.Data.Elements[i] = math.NaN()
			continue
		}
		v.Data.Elements[i] = e*scale + offset
	}
}

// WriteNetCDF writes ds to w in NetCDF classic format. Numeric variables
// are written as doubles and text variables as characters with an extra
// string length dimension.
func WriteNetCDF(w *os.File, ds *Dataset) error {
	dims := ds.Dims()
	lengths := make([]int, len(dims))
	for i, d := range dims {
		lengths[i] = ds.Size(d)
		if lengths[i] == 0 {
			return fmt.Errorf("explorer: cannot write zero-length dimension %s", d)
		}
	}
	strlens := make(map[string]int)
	for _, name := range ds.Variables() {
		v := ds.vars[name]
		if v.Data != nil {
			continue
		}
		l := 1
		for _, s := range v.Text {
			if len(s) > l {
				l = len(s)
			}
		}
		strlens[name] = l
		dims = append(dims, name+"_strlen")
		lengths = append(lengths, l)
	}

	h := cdf.NewHeader(dims, lengths)
	for _, a := range sortedKeys(ds.Attrs) {
		if val := ds.Attrs[a]; cdfAttribute(val) {
			h.AddAttribute("", a, val)
		}
	}
	for _, name := range ds.Variables() {
		v := ds.vars[name]
		if v.Data != nil {
			h.AddVariable(name, v.Dims, []float64{0})
		} else {
			h.AddVariable(name, append(append([]string{}, v.Dims...), name+"_strlen"), "")
		}
		for _, a := range sortedKeys(v.Attrs) {
			if a == "_FillValue" || a == "missing_value" || a == "scale_factor" || a == "add_offset" {
				// Values are written unpacked.
				continue
			}
			if val := v.Attrs[a]; cdfAttribute(val) {
				h.AddAttribute(name, a, val)
			}
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("explorer: writing netcdf header: %v", err)
	}
	for _, name := range ds.Variables() {
		v := ds.vars[name]
		wr := f.Writer(name, nil, nil)
		if v.Data != nil {
			if len(v.Data.Elements) == 0 {
				continue
			}
			if err := writeVariable(wr, v.Data.Elements, len(v.Data.Elements)); err != nil {
				return fmt.Errorf("explorer: writing variable %s to netcdf file: %v", name, err)
			}
			continue
		}
		l := strlens[name]
		buf := make([]byte, 0, l*len(v.Text))
		for _, s := range v.Text {
			b := make([]byte, l)
			copy(b, s)
			buf = append(buf, b...)
		}
		if err := writeVariable(wr, buf, len(buf)); err != nil {
			return fmt.Errorf("explorer: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeVariable writes n values of a fixed-size variable. The writer
// reports io.EOF when it reaches the end of the variable, which is only an
// error if values are left over.
func writeVariable(wr cdf.Writer, values interface{}, n int) error {
	written, err := wr.Write(values)
	if err == io.EOF && written == n {
		return nil
	}
	if err != nil {
		return err
	}
	if written != n {
		return fmt.Errorf("wrote %d of %d values", written, n)
	}
	return nil
}

// sortedKeys returns the keys of m in sorted order so that files are
// written the same way every time.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cdfAttribute(val interface{}) bool {
	switch val.(type) {
	case string, []uint8, []int16, []int32, []float32, []float64:
		return true
	}
	return false
}
