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
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ctessum/sparse"
)

// EncodeData writes a 2D array as a gzip-compressed stream holding the
// height and width as little-endian int32 values followed by the
// row-major values as little-endian float32.
func EncodeData(w io.Writer, a *sparse.DenseArray) error {
	if len(a.Shape) != 2 {
		return fmt.Errorf("explorer: encoded data must be 2D, not shape %v", a.Shape)
	}
	gz := gzip.NewWriter(w)
	buf := make([]byte, 8+4*len(a.Elements))
	binary.LittleEndian.PutUint32(buf[0:], uint32(int32(a.Shape[0])))
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(a.Shape[1])))
	for i, v := range a.Elements {
		binary.LittleEndian.PutUint32(buf[8+4*i:], math.Float32bits(float32(v)))
	}
	if _, err := gz.Write(buf); err != nil {
		return fmt.Errorf("explorer: encoding data: %v", err)
	}
	return gz.Close()
}

// DecodeData reads an array written by EncodeData.
func DecodeData(r io.Reader) (*sparse.DenseArray, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("explorer: decoding data: %v", err)
	}
	defer gz.Close()
	var dims [2]int32
	if err := binary.Read(gz, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("explorer: decoding data header: %v", err)
	}
	if dims[0] < 0 || dims[1] < 0 {
		return nil, fmt.Errorf("explorer: invalid encoded data dimensions %v", dims)
	}
	vals := make([]float32, int(dims[0])*int(dims[1]))
	if err := binary.Read(gz, binary.LittleEndian, vals); err != nil {
		return nil, fmt.Errorf("explorer: decoding data values: %v", err)
	}
	a := sparse.ZerosDense(int(dims[0]), int(dims[1]))
	for i, v := range vals {
		a.Elements[i] = float64(v)
	}
	return a, nil
}

func writeDataFile(path string, a *sparse.DenseArray) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("explorer: creating data file: %v", err)
	}
	if err := EncodeData(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
