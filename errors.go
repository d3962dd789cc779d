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

// ConfigError reports a layer definition that cannot be used, such as an
// unknown layer type, an unknown colour or nested layer groups. It is
// fatal for a run.
type ConfigError struct {
	Layer string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("explorer: layer %s: %s", e.Layer, e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// CheckError reports why a layer cannot be drawn from a particular
// dataset, for example because a variable is missing. Layers that fail
// their check are left out of the output.
type CheckError struct {
	Layer  string
	Reason string
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("explorer: unable to add layer %s: %s", e.Layer, e.Reason)
}

func (e *CheckError) Unwrap() error { return e.Err }

// ShapeError reports that the data for a layer is not 2-dimensional after
// selection and squeezing.
type ShapeError struct {
	Layer string
	Dims  []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("explorer: data for layer %s is not 2D (dimensions %v)", e.Layer, e.Dims)
}
