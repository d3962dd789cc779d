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

// Command ncexplorer builds static HTML viewers for NetCDF datasets.
package main

import (
	"fmt"
	"os"

	"github.com/surftemp/netcdf-explorer/explorerutil"
)

func main() {
	if err := explorerutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
