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
	"math/rand"
)

// SampleCases restricts ds to some of its cases. If cases is not empty,
// only the listed case indexes are kept; if count is positive and fewer
// than the available cases, count of them are then chosen at random
// using rng. It returns the dataset and the original indexes of the kept
// cases.
func SampleCases(ds *Dataset, caseDim string, count int, cases []int, rng *rand.Rand) (*Dataset, []int, error) {
	n := ds.Size(caseDim)
	if !ds.HasDim(caseDim) {
		return nil, nil, fmt.Errorf("explorer: dataset has no case dimension %q", caseDim)
	}
	selected := make([]int, n)
	for i := range selected {
		selected[i] = i
	}
	if len(cases) > 0 {
		for _, c := range cases {
			if c < 0 || c >= n {
				return nil, nil, fmt.Errorf("explorer: sample case %d out of range for %d cases", c, n)
			}
		}
		selected = append([]int{}, cases...)
	}
	if count > 0 && count < len(selected) {
		if rng == nil {
			rng = rand.New(rand.NewSource(rand.Int63()))
		}
		perm := rng.Perm(len(selected))[:count]
		chosen := make([]int, count)
		for i, p := range perm {
			chosen[i] = selected[p]
		}
		selected = chosen
	}
	if len(cases) == 0 && count <= 0 {
		return ds, selected, nil
	}
	sub, err := ds.Subset(caseDim, selected)
	if err != nil {
		return nil, nil, err
	}
	return sub, selected, nil
}
