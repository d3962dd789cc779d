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

// Package colour maps array values to pixel colours for the explorer
// image layers.
package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// named holds the colours that can be referred to by name in
// mask and discrete layer definitions.
var named = map[string]color.NRGBA{
	"violet":      {R: 238, G: 130, B: 238, A: 255},
	"magenta":     {R: 255, G: 0, B: 255, A: 255},
	"purple":      {R: 128, G: 0, B: 128, A: 255},
	"indigo":      {R: 75, G: 0, B: 130, A: 255},
	"pink":        {R: 255, G: 192, B: 203, A: 255},
	"crimson":     {R: 220, G: 20, B: 60, A: 255},
	"darkred":     {R: 139, G: 0, B: 0, A: 255},
	"red":         {R: 255, G: 0, B: 0, A: 255},
	"darkorange":  {R: 255, G: 140, B: 0, A: 255},
	"orange":      {R: 255, G: 165, B: 0, A: 255},
	"yellow":      {R: 255, G: 255, B: 0, A: 255},
	"lightyellow": {R: 255, G: 255, B: 224, A: 255},
	"gold":        {R: 255, G: 215, B: 0, A: 255},
	"brown":       {R: 165, G: 42, B: 42, A: 255},
	"lightgreen":  {R: 144, G: 238, B: 144, A: 255},
	"green":       {R: 0, G: 128, B: 0, A: 255},
	"darkgreen":   {R: 0, G: 100, B: 0, A: 255},
	"cyan":        {R: 0, G: 255, B: 255, A: 255},
	"lightblue":   {R: 173, G: 216, B: 230, A: 255},
	"blue":        {R: 0, G: 0, B: 255, A: 255},
	"darkblue":    {R: 0, G: 0, B: 139, A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"lightgray":   {R: 211, G: 211, B: 211, A: 255},
	"darkgray":    {R: 169, G: 169, B: 169, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"black":       {R: 0, G: 0, B: 0, A: 255},
}

// UnknownColourError is returned when a colour name is neither one of
// the named colours nor a "#rrggbb" hex string.
type UnknownColourError struct {
	Name string
}

func (e *UnknownColourError) Error() string {
	return fmt.Sprintf("colour: unknown colour %q", e.Name)
}

// Lookup returns the opaque colour with the given name. Names are either
// one of the named colours (e.g. "darkgreen") or a hex string in the
// form "#rrggbb".
func Lookup(name string) (color.NRGBA, error) {
	if c, ok := named[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
		}
	}
	return color.NRGBA{}, &UnknownColourError{Name: name}
}
