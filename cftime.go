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
	"math"
	"strconv"
	"strings"
	"time"
)

var referenceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-1-2 15:4:5",
	"2006-01-02",
	"2006-1-2",
}

// parseTimeUnits parses CF-convention time units such as
// "days since 1981-01-01 00:00:00".
func parseTimeUnits(units string) (step time.Duration, ref time.Time, err error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, ref, fmt.Errorf("explorer: time units %q are not in the form '<unit> since <date>'", units)
	}
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	case "weeks", "week":
		step = 7 * 24 * time.Hour
	default:
		return 0, ref, fmt.Errorf("explorer: unsupported time unit %q", parts[0])
	}
	date := strings.TrimSpace(parts[1])
	date = strings.TrimSuffix(date, " UTC")
	if i := strings.Index(date, "."); i > 0 && !strings.ContainsAny(date[i:], "+-Z") {
		// Fractional seconds are dropped.
		date = date[:i]
	}
	for _, layout := range referenceLayouts {
		if ref, err = time.Parse(layout, date); err == nil {
			return step, ref.UTC(), nil
		}
	}
	return 0, ref, fmt.Errorf("explorer: unable to parse reference date in time units %q", units)
}

// Timestamps returns a text rendering of each value of a time
// coordinate. Text variables are returned as they are; numeric
// variables with CF time units are decoded to "YYYY-MM-DDTHH:MM:SS";
// other numeric values are formatted as numbers.
func Timestamps(v *Variable) ([]string, error) {
	if v.Data == nil {
		return append([]string{}, v.Text...), nil
	}
	o := make([]string, len(v.Data.Elements))
	units := attrString(v.Attrs, "units")
	if !strings.Contains(units, " since ") {
		for i, e := range v.Data.Elements {
			o[i] = strconv.FormatFloat(e, 'f', -1, 64)
		}
		return o, nil
	}
	step, ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, fmt.Errorf("explorer: decoding time variable %s: %v", v.Name, err)
	}
	for i, e := range v.Data.Elements {
		if math.IsNaN(e) {
			continue
		}
		secs := e * step.Seconds()
		whole := math.Floor(secs)
		t := time.Unix(ref.Unix()+int64(whole), int64(math.Round((secs-whole)*1e9))).UTC()
		o[i] = t.Format("2006-01-02T15:04:05")
	}
	return o, nil
}

// timestamp truncates a rendered time value to its date part.
func timestamp(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
