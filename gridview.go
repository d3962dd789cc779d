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
	"html/template"
	"os"
	"path/filepath"
	"sort"
)

var gridViewTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
img { image-rendering: pixelated; }
table.grid td, table.grid th { vertical-align: top; padding: 2px; }
table.info td { font-size: small; }
</style>
</head>
<body{{if .MaxZoom}} data-max-zoom="{{.MaxZoom}}"{{end}}>
<span>{{.Title}}</span>
{{- if .Download}}
<span class="spacer">|</span> <a href="{{.Download}}" download="{{.Download}}">download netcdf</a>
{{- end}}
{{- if .FilterControls}}
<label for="month_filter">Month</label>
<select id="month_filter" onchange="filterMonth(this.value)">
<option value="">all</option>
{{- range .Months}}
<option value="{{.}}">{{.}}</option>
{{- end}}
</select>
<script>
function filterMonth(m) {
  document.querySelectorAll("tr.scene").forEach(function(r) {
    r.style.display = (m === "" || r.dataset.month === m) ? "" : "none";
  });
}
</script>
{{- end}}
{{- range .Timeseries}}
<span class="spacer">|</span> <a href="{{.CSVURL}}">{{.Name}} timeseries</a>
{{- end}}
<table class="grid">
<tr>
<th>Index</th>
{{- if .HasInfo}}<th>Info</th>{{end}}
{{- range .Columns}}
<th>{{.Label}}{{if .Legend}}<br><img src="{{.Legend}}" alt="{{.Label}} legend">{{end}}</th>
{{- end}}
</tr>
{{- range .Rows}}
<tr class="scene" data-month="{{.Month}}">
<td>{{.Pos}}{{if .Timestamp}}<br>{{.Timestamp}}{{end}}</td>
{{- if $.HasInfo}}
<td><table class="info">{{range .Info}}<tr><td>{{.Key}}</td><td>{{.Value}}</td></tr>{{end}}</table></td>
{{- end}}
{{- range .Images}}
<td>{{if .}}<img src="{{.}}" loading="lazy"{{if $.ImageWidth}} width="{{$.ImageWidth}}"{{end}}>{{end}}</td>
{{- end}}
</tr>
{{- end}}
</table>
</body>
</html>
`))

type gridColumn struct {
	Name, Label, Legend string
}

type gridRow struct {
	Pos       int
	Timestamp string
	Month     string
	Info      []KeyValue
	Images    []string
}

// writeGridView writes index.html, a static table of the images of each
// scene with one column per layer shown in the grid view.
func (g *Generator) writeGridView(index *SceneIndex, legends map[string]string, timeseries []Timeseries) error {
	data := struct {
		Title          string
		Download       string
		FilterControls bool
		MaxZoom        float64
		ImageWidth     int
		HasInfo        bool
		Months         []string
		Columns        []gridColumn
		Rows           []gridRow
		Timeseries     []Timeseries
	}{
		Title:          g.Title,
		Download:       g.DownloadFilename,
		FilterControls: g.FilterControls,
		MaxZoom:        g.cfg.Image.MaxZoom,
		ImageWidth:     g.cfg.Image.GridWidth,
		HasInfo:        len(g.cfg.Info) > 0,
		Timeseries:     timeseries,
	}
	grid := flattenLayers(g.layers, true, false)
	for i := len(grid) - 1; i >= 0; i-- {
		l := grid[i]
		data.Columns = append(data.Columns, gridColumn{Name: l.Name(), Label: l.Label(), Legend: legends[l.Name()]})
	}
	months := make(map[string]bool)
	for _, s := range index.Index {
		r := gridRow{Pos: s.Pos, Timestamp: s.Timestamp}
		if len(s.Timestamp) >= 7 {
			r.Month = s.Timestamp[5:7]
			months[r.Month] = true
		}
		for _, kv := range g.cfg.Info {
			if v, ok := s.Info[kv.Key]; ok {
				r.Info = append(r.Info, KeyValue{Key: kv.Key, Value: v})
			}
		}
		for _, c := range data.Columns {
			r.Images = append(r.Images, s.ImageSrcs[c.Name])
		}
		data.Rows = append(data.Rows, r)
	}
	for m := range months {
		data.Months = append(data.Months, m)
	}
	sort.Strings(data.Months)

	f, err := os.Create(filepath.Join(g.OutputFolder, "index.html"))
	if err != nil {
		return fmt.Errorf("explorer: creating index.html: %v", err)
	}
	if err := gridViewTemplate.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("explorer: writing index.html: %v", err)
	}
	g.log().Infof("writing %s", f.Name())
	return f.Close()
}
