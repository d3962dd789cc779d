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
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context/ctxhttp"
)

// WMS fetches each image from a Web Map Service. The URL template may
// contain the tokens {WIDTH}, {HEIGHT}, {XMIN}, {XMAX}, {YMIN} and
// {YMAX}, which are replaced by the image size and the bounds of the
// scene.
//
// Every URL is requested at most once per run: a URL that was fetched
// before is copied from the earlier file, and a URL that failed before
// is skipped.
type WMS struct {
	layerBase
	url   string
	scale float64

	mu      sync.Mutex
	cache   map[string]string
	failed  map[string]bool
	fetches int
}

// URL returns the URL template.
func (l *WMS) URL() string { return l.url }

func (l *WMS) Check(ds *Dataset) error {
	if err := l.check(ds); err != nil {
		return err
	}
	if l.caseDimension != "" {
		for _, name := range []string{l.xCoordinate, l.yCoordinate} {
			if v, err := ds.Var(name); err == nil && v.HasDim(l.caseDimension) {
				l.caseWise = true
			}
		}
	}
	return nil
}

// Bounds returns the extent of the x and y coordinates of ds, padded by
// half the coordinate spacing on each side.
func (l *WMS) Bounds(ds *Dataset) (orb.Bound, error) {
	xc, err := coords(ds, l.xCoordinate, l.caseDimension, 0)
	if err != nil {
		return orb.Bound{}, err
	}
	yc, err := coords(ds, l.yCoordinate, l.caseDimension, 0)
	if err != nil {
		return orb.Bound{}, err
	}
	xmin, xmax, err := paddedRange(xc)
	if err != nil {
		return orb.Bound{}, err
	}
	ymin, ymax, err := paddedRange(yc)
	if err != nil {
		return orb.Bound{}, err
	}
	return orb.Bound{Min: orb.Point{xmin, ymin}, Max: orb.Point{xmax, ymax}}, nil
}

func paddedRange(v *Variable) (lo, hi float64, err error) {
	e := v.Values()
	if len(e) < 2 {
		return 0, 0, fmt.Errorf("explorer: coordinate %s needs at least 2 values to compute bounds", v.Name)
	}
	spacing := math.Abs(e[0] - e[1])
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range e {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo - spacing/2, hi + spacing/2, nil
}

// requestURL fills in the URL template for ds.
func (l *WMS) requestURL(ds *Dataset) (string, error) {
	w, h, err := l.conv.ImageDimensions(ds)
	if err != nil {
		return "", err
	}
	b, err := l.Bounds(ds)
	if err != nil {
		return "", err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	r := strings.NewReplacer(
		"{WIDTH}", f(float64(w)*l.scale),
		"{HEIGHT}", f(float64(h)*l.scale),
		"{YMIN}", f(b.Min.Y()),
		"{YMAX}", f(b.Max.Y()),
		"{XMIN}", f(b.Min.X()),
		"{XMAX}", f(b.Max.X()),
	)
	return r.Replace(l.url), nil
}

func (l *WMS) Build(ctx context.Context, ds *Dataset, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("explorer: layer %s: %v", l.name, err)
	}
	url, err := l.requestURL(ds)
	if err != nil {
		return fmt.Errorf("explorer: layer %s: %v", l.name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache == nil {
		l.cache = make(map[string]string)
		l.failed = make(map[string]bool)
	}
	if cached, ok := l.cache[url]; ok {
		return copyFile(cached, path)
	}
	if l.failed[url] {
		return nil
	}
	l.fetches++
	if err := l.fetch(ctx, url, path); err != nil {
		l.conv.log().WithFields(logrus.Fields{"layer": l.name, "url": url}).Warnf("WMS request failed: %v", err)
		l.failed[url] = true
		return nil
	}
	l.cache[url] = path
	return nil
}

func (l *WMS) fetch(ctx context.Context, url, path string) error {
	client := l.conv.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultWMSTimeout}
	}
	resp, err := ctxhttp.Get(ctx, client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("explorer: copying %s: %v", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("explorer: copying %s: %v", src, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("explorer: copying %s: %v", src, err)
	}
	return out.Close()
}
