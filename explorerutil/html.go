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

package explorerutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	explorer "github.com/surftemp/netcdf-explorer"
	"github.com/surftemp/netcdf-explorer/cloud"
)

// HTMLOptions holds the settings of the html command.
type HTMLOptions struct {
	// InputPath is a local NetCDF file or a blob URL.
	InputPath string

	// ConfigPath is the layer configuration file.
	ConfigPath string

	OutputFolder string
	Title        string

	// SampleCount and SampleCases restrict the rendered cases.
	// See explorer.SampleCases.
	SampleCount int
	SampleCases []int

	// Seed seeds case sampling. Zero uses the current time.
	Seed int64

	// DownloadData writes the rendered dataset into the output folder.
	DownloadData bool

	FilterControls bool

	// ColourMapDir, if set, replaces the configured colour map directory.
	ColourMapDir string

	// UploadTo, if set, is a blob URL the output folder is copied to.
	UploadTo string

	// WMSTimeout limits each WMS request. Zero keeps the default.
	WMSTimeout time.Duration

	Log logrus.FieldLogger
}

// HTML loads the dataset and layer configuration described by o,
// renders the viewer into o.OutputFolder and optionally uploads it.
func HTML(ctx context.Context, o *HTMLOptions) (*explorer.SceneIndex, error) {
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if o.InputPath == "" {
		return nil, fmt.Errorf("explorerutil: input-path must be set")
	}
	if o.ConfigPath == "" {
		return nil, fmt.Errorf("explorerutil: config-path must be set")
	}
	cfg, err := explorer.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Dimensions.Case == "" {
		return nil, fmt.Errorf("explorerutil: the layer configuration must set dimensions.case")
	}
	if o.ColourMapDir != "" {
		cfg.ColourMapDir = os.ExpandEnv(o.ColourMapDir)
	}

	input, cleanup, err := localInput(ctx, os.ExpandEnv(o.InputPath))
	if err != nil {
		return nil, err
	}
	defer cleanup()
	ds, err := explorer.OpenNetCDF(input)
	if err != nil {
		return nil, err
	}

	if o.SampleCount > 0 || len(o.SampleCases) > 0 {
		seed := o.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		var kept []int
		ds, kept, err = explorer.SampleCases(ds, cfg.Dimensions.Case, o.SampleCount, o.SampleCases, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		log.WithField("cases", kept).Info("sampled cases")
	}

	output := os.ExpandEnv(o.OutputFolder)
	if err := os.MkdirAll(output, os.ModePerm); err != nil {
		return nil, fmt.Errorf("explorerutil: creating output folder: %v", err)
	}
	g, err := explorer.NewGenerator(cfg, ds, output, o.Title)
	if err != nil {
		return nil, err
	}
	g.Log = log
	g.FilterControls = o.FilterControls
	g.Converter().Log = log
	if o.WMSTimeout > 0 {
		g.Converter().HTTPClient.Timeout = o.WMSTimeout
	}

	if o.DownloadData {
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".nc"
		if err := writeDataset(filepath.Join(output, name), ds); err != nil {
			return nil, err
		}
		g.DownloadFilename = name
	}

	index, err := g.Run(ctx)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"folder": output,
		"scenes": len(index.Index),
	}).Info("viewer written")

	if o.UploadTo != "" {
		n, err := cloud.UploadDir(ctx, output, os.ExpandEnv(o.UploadTo))
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"files": n, "destination": o.UploadTo}).Info("viewer uploaded")
	}
	return index, nil
}

// localInput returns a local path for input, downloading it to a
// temporary directory first if it is a blob URL. The returned function
// removes any temporary files.
func localInput(ctx context.Context, input string) (string, func(), error) {
	if !cloud.IsBlob(input) {
		return input, func() {}, nil
	}
	dir, err := ioutil.TempDir("", "ncexplorer")
	if err != nil {
		return "", nil, fmt.Errorf("explorerutil: %v", err)
	}
	cleanup := func() { os.RemoveAll(dir) }
	p, err := cloud.Download(ctx, input, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return p, cleanup, nil
}

func writeDataset(p string, ds *explorer.Dataset) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("explorerutil: creating data download: %v", err)
	}
	if err := explorer.WriteNetCDF(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Describe writes a summary of the dimensions and variables of the
// dataset at input to w.
func Describe(ctx context.Context, w io.Writer, input string) error {
	if input == "" {
		return fmt.Errorf("explorerutil: input-path must be set")
	}
	p, cleanup, err := localInput(ctx, os.ExpandEnv(input))
	if err != nil {
		return err
	}
	defer cleanup()
	ds, err := explorer.OpenNetCDF(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "dimensions:")
	for _, d := range ds.Dims() {
		fmt.Fprintf(w, "\t%s = %d\n", d, ds.Size(d))
	}
	fmt.Fprintln(w, "variables:")
	for _, name := range ds.Variables() {
		v, err := ds.Var(name)
		if err != nil {
			return err
		}
		kind := "double"
		if v.Data == nil {
			kind = "char"
		}
		fmt.Fprintf(w, "\t%s %s(%s)\n", kind, name, strings.Join(v.Dims, ", "))
		keys := make([]string, 0, len(v.Attrs))
		for k := range v.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "\t\t%s:%s = %v\n", name, k, v.Attrs[k])
		}
	}
	return nil
}
