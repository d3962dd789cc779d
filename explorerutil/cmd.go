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

// Package explorerutil contains the command-line interface for
// netcdf-explorer.
package explorerutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	explorer "github.com/surftemp/netcdf-explorer"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the commands.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the location of a file holding values for the
              options below.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log-level",
			usage: `
              log-level is the minimum level of log messages that are shown:
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "input-path",
			usage: `
              input-path is the NetCDF file to explore. It can be a local path or
              a blob storage URL (gs://, s3:// or file://).`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "title",
			usage: `
              title is shown at the top of the generated pages.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "output-folder",
			usage: `
              output-folder is the directory the viewer is written to.`,
			shorthand:  "o",
			defaultVal: "html_output",
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "config-path",
			usage: `
              config-path is the layer configuration file (.yaml, .yml, .json or
              .toml).`,
			shorthand:  "c",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "sample-count",
			usage: `
              sample-count is the number of cases chosen at random from the
              dataset. Zero or less keeps every case.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "sample-cases",
			usage: `
              sample-cases lists the case indexes to keep.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "seed",
			usage: `
              seed is the random seed used with sample-count. Zero uses the
              current time.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "download-data",
			usage: `
              download-data writes a copy of the explored dataset next to the
              viewer and links it from the pages.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "filter-controls",
			usage: `
              filter-controls adds month filters to the grid view.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "cmap-dir",
			usage: `
              cmap-dir is a directory of colour map files. It overrides the
              cmaps setting of the layer configuration.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "upload-to",
			usage: `
              upload-to is a blob storage URL the output folder is copied to
              once it is complete.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
		{
			name: "wms-timeout",
			usage: `
              wms-timeout is the time limit in seconds for each WMS image
              request.`,
			defaultVal: explorer.DefaultWMSTimeout.Seconds(),
			flagsets:   []*pflag.FlagSet{htmlCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("NCEXPLORER")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // The flag only needs to be created once.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(htmlCmd)
	Root.AddCommand(describeCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("explorerutil: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("explorerutil: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	return nil
}

// toIntSliceE converts an integer list option. Values set on the command
// line arrive as the flag's string form, e.g. "[0,2]".
func toIntSliceE(v interface{}) ([]int, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToIntSliceE(v)
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil, nil
	}
	var o []int
	if err := json.Unmarshal([]byte(s), &o); err == nil {
		return o, nil
	}
	for _, f := range strings.Split(strings.Trim(s, "[]"), ",") {
		i, err := cast.ToIntE(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		o = append(o, i)
	}
	return o, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ncexplorer",
	Short: "Static HTML viewers for NetCDF datasets.",
	Long: `ncexplorer renders the cases of a NetCDF dataset into a folder of images,
binary data files and JSON indexes that a static viewer page can browse.
Use the subcommands specified below to access the functionality.

Options can be set by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'NCEXPLORER_var' where 'var' is the
name of the option to be set. The layers themselves are described in a separate
file given by --config-path.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ncexplorer.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ncexplorer v%s\n", explorer.Version)
	},
	DisableAutoGenTag: true,
}

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Generate a viewer for a dataset",
	Long: `html renders every case of the dataset at input-path with the layers
described in config-path and writes the viewer to output-folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := toIntSliceE(Cfg.Get("sample-cases"))
		if err != nil {
			return fmt.Errorf("explorerutil: invalid sample-cases: %v", err)
		}
		_, err = HTML(context.Background(), &HTMLOptions{
			InputPath:      Cfg.GetString("input-path"),
			ConfigPath:     Cfg.GetString("config-path"),
			OutputFolder:   Cfg.GetString("output-folder"),
			Title:          Cfg.GetString("title"),
			SampleCount:    Cfg.GetInt("sample-count"),
			SampleCases:    cases,
			Seed:           cast.ToInt64(Cfg.Get("seed")),
			DownloadData:   Cfg.GetBool("download-data"),
			FilterControls: Cfg.GetBool("filter-controls"),
			ColourMapDir:   Cfg.GetString("cmap-dir"),
			UploadTo:       Cfg.GetString("upload-to"),
			WMSTimeout:     time.Duration(Cfg.GetFloat64("wms-timeout") * float64(time.Second)),
		})
		return err
	},
	DisableAutoGenTag: true,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "List the dimensions and variables of a dataset",
	Long:  "describe prints the dimensions and variables of the dataset at input-path.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Describe(context.Background(), cmd.OutOrStdout(), Cfg.GetString("input-path"))
	},
	DisableAutoGenTag: true,
}
