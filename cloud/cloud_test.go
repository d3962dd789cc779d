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

package cloud

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"gs://bucket/x":    true,
		"s3://bucket/x":    true,
		"file:///tmp/x":    true,
		"/tmp/x":           false,
		"http://host/x":    false,
		"html_output/x.nc": false,
	} {
		if have := IsBlob(path); have != want {
			t.Errorf("%s: have %v, want %v", path, have, want)
		}
	}
}

func TestOpenBucketInvalidProvider(t *testing.T) {
	if _, _, err := OpenBucket(context.Background(), "ftp://bucket/x"); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestUploadDownload(t *testing.T) {
	src, err := ioutil.TempDir("", "ncexplorer_src")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(src)
	dst, err := ioutil.TempDir("", "ncexplorer_dst")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dst)

	files := map[string][]byte{
		"scenes.json":      []byte(`{"layers":[]}`),
		"images/sst_0.png": {1, 2, 3},
		"data/sst_0.gz":    {4, 5},
	}
	for name, b := range files {
		p := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(p, b, 0644); err != nil {
			t.Fatal(err)
		}
	}

	ctx := context.Background()
	n, err := UploadDir(ctx, src, "file://"+filepath.ToSlash(dst))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(files) {
		t.Errorf("uploaded files: have %d, want %d", n, len(files))
	}
	for name, want := range files {
		have, err := ioutil.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if !bytes.Equal(have, want) {
			t.Errorf("%s: have %v, want %v", name, have, want)
		}
	}

	dl, err := ioutil.TempDir("", "ncexplorer_dl")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dl)
	p, err := Download(ctx, "file://"+filepath.ToSlash(filepath.Join(dst, "images", "sst_0.png")), dl)
	if err != nil {
		t.Fatal(err)
	}
	have, err := ioutil.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(have, files["images/sst_0.png"]) {
		t.Errorf("downloaded: have %v, want %v", have, files["images/sst_0.png"])
	}
}
