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
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"gocloud.dev/blob"
)

// UploadDir copies every file below the local directory dir to the blob
// URL dst, keeping the relative paths.
func UploadDir(ctx context.Context, dir, dst string) (int, error) {
	bucket, prefix, err := OpenBucket(ctx, dst)
	if err != nil {
		return 0, err
	}
	defer bucket.Close()
	n := 0
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if err := writeFile(ctx, bucket, path.Join(prefix, filepath.ToSlash(rel)), p); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func writeFile(ctx context.Context, bucket *blob.Bucket, key, file string) error {
	r, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("cloud: opening file '%s' for upload: %v", file, err)
	}
	defer r.Close()
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("cloud: uploading file '%s' to blob %s: %v", file, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}

// Download copies the blob at the URL src into the local directory dir
// and returns the path of the new file.
func Download(ctx context.Context, src, dir string) (string, error) {
	bucket, key, err := OpenBucket(ctx, src)
	if err != nil {
		return "", err
	}
	defer bucket.Close()
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return "", fmt.Errorf("cloud: reading blob %s: %v", key, err)
	}
	defer r.Close()
	p := filepath.Join(dir, path.Base(key))
	w, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("cloud: creating file for download: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("cloud: downloading blob %s: %v", key, err)
	}
	return p, w.Close()
}
