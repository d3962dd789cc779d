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

// Package cloud reads and writes files in blob storage buckets.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// IsBlob returns whether the given path refers to blob storage, i.e.
// whether it starts with "gs://", "s3://" or "file://".
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket opens the bucket that the blob URL rawurl refers to and
// returns it together with the key that the rest of the URL refers to.
// URLs have the form "provider://bucket/key". The accepted providers
// are "gs" for Google Cloud Storage, "s3" for AWS S3 and "file" for the
// local file system; for the last, the bucket is the file system root
// and the key is the absolute path without its leading slash, as in
// "file:///tmp/output".
func OpenBucket(ctx context.Context, rawurl string) (*blob.Bucket, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, "", fmt.Errorf("cloud: parsing bucket URL: %v", err)
	}
	var b *blob.Bucket
	key := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "file":
		if u.Host != "" {
			key = strings.TrimPrefix(u.Host+"/"+key, "/")
		}
		b, err = fileblob.OpenBucket(string(os.PathSeparator), nil)
	case "gs":
		b, err = gsBucket(ctx, u.Host)
	case "s3":
		b, err = s3Bucket(ctx, u.Host)
	default:
		return nil, "", fmt.Errorf("cloud: invalid storage provider %q", u.Scheme)
	}
	if err != nil {
		return nil, "", fmt.Errorf("cloud: opening bucket %s: %v", rawurl, err)
	}
	return b, key, nil
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an S3 bucket using the credentials in the
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables and
// the region in AWS_REGION.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-west-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}
