// Copyright 2024 The MAAP Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package s3 provides access to an AWS S3 bucket.
package s3

import (
	"context"
	"io"
	"strings"

	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DirDelim is the directory delimiter used in S3.
const DirDelim = "/"

// Config has the parameters used to connect to S3.
type Config struct {
	AccessKey    string // AWS Access Key
	Bucket       string // The name of the bucket.
	Endpoint     string // Alternative server to use, for other S3 providers.
	Insecure     bool   // For testing against self hosted S3 providers.
	SecretKey    string // Secret associated to the Access Key.
	SessionToken string // Optional session token for temporary credentials.
}

// s3Access defines the functions we are using to interact with the minio SDK.
// Mainly used for testing to implement a mock component.
type s3Access interface {
	// GetObject returns the content of the named object.
	GetObject(ctx context.Context, bucketName string, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	// ListObjects scans the entries in the bucket.
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	// PutObject writes the content of the named object.
	PutObject(ctx context.Context, bucketName string, objectName string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// New returns a bucket backed by an S3 provider.
func New(config *Config) (bucket.Bucket, error) {
	var creds *credentials.Credentials
	if config.AccessKey != "" {
		creds = credentials.NewStaticV4(config.AccessKey, config.SecretKey, config.SessionToken)
	} else {
		// Fall back to the usual environment/IAM chain inside Lambda.
		creds = credentials.NewIAM("")
	}
	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: !config.Insecure,
	})
	if err != nil {
		return nil, err
	}
	return &s3Bucket{
		client: &client{ref: minioClient},
		bucket: config.Bucket,
	}, nil
}

type s3Bucket struct {
	client s3Access
	bucket string
}

var _ bucket.Bucket = &s3Bucket{}

// Walk implements bucket.Reader.
func (b *s3Bucket) Walk(
	ctx context.Context,
	prefix string,
	options *bucket.WalkOptions,
	f func(context.Context, string) error,
) error {
	// Ensure the prefix actually ends with a dir suffix. Otherwise we'll
	// just iterate the object itself as one prefix item.
	if prefix != "" && !strings.HasSuffix(prefix, DirDelim) {
		prefix = prefix + DirDelim
	}
	opts := minio.ListObjectsOptions{
		Prefix:     prefix,
		MaxKeys:    options.Limit,
		Recursive:  options.Recursive,
		StartAfter: options.StartAfter,
		UseV1:      false,
	}
	log.Tracef("Walk: bucket %q, prefix %q", b.bucket, prefix)
	count := 0
	for object := range b.client.ListObjects(ctx, b.bucket, opts) {
		if object.Err != nil {
			// Listing failures are typically throttling or connectivity.
			return errors.Wrap(bucket.ErrTransient, object.Err.Error())
		}
		if object.Key == "" || object.Key == prefix {
			continue
		}
		if options.Limit != bucket.NoLimit && count >= options.Limit {
			return nil
		}
		if err := f(ctx, object.Key); err != nil {
			if errors.Is(err, bucket.ErrSkipAll) {
				return nil
			}
			return err
		}
		count++
	}
	return ctx.Err()
}

// Open implements bucket.Reader.
func (b *s3Bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	log.Tracef("Open: %q", name)
	name = strings.TrimPrefix(name, b.bucket+DirDelim)
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	return obj, nil
}

// Put implements bucket.Bucket.
func (b *s3Bucket) Put(ctx context.Context, name string, content io.Reader, size int64) error {
	name = strings.TrimPrefix(name, b.bucket+DirDelim)
	_, err := b.client.PutObject(ctx, b.bucket, name, content, size, minio.PutObjectOptions{})
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify converts a minio error into one of the bucket sentinels.
func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.Wrap(bucket.ErrNoSuchKey, err.Error())
	case "SlowDown", "InternalError", "RequestTimeout":
		return errors.Wrap(bucket.ErrTransient, err.Error())
	}
	return err
}
