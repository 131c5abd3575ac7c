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

package s3

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	minio "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3 is an in-memory S3 bucket.
type mockS3 struct {
	bucketName string
	files      sync.Map
	listErr    error
}

var _ s3Access = &mockS3{}

// GetObject implements s3Access.
func (m *mockS3) GetObject(
	_ context.Context, bucketName string, objectName string, _ minio.GetObjectOptions,
) (io.ReadCloser, error) {
	if bucketName != m.bucketName {
		return nil, minio.ErrorResponse{Code: "NoSuchBucket"}
	}
	file, ok := m.files.Load(objectName)
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(file.([]byte))), nil
}

// ListObjects implements s3Access.
func (m *mockS3) ListObjects(
	_ context.Context, bucketName string, opts minio.ListObjectsOptions,
) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		if m.listErr != nil {
			ch <- minio.ObjectInfo{Err: m.listErr}
			return
		}
		if bucketName != m.bucketName {
			ch <- minio.ObjectInfo{Err: minio.ErrorResponse{Code: "NoSuchBucket"}}
			return
		}
		var files []string
		m.files.Range(func(key any, _ any) bool {
			name := key.(string)
			if strings.HasPrefix(name, opts.Prefix) {
				files = append(files, name)
			}
			return true
		})
		sort.Strings(files)
		for _, f := range files {
			if opts.StartAfter != "" && strings.Compare(f, opts.StartAfter) <= 0 {
				continue
			}
			ch <- minio.ObjectInfo{Key: f}
		}
	}()
	return ch
}

// PutObject implements s3Access.
func (m *mockS3) PutObject(
	_ context.Context,
	bucketName string,
	objectName string,
	reader io.Reader,
	_ int64,
	_ minio.PutObjectOptions,
) (minio.UploadInfo, error) {
	if bucketName != m.bucketName {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchBucket"}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.files.Store(objectName, data)
	return minio.UploadInfo{Key: objectName}, nil
}

func fixture() (*mockS3, bucket.Bucket) {
	mock := &mockS3{bucketName: "b"}
	mock.files.Store("2023/01/15/10/30/45/1/catalog.json", []byte("catalog"))
	mock.files.Store("2023/01/15/10/30/45/1/item.json", []byte("item"))
	mock.files.Store("2023/01/15/10/30/45/1/out/met.json", []byte("met"))
	return mock, &s3Bucket{client: mock, bucket: "b"}
}

func TestOpen(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)
	ctx := context.Background()
	_, b := fixture()

	buff, err := b.Open(ctx, "2023/01/15/10/30/45/1/item.json")
	r.NoError(err)
	defer buff.Close()
	data, err := io.ReadAll(buff)
	r.NoError(err)
	a.Equal("item", string(data))

	_, err = b.Open(ctx, "2023/01/15/10/30/45/1/missing.json")
	a.ErrorIs(err, bucket.ErrNoSuchKey)
}

func TestOpenStripsBucketPrefix(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	_, b := fixture()
	buff, err := b.Open(ctx, "b/2023/01/15/10/30/45/1/item.json")
	a.NoError(err)
	if buff != nil {
		buff.Close()
	}
}

func TestWalk(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	_, b := fixture()

	var got []string
	err := b.Walk(ctx, "2023/01/15/10/30/45/1", &bucket.WalkOptions{Recursive: true},
		func(_ context.Context, name string) error {
			got = append(got, name)
			return nil
		})
	a.NoError(err)
	a.Equal([]string{
		"2023/01/15/10/30/45/1/catalog.json",
		"2023/01/15/10/30/45/1/item.json",
		"2023/01/15/10/30/45/1/out/met.json",
	}, got)
}

func TestWalkSkipAll(t *testing.T) {
	a := assert.New(t)
	_, b := fixture()
	var got []string
	err := b.Walk(context.Background(), "2023/01/15/10/30/45/1/",
		&bucket.WalkOptions{Recursive: true},
		func(_ context.Context, name string) error {
			got = append(got, name)
			return bucket.ErrSkipAll
		})
	a.NoError(err)
	a.Len(got, 1)
}

func TestWalkListingFailureIsTransient(t *testing.T) {
	a := assert.New(t)
	mock, b := fixture()
	mock.listErr = minio.ErrorResponse{Code: "SlowDown"}
	err := b.Walk(context.Background(), "2023/01/15/10/30/45/1/",
		&bucket.WalkOptions{Recursive: true},
		func(_ context.Context, _ string) error { return nil })
	a.ErrorIs(err, bucket.ErrTransient)
}

func TestPut(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)
	ctx := context.Background()
	_, b := fixture()
	r.NoError(b.Put(ctx, "2023/01/15/10/30/45/1/new.json", strings.NewReader("new"), 3))
	buff, err := b.Open(ctx, "2023/01/15/10/30/45/1/new.json")
	r.NoError(err)
	defer buff.Close()
	data, err := io.ReadAll(buff)
	r.NoError(err)
	a.Equal("new", string(data))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"NoSuchKey", bucket.ErrNoSuchKey},
		{"NoSuchBucket", bucket.ErrNoSuchKey},
		{"SlowDown", bucket.ErrTransient},
		{"InternalError", bucket.ErrTransient},
		{"RequestTimeout", bucket.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := classify(minio.ErrorResponse{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
		})
	}
	t.Run("other", func(t *testing.T) {
		err := classify(minio.ErrorResponse{Code: "AccessDenied"})
		assert.NotErrorIs(t, err, bucket.ErrNoSuchKey)
		assert.NotErrorIs(t, err, bucket.ErrTransient)
	})
}
