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

package local

import (
	"context"
	"io"
	"testing"
	"testing/fstest"

	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() bucket.Reader {
	return NewFS(fstest.MapFS{
		"2023/01/15/10/30/45/1/catalog.json": &fstest.MapFile{Data: []byte("catalog")},
		"2023/01/15/10/30/45/1/item.json":    &fstest.MapFile{Data: []byte("item")},
		"2023/01/15/10/30/45/1/out/met.json": &fstest.MapFile{Data: []byte("met")},
		"2023/01/15/10/30/45/2/catalog.json": &fstest.MapFile{Data: []byte("other")},
		"top.json":                           &fstest.MapFile{Data: []byte("top")},
	})
}

func TestOpen(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)
	ctx := context.Background()
	b := fixture()

	buff, err := b.Open(ctx, "2023/01/15/10/30/45/1/item.json")
	r.NoError(err)
	defer buff.Close()
	data, err := io.ReadAll(buff)
	r.NoError(err)
	a.Equal("item", string(data))

	_, err = b.Open(ctx, "2023/01/15/10/30/45/1/missing.json")
	a.ErrorIs(err, bucket.ErrNoSuchKey)
}

func TestWalk(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		options bucket.WalkOptions
		want    []string
	}{
		{
			name:    "recursive",
			prefix:  "2023/01/15/10/30/45/1/",
			options: bucket.WalkOptions{Recursive: true},
			want: []string{
				"2023/01/15/10/30/45/1/catalog.json",
				"2023/01/15/10/30/45/1/item.json",
				"2023/01/15/10/30/45/1/out/met.json",
			},
		},
		{
			name:    "non recursive",
			prefix:  "2023/01/15/10/30/45/1/",
			options: bucket.WalkOptions{},
			want: []string{
				"2023/01/15/10/30/45/1/catalog.json",
				"2023/01/15/10/30/45/1/item.json",
			},
		},
		{
			name:    "limit",
			prefix:  "2023/01/15/10/30/45/1/",
			options: bucket.WalkOptions{Recursive: true, Limit: 2},
			want: []string{
				"2023/01/15/10/30/45/1/catalog.json",
				"2023/01/15/10/30/45/1/item.json",
			},
		},
		{
			name:   "start after",
			prefix: "2023/01/15/10/30/45/1/",
			options: bucket.WalkOptions{
				Recursive:  true,
				StartAfter: "2023/01/15/10/30/45/1/catalog.json",
			},
			want: []string{
				"2023/01/15/10/30/45/1/item.json",
				"2023/01/15/10/30/45/1/out/met.json",
			},
		},
		{
			name:    "missing prefix",
			prefix:  "1999/01/01/00/00/00/1/",
			options: bucket.WalkOptions{Recursive: true},
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			var got []string
			err := fixture().Walk(context.Background(), tt.prefix, &tt.options,
				func(_ context.Context, name string) error {
					got = append(got, name)
					return nil
				})
			a.NoError(err)
			a.Equal(tt.want, got)
		})
	}
}

func TestWalkSkipAll(t *testing.T) {
	a := assert.New(t)
	var got []string
	err := fixture().Walk(context.Background(), "2023/01/15/10/30/45/1/",
		&bucket.WalkOptions{Recursive: true},
		func(_ context.Context, name string) error {
			got = append(got, name)
			return bucket.ErrSkipAll
		})
	a.NoError(err)
	a.Equal([]string{"2023/01/15/10/30/45/1/catalog.json"}, got)
}

func TestWalkCallbackError(t *testing.T) {
	a := assert.New(t)
	boom := assert.AnError
	err := fixture().Walk(context.Background(), "2023/01/15/10/30/45/1/",
		&bucket.WalkOptions{Recursive: true},
		func(_ context.Context, _ string) error {
			return boom
		})
	a.ErrorIs(err, boom)
}
