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

// Package local provides access to local storage.
package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	"github.com/pkg/errors"
)

// Config specifies the parameters required to create a bucket reader.
type Config struct {
	Directory string // Root directory
}

// New creates a read-only bucket for a local filesystem directory.
func New(config *Config) (bucket.Reader, error) {
	return NewFS(os.DirFS(config.Directory)), nil
}

// NewFS creates a read-only bucket backed by the given filesystem.
// Useful with fstest.MapFS in tests.
func NewFS(filesystem fs.FS) bucket.Reader {
	return &localBucket{filesystem: filesystem}
}

// localBucket is a bucket backed by a filesystem.
type localBucket struct {
	filesystem fs.FS
}

var _ bucket.Reader = &localBucket{}

// Open implements bucket.Reader.
func (b *localBucket) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := b.filesystem.Open(path.Clean(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(bucket.ErrNoSuchKey, name)
		}
		return nil, err
	}
	return f, nil
}

// Walk implements bucket.Reader. Entries are visited in lexicographic
// order, matching the guarantee offered by the S3 provider.
func (b *localBucket) Walk(
	ctx context.Context,
	prefix string,
	options *bucket.WalkOptions,
	f func(context.Context, string) error,
) error {
	prefix = strings.TrimSuffix(prefix, "/")
	var names []string
	root := prefix
	if root == "" {
		root = "."
	}
	err := fs.WalkDir(b.filesystem, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if !options.Recursive && name != root {
				return fs.SkipDir
			}
			return nil
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walk %s", prefix)
	}
	sort.Strings(names)
	count := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if options.StartAfter != "" && strings.Compare(name, options.StartAfter) <= 0 {
			continue
		}
		if options.Limit != bucket.NoLimit && count >= options.Limit {
			return nil
		}
		if err := f(ctx, name); err != nil {
			if errors.Is(err, bucket.ErrSkipAll) {
				return nil
			}
			return err
		}
		count++
	}
	return nil
}
