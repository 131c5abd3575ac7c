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

// Package bucket defines the interface that the providers must implement
// to access cloud storage.
package bucket

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// NoLimit instructs Walk to visit every entry under the prefix.
const NoLimit = 0

var (
	// ErrNoSuchKey is returned by Open if the named object does not exist.
	ErrNoSuchKey = errors.New("no such key")
	// ErrSkipAll is returned by a Walk callback to stop the walk early
	// without reporting an error.
	ErrSkipAll = errors.New("skip everything and stop the walk")
	// ErrTransient marks a failure that may succeed if the operation is
	// attempted again.
	ErrTransient = errors.New("transient error")
)

// WalkOptions are the configuration options used by Walk.
type WalkOptions struct {
	Limit      int    // Maximum number of entries to visit. NoLimit for all.
	Recursive  bool   // Enable recursive descent.
	StartAfter string // Only visit entries lexically after this name.
}

// Reader provides read access to an object storage bucket.
type Reader interface {
	// Open returns a reader for the given object name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Walk calls f for each entry under the given prefix. The argument
	// to f is the full object name, including the prefix. Entries are
	// visited in the order the backing store lists them; both bundled
	// providers list lexicographically.
	Walk(ctx context.Context, prefix string, options *WalkOptions, f func(context.Context, string) error) error
}

// Bucket adds write access to a Reader.
type Bucket interface {
	Reader

	// Put writes the given content to the named object, replacing any
	// existing object.
	Put(ctx context.Context, name string, content io.Reader, size int64) error
}
