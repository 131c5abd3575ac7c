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

package itemgen

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	"github.com/maap-project/dps-stac-itemgen/internal/bucket/providers/s3"
	"github.com/maap-project/dps-stac-itemgen/internal/bucket/retrybucket"
	"github.com/pkg/errors"
)

// Stores resolves storage URIs to the object-store capability backing
// them. Implementations cache client handles for the life of the
// worker process; the handles are safe for concurrent reuse and carry
// no per-message state.
type Stores interface {
	// Resolve splits the URI into a reader for its bucket and the
	// object key within that bucket.
	Resolve(ctx context.Context, uri string) (bucket.Reader, string, error)
}

// NewS3Stores creates a Stores backed by S3, with one lazily created
// client per bucket.
func NewS3Stores(config *Config) Stores {
	return &s3Stores{
		config:  config,
		readers: make(map[string]bucket.Reader),
	}
}

type s3Stores struct {
	config *Config

	mu      sync.Mutex
	readers map[string]bucket.Reader
}

var _ Stores = &s3Stores{}

// Resolve implements Stores.
func (s *s3Stores) Resolve(_ context.Context, uri string) (bucket.Reader, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", errors.Wrapf(err, "invalid storage URI %q", uri)
	}
	if u.Scheme != "s3" {
		return nil, "", errors.Errorf("unsupported storage scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, "", errors.Errorf("missing bucket name in %q. Must be s3://bucket/key", uri)
	}
	key := strings.TrimPrefix(u.Path, "/")

	s.mu.Lock()
	defer s.mu.Unlock()
	if reader, ok := s.readers[u.Host]; ok {
		return reader, key, nil
	}
	reader, err := s3.New(&s3.Config{
		AccessKey:    s.config.accessKey,
		Bucket:       u.Host,
		Endpoint:     s.config.endpointHost,
		Insecure:     s.config.endpointInsecure,
		SecretKey:    s.config.secretKey,
		SessionToken: s.config.sessionToken,
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "creating client for bucket %s", u.Host)
	}
	wrapped := retrybucket.New(reader, &retrybucket.Config{
		InitialInterval: s.config.RetryInitialInterval,
		MaxTime:         s.config.RetryMaxTime,
	})
	s.readers[u.Host] = wrapped
	return wrapped, key, nil
}

// storeFetcher adapts a Stores to the document fetch capability used
// by the catalog walker.
type storeFetcher struct {
	stores Stores
}

// Fetch implements stac.Fetcher.
func (f *storeFetcher) Fetch(ctx context.Context, href string) ([]byte, error) {
	reader, key, err := f.stores.Resolve(ctx, href)
	if err != nil {
		return nil, err
	}
	buff, err := reader.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer buff.Close()
	return io.ReadAll(buff)
}
