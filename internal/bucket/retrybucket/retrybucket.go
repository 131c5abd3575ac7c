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

// Package retrybucket decorates a bucket reader with retries for
// transient transport errors. Pipeline-level failures are never
// retried here; only errors the provider marks bucket.ErrTransient.
package retrybucket

import (
	"context"
	"io"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config controls the retry window.
type Config struct {
	InitialInterval time.Duration // Time to wait before the first retry.
	MaxTime         time.Duration // Total time allowed across retries.
}

// New wraps the given reader.
func New(next bucket.Reader, config *Config) bucket.Reader {
	return &retryReader{config: config, next: next}
}

type retryReader struct {
	config *Config
	next   bucket.Reader
}

var _ bucket.Reader = &retryReader{}

// Open implements bucket.Reader.
func (r *retryReader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var ret io.ReadCloser
	err := r.retry(ctx, "open "+name, func() error {
		var err error
		ret, err = r.next.Open(ctx, name)
		return err
	})
	return ret, err
}

// Walk implements bucket.Reader. The entire walk is retried from the
// beginning, so the callback may observe entries more than once after
// a transient listing failure.
func (r *retryReader) Walk(
	ctx context.Context,
	prefix string,
	options *bucket.WalkOptions,
	f func(context.Context, string) error,
) error {
	return r.retry(ctx, "walk "+prefix, func() error {
		return r.next.Walk(ctx, prefix, options, f)
	})
}

func (r *retryReader) retry(ctx context.Context, label string, operation backoff.Operation) error {
	retryOp := func() error {
		err := operation()
		if err != nil && !errors.Is(err, bucket.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		log.WithError(err).Warnf("%s failed; retrying in %s", label, delay)
	}
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = r.config.InitialInterval
	expBackoff.MaxElapsedTime = r.config.MaxTime
	return backoff.RetryNotify(retryOp, backoff.WithContext(expBackoff, ctx), notify)
}
