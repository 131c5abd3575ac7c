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

package sqspoll

import (
	"context"
	"os"
	"time"

	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const (
	defaultBatchSize = 10
	defaultWaitTime  = 20 * time.Second
	// The SQS API caps a single receive at ten messages.
	maxBatchSize = 10
	maxWaitTime  = 20 * time.Second
)

// Config contains the configuration for the queue consumer.
type Config struct {
	Generator itemgen.Config

	BatchSize int           // Messages per receive, up to the SQS cap.
	PollRate  float64       // Maximum receive calls per second.
	QueueURL  string        // The queue to consume.
	WaitTime  time.Duration // Long-poll wait per receive.
}

// Bind adds flags to the set. It delegates to the embedded
// Config.Bind.
func (c *Config) Bind(f *pflag.FlagSet) {
	c.Generator.Bind(f)

	f.IntVar(&c.BatchSize, "batchSize", defaultBatchSize,
		"number of messages to request per receive; at most 10")
	f.Float64Var(&c.PollRate, "pollRate", 0,
		"maximum receive calls per second; 0 for unlimited")
	f.StringVar(&c.QueueURL, "queue", "",
		"the URL of the queue to consume; defaults to $ITEM_GEN_QUEUE_URL")
	f.DurationVar(&c.WaitTime, "waitTime", defaultWaitTime,
		"long-poll wait per receive; at most 20s")
}

// Preflight updates the configuration with sane defaults or returns an
// error if there are missing options for which a default cannot be
// provided.
func (c *Config) Preflight(ctx context.Context) error {
	if err := c.Generator.Preflight(ctx); err != nil {
		return err
	}
	c.QueueURL = envOr(c.QueueURL, "ITEM_GEN_QUEUE_URL")
	if c.QueueURL == "" {
		return errors.New("no queue specified: set --queue or ITEM_GEN_QUEUE_URL")
	}
	if c.BatchSize < 1 || c.BatchSize > maxBatchSize {
		return errors.Errorf("batchSize must be between 1 and %d", maxBatchSize)
	}
	if c.WaitTime < 0 || c.WaitTime > maxWaitTime {
		return errors.Errorf("waitTime must be between 0 and %s", maxWaitTime)
	}
	if c.PollRate < 0 {
		return errors.New("pollRate must not be negative")
	}
	return nil
}

// envOr gets the value from the named environment variable if the
// flag did not provide one.
func envOr(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
