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
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/maap-project/dps-stac-itemgen/internal/publish"
	"github.com/maap-project/dps-stac-itemgen/internal/publish/kafka"
	"github.com/maap-project/dps-stac-itemgen/internal/publish/sns"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var (
	defaultRetryInitialInterval = 10 * time.Millisecond
	defaultRetryMaxTime         = 10 * time.Second
)

// Config contains the configuration necessary to run the pipeline.
// Missing required settings are an environment-level failure reported
// by Preflight, never a per-message one.
type Config struct {
	ChannelURL           string        // Destination for generated items.
	Endpoint             string        // Alternative S3-compatible endpoint.
	KafkaVersion         string        // Kafka cluster version, kafka channels only.
	Region               string        // AWS region selector.
	RetryInitialInterval time.Duration // Transient-error retry knobs for storage access.
	RetryMaxTime         time.Duration
	Workers              int // Concurrent messages per batch.

	// The following are computed.
	accessKey        string
	endpointHost     string
	endpointInsecure bool
	secretKey        string
	sessionToken     string
}

// Bind adds flags to the set.
func (c *Config) Bind(f *pflag.FlagSet) {
	f.StringVar(&c.ChannelURL, "channel", "",
		"destination for generated items: an SNS topic ARN or a kafka://broker,broker/topic URL; "+
			"defaults to $ITEM_LOAD_TOPIC_ARN")
	f.StringVar(&c.Endpoint, "endpoint", "",
		"S3-compatible endpoint URL; defaults to $AWS_ENDPOINT, then AWS S3")
	f.StringVar(&c.KafkaVersion, "kafkaVersion", "",
		"the version of the Kafka cluster, when publishing to kafka")
	f.StringVar(&c.Region, "region", "",
		"AWS region; defaults to $AWS_DEFAULT_REGION")
	f.DurationVar(&c.RetryInitialInterval, "retryInitial", defaultRetryInitialInterval,
		"initial time to wait before retrying a storage operation that failed with a transient error")
	f.DurationVar(&c.RetryMaxTime, "retryMax", defaultRetryMaxTime,
		"maximum time allowed for retrying a storage operation that failed with a transient error")
	f.IntVar(&c.Workers, "workers", 1,
		"maximum number of messages processed concurrently within a batch")
}

// Preflight updates the configuration with environment fallbacks or
// returns an error if a required option is absent.
func (c *Config) Preflight(_ context.Context) error {
	c.ChannelURL = envOr(c.ChannelURL, "ITEM_LOAD_TOPIC_ARN")
	if c.ChannelURL == "" {
		return errors.New("no item-load channel specified: set --channel or ITEM_LOAD_TOPIC_ARN")
	}
	c.Region = envOr(c.Region, "AWS_DEFAULT_REGION")
	c.Endpoint = envOr(c.Endpoint, "AWS_ENDPOINT")
	if c.Endpoint == "" {
		// The minio API requires an endpoint. AWS S3 is the default.
		c.Endpoint = "https://s3.amazonaws.com"
	}
	parsed, err := url.Parse(c.Endpoint)
	if err != nil {
		return errors.Wrapf(err, "invalid endpoint %q", c.Endpoint)
	}
	c.endpointHost = parsed.Host
	c.endpointInsecure = parsed.Scheme == "http"
	c.accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	c.secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	c.sessionToken = os.Getenv("AWS_SESSION_TOKEN")
	if c.Workers < 1 {
		return errors.Errorf("invalid number of workers %d", c.Workers)
	}
	return nil
}

// NewPublisher constructs the publish capability for the configured
// channel. The client is created once per worker process.
func (c *Config) NewPublisher(ctx context.Context) (publish.Publisher, error) {
	switch {
	case strings.HasPrefix(c.ChannelURL, "arn:"):
		return sns.New(ctx, &sns.Config{
			Region:   c.Region,
			TopicARN: c.ChannelURL,
		})
	case strings.HasPrefix(c.ChannelURL, "kafka://"):
		u, err := url.Parse(c.ChannelURL)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid channel %q", c.ChannelURL)
		}
		topic := strings.TrimPrefix(u.Path, "/")
		if topic == "" {
			return nil, errors.Errorf("missing topic in %q. Must be kafka://broker,broker/topic", c.ChannelURL)
		}
		return kafka.New(&kafka.Config{
			Brokers: strings.Split(u.Host, ","),
			Topic:   topic,
			Version: c.KafkaVersion,
		})
	case c.ChannelURL == "memory://":
		// Dry-run mode: record payloads without delivering them.
		return &publish.Memory{}, nil
	}
	return nil, errors.Errorf("unsupported channel %q", c.ChannelURL)
}

// envOr gets the value from the named environment variable if the
// flag did not provide one.
func envOr(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
