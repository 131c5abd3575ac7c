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

// Package sns publishes payloads to an AWS SNS topic.
package sns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/maap-project/dps-stac-itemgen/internal/publish"
	"github.com/pkg/errors"
)

// Config has the parameters used to reach the topic.
type Config struct {
	Region   string // AWS region hosting the topic.
	TopicARN string // Destination topic.
}

// snsAPI is the slice of the SNS client used by the publisher. Mainly
// used for testing to implement a mock component.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// New creates a Publisher backed by an SNS topic. The client is
// constructed once and is safe for concurrent reuse.
func New(ctx context.Context, config *Config) (publish.Publisher, error) {
	if config.TopicARN == "" {
		return nil, errors.New("no topic ARN specified")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}
	return &publisher{
		client:   sns.NewFromConfig(cfg),
		topicARN: config.TopicARN,
	}, nil
}

type publisher struct {
	client   snsAPI
	topicARN string
}

var _ publish.Publisher = &publisher{}

// Publish implements publish.Publisher.
func (p *publisher) Publish(ctx context.Context, payload string) (string, error) {
	out, err := p.client.Publish(ctx, &sns.PublishInput{
		Message:  aws.String(payload),
		TopicArn: aws.String(p.topicARN),
	})
	if err != nil {
		return "", errors.Wrapf(err, "publish to %s", p.topicARN)
	}
	return aws.ToString(out.MessageId), nil
}
