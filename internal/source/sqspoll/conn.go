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

// Package sqspoll runs the item-generation pipeline as a long-lived
// queue consumer. Failed messages are simply not deleted, so the
// queue's visibility timeout redelivers them: the same observable
// semantics as the Lambda partial-batch contract.
package sqspoll

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// sqsAPI is the slice of the SQS client used by the consumer. Mainly
// used for testing to implement a mock component.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Conn consumes the notification queue and drives the batch
// coordinator.
type Conn struct {
	client      sqsAPI
	config      *Config
	coordinator *itemgen.Coordinator
	limiter     *rate.Limiter
}

// New creates the consumer, constructing the SQS client once for the
// life of the process.
func New(ctx context.Context, config *Config, coordinator *itemgen.Coordinator) (*Conn, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Generator.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}
	limit := rate.Inf
	if config.PollRate > 0 {
		limit = rate.Limit(config.PollRate)
	}
	return &Conn{
		client:      sqs.NewFromConfig(cfg),
		config:      config,
		coordinator: coordinator,
		limiter:     rate.NewLimiter(limit, 1),
	}, nil
}

// Start the consumer loop.
func (c *Conn) Start(ctx *stopper.Context) error {
	ctx.Go(func(ctx *stopper.Context) error {
		log.Infof("consuming %s", c.config.QueueURL)
		return c.poll(ctx)
	})
	return nil
}

func (c *Conn) poll(ctx *stopper.Context) error {
	retry := backoff.NewExponentialBackOff()
	for !ctx.IsStopping() {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil
		}
		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.config.QueueURL),
			MaxNumberOfMessages: int32(c.config.BatchSize),
			WaitTimeSeconds:     int32(c.config.WaitTime / time.Second),
		})
		if err != nil {
			if ctx.IsStopping() {
				return nil
			}
			receiveErrors.Inc()
			delay := retry.NextBackOff()
			log.WithError(err).Errorf("receive failed; retrying in %s", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Stopping():
				return nil
			}
			continue
		}
		retry.Reset()
		if len(out.Messages) == 0 {
			continue
		}
		batch := make([]itemgen.Message, 0, len(out.Messages))
		handles := make(map[string]string, len(out.Messages))
		for _, msg := range out.Messages {
			id := aws.ToString(msg.MessageId)
			batch = append(batch, itemgen.Message{
				ID:   id,
				Body: aws.ToString(msg.Body),
			})
			handles[id] = aws.ToString(msg.ReceiptHandle)
		}
		failures := c.coordinator.Run(ctx, batch)
		failed := make(map[string]bool, len(failures))
		for _, failure := range failures {
			failed[failure.ItemIdentifier] = true
		}
		// Delete the successes; the rest reappear after the visibility
		// timeout.
		for _, msg := range batch {
			if failed[msg.ID] {
				continue
			}
			if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(c.config.QueueURL),
				ReceiptHandle: aws.String(handles[msg.ID]),
			}); err != nil {
				// The message was fully processed; a redelivery will
				// republish its items. Downstream ingestion is
				// idempotent on item id, so log and move on.
				deleteErrors.Inc()
				log.WithError(err).WithField("messageId", msg.ID).
					Warn("could not delete processed message")
			}
		}
	}
	return nil
}
