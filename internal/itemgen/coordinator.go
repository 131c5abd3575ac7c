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

// Package itemgen implements the batch item-generation pipeline: it
// turns notifications about finished DPS jobs into validated STAC
// items and forwards them to the item-load channel.
package itemgen

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Message is one queue delivery.
type Message struct {
	ID   string // Unique within the batch. Empty ids cannot be reported.
	Body string // The serialized notification envelope.
}

// Failure names a message the queue should redeliver.
type Failure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

// MessageProcessor is the per-message pipeline invoked by the
// Coordinator.
type MessageProcessor interface {
	Process(ctx context.Context, body string) error
}

// Coordinator drives a batch of messages through the pipeline and
// isolates failures to the message that caused them.
type Coordinator struct {
	processor MessageProcessor
	workers   int
}

// NewCoordinator wraps the given processor. Workers below one are
// treated as one; with one worker, messages are processed in delivery
// order.
func NewCoordinator(processor MessageProcessor, workers int) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		processor: processor,
		workers:   workers,
	}
}

// Run processes every message in the batch and returns the failures to
// report. One message failing never prevents the others from being
// processed; the order of the returned slice is not meaningful.
func (c *Coordinator) Run(ctx context.Context, batch []Message) []Failure {
	log.Infof("received batch with %d messages", len(batch))
	var mu sync.Mutex
	var failures []Failure
	var g errgroup.Group
	g.SetLimit(c.workers)
	for _, msg := range batch {
		if msg.ID == "" {
			// Without an identifier there is nothing to report and
			// nothing the queue could redeliver by id.
			log.Warn("message missing its identifier; cannot report a failure for it")
			continue
		}
		msg := msg
		g.Go(func() error {
			start := time.Now()
			err := c.processor.Process(ctx, msg.Body)
			messageDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				messagesProcessed.WithLabelValues("failure").Inc()
				log.WithError(err).WithField("messageId", msg.ID).
					Error("message processing failed")
				mu.Lock()
				failures = append(failures, Failure{ItemIdentifier: msg.ID})
				mu.Unlock()
				return nil
			}
			messagesProcessed.WithLabelValues("success").Inc()
			log.WithField("messageId", msg.ID).Debug("message processed")
			return nil
		})
	}
	// The workers never return errors; failures are collected above.
	_ = g.Wait()
	if len(failures) > 0 {
		log.Warnf("finished batch; %d failure(s) reported", len(failures))
	} else {
		log.Info("finished batch; all messages successful")
	}
	return failures
}
