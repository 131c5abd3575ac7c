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

// Package kafka publishes payloads to a Kafka topic. It is an
// alternative to the SNS channel for deployments that load the catalog
// database through a Kafka consumer.
package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/maap-project/dps-stac-itemgen/internal/publish"
	"github.com/pkg/errors"
)

// Config has the parameters used to reach the Kafka cluster.
type Config struct {
	Brokers []string // Bootstrap broker addresses.
	Topic   string   // Destination topic.
	Version string   // Kafka cluster version, e.g. "3.6.0".
}

// New creates a Publisher backed by a Kafka topic.
func New(config *Config) (publish.Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.New("no brokers specified")
	}
	if config.Topic == "" {
		return nil, errors.New("no topic specified")
	}
	sc := sarama.NewConfig()
	if config.Version != "" {
		version, err := sarama.ParseKafkaVersion(config.Version)
		if err != nil {
			return nil, err
		}
		sc.Version = version
	}
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	producer, err := sarama.NewSyncProducer(config.Brokers, sc)
	if err != nil {
		return nil, errors.Wrap(err, "error creating producer client")
	}
	return &publisher{
		producer: producer,
		topic:    config.Topic,
	}, nil
}

type publisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ publish.Publisher = &publisher{}

// Publish implements publish.Publisher. The returned id is the
// partition and offset assigned by the broker.
func (p *publisher) Publish(_ context.Context, payload string) (string, error) {
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.StringEncoder(payload),
	})
	if err != nil {
		return "", errors.Wrapf(err, "publish to %s", p.topic)
	}
	return fmt.Sprintf("%d/%d", partition, offset), nil
}
