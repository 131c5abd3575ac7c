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
	"github.com/maap-project/dps-stac-itemgen/internal/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itemgen_items_published_total",
		Help: "the total number of items published to the load channel",
	})
	itemsPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itemgen_items_publish_errors_total",
		Help: "the total number of item publishes that failed",
	})
	messageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "itemgen_message_seconds",
		Help:    "the time spent processing one notification message",
		Buckets: metrics.LatencyBuckets,
	})
	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemgen_messages_processed_total",
		Help: "the total number of messages processed, by outcome",
	}, []string{"outcome"})
)
