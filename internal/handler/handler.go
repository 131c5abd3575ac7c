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

// Package handler adapts the batch coordinator to the AWS Lambda SQS
// trigger with partial batch responses enabled.
package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
)

// Handler is the Lambda entrypoint.
type Handler struct {
	coordinator *itemgen.Coordinator
}

// New wraps the given coordinator.
func New(coordinator *itemgen.Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// Handle processes one SQS event batch. The response names only the
// messages to redeliver; an empty response signals full-batch success.
// The returned error is always nil: an invocation-level error would
// redeliver the entire batch, including messages that succeeded.
func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	batch := make([]itemgen.Message, 0, len(event.Records))
	for _, record := range event.Records {
		batch = append(batch, itemgen.Message{
			ID:   record.MessageId,
			Body: record.Body,
		})
	}
	failures := h.coordinator.Run(ctx, batch)
	var resp events.SQSEventResponse
	for _, failure := range failures {
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
			ItemIdentifier: failure.ItemIdentifier,
		})
	}
	return resp, nil
}
