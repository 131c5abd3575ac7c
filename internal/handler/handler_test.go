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

package handler

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bodyProcessor fails the bodies listed in failing.
type bodyProcessor struct {
	failing map[string]bool
}

var _ itemgen.MessageProcessor = &bodyProcessor{}

// Process implements itemgen.MessageProcessor.
func (p *bodyProcessor) Process(_ context.Context, body string) error {
	if p.failing[body] {
		return errors.New("scripted failure")
	}
	return nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name    string
		event   events.SQSEvent
		failing map[string]bool
		want    []string
	}{
		{
			name: "all succeed",
			event: events.SQSEvent{Records: []events.SQSMessage{
				{MessageId: "m1", Body: "b1"},
				{MessageId: "m2", Body: "b2"},
			}},
		},
		{
			name: "partial failure",
			event: events.SQSEvent{Records: []events.SQSMessage{
				{MessageId: "m1", Body: "b1"},
				{MessageId: "m2", Body: "b2"},
			}},
			failing: map[string]bool{"b2": true},
			want:    []string{"m2"},
		},
		{
			name:  "empty batch",
			event: events.SQSEvent{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			r := require.New(t)
			coord := itemgen.NewCoordinator(&bodyProcessor{failing: tt.failing}, 1)
			h := New(coord)
			resp, err := h.Handle(context.Background(), tt.event)
			// Message-level failures never become invocation errors.
			r.NoError(err)
			var got []string
			for _, f := range resp.BatchItemFailures {
				got = append(got, f.ItemIdentifier)
			}
			a.ElementsMatch(tt.want, got)
		})
	}
}
