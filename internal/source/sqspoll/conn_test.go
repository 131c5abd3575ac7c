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
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockSQS hands out the scripted batches in order, then asks the
// consumer to stop.
type mockSQS struct {
	batches [][]types.Message
	stop    func()

	mu       sync.Mutex
	deleted  []string
	receives int
}

var _ sqsAPI = &mockSQS{}

// ReceiveMessage implements sqsAPI.
func (m *mockSQS) ReceiveMessage(
	_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options),
) (*sqs.ReceiveMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receives++
	if len(m.batches) == 0 {
		m.stop()
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

// DeleteMessage implements sqsAPI.
func (m *mockSQS) DeleteMessage(
	_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options),
) (*sqs.DeleteMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

// failingBodies is a MessageProcessor that fails the listed bodies.
type failingBodies map[string]bool

var _ itemgen.MessageProcessor = failingBodies{}

// Process implements itemgen.MessageProcessor.
func (f failingBodies) Process(_ context.Context, body string) error {
	if f[body] {
		return errors.New("scripted failure")
	}
	return nil
}

func message(id, body, handle string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		Body:          aws.String(body),
		ReceiptHandle: aws.String(handle),
	}
}

func runPoll(t *testing.T, mock *mockSQS, proc itemgen.MessageProcessor) {
	t.Helper()
	ctx := stopper.WithContext(context.Background())
	mock.stop = func() { ctx.Stop(time.Second) }
	conn := &Conn{
		client: mock,
		config: &Config{
			BatchSize: 10,
			QueueURL:  "https://sqs.us-east-1.amazonaws.com/123456789012/catalog-events",
		},
		coordinator: itemgen.NewCoordinator(proc, 1),
		limiter:     rate.NewLimiter(rate.Inf, 1),
	}
	done := make(chan error, 1)
	go func() { done <- conn.poll(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("poll did not stop")
	}
}

func TestPollDeletesOnlySuccesses(t *testing.T) {
	a := assert.New(t)
	mock := &mockSQS{
		batches: [][]types.Message{{
			message("m1", "good", "h1"),
			message("m2", "bad", "h2"),
			message("m3", "good", "h3"),
		}},
	}
	runPoll(t, mock, failingBodies{"bad": true})
	a.ElementsMatch([]string{"h1", "h3"}, mock.deleted)
}

func TestPollDeletesEverythingOnSuccess(t *testing.T) {
	a := assert.New(t)
	mock := &mockSQS{
		batches: [][]types.Message{
			{message("m1", "good", "h1")},
			{message("m2", "good", "h2")},
		},
	}
	runPoll(t, mock, failingBodies{})
	a.ElementsMatch([]string{"h1", "h2"}, mock.deleted)
	a.Equal(3, mock.receives)
}

func TestPollEmptyReceive(t *testing.T) {
	a := assert.New(t)
	mock := &mockSQS{}
	runPoll(t, mock, failingBodies{})
	a.Empty(mock.deleted)
}
