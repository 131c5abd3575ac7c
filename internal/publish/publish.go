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

// Package publish defines the capability used to deliver generated
// items to the downstream load channel.
package publish

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// A Publisher delivers one payload to the configured channel. Publishes
// are fire-and-forget; no transaction spans multiple calls.
type Publisher interface {
	// Publish sends the payload and returns the channel-assigned
	// message id.
	Publish(ctx context.Context, payload string) (string, error)
}

// Memory is a Publisher that records payloads in memory. It is used by
// tests and by the dry-run mode of the CLI.
type Memory struct {
	mu       sync.Mutex
	payloads []string
}

var _ Publisher = &Memory{}

// Publish implements Publisher.
func (m *Memory) Publish(_ context.Context, payload string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return uuid.NewString(), nil
}

// Payloads returns a copy of the recorded payloads.
func (m *Memory) Payloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]string, len(m.payloads))
	copy(ret, m.payloads)
	return ret
}
