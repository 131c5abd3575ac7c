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
	"testing"
	"time"

	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Generator: itemgen.Config{ChannelURL: "memory://", Workers: 1},
		BatchSize: defaultBatchSize,
		QueueURL:  "https://sqs.us-east-1.amazonaws.com/123456789012/catalog-events",
		WaitTime:  defaultWaitTime,
	}
}

func TestConfigPreflight(t *testing.T) {
	tests := []struct {
		name    string
		tweak   func(*Config)
		wantErr string
	}{
		{
			name:  "good",
			tweak: func(*Config) {},
		},
		{
			name:    "queue required",
			tweak:   func(c *Config) { c.QueueURL = "" },
			wantErr: "no queue specified",
		},
		{
			name:    "batch too large",
			tweak:   func(c *Config) { c.BatchSize = 11 },
			wantErr: "batchSize",
		},
		{
			name:    "batch too small",
			tweak:   func(c *Config) { c.BatchSize = 0 },
			wantErr: "batchSize",
		},
		{
			name:    "wait too long",
			tweak:   func(c *Config) { c.WaitTime = 21 * time.Second },
			wantErr: "waitTime",
		},
		{
			name:    "negative poll rate",
			tweak:   func(c *Config) { c.PollRate = -1 },
			wantErr: "pollRate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			t.Setenv("ITEM_GEN_QUEUE_URL", "")
			cfg := baseConfig()
			tt.tweak(cfg)
			err := cfg.Preflight(context.Background())
			if tt.wantErr != "" {
				a.ErrorContains(err, tt.wantErr)
				return
			}
			a.NoError(err)
		})
	}
}

func TestConfigQueueFromEnvironment(t *testing.T) {
	a := assert.New(t)
	t.Setenv("ITEM_GEN_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123456789012/from-env")
	cfg := baseConfig()
	cfg.QueueURL = ""
	a.NoError(cfg.Preflight(context.Background()))
	a.Equal("https://sqs.us-east-1.amazonaws.com/123456789012/from-env", cfg.QueueURL)
}
