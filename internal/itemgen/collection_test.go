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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionID(t *testing.T) {
	tests := []struct {
		name string
		meta JobMetadata
		want string
	}{
		{
			name: "good",
			meta: JobMetadata{
				Username:         "superman",
				AlgorithmName:    "awesome-algo",
				AlgorithmVersion: "0.1",
				Tag:              "test",
			},
			want: "superman__awesome-algo__0.1__test",
		},
		{
			name: "unsafe characters collapse",
			meta: JobMetadata{
				Username:         "clark kent",
				AlgorithmName:    "algo/with?chars",
				AlgorithmVersion: "1.0#beta",
				Tag:              "a%b&c",
			},
			want: "clark-kent__algo-with-chars__1.0-beta__a-b-c",
		},
		{
			name: "uppercase folds to lower",
			meta: JobMetadata{
				Username:         "Superman",
				AlgorithmName:    "Awesome-Algo",
				AlgorithmVersion: "0.1",
				Tag:              "TEST",
			},
			want: "superman__awesome-algo__0.1__test",
		},
		{
			name: "diacritics transliterate",
			meta: JobMetadata{
				Username:         "josé",
				AlgorithmName:    "algo",
				AlgorithmVersion: "1",
				Tag:              "über",
			},
			want: "jose__algo__1__uber",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			got := CollectionID(&tt.meta)
			a.Equal(tt.want, got)
			// Resolving an already-normalized id is a no-op.
			a.Equal(got, slugify(got))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello-world"},
		{"a / b ? c", "a-b-c"},
		{"  padded  ", "padded"},
		{"already-normal", "already-normal"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a := assert.New(t)
			got := slugify(tt.in)
			a.Equal(tt.want, got)
			a.Equal(got, slugify(got))
		})
	}
}
