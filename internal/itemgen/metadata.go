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
	"context"
	"encoding/json"
	"strings"

	"github.com/maap-project/dps-stac-itemgen/internal/bucket"
	"github.com/pkg/errors"
)

// metadataSuffix names the sidecar file uploaded with DPS job outputs.
const metadataSuffix = "met.json"

// JobMetadata carries the job-identifying fields from the sidecar
// file. All four fields are required; the loader rejects a sidecar
// missing any of them rather than deferring the failure to the
// collection resolver.
type JobMetadata struct {
	Username         string
	AlgorithmName    string
	AlgorithmVersion string
	Tag              string
}

// LoadJobMetadata locates and parses the metadata sidecar file under
// the given output prefix. The first listed object whose path ends
// with the metadata suffix wins; the listing is not read past it.
// Returns comma-ok false, not an error, if the complete listing has no
// match.
func LoadJobMetadata(
	ctx context.Context, reader bucket.Reader, prefix string,
) (*JobMetadata, bool, error) {
	var found string
	options := &bucket.WalkOptions{
		Limit:     bucket.NoLimit,
		Recursive: true,
	}
	err := reader.Walk(ctx, prefix, options, func(_ context.Context, name string) error {
		if strings.HasSuffix(name, metadataSuffix) {
			found = name
			return bucket.ErrSkipAll
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "listing %s", prefix)
	}
	if found == "" {
		return nil, false, nil
	}
	buff, err := reader.Open(ctx, found)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to retrieve %s", found)
	}
	defer buff.Close()
	// Sidecars carry arbitrary extra fields; only the four string
	// fields below matter here.
	fields := make(map[string]any)
	if err := json.NewDecoder(buff).Decode(&fields); err != nil {
		return nil, false, errors.Wrapf(err, "failed to parse %s", found)
	}
	meta, err := metadataFromFields(fields)
	if err != nil {
		return nil, false, errors.Wrapf(err, "in %s", found)
	}
	return meta, true, nil
}

func metadataFromFields(fields map[string]any) (*JobMetadata, error) {
	get := func(key string) (string, error) {
		value, ok := fields[key].(string)
		if !ok || value == "" {
			return "", errors.Wrap(ErrMissingField, key)
		}
		return value, nil
	}
	username, err := get("username")
	if err != nil {
		return nil, err
	}
	algorithmName, err := get("algorithm_name")
	if err != nil {
		return nil, err
	}
	algorithmVersion, err := get("algorithm_version")
	if err != nil {
		return nil, err
	}
	tag, err := get("tag")
	if err != nil {
		return nil, err
	}
	return &JobMetadata{
		Username:         username,
		AlgorithmName:    algorithmName,
		AlgorithmVersion: algorithmVersion,
		Tag:              tag,
	}, nil
}
