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
	"regexp"

	"github.com/pkg/errors"
)

// DPS writes job outputs under a YYYY/MM/DD/HH/mm/ss/<run-id> segment.
var outputPrefixPattern = regexp.MustCompile(`\d{4}/\d{2}/\d{2}/\d{2}/\d{2}/\d{2}/\d+`)

// OutputPrefix finds the key prefix for the outputs associated with a
// DPS job: everything through the first run-timestamp segment, with a
// trailing separator. A key without the segment can never be matched
// to a job and yields ErrPrefixNotFound.
func OutputPrefix(key string) (string, error) {
	loc := outputPrefixPattern.FindStringIndex(key)
	if loc == nil {
		return "", errors.Wrapf(ErrPrefixNotFound, "from %s", key)
	}
	return key[:loc[1]] + "/", nil
}
