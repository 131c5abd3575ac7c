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
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const collectionIDFormat = "%s__%s__%s__%s"

// Characters that are unsafe in a collection id used as a URL path
// segment. Runs collapse to a single separator.
var collectionSeparators = regexp.MustCompile(`[/?#%&\s]+`)

// asciiFold strips diacritics and drops any rune that does not
// transliterate into ASCII.
var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	norm.NFC,
)

// CollectionID derives the catalog collection identifier for a job.
// The result is deterministic for a given metadata record and is
// already normalized: resolving a second time is a no-op.
func CollectionID(meta *JobMetadata) string {
	formatted := fmt.Sprintf(collectionIDFormat,
		meta.Username, meta.AlgorithmName, meta.AlgorithmVersion, meta.Tag)
	return slugify(formatted)
}

// slugify normalizes a string into a URL/path-safe identifier.
// Idempotent: slugify(slugify(s)) == slugify(s).
func slugify(s string) string {
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = collectionSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
