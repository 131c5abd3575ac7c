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

package stac

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/item.json
var itemSchemaJSON string

var itemSchema = jsonschema.MustCompileString(
	"https://schemas.stacspec.org/item-spec/json-schema/item.json", itemSchemaJSON)

// ValidateItem checks a raw item document against the item schema for
// its declared type. The document must declare itself a Feature; the
// schema enforces the remaining structural requirements.
func ValidateItem(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "not a JSON document")
	}
	if err := itemSchema.Validate(doc); err != nil {
		return err
	}
	return nil
}
