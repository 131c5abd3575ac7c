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

import "github.com/pkg/errors"

// Failure classes for one message. None of these will succeed on a
// blind redelivery, but they are still reported per message so the
// queue's redrive policy stays in control.
var (
	// ErrMalformedPayload indicates a message body or embedded event
	// that is not well-formed JSON.
	ErrMalformedPayload = errors.New("malformed notification payload")
	// ErrInvalidEventShape indicates an event with zero or multiple
	// records; the trigger is configured to deliver exactly one.
	ErrInvalidEventShape = errors.New("expected exactly one event record")
	// ErrMissingField indicates a required field absent from the event
	// or the job metadata.
	ErrMissingField = errors.New("missing required field")
	// ErrNotACatalogFile indicates an object key that is not a catalog
	// document. Rejected before any remote access is attempted.
	ErrNotACatalogFile = errors.New("object key is not a catalog.json")
	// ErrPrefixNotFound indicates an object key without the job output
	// timestamp segment.
	ErrPrefixNotFound = errors.New("could not identify the DPS output prefix")
	// ErrMetadataNotFound indicates that no metadata sidecar file was
	// found with the job outputs.
	ErrMetadataNotFound = errors.New("could not locate the metadata file with the DPS job outputs")
	// ErrCatalogLoad indicates that a catalog document could not be
	// fetched or parsed. No further items are yielded.
	ErrCatalogLoad = errors.New("cannot load catalog")
	// ErrSchemaValidation indicates an item that failed validation
	// against the item schema. The remaining items of its catalog are
	// not processed.
	ErrSchemaValidation = errors.New("item failed schema validation")
)
