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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// catalogSuffix is the filename that terminates every catalog key the
// upstream trigger is configured to notify on.
const catalogSuffix = "catalog.json"

// notification is the outer SNS wrapper carried in the queue message
// body. Only the embedded Message string is consumed here.
type notification struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Message   string `json:"Message"`
	Timestamp string `json:"Timestamp"`
}

// eventRecords is the S3 event notification embedded in the wrapper.
type eventRecords struct {
	Records []eventRecord `json:"Records"`
}

type eventRecord struct {
	EventSource string `json:"eventSource"`
	EventName   string `json:"eventName"`
	S3          struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

// ObjectReference names a single object in the store.
type ObjectReference struct {
	Bucket string
	Key    string
}

// URI returns the reference in s3://bucket/key form.
func (r *ObjectReference) URI() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

// ParseEnvelope unwraps a queue message body into the single
// catalog-file creation reference it must carry. It is a pure
// transformation; no remote access happens here.
func ParseEnvelope(body string) (*ObjectReference, error) {
	var outer notification
	if err := json.Unmarshal([]byte(body), &outer); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	if outer.Message == "" {
		return nil, errors.Wrap(ErrMissingField, "Message")
	}
	var inner eventRecords
	if err := json.Unmarshal([]byte(outer.Message), &inner); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	switch len(inner.Records) {
	case 0:
		return nil, errors.Wrap(ErrInvalidEventShape, "no records")
	case 1:
	default:
		return nil, errors.Wrapf(ErrInvalidEventShape, "%d records", len(inner.Records))
	}
	record := inner.Records[0]
	if record.S3.Bucket.Name == "" {
		return nil, errors.Wrap(ErrMissingField, "bucket name")
	}
	if record.S3.Object.Key == "" {
		return nil, errors.Wrap(ErrMissingField, "object key")
	}
	if !strings.HasSuffix(record.S3.Object.Key, catalogSuffix) {
		return nil, errors.Wrap(ErrNotACatalogFile, record.S3.Object.Key)
	}
	return &ObjectReference{
		Bucket: record.S3.Bucket.Name,
		Key:    record.S3.Object.Key,
	}, nil
}
