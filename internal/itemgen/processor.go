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

	"github.com/maap-project/dps-stac-itemgen/internal/publish"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// A Processor runs the item-generation pipeline for one notification
// message: envelope → output prefix → job metadata → collection id →
// item stream → publish. It holds only process-wide client handles and
// is safe for concurrent use.
type Processor struct {
	publisher publish.Publisher
	stores    Stores
}

// NewProcessor constructs a Processor from injected capabilities.
func NewProcessor(stores Stores, publisher publish.Publisher) *Processor {
	return &Processor{
		publisher: publisher,
		stores:    stores,
	}
}

// Process handles a single message body. Any returned error is a
// per-message failure; items published before the error occurred are
// not rolled back.
func (p *Processor) Process(ctx context.Context, body string) error {
	ref, err := ParseEnvelope(body)
	if err != nil {
		return err
	}
	prefix, err := OutputPrefix(ref.Key)
	if err != nil {
		return err
	}
	reader, _, err := p.stores.Resolve(ctx, "s3://"+ref.Bucket)
	if err != nil {
		return err
	}
	meta, ok, err := LoadJobMetadata(ctx, reader, prefix)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrMetadataNotFound, "in %s", prefix)
	}
	collection := CollectionID(meta)
	log.WithFields(log.Fields{
		"catalog":    ref.URI(),
		"collection": collection,
	}).Debug("extracting items")

	seq, err := Extract(ctx, &storeFetcher{stores: p.stores}, ref.URI(), collection)
	if err != nil {
		return err
	}
	for {
		item, ok := seq.Next(ctx)
		if !ok {
			break
		}
		payload, err := json.Marshal(item)
		if err != nil {
			return errors.Wrapf(err, "serializing item %s", item.ID)
		}
		messageID, err := p.publisher.Publish(ctx, string(payload))
		if err != nil {
			itemsPublishErrors.Inc()
			return errors.Wrapf(err, "publishing item %s", item.ID)
		}
		itemsPublished.Inc()
		log.WithFields(log.Fields{
			"item":      item.ID,
			"messageId": messageID,
		}).Info("published item")
	}
	return seq.Err()
}
