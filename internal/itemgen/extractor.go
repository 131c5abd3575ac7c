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

	"github.com/maap-project/dps-stac-itemgen/internal/stac"
	"github.com/pkg/errors"
)

// ItemSequence is a lazy stream of validated, collection-tagged items.
// Nothing is fetched until Next asks for it, and a failure stops the
// sequence permanently: items after a failing one are never touched.
type ItemSequence struct {
	collection string
	err        error
	walker     *stac.Walker
}

// Extract loads the catalog document at the given URI and returns the
// sequence of items reachable from it. Each yielded item has been
// validated against its schema, had its asset hrefs rewritten to
// absolute form, and had its collection field overridden with the
// given id. An error here means the catalog itself could not be
// loaded; no items have been yielded.
func Extract(
	ctx context.Context, fetcher stac.Fetcher, uri string, collection string,
) (*ItemSequence, error) {
	walker, err := stac.NewWalker(ctx, fetcher, uri)
	if err != nil {
		return nil, errors.Wrapf(ErrCatalogLoad, "%s: %v", uri, err)
	}
	return &ItemSequence{
		collection: collection,
		walker:     walker,
	}, nil
}

// Next materializes the next item. It returns false when the sequence
// is exhausted or stopped; consult Err to distinguish.
func (s *ItemSequence) Next(ctx context.Context) (*stac.Item, bool) {
	if s.err != nil {
		return nil, false
	}
	raw, ok := s.walker.Next(ctx)
	if !ok {
		if err := s.walker.Err(); err != nil {
			s.err = errors.Wrapf(ErrCatalogLoad, "%v", err)
		}
		return nil, false
	}
	item, err := s.materialize(raw)
	if err != nil {
		s.err = err
		return nil, false
	}
	return item, true
}

// Err returns the failure that terminated the sequence, if any.
func (s *ItemSequence) Err() error {
	return s.err
}

func (s *ItemSequence) materialize(raw *stac.RawItem) (*stac.Item, error) {
	if err := stac.ValidateItem(raw.Data); err != nil {
		return nil, errors.Wrapf(ErrSchemaValidation, "item at %s: %v", raw.Href, err)
	}
	var item stac.Item
	if err := json.Unmarshal(raw.Data, &item); err != nil {
		return nil, errors.Wrapf(ErrSchemaValidation, "item at %s: %v", raw.Href, err)
	}
	if err := item.MakeAssetHrefsAbsolute(raw.Href); err != nil {
		return nil, errors.Wrapf(ErrSchemaValidation, "item %s: %v", item.ID, err)
	}
	item.Collection = s.collection
	// The override must not have produced a record the schema rejects.
	tagged, err := json.Marshal(&item)
	if err != nil {
		return nil, errors.Wrapf(ErrSchemaValidation, "item %s: %v", item.ID, err)
	}
	if err := stac.ValidateItem(tagged); err != nil {
		return nil, errors.Wrapf(ErrSchemaValidation, "item %s after retag: %v", item.ID, err)
	}
	return &item, nil
}
