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
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// RawItem is an item document discovered by a Walker, before any
// validation or rewriting has been applied.
type RawItem struct {
	Data []byte // The item document as fetched.
	Href string // Absolute location of the document.
}

// A Walker enumerates every item transitively reachable from a catalog,
// descending into nested sub-catalogs and collections. Documents are
// fetched on demand: no item is read until Next asks for it.
type Walker struct {
	err     error
	fetcher Fetcher
	// Hrefs not yet visited, in depth-first preorder. The front of the
	// slice is the next node.
	pending []string
	// Hrefs already enqueued. Sub-catalogs may link back to an
	// ancestor; each document is fetched at most once.
	visited map[string]bool
}

// NewWalker fetches and parses the root catalog document and prepares
// a traversal of its reachable items. An error here means the catalog
// itself is unusable; no items have been touched.
func NewWalker(ctx context.Context, fetcher Fetcher, root string) (*Walker, error) {
	w := &Walker{fetcher: fetcher, visited: map[string]bool{root: true}}
	data, err := fetcher.Fetch(ctx, root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to retrieve %s", root)
	}
	if err := w.expand(root, data); err != nil {
		return nil, err
	}
	return w, nil
}

// Next returns the next reachable item document. It returns false when
// the traversal is exhausted or a failure occurred; consult Err to
// distinguish. After a failure the walker stops permanently.
func (w *Walker) Next(ctx context.Context) (*RawItem, bool) {
	if w.err != nil {
		return nil, false
	}
	for len(w.pending) > 0 {
		if err := ctx.Err(); err != nil {
			w.err = err
			return nil, false
		}
		href := w.pending[0]
		w.pending = w.pending[1:]
		data, err := w.fetcher.Fetch(ctx, href)
		if err != nil {
			w.err = errors.Wrapf(err, "failed to retrieve %s", href)
			return nil, false
		}
		docType, err := DocumentType(data)
		if err != nil {
			w.err = errors.Wrapf(err, "failed to parse %s", href)
			return nil, false
		}
		switch docType {
		case TypeFeature:
			return &RawItem{Data: data, Href: href}, true
		case TypeCatalog, TypeCollection:
			if err := w.expand(href, data); err != nil {
				w.err = err
				return nil, false
			}
		default:
			w.err = errors.Errorf("unexpected document type %q at %s", docType, href)
			return nil, false
		}
	}
	return nil, false
}

// Err returns the failure that terminated the traversal, if any.
func (w *Walker) Err() error {
	return w.err
}

// expand parses a catalog document and prepends its item and child
// links, in document order, to the pending queue.
func (w *Walker) expand(href string, data []byte) error {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return errors.Wrapf(err, "failed to parse %s", href)
	}
	var items, children []string
	for _, link := range cat.Links {
		switch link.Rel {
		case RelItem, RelChild:
			abs, err := ResolveHref(href, link.Href)
			if err != nil {
				return errors.Wrapf(err, "catalog %s", href)
			}
			if w.visited[abs] {
				continue
			}
			w.visited[abs] = true
			if link.Rel == RelItem {
				items = append(items, abs)
			} else {
				children = append(children, abs)
			}
		}
	}
	// A catalog's own items come before anything found in its children.
	next := make([]string, 0, len(items)+len(children)+len(w.pending))
	next = append(next, items...)
	next = append(next, children...)
	w.pending = append(next, w.pending...)
	return nil
}
