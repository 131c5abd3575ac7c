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

// Package stac models the subset of the SpatioTemporal Asset Catalog
// format produced by DPS jobs: a catalog document linking to item
// documents, possibly through nested sub-catalogs.
package stac

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Document type discriminators, from the "type" field.
const (
	TypeCatalog    = "Catalog"
	TypeCollection = "Collection"
	TypeFeature    = "Feature"
)

// Link relations used during traversal.
const (
	RelChild = "child"
	RelItem  = "item"
	RelSelf  = "self"
)

// A Fetcher loads the raw bytes of a STAC document at the given href.
type Fetcher interface {
	Fetch(ctx context.Context, href string) ([]byte, error)
}

// Link connects a STAC document to a related document.
type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Asset references a file associated with an Item.
type Asset struct {
	Href        string                     `json:"href"`
	Title       string                     `json:"title,omitempty"`
	Description string                     `json:"description,omitempty"`
	Type        string                     `json:"type,omitempty"`
	Roles       []string                   `json:"roles,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

// assetAlias avoids recursing into the custom JSON methods.
type assetAlias Asset

var assetKnownFields = []string{"href", "title", "description", "type", "roles"}

// UnmarshalJSON decodes the known fields and retains any extension
// fields so they survive a round trip.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var known assetAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, f := range assetKnownFields {
		delete(all, f)
	}
	if len(all) > 0 {
		known.Extra = all
	}
	*a = Asset(known)
	return nil
}

// MarshalJSON re-serializes the asset, including extension fields.
func (a Asset) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(assetAlias(a), a.Extra)
}

// Catalog is the slice of a catalog or collection document needed for
// traversal.
type Catalog struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Links       []Link `json:"links"`
}

// Item is a single spatiotemporal record. Fields not modeled here are
// retained verbatim and re-emitted on marshal.
type Item struct {
	Type           string            `json:"type"`
	StacVersion    string            `json:"stac_version"`
	StacExtensions []string          `json:"stac_extensions,omitempty"`
	ID             string            `json:"id"`
	Geometry       json.RawMessage   `json:"geometry"`
	Bbox           []float64         `json:"bbox,omitempty"`
	Properties     map[string]any    `json:"properties"`
	Links          []Link            `json:"links"`
	Assets         map[string]*Asset `json:"assets"`
	Collection     string            `json:"collection,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type itemAlias Item

var itemKnownFields = []string{
	"type", "stac_version", "stac_extensions", "id", "geometry",
	"bbox", "properties", "links", "assets", "collection",
}

// UnmarshalJSON decodes the known fields and retains any extension
// fields so they survive a round trip.
func (i *Item) UnmarshalJSON(data []byte) error {
	var known itemAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, f := range itemKnownFields {
		delete(all, f)
	}
	if len(all) > 0 {
		known.Extra = all
	}
	*i = Item(known)
	return nil
}

// MarshalJSON re-serializes the item, including extension fields.
func (i Item) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(itemAlias(i), i.Extra)
}

// MakeAssetHrefsAbsolute rewrites relative asset hrefs to absolute
// URIs anchored at the item's own location.
func (i *Item) MakeAssetHrefsAbsolute(self string) error {
	for name, asset := range i.Assets {
		abs, err := ResolveHref(self, asset.Href)
		if err != nil {
			return errors.Wrapf(err, "asset %q", name)
		}
		asset.Href = abs
	}
	return nil
}

// ResolveHref resolves ref against the location of the document at
// base. A ref that already carries a scheme is returned unchanged.
func ResolveHref(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "invalid href %q", ref)
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid base href %q", base)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// marshalWithExtra merges the typed fields over the retained unknown
// fields and serializes the result.
func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, collision := merged[k]; !collision {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// probe is used to discover the type of a fetched document.
type probe struct {
	Type string `json:"type"`
}

// DocumentType returns the "type" discriminator of a raw document.
func DocumentType(data []byte) (string, error) {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return "", errors.Wrap(err, "not a STAC document")
	}
	if strings.TrimSpace(p.Type) == "" {
		return "", errors.New("document has no type field")
	}
	return p.Type, nil
}
