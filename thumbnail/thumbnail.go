//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SolrFeed Authors
//
// This file is part of SolrFeed.
//
// SolrFeed is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SolrFeed is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SolrFeed. If not, see https://www.gnu.org/licenses/.

package thumbnail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/mapping"
)

// Package thumbnail resolves a thumbnail URL for a record through a fallback
// chain: an explicitly mapped thumbnail, a thumbnail derived from the
// record's child rows, and finally the record's IIIF manifest. Every path is
// best-effort; a failed lookup degrades to "no thumbnail".

// CanonicalLabel is the title of a work's first leaf. A child row or canvas
// carrying this label is preferred when picking a thumbnail.
const CanonicalLabel = "f. 001r"

// ErrNoManifestURL means the record has no manifest-URL field to fetch.
var ErrNoManifestURL = errors.New("record has no manifest url")

// ErrNoCanvases means the manifest decoded but contained no usable canvas.
var ErrNoCanvases = errors.New("manifest has no canvases")

// ManifestError wraps a failed manifest fetch with operation context.
type ManifestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *ManifestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("manifest %s [%d] %s: %v", e.Op, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("manifest %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ResolverOption allows functional customization of a Resolver.
type ResolverOption func(*Resolver)

// WithTimeout bounds the manifest fetch. The default is 10 seconds.
func WithTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) { r.client.Timeout = timeout }
}

// WithHTTPClient replaces the manifest-fetching HTTP client.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) { r.client = client }
}

// Resolver picks thumbnails from sibling rows and IIIF manifests.
// A Resolver is stateless across records and safe for reuse.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a Resolver with default or overridden options.
func NewResolver(options ...ResolverOption) *Resolver {
	r := &Resolver{
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// FromSiblings picks a thumbnail from rows that are children of the record,
// i.e. rows whose parent ARK equals the record's own ARK. Children titled
// with the canonical first-leaf label are preferred; failing that, all
// children are considered in table order. Returns "" when no child yields a
// thumbnail. Never fails.
func (r *Resolver) FromSiblings(record solrfeed.Record, rows []solrfeed.Record) string {
	ark, ok := record[mapping.FieldARK].(string)
	if !ok || ark == "" {
		return ""
	}

	var children []solrfeed.Record
	for _, row := range rows {
		if mapping.Cell(row, mapping.ColParentARK) == ark {
			children = append(children, row)
		}
	}

	candidates := make([]solrfeed.Record, 0, len(children))
	for _, child := range children {
		if mapping.Cell(child, mapping.ColTitle) == CanonicalLabel {
			candidates = append(candidates, child)
		}
	}
	if len(candidates) == 0 {
		candidates = children
	}

	for _, candidate := range candidates {
		if url := mapping.ThumbnailURL(candidate); url != "" {
			return url
		}
	}
	return ""
}

// FromManifest picks a thumbnail by downloading the record's IIIF manifest.
// Any failure collapses to "": this path is explicitly best-effort and never
// propagates an error to the caller. Use ManifestURL directly to distinguish
// the failure modes.
func (r *Resolver) FromManifest(ctx context.Context, record solrfeed.Record) string {
	url, err := r.ManifestURL(ctx, record)
	if err != nil {
		if !errors.Is(err, ErrNoManifestURL) {
			slog.Debug("manifest thumbnail lookup failed", "error", err)
		}
		return ""
	}
	return url
}

// ManifestURL fetches the record's IIIF manifest and derives a thumbnail
// URL: the image-service base URL of the canvas labeled with the canonical
// first-leaf label (or the first canvas, when none matches) plus the fixed
// image-request suffix.
//
// Returns ErrNoManifestURL when the manifest-URL field is absent,
// ErrNoCanvases when the manifest holds no usable canvas, and a
// ManifestError for fetch and decode failures.
func (r *Resolver) ManifestURL(ctx context.Context, record solrfeed.Record) (string, error) {
	manifestURL := manifestURLField(record)
	if manifestURL == "" {
		return "", ErrNoManifestURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return "", &ManifestError{Op: "request", URL: manifestURL, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ManifestError{Op: "fetch", URL: manifestURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ManifestError{
			Op:         "fetch",
			URL:        manifestURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	var m manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return "", &ManifestError{Op: "decode", URL: manifestURL, Err: err}
	}

	base, ok := m.serviceBase()
	if !ok {
		return "", ErrNoCanvases
	}
	return base + mapping.IIIFImageSuffix, nil
}

// manifestURLField reads the manifest-URL field from a mapped record. The
// field is a list of strings after the base mapping pass; the first value
// wins.
func manifestURLField(record solrfeed.Record) string {
	switch v := record[mapping.FieldManifestURL].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// manifest is the subset of a IIIF presentation manifest the resolver needs:
// sequences of canvases, each with a label and an image-service id.
type manifest struct {
	Sequences []struct {
		Canvases []struct {
			Label  string `json:"label"`
			Images []struct {
				Resource struct {
					Service struct {
						ID string `json:"@id"`
					} `json:"service"`
				} `json:"resource"`
			} `json:"images"`
		} `json:"canvases"`
	} `json:"sequences"`
}

// serviceBase flattens all canvases across all sequences and picks the
// image-service base URL of the canonical-label canvas, falling back to the
// first canvas with a usable image service.
func (m manifest) serviceBase() (string, bool) {
	first := ""
	for _, sequence := range m.Sequences {
		for _, canvas := range sequence.Canvases {
			if len(canvas.Images) == 0 {
				continue
			}
			id := canvas.Images[0].Resource.Service.ID
			if id == "" {
				continue
			}
			if canvas.Label == CanonicalLabel {
				return id, true
			}
			if first == "" {
				first = id
			}
		}
	}
	if first == "" {
		return "", false
	}
	return first, true
}
