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

package transform

import (
	"context"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/dates"
	"github.com/dlcslabs/solrfeed/mapping"
	"github.com/dlcslabs/solrfeed/thumbnail"
	"github.com/dlcslabs/solrfeed/vocab"
)

// Package transform turns one DLCS row into one complete Solr document: the
// base field-mapping pass over the schema, then the derived-field passes
// (thumbnail fallback chain, collection-name backfill, facet mirrors, year
// extraction) layered on top.

// Object types of the DLCS export. Collection rows feed the collection
// index; ChildWork and Page rows exist only as thumbnail candidates and are
// never emitted.
const (
	ObjectTypeCollection = "Collection"
	ObjectTypeChildWork  = "ChildWork"
	ObjectTypePage       = "Page"
)

// facetPairs maps each facet field to the display field it mirrors. The
// year facet is listed here for the mirror pass but is overwritten by the
// year-extraction pass afterwards.
var facetPairs = map[string]string{
	"genre_sim":                        "genre_tesim",
	"human_readable_language_sim":      "language_tesim",
	"human_readable_resource_type_sim": "resource_type_tesim",
	"location_sim":                     "location_tesim",
	"member_of_collections_ssim":       mapping.FieldCollectionName,
	"named_subject_sim":                "named_subject_tesim",
	"subject_sim":                      "subject_tesim",
	mapping.FieldYearFacet:             "year_tesim",
}

// CollectionIndex maps a collection's ARK to its title.
type CollectionIndex map[string]string

// BuildCollectionIndex derives the collection-name index from all rows
// flagged as collection records. Built once per run, read-only thereafter.
func BuildCollectionIndex(rows []solrfeed.Record) CollectionIndex {
	index := make(CollectionIndex)
	for _, row := range rows {
		if mapping.Cell(row, mapping.ColObjectType) != ObjectTypeCollection {
			continue
		}
		ark := mapping.Cell(row, mapping.ColItemARK)
		if ark == "" {
			continue
		}
		index[ark] = mapping.Cell(row, mapping.ColTitle)
	}
	return index
}

// WorkRows returns a filter that excludes ChildWork and Page rows from the
// pipeline.
func WorkRows() solrfeed.Filter {
	return solrfeed.FilterFunc(func(ctx context.Context, record solrfeed.Record) (bool, error) {
		objectType := mapping.Cell(record, mapping.ColObjectType)
		return objectType != ObjectTypeChildWork && objectType != ObjectTypePage, nil
	})
}

// Config carries the read-only reference data a Transformer needs. All of it
// is built before processing starts and never mutated per row.
type Config struct {
	// Schema assigns a mapping rule to every output field. Defaults to
	// mapping.DefaultSchema().
	Schema mapping.Schema
	// Vocabularies holds the controlled-vocabulary tables, keyed by field
	// base name. May be nil.
	Vocabularies vocab.Config
	// Collections maps collection ARKs to titles for the backfill pass.
	Collections CollectionIndex
	// Rows is the full row set, used for sibling thumbnail lookups.
	Rows []solrfeed.Record
	// Thumbnails resolves the thumbnail fallback chain. Defaults to a
	// resolver with the standard fetch timeout.
	Thumbnails *thumbnail.Resolver
}

// Transformer implements solrfeed.Transformer for DLCS rows. It holds only
// read-only reference config, so transforming the same row twice yields
// identical documents.
type Transformer struct {
	schema      mapping.Schema
	vocabs      vocab.Config
	collections CollectionIndex
	rows        []solrfeed.Record
	thumbnails  *thumbnail.Resolver
}

// New creates a Transformer from config, filling in defaults.
func New(cfg Config) *Transformer {
	if cfg.Schema == nil {
		cfg.Schema = mapping.DefaultSchema()
	}
	if cfg.Thumbnails == nil {
		cfg.Thumbnails = thumbnail.NewResolver()
	}
	return &Transformer{
		schema:      cfg.Schema,
		vocabs:      cfg.Vocabularies,
		collections: cfg.Collections,
		rows:        cfg.Rows,
		thumbnails:  cfg.Thumbnails,
	}
}

// Transform maps one row to a complete Solr document. Every field declared
// in the schema is present in the result, possibly nil or empty. The only
// fatal error is a malformed mapping rule; every derived-field failure
// degrades to a nil field.
func (t *Transformer) Transform(ctx context.Context, row solrfeed.Record) (solrfeed.Record, error) {
	record := make(solrfeed.Record, len(t.schema)+len(facetPairs))

	// Base pass. Must fully complete before the derived-field passes, which
	// read base-pass outputs.
	for fieldName, rule := range t.schema {
		value, err := mapping.Resolve(row, fieldName, rule, t.vocabs)
		if err != nil {
			return nil, err
		}
		record[fieldName] = value
	}

	// Thumbnail: explicitly mapped value, then siblings, then manifest.
	if url, ok := record[mapping.FieldThumbnail].(string); !ok || url == "" {
		url := t.thumbnails.FromSiblings(record, t.rows)
		if url == "" {
			url = t.thumbnails.FromManifest(ctx, record)
		}
		if url != "" {
			record[mapping.FieldThumbnail] = url
		} else {
			record[mapping.FieldThumbnail] = nil
		}
	}

	// Collection-name backfill overwrites whatever the base pass mapped.
	if parent := mapping.Cell(row, mapping.ColParentARK); parent != "" {
		if title, ok := t.collections[parent]; ok {
			record[mapping.FieldCollectionName] = []string{title}
		}
	}

	// Facet mirrors copy display values verbatim.
	for facetField, displayField := range facetPairs {
		record[facetField] = record[displayField]
	}

	// The year facet is the normalized year list, not a mirror copy.
	record[mapping.FieldYearFacet] = dates.ExtractYears(record[mapping.FieldNormalizedDate])

	return record, nil
}
