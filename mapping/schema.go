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

package mapping

import (
	"github.com/dlcslabs/solrfeed"
)

// CSV columns of the DLCS export referenced outside the schema table.
const (
	ColItemARK         = "Item ARK"
	ColParentARK       = "Parent ARK"
	ColTitle           = "Title"
	ColObjectType      = "Object Type"
	ColThumbnailURL    = "Thumbnail URL"
	ColIIIFAccessURL   = "IIIF Access URL"
	ColIIIFManifestURL = "IIIF Manifest URL"
)

// Output fields referenced by the derived-field passes.
const (
	FieldARK            = "ark_ssi"
	FieldTitle          = "title_tesim"
	FieldThumbnail      = "thumbnail_url_ss"
	FieldManifestURL    = "iiif_manifest_url_ssi"
	FieldCollectionName = "dlcs_collection_name_tesim"
	FieldNormalizedDate = "normalized_date_tesim"
	FieldYearFacet      = "year_isim"
)

// IIIFImageSuffix is the fixed image-request suffix appended to an IIIF
// image-service base URL: full region, bounded 200x200, default
// rotation/quality, JPEG.
const IIIFImageSuffix = "/full/!200,200/0/default.jpg"

// Schema assigns a mapping rule to every output field. The schema is fixed
// configuration, loaded once and immutable for the run.
type Schema map[string]Rule

// DefaultSchema returns the Ursus output schema for DLCS CSV exports.
func DefaultSchema() Schema {
	return Schema{
		FieldARK:                  Computed("ark"),
		FieldThumbnail:            Computed("thumbnail_url"),
		FieldManifestURL:          ColumnRef(ColIIIFManifestURL),
		"access_copy_ssi":         ColumnRef(ColIIIFAccessURL),
		FieldTitle:                ColumnRef(ColTitle),
		"alternative_title_tesim": ColumnList{"AltTitle.other", "AltTitle.uniform", "AltTitle.translated"},
		"architect_tesim":         ColumnRef("Name.architect"),
		"author_tesim":            ColumnRef("Author"),
		"caption_tesim":           ColumnRef("Description.caption"),
		"date_created_tesim":      ColumnRef("Date.creation"),
		FieldNormalizedDate:       ColumnRef("Date.normalized"),
		"description_tesim":       ColumnRef("Description.note"),
		"dimensions_tesim":        ColumnRef("Format.dimensions"),
		"extent_tesim":            ColumnRef("Format.extent"),
		"genre_tesim":             ColumnRef("Type.genre"),
		"language_tesim":          ColumnRef("Language"),
		"location_tesim":          ColumnRef("Coverage.geographic"),
		"medium_tesim":            ColumnRef("Format.medium"),
		"named_subject_tesim":     ColumnList{"Name.subject", "Subject.personalName", "Subject.corporateName"},
		"photographer_tesim":      ColumnRef("Name.photographer"),
		"publisher_tesim":         ColumnRef("Publisher.publisherName"),
		"repository_tesim":        ColumnRef("Name.repository"),
		"resource_type_tesim":     ColumnRef("Type.typeOfResource"),
		"rights_country_tesim":    ColumnRef("Rights.countryCreation"),
		"rights_holder_tesim":     ColumnRef("Rights.rightsHolderContact"),
		"subject_tesim":           ColumnRef("Subject"),
		// Backfilled from the collection index after the base pass.
		FieldCollectionName: nil,
	}
}

func init() {
	RegisterComputed("ark", func(row solrfeed.Record) interface{} {
		if ark := Cell(row, ColItemARK); ark != "" {
			return ark
		}
		return nil
	})

	// The explicit Thumbnail URL cell wins; otherwise the IIIF access URL
	// plus the fixed image-request suffix.
	RegisterComputed("thumbnail_url", func(row solrfeed.Record) interface{} {
		if url := Cell(row, ColThumbnailURL); url != "" {
			return url
		}
		if url := Cell(row, ColIIIFAccessURL); url != "" {
			return url + IIIFImageSuffix
		}
		return nil
	})
}

// ThumbnailURL derives a thumbnail URL from a row using the same rule the
// schema uses for the thumbnail field. Returns "" when the row has none.
func ThumbnailURL(row solrfeed.Record) string {
	value, err := Resolve(row, FieldThumbnail, Computed("thumbnail_url"), nil)
	if err != nil {
		return ""
	}
	if url, ok := value.(string); ok {
		return url
	}
	return ""
}
