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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/vocab"
)

func TestResolve_NilRule(t *testing.T) {
	value, err := Resolve(solrfeed.Record{"Title": "x"}, "dlcs_collection_name_tesim", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestResolve_SingleColumn(t *testing.T) {
	tests := []struct {
		name     string
		cell     interface{}
		expected []string
	}{
		{"single value", "a", []string{"a"}},
		{"multi value", "a|~|b", []string{"a", "b"}},
		{"trailing delimiter dropped", "a|~|b|~|", []string{"a", "b"}},
		{"nil cell", nil, []string{}},
		{"missing cell", struct{}{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := solrfeed.Record{}
			if _, skip := tt.cell.(struct{}); !skip {
				row["Subject"] = tt.cell
			}

			value, err := Resolve(row, "subject_tesim", ColumnRef("Subject"), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestResolve_ColumnListPreservesOrder(t *testing.T) {
	row := solrfeed.Record{
		"Name.subject":         "b|~|c",
		"Subject.personalName": "a",
	}

	rule := ColumnList{"Name.subject", "Subject.personalName"}
	value, err := Resolve(row, "named_subject_tesim", rule, nil)
	require.NoError(t, err)

	// Column order first, then within-column split order.
	assert.Equal(t, []string{"b", "c", "a"}, value)
}

func TestResolve_VocabularySubstitution(t *testing.T) {
	vocabs := vocab.Config{
		"resource_type": {"1": "Photograph"},
	}
	row := solrfeed.Record{"Type.typeOfResource": "1|~|2"}

	value, err := Resolve(row, "resource_type_tesim", ColumnRef("Type.typeOfResource"), vocabs)
	require.NoError(t, err)

	// Matching ids are substituted, everything else passes through.
	assert.Equal(t, []string{"Photograph", "2"}, value)
}

func TestResolve_VocabularyKeyedByBaseName(t *testing.T) {
	vocabs := vocab.Config{
		"genre": {"g1": "Poster"},
	}
	row := solrfeed.Record{"Type.genre": "g1"}

	for _, fieldName := range []string{"genre_tesim", "genre_sim"} {
		value, err := Resolve(row, fieldName, ColumnRef("Type.genre"), vocabs)
		require.NoError(t, err)
		assert.Equal(t, []string{"Poster"}, value, "field %s should share the genre vocabulary", fieldName)
	}
}

func TestResolve_Computed(t *testing.T) {
	RegisterComputed("test_row_count", func(row solrfeed.Record) interface{} {
		return len(row)
	})

	value, err := Resolve(solrfeed.Record{"a": "1", "b": "2"}, "count_isi", Computed("test_row_count"), nil)
	require.NoError(t, err)

	// Computed rules return their result verbatim, including non-list types.
	assert.Equal(t, 2, value)
}

func TestResolve_UnknownComputedHandleIsConfigError(t *testing.T) {
	_, err := Resolve(solrfeed.Record{}, "broken_ssi", Computed("no_such_handle"), nil)
	require.Error(t, err)

	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)
	assert.Equal(t, "broken_ssi", configErr.Field)
}

func TestRegisterComputed_DuplicatePanics(t *testing.T) {
	RegisterComputed("test_duplicate", func(row solrfeed.Record) interface{} { return nil })
	assert.Panics(t, func() {
		RegisterComputed("test_duplicate", func(row solrfeed.Record) interface{} { return nil })
	})
}

func TestBaseFieldName(t *testing.T) {
	tests := []struct {
		fieldName string
		expected  string
	}{
		{"genre_tesim", "genre"},
		{"genre_sim", "genre"},
		{"resource_type_tesim", "resource_type"},
		{"year_isim", "year"},
		{"title", "title"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, BaseFieldName(tt.fieldName))
	}
}

func TestCell(t *testing.T) {
	row := solrfeed.Record{
		"Title":    "Leaf",
		"Empty":    nil,
		"NotACell": 12,
	}

	assert.Equal(t, "Leaf", Cell(row, "Title"))
	assert.Equal(t, "", Cell(row, "Empty"))
	assert.Equal(t, "", Cell(row, "Missing"))
	assert.Equal(t, "", Cell(row, "NotACell"))
}

func TestComputedARK(t *testing.T) {
	value, err := Resolve(solrfeed.Record{ColItemARK: "ark:/123/abc"}, FieldARK, Computed("ark"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ark:/123/abc", value)

	value, err = Resolve(solrfeed.Record{}, FieldARK, Computed("ark"), nil)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestComputedThumbnailURL(t *testing.T) {
	explicit := solrfeed.Record{
		ColThumbnailURL:  "https://iiif.example/thumb.jpg",
		ColIIIFAccessURL: "https://iiif.example/image",
	}
	assert.Equal(t, "https://iiif.example/thumb.jpg", ThumbnailURL(explicit))

	derived := solrfeed.Record{ColIIIFAccessURL: "https://iiif.example/image"}
	assert.Equal(t, "https://iiif.example/image"+IIIFImageSuffix, ThumbnailURL(derived))

	assert.Equal(t, "", ThumbnailURL(solrfeed.Record{}))
}

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()

	// Backfilled fields are declared but intentionally unmapped.
	rule, declared := schema[FieldCollectionName]
	assert.True(t, declared)
	assert.Nil(t, rule)

	assert.Equal(t, Computed("ark"), schema[FieldARK])
	assert.Equal(t, Computed("thumbnail_url"), schema[FieldThumbnail])
	assert.Equal(t, ColumnRef(ColIIIFManifestURL), schema[FieldManifestURL])
}
