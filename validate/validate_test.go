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

package validate

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/mapping"
)

func validDocument() solrfeed.Record {
	return solrfeed.Record{
		mapping.FieldARK:       "ark:/21198/zz00294nz8",
		mapping.FieldTitle:     []string{"A Medieval Manuscript"},
		mapping.FieldThumbnail: nil,
		mapping.FieldYearFacet: []int{1450},
	}
}

func TestValidator_PassesValidDocumentThrough(t *testing.T) {
	validator := New()

	document := validDocument()
	result, err := validator.Transform(context.Background(), document)
	require.NoError(t, err)
	assert.Equal(t, document, result)
}

func TestValidator_RejectsMissingARK(t *testing.T) {
	validator := New()

	document := validDocument()
	delete(document, mapping.FieldARK)

	_, err := validator.Transform(context.Background(), document)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, mapping.FieldARK, validationErr.Field)
}

func TestValidator_RejectsMalformedARK(t *testing.T) {
	validator := New()

	tests := []string{"21198/zz00294nz8", "ark:21198", "ark://zz00294nz8", "not an ark"}
	for _, ark := range tests {
		document := validDocument()
		document[mapping.FieldARK] = ark

		_, err := validator.Transform(context.Background(), document)
		assert.Error(t, err, "ark %q should be rejected", ark)
	}
}

func TestValidator_RejectsMissingRequiredField(t *testing.T) {
	validator := New()

	document := validDocument()
	document[mapping.FieldTitle] = []string{}

	_, err := validator.Transform(context.Background(), document)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, mapping.FieldTitle, validationErr.Field)
	assert.Equal(t, "ark:/21198/zz00294nz8", validationErr.ARK)
}

func TestValidator_RejectsUnexpectedValueShape(t *testing.T) {
	validator := New()

	document := validDocument()
	document["genre_tesim"] = 42

	_, err := validator.Transform(context.Background(), document)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "genre_tesim", validationErr.Field)
}

func TestValidator_CustomRequiredFields(t *testing.T) {
	validator := New(WithRequiredFields(mapping.FieldThumbnail))

	_, err := validator.Transform(context.Background(), validDocument())
	assert.Error(t, err)

	document := validDocument()
	document[mapping.FieldThumbnail] = "https://iiif.example/thumb.jpg"
	_, err = validator.Transform(context.Background(), document)
	assert.NoError(t, err)
}

func TestValidator_CustomARKPattern(t *testing.T) {
	validator := New(WithARKPattern(regexp.MustCompile(`^item-\d+$`)))

	document := validDocument()
	document[mapping.FieldARK] = "item-42"

	_, err := validator.Transform(context.Background(), document)
	assert.NoError(t, err)
}
