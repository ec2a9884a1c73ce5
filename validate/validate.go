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

// Package validate checks transformed documents before they reach a sink.
// The engine itself never rejects a row; strict mode inserts a
// DocumentValidator between the transformer and the sink so malformed
// documents fail loudly instead of landing in the index.
package validate

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/mapping"
)

// defaultARKPattern matches the ARK identifiers DLCS mints, e.g.
// ark:/21198/zz00294nz8.
var defaultARKPattern = regexp.MustCompile(`^ark:/\w+/\w+$`)

// ValidationError describes why a document was rejected.
type ValidationError struct {
	ARK    string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ARK != "" {
		return fmt.Sprintf("document %s invalid: field %s %s", e.ARK, e.Field, e.Reason)
	}
	return fmt.Sprintf("document invalid: field %s %s", e.Field, e.Reason)
}

// DocumentValidator implements solrfeed.Transformer as a pass-through that
// errors on documents violating the output contract: an ARK identifier in
// the expected form, required fields carrying values, and every field value
// one of the shapes the engine emits.
type DocumentValidator struct {
	arkPattern     *regexp.Regexp
	requiredFields []string
}

// Option allows functional customization of DocumentValidator.
type Option func(*DocumentValidator)

// WithARKPattern overrides the identifier pattern.
func WithARKPattern(pattern *regexp.Regexp) Option {
	return func(v *DocumentValidator) { v.arkPattern = pattern }
}

// WithRequiredFields sets the fields that must carry a non-empty value.
func WithRequiredFields(fields ...string) Option {
	return func(v *DocumentValidator) { v.requiredFields = fields }
}

// New creates a DocumentValidator. By default the title is the only
// required field beyond the ARK itself.
func New(options ...Option) *DocumentValidator {
	v := &DocumentValidator{
		arkPattern:     defaultARKPattern,
		requiredFields: []string{mapping.FieldTitle},
	}
	for _, option := range options {
		option(v)
	}
	return v
}

// Transform implements the solrfeed.Transformer interface.
func (v *DocumentValidator) Transform(ctx context.Context, record solrfeed.Record) (solrfeed.Record, error) {
	ark, _ := record[mapping.FieldARK].(string)

	if ark == "" {
		return nil, &ValidationError{Field: mapping.FieldARK, Reason: "is missing"}
	}
	if !v.arkPattern.MatchString(ark) {
		return nil, &ValidationError{ARK: ark, Field: mapping.FieldARK, Reason: "is not a well-formed ARK"}
	}

	for _, field := range v.requiredFields {
		if !hasValue(record[field]) {
			return nil, &ValidationError{ARK: ark, Field: field, Reason: "has no value"}
		}
	}

	for field, value := range record {
		if !validShape(value) {
			return nil, &ValidationError{ARK: ark, Field: field, Reason: fmt.Sprintf("has unexpected type %T", value)}
		}
	}

	return record, nil
}

// hasValue reports whether a field carries at least one non-empty value.
func hasValue(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case []int:
		return len(v) > 0
	default:
		return false
	}
}

// validShape reports whether a value is one of the shapes the engine emits.
func validShape(value interface{}) bool {
	switch value.(type) {
	case nil, string, []string, []int:
		return true
	default:
		return false
	}
}
