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
	"regexp"
	"strings"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/vocab"
)

// Delimiter separates values inside a multi-valued CSV cell (the MARC
// convention used by DLCS exports).
const Delimiter = "|~|"

var fieldSuffix = regexp.MustCompile(`_\w+$`)

// BaseFieldName strips the trailing type suffix from an output field name.
// Vocabularies are keyed by base name, so genre_tesim and genre_sim share
// the genre vocabulary.
func BaseFieldName(fieldName string) string {
	return fieldSuffix.ReplaceAllString(fieldName, "")
}

// Cell reads one cell from a row as a string. Missing and nil cells read as
// the empty string; the table loader guarantees cells are string or nil.
func Cell(row solrfeed.Record, column string) string {
	value, ok := row[column]
	if !ok || value == nil {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}

// Resolve maps one output field's value from a row.
//
// A nil rule resolves to nil. A Computed rule invokes its registered
// function and returns the result verbatim. ColumnRef and ColumnList rules
// read the referenced cells, split each non-empty cell on Delimiter, and
// concatenate the fragments in column order; if a vocabulary exists for the
// field's base name, each fragment with a matching term id is replaced by
// the display term. Empty fragments are dropped from the final list.
//
// An unknown Computed handle is a configuration error and fails the run.
func Resolve(row solrfeed.Record, fieldName string, rule Rule, vocabs vocab.Config) (interface{}, error) {
	if rule == nil {
		return nil, nil
	}

	var columns []string
	switch r := rule.(type) {
	case Computed:
		fn, ok := computedRegistry[string(r)]
		if !ok {
			return nil, &ConfigError{Field: fieldName, Reason: "computed field " + string(r) + " is not registered"}
		}
		return fn(row), nil
	case ColumnRef:
		columns = []string{string(r)}
	case ColumnList:
		columns = r
	default:
		return nil, &ConfigError{Field: fieldName, Reason: "rule must be a column reference, a column list, or a computed handle"}
	}

	output := make([]string, 0, len(columns))
	for _, column := range columns {
		if cell := Cell(row, column); cell != "" {
			output = append(output, strings.Split(cell, Delimiter)...)
		}
	}

	if terms := vocabs.Terms(BaseFieldName(fieldName)); terms != nil {
		for i, value := range output {
			if term, ok := terms[value]; ok {
				output[i] = term
			}
		}
	}

	// Splitting can leave empty fragments (e.g. a trailing delimiter).
	values := output[:0]
	for _, value := range output {
		if value != "" {
			values = append(values, value)
		}
	}
	return values, nil
}
