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
	"fmt"

	"github.com/dlcslabs/solrfeed"
)

// Package mapping resolves declarative field-mapping rules against input
// rows. A Schema assigns one Rule to every output field; resolving a rule
// reads one or more CSV columns, splits multi-valued cells on the MARC
// delimiter, and substitutes controlled-vocabulary terms.

// Rule is the schema-level instruction for deriving one output field from a
// row. A Rule is exactly one of ColumnRef, ColumnList, or Computed; a nil
// Rule marks the field as intentionally unmapped (its value stays nil).
type Rule interface {
	isRule()
}

// ColumnRef maps a single CSV column. The cell is split on Delimiter, so a
// ColumnRef still yields a list of strings.
type ColumnRef string

// ColumnList maps an ordered list of CSV columns. Fragments are concatenated
// in column order, preserving within-column split order.
type ColumnList []string

// Computed names an entry in the computed-field registry. The registered
// function receives the whole row and may return any value; this is the only
// rule kind that can produce something other than a list of strings.
type Computed string

func (ColumnRef) isRule()  {}
func (ColumnList) isRule() {}
func (Computed) isRule()   {}

// ComputedFunc derives an output value from a whole input row.
type ComputedFunc func(row solrfeed.Record) interface{}

var computedRegistry = make(map[string]ComputedFunc)

// RegisterComputed adds a computed-field function to the registry under the
// given handle. Registering the same handle twice panics; handles are fixed
// configuration, so a duplicate is a programming error.
func RegisterComputed(handle string, fn ComputedFunc) {
	if _, dup := computedRegistry[handle]; dup {
		panic(fmt.Sprintf("mapping: computed field %q registered twice", handle))
	}
	computedRegistry[handle] = fn
}

// ConfigError reports a malformed mapping rule. Configuration errors are
// fatal: the run halts before any record completes.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mapping config error for field %s: %s", e.Field, e.Reason)
}
