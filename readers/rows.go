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

package readers

import (
	"context"
	"io"

	"github.com/dlcslabs/solrfeed"
)

// The feed needs the whole table before the pipeline runs: collection rows
// build the collection-name index and every row is a sibling candidate for
// thumbnail lookups. ReadAll materializes a source, and RowSource replays
// the materialized rows through the pipeline in table order.

// ReadAll drains a DataSource into memory, preserving table order. The
// source is closed afterwards.
func ReadAll(ctx context.Context, source solrfeed.DataSource) ([]solrfeed.Record, error) {
	defer source.Close()

	var rows []solrfeed.Record
	for {
		record, err := source.Read(ctx)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
}

// RowSource implements DataSource over an in-memory row set.
type RowSource struct {
	rows []solrfeed.Record
	next int
}

// NewRowSource creates a DataSource that yields the given rows in order.
func NewRowSource(rows []solrfeed.Record) *RowSource {
	return &RowSource{rows: rows}
}

// Read implements the DataSource interface.
func (r *RowSource) Read(ctx context.Context) (solrfeed.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	record := r.rows[r.next]
	r.next++
	return record, nil
}

// Close implements the DataSource interface.
func (r *RowSource) Close() error {
	return nil
}
