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

package writers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dlcslabs/solrfeed"
)

// JSONArrayWriter implements DataSink as a JSON array stream. It is the
// output target when no Solr URL is configured: documents render to the
// writer as one JSON array, element by element, so a full run produces a
// single valid JSON document on stdout.
type JSONArrayWriter struct {
	writer io.Writer
	closer io.Closer
	opened bool
	closed bool
}

// NewJSONArrayWriter creates a JSON array writer over w. If w is also an
// io.Closer it is closed with the sink.
func NewJSONArrayWriter(w io.Writer) *JSONArrayWriter {
	jw := &JSONArrayWriter{writer: w}
	if closer, ok := w.(io.Closer); ok {
		jw.closer = closer
	}
	return jw
}

// Write implements the DataSink interface.
func (j *JSONArrayWriter) Write(ctx context.Context, record solrfeed.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record to JSON: %w", err)
	}

	separator := ",\n"
	if !j.opened {
		separator = "["
		j.opened = true
	}

	if _, err := io.WriteString(j.writer, separator); err != nil {
		return fmt.Errorf("failed to write JSON separator: %w", err)
	}
	if _, err := j.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON data: %w", err)
	}
	return nil
}

// Flush implements the DataSink interface.
func (j *JSONArrayWriter) Flush() error {
	if flusher, ok := j.writer.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close implements the DataSink interface. It terminates the array; an
// empty run still renders "[]".
func (j *JSONArrayWriter) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true

	terminator := "]\n"
	if !j.opened {
		terminator = "[]\n"
	}
	if _, err := io.WriteString(j.writer, terminator); err != nil {
		return fmt.Errorf("failed to terminate JSON array: %w", err)
	}

	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
