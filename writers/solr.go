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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dlcslabs/solrfeed"
)

// Package writers provides implementations of solrfeed.DataSink: the
// incremental Solr index client, the buffered JSON-array writer used when no
// Solr URL is configured, and a PostgreSQL document sink.

// SolrWriterError wraps structured error information for the Solr writer.
type SolrWriterError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *SolrWriterError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("solr writer %s [%d]: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("solr writer %s: %v", e.Op, e.Err)
}

func (e *SolrWriterError) Unwrap() error {
	return e.Err
}

// SolrWriterStats holds statistics about the Solr writer's performance.
type SolrWriterStats struct {
	RecordsWritten  int64
	BatchesWritten  int64
	LastWriteTime   time.Time
	WriteDuration   time.Duration
	NullValueCounts map[string]int64
}

// SolrWriterOptions configures the Solr writer.
type SolrWriterOptions struct {
	BatchSize    int
	AlwaysCommit bool
	Timeout      time.Duration
	CustomClient *http.Client
}

// WriterOptionSolr allows functional customization of SolrWriter.
type WriterOptionSolr func(*SolrWriterOptions)

func WithSolrBatchSize(size int) WriterOptionSolr {
	return func(o *SolrWriterOptions) { o.BatchSize = size }
}

// WithSolrCommit controls whether each batch carries commit=true.
func WithSolrCommit(commit bool) WriterOptionSolr {
	return func(o *SolrWriterOptions) { o.AlwaysCommit = commit }
}

func WithSolrTimeout(timeout time.Duration) WriterOptionSolr {
	return func(o *SolrWriterOptions) { o.Timeout = timeout }
}

func WithSolrHTTPClient(client *http.Client) WriterOptionSolr {
	return func(o *SolrWriterOptions) { o.CustomClient = client }
}

// SolrWriter implements DataSink for a Solr core's JSON update endpoint.
// Documents are buffered and posted in batches; the engine imposes no
// batching requirement, so the default batch size is one.
type SolrWriter struct {
	updateURL string
	client    *http.Client
	opts      SolrWriterOptions
	buffer    []solrfeed.Record
	stats     SolrWriterStats
}

// NewSolrWriter creates a SolrWriter for a core URL, e.g.
// http://localhost:8983/solr/californica.
func NewSolrWriter(coreURL string, options ...WriterOptionSolr) (*SolrWriter, error) {
	if coreURL == "" {
		return nil, &SolrWriterError{Op: "configure", Err: fmt.Errorf("core URL is required")}
	}

	opts := SolrWriterOptions{
		BatchSize:    1,
		AlwaysCommit: true,
		Timeout:      30 * time.Second,
	}
	for _, option := range options {
		option(&opts)
	}

	client := opts.CustomClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &SolrWriter{
		updateURL: strings.TrimSuffix(coreURL, "/") + "/update/json/docs",
		client:    client,
		opts:      opts,
		buffer:    make([]solrfeed.Record, 0, opts.BatchSize),
		stats:     SolrWriterStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// Write implements the DataSink interface.
func (w *SolrWriter) Write(ctx context.Context, record solrfeed.Record) error {
	start := time.Now()

	for key, value := range record {
		if value == nil {
			w.stats.NullValueCounts[key]++
		}
	}

	w.buffer = append(w.buffer, record)
	w.stats.RecordsWritten++
	w.stats.LastWriteTime = time.Now()

	var err error
	if len(w.buffer) >= w.opts.BatchSize {
		err = w.flushBatch(ctx)
	}
	w.stats.WriteDuration += time.Since(start)
	return err
}

// Flush implements the DataSink interface.
func (w *SolrWriter) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.Timeout)
	defer cancel()
	return w.flushBatch(ctx)
}

// Close implements the DataSink interface.
func (w *SolrWriter) Close() error {
	return w.Flush()
}

// Stats returns Solr writer performance stats.
func (w *SolrWriter) Stats() SolrWriterStats {
	return w.stats
}

// flushBatch posts the buffered documents to the update endpoint.
func (w *SolrWriter) flushBatch(ctx context.Context) error {
	if len(w.buffer) == 0 {
		return nil
	}

	body, err := json.Marshal(w.buffer)
	if err != nil {
		return &SolrWriterError{Op: "marshal", Err: err}
	}

	url := w.updateURL
	if w.opts.AlwaysCommit {
		url += "?commit=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &SolrWriterError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return &SolrWriterError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &SolrWriterError{
			Op:         "post",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("solr update rejected: %s", strings.TrimSpace(string(detail))),
		}
	}

	w.buffer = w.buffer[:0]
	w.stats.BatchesWritten++
	return nil
}
