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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/mapping"
	_ "github.com/lib/pq"
)

// The PostgreSQL sink archives transformed documents as JSONB rows keyed by
// ARK, so a feed run can be inspected or replayed without re-reading the
// CSV. One row per document, upserted on ARK.

// PostgresWriterError wraps PostgreSQL-specific write errors with context
// about the operation.
type PostgresWriterError struct {
	Op  string
	Err error
}

func (e *PostgresWriterError) Error() string {
	return fmt.Sprintf("postgres writer %s: %v", e.Op, e.Err)
}

func (e *PostgresWriterError) Unwrap() error {
	return e.Err
}

// PostgresWriterStats holds PostgreSQL write performance statistics.
type PostgresWriterStats struct {
	RecordsWritten int64
	BatchesWritten int64
	LastWriteTime  time.Time
	ConnectionTime time.Duration
}

// PostgresWriterOptions configures the PostgreSQL writer.
type PostgresWriterOptions struct {
	DSN          string
	TableName    string
	BatchSize    int
	CreateTable  bool
	QueryTimeout time.Duration
}

// PostgresWriterOption represents a configuration function for
// PostgresWriterOptions.
type PostgresWriterOption func(*PostgresWriterOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.DSN = dsn }
}

// WithTableName sets the target table name.
func WithTableName(tableName string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.TableName = tableName }
}

// WithPostgresBatchSize sets the number of records per transaction.
func WithPostgresBatchSize(size int) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.BatchSize = size }
}

// WithCreateTable creates the document table if it does not exist.
func WithCreateTable(create bool) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.CreateTable = create }
}

// WithPostgresQueryTimeout sets the query timeout.
func WithPostgresQueryTimeout(timeout time.Duration) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.QueryTimeout = timeout }
}

// PostgresWriter implements DataSink for a PostgreSQL document archive.
type PostgresWriter struct {
	db          *sql.DB
	options     PostgresWriterOptions
	buffer      []solrfeed.Record
	stats       PostgresWriterStats
	initialized bool
}

// NewPostgresWriter creates a new PostgreSQL writer with the given options.
func NewPostgresWriter(opts ...PostgresWriterOption) (*PostgresWriter, error) {
	options := PostgresWriterOptions{
		TableName:    "solr_documents",
		BatchSize:    100,
		QueryTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.DSN == "" {
		return nil, &PostgresWriterError{Op: "validate", Err: fmt.Errorf("dsn is required")}
	}
	if options.TableName == "" {
		return nil, &PostgresWriterError{Op: "validate", Err: fmt.Errorf("table name is required")}
	}

	writer := &PostgresWriter{
		options: options,
		buffer:  make([]solrfeed.Record, 0, options.BatchSize),
	}

	if err := writer.connect(); err != nil {
		return nil, &PostgresWriterError{Op: "connect", Err: err}
	}
	return writer, nil
}

// Stats returns a copy of the current write statistics.
func (w *PostgresWriter) Stats() PostgresWriterStats {
	return w.stats
}

// Write implements the DataSink interface. Records are buffered and written
// in transactional batches.
func (w *PostgresWriter) Write(ctx context.Context, record solrfeed.Record) error {
	if !w.initialized {
		if err := w.initialize(ctx); err != nil {
			return &PostgresWriterError{Op: "initialize", Err: err}
		}
	}

	if _, ok := record[mapping.FieldARK].(string); !ok {
		return &PostgresWriterError{Op: "write", Err: fmt.Errorf("record has no %s field", mapping.FieldARK)}
	}

	w.buffer = append(w.buffer, record)
	w.stats.RecordsWritten++
	w.stats.LastWriteTime = time.Now()

	if len(w.buffer) >= w.options.BatchSize {
		if err := w.flushBuffer(ctx); err != nil {
			return &PostgresWriterError{Op: "flush_batch", Err: err}
		}
	}
	return nil
}

// Flush implements the DataSink interface.
func (w *PostgresWriter) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	if err := w.flushBuffer(ctx); err != nil {
		return &PostgresWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close implements the DataSink interface.
func (w *PostgresWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// connect establishes the database connection and verifies it.
func (w *PostgresWriter) connect() error {
	start := time.Now()

	db, err := sql.Open("postgres", w.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	w.db = db
	w.stats.ConnectionTime = time.Since(start)
	return nil
}

// initialize performs one-time table setup.
func (w *PostgresWriter) initialize(ctx context.Context) error {
	if w.options.CreateTable {
		ddl := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (ark TEXT PRIMARY KEY, doc JSONB NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
			w.options.TableName,
		)
		if _, err := w.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	w.initialized = true
	return nil
}

// flushBuffer upserts the buffered documents inside one transaction.
func (w *PostgresWriter) flushBuffer(ctx context.Context) error {
	if len(w.buffer) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (ark, doc, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (ark) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		w.options.TableName,
	)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range w.buffer {
		ark, _ := record[mapping.FieldARK].(string)
		doc, err := json.Marshal(record)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to marshal document %s: %w", ark, err)
		}
		if _, err := stmt.ExecContext(ctx, ark, doc); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert document %s: %w", ark, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.buffer = w.buffer[:0]
	w.stats.BatchesWritten++
	return nil
}
