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

// Command solrfeed converts a DLCS CSV export into Solr documents.
//
// Usage:
//
//	solrfeed [flags] <csv-path>
//
// The CSV path may be a local file or an s3://bucket/key object. With
// --solr-url the documents are posted to that core; with --pg-dsn they are
// archived to PostgreSQL; with neither they stream to stdout as a JSON
// array.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dlcslabs/solrfeed"
	"github.com/dlcslabs/solrfeed/readers"
	"github.com/dlcslabs/solrfeed/thumbnail"
	"github.com/dlcslabs/solrfeed/transform"
	"github.com/dlcslabs/solrfeed/validate"
	"github.com/dlcslabs/solrfeed/vocab"
	"github.com/dlcslabs/solrfeed/writers"
)

func main() {
	var (
		solrURL   = flag.String("solr-url", "", "URL of a Solr core, e.g. http://localhost:8983/solr/californica")
		pgDSN     = flag.String("pg-dsn", "", "PostgreSQL DSN for the document archive sink")
		pgTable   = flag.String("pg-table", "solr_documents", "PostgreSQL table for the document archive sink")
		fieldsDir = flag.String("fields-dir", "./fields", "directory of controlled-vocabulary YAML files")
		timeout   = flag.Duration("timeout", 10*time.Second, "timeout for IIIF manifest fetches")
		s3Region  = flag.String("s3-region", "", "AWS region override for s3:// CSV paths")
		strict    = flag.Bool("strict", false, "reject documents with missing or malformed identifiers")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: solrfeed [flags] <csv-path>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0), *solrURL, *pgDSN, *pgTable, *fieldsDir, *s3Region, *timeout, *strict); err != nil {
		slog.Error("feed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath, solrURL, pgDSN, pgTable, fieldsDir, s3Region string, timeout time.Duration, strict bool) error {
	input, err := openInput(ctx, csvPath, s3Region)
	if err != nil {
		return fmt.Errorf("opening %s: %w", csvPath, err)
	}

	csvReader, err := readers.NewCSVReader(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", csvPath, err)
	}

	// The whole table is needed up front: collection rows build the
	// collection-name index, and every row is a sibling candidate for
	// thumbnail lookups.
	rows, err := readers.ReadAll(ctx, csvReader)
	if err != nil {
		return fmt.Errorf("loading %s: %w", csvPath, err)
	}
	slog.Info("loaded table", "path", csvPath, "rows", len(rows))

	vocabularies, err := loadVocabularies(fieldsDir)
	if err != nil {
		return err
	}

	collections := transform.BuildCollectionIndex(rows)
	slog.Info("built collection index", "collections", len(collections))

	transformer := transform.New(transform.Config{
		Vocabularies: vocabularies,
		Collections:  collections,
		Rows:         rows,
		Thumbnails:   thumbnail.NewResolver(thumbnail.WithTimeout(timeout)),
	})

	sink, err := selectSink(solrURL, pgDSN, pgTable)
	if err != nil {
		return err
	}

	builder := solrfeed.NewPipeline().
		From(readers.NewRowSource(rows)).
		Filter(transform.WorkRows()).
		Transform(transformer)
	if strict {
		builder = builder.Transform(validate.New())
	}

	pipeline, err := builder.To(sink).Build()
	if err != nil {
		return err
	}

	return pipeline.Execute(ctx)
}

// openInput opens the CSV from local disk or S3.
func openInput(ctx context.Context, path, s3Region string) (io.ReadCloser, error) {
	if readers.IsS3Path(path) {
		var options []readers.ReaderOptionS3
		if s3Region != "" {
			options = append(options, readers.WithS3Region(s3Region))
		}
		return readers.OpenS3Object(ctx, path, options...)
	}
	return os.Open(path)
}

// loadVocabularies loads the controlled-vocabulary directory. A missing
// directory just means no controlled fields.
func loadVocabularies(fieldsDir string) (vocab.Config, error) {
	if _, err := os.Stat(fieldsDir); os.IsNotExist(err) {
		slog.Warn("vocabulary directory not found, fields are uncontrolled", "dir", fieldsDir)
		return nil, nil
	}
	vocabularies, err := vocab.LoadDir(fieldsDir)
	if err != nil {
		return nil, fmt.Errorf("loading vocabularies from %s: %w", fieldsDir, err)
	}
	slog.Info("loaded vocabularies", "dir", fieldsDir, "fields", len(vocabularies))
	return vocabularies, nil
}

// selectSink picks the output target once at startup: Solr when configured,
// else PostgreSQL, else a JSON array on stdout.
func selectSink(solrURL, pgDSN, pgTable string) (solrfeed.DataSink, error) {
	switch {
	case solrURL != "":
		return writers.NewSolrWriter(solrURL)
	case pgDSN != "":
		return writers.NewPostgresWriter(
			writers.WithPostgresDSN(pgDSN),
			writers.WithTableName(pgTable),
			writers.WithCreateTable(true),
		)
	default:
		return writers.NewJSONArrayWriter(os.Stdout), nil
	}
}
