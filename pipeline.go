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

package solrfeed

import (
	"context"
	"fmt"
	"io"
)

// PipelineBuilder provides a fluent API for constructing feed pipelines.
// Use NewPipeline() to create a new builder, then chain From, Filter,
// Transform, To, and configuration methods.
//
// Example usage:
//
//	pipeline, err := solrfeed.NewPipeline().
//	    From(rowSource).
//	    Filter(transform.WorkRows()).
//	    Transform(recordTransformer).
//	    To(solrSink).
//	    Build()
//	if err != nil { log.Fatal(err) }
//	if err := pipeline.Execute(ctx); err != nil { log.Fatal(err) }
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipeline creates a new PipelineBuilder.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			transformers: make([]Transformer, 0),
			filters:      make([]Filter, 0),
			strategy:     FailFast,
		},
	}
}

// From sets the DataSource for the pipeline.
func (pb *PipelineBuilder) From(source DataSource) *PipelineBuilder {
	pb.pipeline.source = source
	return pb
}

// Transform adds a Transformer to the pipeline.
func (pb *PipelineBuilder) Transform(transformer Transformer) *PipelineBuilder {
	pb.pipeline.transformers = append(pb.pipeline.transformers, transformer)
	return pb
}

// Filter adds a Filter to the pipeline. Filters run before transformers, so
// rows excluded by a filter are never transformed.
func (pb *PipelineBuilder) Filter(filter Filter) *PipelineBuilder {
	pb.pipeline.filters = append(pb.pipeline.filters, filter)
	return pb
}

// Map adds a mapping transformation to the pipeline using a function.
func (pb *PipelineBuilder) Map(fn func(ctx context.Context, record Record) (Record, error)) *PipelineBuilder {
	return pb.Transform(TransformFunc(fn))
}

// Where adds a filtering condition to the pipeline using a function.
func (pb *PipelineBuilder) Where(fn func(ctx context.Context, record Record) (bool, error)) *PipelineBuilder {
	return pb.Filter(FilterFunc(fn))
}

// To sets the DataSink for the pipeline.
func (pb *PipelineBuilder) To(sink DataSink) *PipelineBuilder {
	pb.pipeline.sink = sink
	return pb
}

// WithErrorStrategy sets the error handling strategy for the pipeline.
func (pb *PipelineBuilder) WithErrorStrategy(strategy ErrorStrategy) *PipelineBuilder {
	pb.pipeline.strategy = strategy
	return pb
}

// WithErrorHandler sets a custom error handler for the pipeline.
func (pb *PipelineBuilder) WithErrorHandler(handler ErrorHandler) *PipelineBuilder {
	pb.pipeline.errorHandler = handler
	return pb
}

// Build validates and constructs the Pipeline from the builder.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.pipeline.source == nil {
		return nil, fmt.Errorf("pipeline requires a data source")
	}
	if pb.pipeline.sink == nil {
		return nil, fmt.Errorf("pipeline requires a data sink")
	}
	return pb.pipeline, nil
}

// Pipeline processes rows one at a time from source to sink. Rows are
// filtered, transformed, and written strictly in table order with no overlap;
// error handling is governed by the configured ErrorStrategy.
type Pipeline struct {
	transformers []Transformer
	filters      []Filter
	source       DataSource
	sink         DataSink
	strategy     ErrorStrategy
	errorHandler ErrorHandler
}

// Execute runs the pipeline, processing all records from source to sink.
// Returns an error if a fatal error occurs or the context is cancelled.
func (p *Pipeline) Execute(ctx context.Context) error {
	defer func() {
		if p.source != nil {
			p.source.Close()
		}
		if p.sink != nil {
			p.sink.Flush()
			p.sink.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := p.source.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		if len(record) == 0 {
			continue
		}

		// Filters run on the raw row so excluded rows never reach the
		// transformers.
		shouldInclude, err := p.applyFilters(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if !shouldInclude {
			continue
		}

		transformedRecord, err := p.applyTransformations(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		if len(transformedRecord) == 0 {
			continue
		}

		if err := p.sink.Write(ctx, transformedRecord); err != nil {
			if err := p.handleError(ctx, transformedRecord, err); err != nil {
				return err
			}
		}
	}

	return nil
}

// applyFilters applies all configured filters to a record.
func (p *Pipeline) applyFilters(ctx context.Context, record Record) (bool, error) {
	for _, filter := range p.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

// applyTransformations applies all configured transformers to a record in sequence.
func (p *Pipeline) applyTransformations(ctx context.Context, record Record) (Record, error) {
	current := record
	for _, transformer := range p.transformers {
		transformed, err := transformer.Transform(ctx, current)
		if err != nil {
			return nil, err
		}
		current = transformed
	}
	return current, nil
}

// handleError handles errors according to the pipeline's error strategy and handler.
func (p *Pipeline) handleError(ctx context.Context, record Record, err error) error {
	switch p.strategy {
	case FailFast:
		return err
	case SkipErrors, CollectErrors:
		if p.errorHandler != nil {
			return p.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	default:
		return err
	}
}
