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
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DLCS exports often land in S3 rather than on local disk, so the CLI
// accepts s3://bucket/key paths and streams the object through the same CSV
// reader used for local files.

// S3ReaderError provides structured error information for S3 operations.
type S3ReaderError struct {
	Op  string
	Err error
}

func (e *S3ReaderError) Error() string {
	return fmt.Sprintf("s3 reader %s: %v", e.Op, e.Err)
}

func (e *S3ReaderError) Unwrap() error {
	return e.Err
}

// S3OpenOptions configures how an S3 object is opened.
type S3OpenOptions struct {
	Region      string
	Profile     string
	EndpointURL string
}

// ReaderOptionS3 represents a configuration function for S3 opens.
type ReaderOptionS3 func(*S3OpenOptions)

func WithS3Region(region string) ReaderOptionS3 {
	return func(opts *S3OpenOptions) { opts.Region = region }
}

func WithS3Profile(profile string) ReaderOptionS3 {
	return func(opts *S3OpenOptions) { opts.Profile = profile }
}

func WithS3Endpoint(endpoint string) ReaderOptionS3 {
	return func(opts *S3OpenOptions) { opts.EndpointURL = endpoint }
}

// IsS3Path reports whether path names an S3 object.
func IsS3Path(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// OpenS3Object opens an s3://bucket/key path for reading. Credentials and
// region come from the default AWS config chain unless overridden.
func OpenS3Object(ctx context.Context, path string, options ...ReaderOptionS3) (io.ReadCloser, error) {
	opts := S3OpenOptions{}
	for _, option := range options {
		option(&opts)
	}

	bucket, key, err := splitS3Path(path)
	if err != nil {
		return nil, &S3ReaderError{Op: "parse_path", Err: err}
	}

	var loadOptions []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOptions = append(loadOptions, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOptions = append(loadOptions, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, &S3ReaderError{Op: "load_config", Err: err}
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
			o.UsePathStyle = true
		}
	})

	object, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &S3ReaderError{Op: "get_object", Err: err}
	}

	return object.Body, nil
}

// splitS3Path splits s3://bucket/key into bucket and key.
func splitS3Path(path string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid s3 path %q, want s3://bucket/key", path)
	}
	return parts[0], parts[1], nil
}
