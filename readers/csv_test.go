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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlcslabs/solrfeed"
)

func csvInput(data string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(data))
}

func TestCSVReader_CellsAreStringsOrNil(t *testing.T) {
	data := "Item ARK,Title,Year\nark:/123/abc,Manuscript,1450\n"
	reader, err := NewCSVReader(csvInput(data))
	require.NoError(t, err)

	record, err := reader.Read(context.Background())
	require.NoError(t, err)

	// Numeric columns stay strings; the mapping engine owns all typing.
	assert.Equal(t, "ark:/123/abc", record["Item ARK"])
	assert.Equal(t, "Manuscript", record["Title"])
	assert.Equal(t, "1450", record["Year"])
}

func TestCSVReader_EmptyCellsReadAsNil(t *testing.T) {
	data := "Item ARK,Title\nark:/123/abc,\n"
	reader, err := NewCSVReader(csvInput(data))
	require.NoError(t, err)

	record, err := reader.Read(context.Background())
	require.NoError(t, err)

	assert.Nil(t, record["Title"])
	assert.Equal(t, int64(1), reader.Stats().NullValueCounts["Title"])
}

func TestCSVReader_MultiValuedCellsPassThrough(t *testing.T) {
	data := "Subject\n\"history|~|art\"\n"
	reader, err := NewCSVReader(csvInput(data))
	require.NoError(t, err)

	record, err := reader.Read(context.Background())
	require.NoError(t, err)

	// The delimiter is the mapping engine's concern, not the loader's.
	assert.Equal(t, "history|~|art", record["Subject"])
}

func TestCSVReader_EOF(t *testing.T) {
	reader, err := NewCSVReader(csvInput("Title\nOne\n"))
	require.NoError(t, err)

	_, err = reader.Read(context.Background())
	require.NoError(t, err)

	_, err = reader.Read(context.Background())
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, int64(1), reader.Stats().RecordsRead)
}

func TestCSVReader_RaggedRows(t *testing.T) {
	data := "A,B\n1,2,3\n"
	reader, err := NewCSVReader(csvInput(data))
	require.NoError(t, err)

	record, err := reader.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1", record["A"])
	assert.Equal(t, "2", record["B"])
	assert.Equal(t, "3", record["col_2"])
}

func TestCSVReader_CancelledContext(t *testing.T) {
	reader, err := NewCSVReader(csvInput("Title\nOne\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = reader.Read(ctx)
	var readerErr *CSVReaderError
	assert.ErrorAs(t, err, &readerErr)
}

func TestReadAll(t *testing.T) {
	data := "Title\nOne\nTwo\nThree\n"
	reader, err := NewCSVReader(csvInput(data))
	require.NoError(t, err)

	rows, err := ReadAll(context.Background(), reader)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "One", rows[0]["Title"])
	assert.Equal(t, "Three", rows[2]["Title"])
}

func TestRowSource(t *testing.T) {
	rows := []solrfeed.Record{
		{"Title": "One"},
		{"Title": "Two"},
	}

	source := NewRowSource(rows)
	ctx := context.Background()

	first, err := source.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "One", first["Title"])

	second, err := source.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two", second["Title"])

	_, err = source.Read(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestIsS3Path(t *testing.T) {
	assert.True(t, IsS3Path("s3://bucket/key.csv"))
	assert.False(t, IsS3Path("/tmp/export.csv"))
	assert.False(t, IsS3Path("https://example.com/export.csv"))
}

func TestSplitS3Path(t *testing.T) {
	bucket, key, err := splitS3Path("s3://dlcs-exports/2025/export.csv")
	require.NoError(t, err)
	assert.Equal(t, "dlcs-exports", bucket)
	assert.Equal(t, "2025/export.csv", key)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := splitS3Path(bad)
		assert.Error(t, err, "path %q should be rejected", bad)
	}
}
