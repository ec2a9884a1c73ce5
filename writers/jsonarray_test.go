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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlcslabs/solrfeed"
)

type mockWriteCloser struct {
	bytes.Buffer
	closed bool
}

func (m *mockWriteCloser) Close() error {
	m.closed = true
	return nil
}

func TestJSONArrayWriter_SingleDocument(t *testing.T) {
	var buf bytes.Buffer
	writer := NewJSONArrayWriter(&buf)

	record := solrfeed.Record{"ark_ssi": "ark:/123/abc"}
	require.NoError(t, writer.Write(context.Background(), record))
	require.NoError(t, writer.Close())

	var docs []solrfeed.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "ark:/123/abc", docs[0]["ark_ssi"])
}

func TestJSONArrayWriter_MultipleDocuments(t *testing.T) {
	var buf bytes.Buffer
	writer := NewJSONArrayWriter(&buf)

	ctx := context.Background()
	require.NoError(t, writer.Write(ctx, solrfeed.Record{"id": "a"}))
	require.NoError(t, writer.Write(ctx, solrfeed.Record{"id": "b"}))
	require.NoError(t, writer.Write(ctx, solrfeed.Record{"id": "c"}))
	require.NoError(t, writer.Close())

	// The whole run must parse as one JSON array.
	var docs []solrfeed.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0]["id"])
	assert.Equal(t, "c", docs[2]["id"])
}

func TestJSONArrayWriter_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	writer := NewJSONArrayWriter(&buf)

	require.NoError(t, writer.Close())
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONArrayWriter_ClosesUnderlyingWriter(t *testing.T) {
	mock := &mockWriteCloser{}
	writer := NewJSONArrayWriter(mock)

	require.NoError(t, writer.Write(context.Background(), solrfeed.Record{"id": 1}))
	require.NoError(t, writer.Close())
	assert.True(t, mock.closed)
}

func TestJSONArrayWriter_CloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	writer := NewJSONArrayWriter(&buf)

	require.NoError(t, writer.Write(context.Background(), solrfeed.Record{"id": 1}))
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())

	var docs []solrfeed.Record
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
}

func TestJSONArrayWriter_NilValuesRender(t *testing.T) {
	var buf bytes.Buffer
	writer := NewJSONArrayWriter(&buf)

	require.NoError(t, writer.Write(context.Background(), solrfeed.Record{
		"thumbnail_url_ss": nil,
		"year_isim":        []int{1450},
	}))
	require.NoError(t, writer.Close())

	var docs []solrfeed.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	value, present := docs[0]["thumbnail_url_ss"]
	assert.True(t, present)
	assert.Nil(t, value)
}
