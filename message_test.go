// go-ndef5
// Copyright (c) 2025 The go-ndef5 Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ndef5.
//
// go-ndef5 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ndef5 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ndef5; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package ndef5

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeMessage(nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("first record without message begin", func(t *testing.T) {
		t.Parallel()
		// Valid record bytes, but the MB flag is clear
		_, err := DecodeMessage([]byte{0x11, 0x01, 0x01, 0x54, 0x02})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("buffer ends before message end", func(t *testing.T) {
		t.Parallel()
		// MB set, ME clear, and no following record
		_, err := DecodeMessage([]byte{0x91, 0x01, 0x01, 0x54, 0x02})
		assert.ErrorIs(t, err, ErrMissingMessageEnd)
	})

	t.Run("single text record", func(t *testing.T) {
		t.Parallel()
		data := []byte{0xD1, 0x01, 0x08, 0x54, 0x02, 'e', 'n', 'h', 'e', 'l', 'l', 'o'}
		msg, err := DecodeMessage(data)
		require.NoError(t, err)
		require.Len(t, msg.Records, 1)

		rec := msg.Records[0]
		assert.True(t, rec.MB())
		assert.True(t, rec.ME())
		assert.Equal(t, TNFWellKnown, rec.TNF)
		assert.Equal(t, "T", rec.Type)

		text, ok := rec.Value.(*TextValue)
		require.True(t, ok, "expected TextValue, got %T", rec.Value)
		assert.Equal(t, "hello", text.Text)
		assert.Equal(t, "en", text.Language)
	})

	t.Run("two records", func(t *testing.T) {
		t.Parallel()
		data := []byte{
			0x91, 0x01, 0x04, 0x54, 0x02, 'e', 'n', 'a', // MB, text "a"
			0x51, 0x01, 0x08, 0x55, 0x04, 'n', 'f', 'c', '.', 'c', 'o', 'm', // ME, https://nfc.com
		}
		msg, err := DecodeMessage(data)
		require.NoError(t, err)
		require.Len(t, msg.Records, 2)

		assert.True(t, msg.Records[0].MB())
		assert.False(t, msg.Records[0].ME())
		assert.False(t, msg.Records[1].MB())
		assert.True(t, msg.Records[1].ME())

		uri, ok := msg.Records[1].Value.(*URIValue)
		require.True(t, ok, "expected URIValue, got %T", msg.Records[1].Value)
		assert.Equal(t, "https://nfc.com", uri.URI)
	})

	t.Run("trailing bytes after message end ignored", func(t *testing.T) {
		t.Parallel()
		data := []byte{0xD1, 0x01, 0x04, 0x54, 0x02, 'e', 'n', 'a', 0x00, 0x00, 0xFE}
		msg, err := DecodeMessage(data)
		require.NoError(t, err)
		assert.Len(t, msg.Records, 1)
	})

	t.Run("record error propagates", func(t *testing.T) {
		t.Parallel()
		// Second record carries the chunk flag
		data := []byte{
			0x91, 0x01, 0x04, 0x54, 0x02, 'e', 'n', 'a',
			0x71, 0x01, 0x01, 0x54, 0x02,
		}
		_, err := DecodeMessage(data)
		assert.ErrorIs(t, err, ErrUnsupportedChunking)
	})
}

func TestMessageMarshal(t *testing.T) {
	t.Parallel()

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()
		msg := &Message{}
		_, err := msg.Marshal()
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("flags recomputed", func(t *testing.T) {
		t.Parallel()
		msg := &Message{Records: []*Record{
			NewTextRecord("a", "en"),
			NewTextRecord("b", "en"),
			NewTextRecord("c", "en"),
		}}
		data, err := msg.Marshal()
		require.NoError(t, err)

		decoded, err := DecodeMessage(data)
		require.NoError(t, err)
		require.Len(t, decoded.Records, 3)
		assert.True(t, decoded.Records[0].MB())
		assert.False(t, decoded.Records[1].MB())
		assert.False(t, decoded.Records[1].ME())
		assert.True(t, decoded.Records[2].ME())
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		orig := &Message{Records: []*Record{
			NewTextRecord("hello world", "en-US"),
			NewURIRecord("https://example.com/path"),
			NewMIMERecord("application/json", []byte(`{"k":1}`)),
		}}
		data, err := orig.Marshal()
		require.NoError(t, err)

		decoded, err := DecodeMessage(data)
		require.NoError(t, err)
		require.Len(t, decoded.Records, len(orig.Records))
		for i := range orig.Records {
			assert.Equal(t, orig.Records[i].TNF, decoded.Records[i].TNF, "record %d TNF", i)
			assert.Equal(t, orig.Records[i].Type, decoded.Records[i].Type, "record %d type", i)
			assert.Equal(t, orig.Records[i].Payload, decoded.Records[i].Payload, "record %d payload", i)
		}
	})
}

func TestMessageString(t *testing.T) {
	t.Parallel()

	msg := &Message{Records: []*Record{
		NewTextRecord("hello", "en"),
		NewURIRecord("https://example.com"),
	}}
	s := msg.String()
	lines := strings.Split(s, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "hello")
	assert.Contains(t, lines[1], "https://example.com")
}
