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

// Cross-checks the wire format against the independent go-ndef codec.

package ndef5_test

import (
	"bytes"
	"strings"
	"testing"

	gondef "github.com/hsanjuan/go-ndef"
	ndef5 "github.com/nfcforge/go-ndef5"
)

func TestTextMessageMatchesGoNDEF(t *testing.T) {
	t.Parallel()

	theirs, err := gondef.NewTextMessage("hello", "en").Marshal()
	if err != nil {
		t.Fatalf("go-ndef Marshal() error = %v", err)
	}

	ours, err := (&ndef5.Message{Records: []*ndef5.Record{
		ndef5.NewTextRecord("hello", "en"),
	}}).Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if !bytes.Equal(ours, theirs) {
		t.Errorf("encodings differ:\nours   = %X\ntheirs = %X", ours, theirs)
	}
}

func TestDecodeGoNDEFOutput(t *testing.T) {
	t.Parallel()

	t.Run("text message", func(t *testing.T) {
		t.Parallel()
		data, err := gondef.NewTextMessage("interop", "en").Marshal()
		if err != nil {
			t.Fatalf("go-ndef Marshal() error = %v", err)
		}

		msg, err := ndef5.DecodeMessage(data)
		if err != nil {
			t.Fatalf("DecodeMessage() error = %v", err)
		}
		text, ok := msg.Records[0].Value.(*ndef5.TextValue)
		if !ok {
			t.Fatalf("value is %T, want *TextValue", msg.Records[0].Value)
		}
		if text.Text != "interop" || text.Language != "en" {
			t.Errorf("decoded %q (%s)", text.Text, text.Language)
		}
	})

	t.Run("uri message", func(t *testing.T) {
		t.Parallel()
		data, err := gondef.NewURIMessage("https://example.com/x").Marshal()
		if err != nil {
			t.Fatalf("go-ndef Marshal() error = %v", err)
		}

		msg, err := ndef5.DecodeMessage(data)
		if err != nil {
			t.Fatalf("DecodeMessage() error = %v", err)
		}
		uri, ok := msg.Records[0].Value.(*ndef5.URIValue)
		if !ok {
			t.Fatalf("value is %T, want *URIValue", msg.Records[0].Value)
		}
		if uri.URI != "https://example.com/x" {
			t.Errorf("decoded URI = %q", uri.URI)
		}
	})
}

func TestGoNDEFDecodesOurOutput(t *testing.T) {
	t.Parallel()

	ours, err := (&ndef5.Message{Records: []*ndef5.Record{
		ndef5.NewTextRecord("roundtrip", "en"),
	}}).Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	theirs := &gondef.Message{}
	n, err := theirs.Unmarshal(ours)
	if err != nil {
		t.Fatalf("go-ndef Unmarshal() error = %v", err)
	}
	if n != len(ours) {
		t.Errorf("go-ndef consumed %d of %d bytes", n, len(ours))
	}
	if !strings.Contains(theirs.String(), "roundtrip") {
		t.Errorf("go-ndef rendering %q does not contain the text", theirs.String())
	}
}
