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

package ndef5_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
	"github.com/nfcforge/go-ndef5/internal/nfctest"
)

// newTestTag wires a virtual tag through the full reader stack
func newTestTag(t *testing.T, virtual *nfctest.VirtualTag) *ndef5.Type5Tag {
	t.Helper()

	reader, err := ndef5.NewReader(nfctest.NewTransport(virtual))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if err := reader.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	detected, err := reader.DetectTag()
	if err != nil {
		t.Fatalf("DetectTag() error = %v", err)
	}
	tag, err := reader.CreateTag(detected)
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	return tag
}

func TestType5TagGeometry(t *testing.T) {
	t.Parallel()

	tag := newTestTag(t, nfctest.NewVirtualTag(nil))
	if tag.UID() != "e004015012345678" {
		t.Errorf("UID() = %q", tag.UID())
	}
	if tag.BlockSize() != 4 {
		t.Errorf("BlockSize() = %d, want 4", tag.BlockSize())
	}
	if tag.Capacity() != 256 {
		t.Errorf("Capacity() = %d, want 256", tag.Capacity())
	}
}

func TestType5TagTextRoundTrip(t *testing.T) {
	t.Parallel()

	tag := newTestTag(t, nfctest.NewVirtualTag(nil))

	if err := tag.WriteText("hello, tag"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	text, err := tag.ReadText()
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if text != "hello, tag" {
		t.Errorf("ReadText() = %q, want %q", text, "hello, tag")
	}
}

func TestType5TagNDEFRoundTrip(t *testing.T) {
	t.Parallel()

	tag := newTestTag(t, nfctest.NewVirtualTag(nil))

	orig := &ndef5.Message{Records: []*ndef5.Record{
		ndef5.NewTextRecord("multi", "en"),
		ndef5.NewURIRecord("https://example.com/t"),
	}}
	if err := tag.WriteNDEF(orig); err != nil {
		t.Fatalf("WriteNDEF() error = %v", err)
	}

	msg, err := tag.ReadNDEF()
	if err != nil {
		t.Fatalf("ReadNDEF() error = %v", err)
	}
	if len(msg.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(msg.Records))
	}
	uri, ok := msg.Records[1].Value.(*ndef5.URIValue)
	if !ok {
		t.Fatalf("record 1 value is %T, want *URIValue", msg.Records[1].Value)
	}
	if uri.URI != "https://example.com/t" {
		t.Errorf("URI = %q", uri.URI)
	}
}

func TestType5TagOverwriteShrinks(t *testing.T) {
	t.Parallel()

	tag := newTestTag(t, nfctest.NewVirtualTag(nil))

	if err := tag.WriteText(strings.Repeat("long ", 20)); err != nil {
		t.Fatalf("WriteText(long) error = %v", err)
	}
	if err := tag.WriteText("short"); err != nil {
		t.Fatalf("WriteText(short) error = %v", err)
	}

	// The terminator TLV written with the short message must hide the
	// remains of the longer one
	text, err := tag.ReadText()
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if text != "short" {
		t.Errorf("ReadText() = %q, want %q", text, "short")
	}
}

func TestType5TagEmptyMessage(t *testing.T) {
	t.Parallel()

	// A freshly formatted tag carries a zero-length NDEF TLV
	tag := newTestTag(t, nfctest.NewVirtualTag(nil))
	if _, err := tag.ReadNDEF(); !errors.Is(err, ndef5.ErrEmptyMessage) {
		t.Errorf("ReadNDEF() error = %v, want ErrEmptyMessage", err)
	}
}

func TestType5TagNotFormatted(t *testing.T) {
	t.Parallel()

	virtual := nfctest.NewVirtualTag(nil)
	virtual.Memory[0] = 0x00 // destroy the CC magic
	tag := newTestTag(t, virtual)

	if _, err := tag.ReadNDEF(); !errors.Is(err, ndef5.ErrNotNDEFFormatted) {
		t.Errorf("ReadNDEF() error = %v, want ErrNotNDEFFormatted", err)
	}
}

func TestType5TagFormat(t *testing.T) {
	t.Parallel()

	virtual := nfctest.NewVirtualTag(nil)
	virtual.Memory[0] = 0x00
	tag := newTestTag(t, virtual)

	if err := tag.Format(); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if _, err := tag.ReadNDEF(); !errors.Is(err, ndef5.ErrEmptyMessage) {
		t.Errorf("ReadNDEF() after Format error = %v, want ErrEmptyMessage", err)
	}
	if err := tag.WriteText("formatted"); err != nil {
		t.Errorf("WriteText() after Format error = %v", err)
	}
}

func TestType5TagDataTooLarge(t *testing.T) {
	t.Parallel()

	tag := newTestTag(t, nfctest.NewVirtualTag(nil))

	// 300 bytes of text cannot fit the 248-byte NDEF area
	err := tag.WriteText(strings.Repeat("x", 300))
	if !errors.Is(err, ndef5.ErrDataTooLarge) {
		t.Errorf("WriteText() error = %v, want ErrDataTooLarge", err)
	}
}

func TestType5TagReadOnly(t *testing.T) {
	t.Parallel()

	virtual := nfctest.NewVirtualTag(nil)
	virtual.Memory[1] |= 0x03 // CC write access: forbidden
	tag := newTestTag(t, virtual)

	if err := tag.WriteText("nope"); !errors.Is(err, ndef5.ErrTagReadOnly) {
		t.Errorf("WriteText() error = %v, want ErrTagReadOnly", err)
	}
}

func TestType5TagContextCancellation(t *testing.T) {
	t.Parallel()

	tag := newTestTag(t, nfctest.NewVirtualTag(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tag.ReadNDEFContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadNDEFContext() error = %v, want context.Canceled", err)
	}
	msg := &ndef5.Message{Records: []*ndef5.Record{ndef5.NewTextRecord("x", "en")}}
	if err := tag.WriteNDEFContext(ctx, msg); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteNDEFContext() error = %v, want context.Canceled", err)
	}
}

func TestDetectTagContextAbsentTag(t *testing.T) {
	t.Parallel()

	virtual := nfctest.NewVirtualTag(nil)
	virtual.Present = false

	reader, err := ndef5.NewReader(nfctest.NewTransport(virtual))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := reader.DetectTagContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("DetectTagContext() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestVirtualTagPreloadedMessage(t *testing.T) {
	t.Parallel()

	virtual := nfctest.NewVirtualTag(nil)
	if err := virtual.SetNDEFText("preloaded"); err != nil {
		t.Fatalf("SetNDEFText() error = %v", err)
	}

	tag := newTestTag(t, virtual)
	text, err := tag.ReadText()
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if text != "preloaded" {
		t.Errorf("ReadText() = %q, want %q", text, "preloaded")
	}
}
