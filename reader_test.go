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
	"bytes"
	"errors"
	"testing"
	"time"
)

// testUID is a canonical-order ISO15693 UID (0xE0 first)
var testUID = []byte{0xE0, 0x04, 0x01, 0x50, 0x12, 0x34, 0x56, 0x78}

// lsbUID returns the UID byte-reversed, as it travels on the air interface
func lsbUID(uid []byte) []byte {
	out := make([]byte, len(uid))
	for i, b := range uid {
		out[len(uid)-1-i] = b
	}
	return out
}

func TestDetectTag(t *testing.T) {
	t.Parallel()

	t.Run("tag answers inventory", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.Responses[cmdInventory] = append([]byte{0x00}, lsbUID(testUID)...)

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}

		tag, err := reader.DetectTag()
		if err != nil {
			t.Fatalf("DetectTag() error = %v", err)
		}
		if !bytes.Equal(tag.UID, testUID) {
			t.Errorf("UID = %X, want %X", tag.UID, testUID)
		}
		if tag.UIDString() != "e004015012345678" {
			t.Errorf("UIDString() = %q", tag.UIDString())
		}
	})

	t.Run("silent field means no tag", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}

		if _, err := reader.DetectTag(); !errors.Is(err, ErrNoTagDetected) {
			t.Errorf("DetectTag() error = %v, want ErrNoTagDetected", err)
		}
	})

	t.Run("non-ISO15693 UID rejected", func(t *testing.T) {
		t.Parallel()
		bogus := append([]byte(nil), testUID...)
		bogus[0] = 0x04 // not 0xE0 canonical-first

		mock := NewMockTransport()
		mock.Responses[cmdInventory] = append([]byte{0x00}, lsbUID(bogus)...)

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}

		if _, err := reader.DetectTag(); !errors.Is(err, ErrInvalidTag) {
			t.Errorf("DetectTag() error = %v, want ErrInvalidTag", err)
		}
	})

	t.Run("short inventory response", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.Responses[cmdInventory] = []byte{0x00, 0x01, 0x02}

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}

		if _, err := reader.DetectTag(); !errors.Is(err, ErrNoTagDetected) {
			t.Errorf("DetectTag() error = %v, want ErrNoTagDetected", err)
		}
	})

	t.Run("inventory flags on the wire", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.Responses[cmdInventory] = append([]byte{0x00}, lsbUID(testUID)...)

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		if _, err := reader.DetectTag(); err != nil {
			t.Fatalf("DetectTag() error = %v", err)
		}

		sent := mock.Sent()
		if len(sent) != 1 {
			t.Fatalf("sent %d frames, want 1", len(sent))
		}
		want := []byte{cmdInventory, flagDataRateHigh | flagInventory | flagSingleSlot, 0x00}
		if !bytes.Equal(sent[0], want) {
			t.Errorf("inventory frame = %X, want %X", sent[0], want)
		}
	})
}

func TestReadBlocksWire(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.Responses[cmdReadMultipleBlocks] = bytes.Repeat([]byte{0xAA}, 12)

	reader, err := NewReader(mock)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	data, err := reader.ReadBlocks(4, 3)
	if err != nil {
		t.Fatalf("ReadBlocks() error = %v", err)
	}
	if len(data) != 12 {
		t.Errorf("len(data) = %d, want 12", len(data))
	}

	sent := mock.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d frames, want 1", len(sent))
	}
	// The wire carries the block count minus one
	want := []byte{cmdReadMultipleBlocks, 0x04, 0x02}
	if !bytes.Equal(sent[0], want) {
		t.Errorf("frame = %X, want %X", sent[0], want)
	}

	if _, err := reader.ReadBlocks(0, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ReadBlocks(0, 0) error = %v, want ErrInvalidParameter", err)
	}
}

func TestWriteBlockWire(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.Responses[cmdWriteSingleBlock] = []byte{}

	reader, err := NewReader(mock)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	if err := reader.WriteBlock(7, []byte{0x01, 0x02, 0x03, 0x04}); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	sent := mock.Sent()
	want := []byte{cmdWriteSingleBlock, 0x07, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(sent[0], want) {
		t.Errorf("frame = %X, want %X", sent[0], want)
	}
}

func TestParseSystemInfo(t *testing.T) {
	t.Parallel()

	t.Run("DSFID and memory size", func(t *testing.T) {
		t.Parallel()
		resp := []byte{infoFlagDSFID | infoFlagMemorySize}
		resp = append(resp, lsbUID(testUID)...)
		resp = append(resp, 0x42)       // DSFID
		resp = append(resp, 0x3F, 0x03) // 64 blocks, 4 bytes each

		info, err := parseSystemInfo(resp)
		if err != nil {
			t.Fatalf("parseSystemInfo() error = %v", err)
		}
		if !bytes.Equal(info.UID, testUID) {
			t.Errorf("UID = %X, want %X", info.UID, testUID)
		}
		if info.DSFID != 0x42 {
			t.Errorf("DSFID = %02X, want 42", info.DSFID)
		}
		if !info.HasMemory || info.BlockCount != 64 || info.BlockSize != 4 {
			t.Errorf("geometry = %d x %d (HasMemory %v), want 64 x 4",
				info.BlockCount, info.BlockSize, info.HasMemory)
		}
	})

	t.Run("all fields present", func(t *testing.T) {
		t.Parallel()
		resp := []byte{infoFlagDSFID | infoFlagAFI | infoFlagMemorySize | infoFlagICRef}
		resp = append(resp, lsbUID(testUID)...)
		resp = append(resp, 0x42, 0x07, 0x7F, 0xE3, 0x44)

		info, err := parseSystemInfo(resp)
		if err != nil {
			t.Fatalf("parseSystemInfo() error = %v", err)
		}
		if info.AFI != 0x07 || info.ICRef != 0x44 {
			t.Errorf("AFI = %02X ICRef = %02X", info.AFI, info.ICRef)
		}
		if info.BlockCount != 128 {
			t.Errorf("BlockCount = %d, want 128", info.BlockCount)
		}
		// Upper bits of the size byte are RFU and must be masked
		if info.BlockSize != 4 {
			t.Errorf("BlockSize = %d, want 4", info.BlockSize)
		}
	})

	t.Run("truncated responses", func(t *testing.T) {
		t.Parallel()
		tests := [][]byte{
			{},
			{0x00, 0x01, 0x02},
			append([]byte{infoFlagDSFID}, lsbUID(testUID)...),
			append(append([]byte{infoFlagMemorySize}, lsbUID(testUID)...), 0x3F),
		}
		for i, resp := range tests {
			if _, err := parseSystemInfo(resp); !errors.Is(err, ErrFrameCorrupted) {
				t.Errorf("case %d: error = %v, want ErrFrameCorrupted", i, err)
			}
		}
	})
}

func TestCreateTag(t *testing.T) {
	t.Parallel()

	t.Run("geometry from system info", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		sysResp := []byte{infoFlagMemorySize}
		sysResp = append(sysResp, lsbUID(testUID)...)
		sysResp = append(sysResp, 0x7F, 0x07) // 128 blocks, 8 bytes each
		mock.Responses[cmdGetSystemInfo] = sysResp

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}

		tag, err := reader.CreateTag(&DetectedTag{UID: testUID})
		if err != nil {
			t.Fatalf("CreateTag() error = %v", err)
		}
		if tag.Capacity() != 128*8 {
			t.Errorf("Capacity() = %d, want %d", tag.Capacity(), 128*8)
		}
	})

	t.Run("defaults when system info unanswered", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}

		tag, err := reader.CreateTag(&DetectedTag{UID: testUID})
		if err != nil {
			t.Fatalf("CreateTag() error = %v", err)
		}
		if tag.Capacity() != 4*64 {
			t.Errorf("Capacity() = %d, want %d", tag.Capacity(), 4*64)
		}
	})

	t.Run("nil detected tag", func(t *testing.T) {
		t.Parallel()
		reader, err := NewReader(NewMockTransport())
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		if _, err := reader.CreateTag(nil); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("CreateTag(nil) error = %v, want ErrInvalidParameter", err)
		}
	})
}

func TestReaderInit(t *testing.T) {
	t.Parallel()

	t.Run("connected transport", func(t *testing.T) {
		t.Parallel()
		reader, err := NewReader(NewMockTransport(), WithTimeout(2*time.Second))
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		if err := reader.Init(); err != nil {
			t.Errorf("Init() error = %v", err)
		}
	})

	t.Run("closed transport", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		_ = mock.Close()

		reader, err := NewReader(mock)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		if err := reader.Init(); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("Init() error = %v, want ErrDeviceNotFound", err)
		}
	})

	t.Run("nil transport", func(t *testing.T) {
		t.Parallel()
		reader, err := NewReader(nil)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		if err := reader.Init(); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("Init() error = %v, want ErrDeviceNotFound", err)
		}
	})
}

func TestReaderSetTimeout(t *testing.T) {
	t.Parallel()

	reader, err := NewReader(NewMockTransport())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	if err := reader.SetTimeout(0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SetTimeout(0) error = %v, want ErrInvalidParameter", err)
	}
	if err := reader.SetTimeout(-time.Second); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SetTimeout(-1s) error = %v, want ErrInvalidParameter", err)
	}
	if err := reader.SetTimeout(500 * time.Millisecond); err != nil {
		t.Errorf("SetTimeout(500ms) error = %v", err)
	}
}
