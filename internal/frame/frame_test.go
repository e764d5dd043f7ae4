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

package frame

import (
	"errors"
	"testing"
)

func TestBuildFrameLayout(t *testing.T) {
	t.Parallel()

	got, err := Build(0x01, []byte{0x26, 0x00})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// LEN covers TFI + cmd + args = 4 bytes; LCS and DCS complement the
	// covered sums to zero.
	want := []byte{
		Preamble, StartCode1, StartCode2,
		0x04, 0xFC,
		HostToReader, 0x01, 0x26, 0x00,
		0x03, Postamble,
	}
	if len(got) != len(want) {
		t.Fatalf("Build() returned %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Build()[%d] = %#02x, want %#02x", i, got[i], want[i])
		}
	}
}

func TestParseRejectsCorruptFrames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		wantErr error
		name    string
		buf     []byte
	}{
		{
			name:    "no start code",
			buf:     []byte{0x01, 0x02, 0x03},
			wantErr: ErrNoStartCode,
		},
		{
			name:    "length checksum mismatch",
			buf:     []byte{0x00, 0x00, 0xFF, 0x04, 0x00, ReaderToHost, 0x01, 0x00, 0x00},
			wantErr: ErrLengthChecksum,
		},
		{
			name:    "truncated data",
			buf:     []byte{0x00, 0x00, 0xFF, 0x04, 0xFC, ReaderToHost, 0x01},
			wantErr: ErrFrameTooShort,
		},
		{
			name:    "data checksum mismatch",
			buf:     []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, ReaderToHost, 0x01, 0x00, 0x00},
			wantErr: ErrDataChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(tt.buf); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildRejectsOversizedData(t *testing.T) {
	t.Parallel()

	// TFI + cmd + args must fit in the single LEN byte
	if _, err := Build(0x20, make([]byte, MaxFrameDataLength-2)); err != nil {
		t.Errorf("Build() at LEN limit error = %v", err)
	}
	if _, err := Build(0x20, make([]byte, MaxFrameDataLength-1)); !errors.Is(err, ErrFrameDataTooLong) {
		t.Errorf("Build() over LEN limit error = %v, want ErrFrameDataTooLong", err)
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	t.Parallel()

	built, err := Build(0x20, []byte{0x05})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Flip the direction byte to make it a reader-to-host frame
	resp := append([]byte(nil), built...)
	resp[5] = ReaderToHost
	// Fix the data checksum for the changed TFI
	dataLen := int(resp[3])
	resp[5+dataLen] = ^CalculateChecksum(resp[5:5+dataLen]) + 1

	payload, err := Parse(resp)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(payload) != 2 || payload[0] != 0x20 || payload[1] != 0x05 {
		t.Errorf("Parse() payload = %#v, want [0x20 0x05]", payload)
	}
}
