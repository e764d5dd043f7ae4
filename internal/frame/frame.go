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
	"bytes"
	"errors"
	"fmt"
)

// Frame parse errors
var (
	ErrFrameTooShort    = errors.New("frame too short")
	ErrNoStartCode      = errors.New("start code not found")
	ErrLengthChecksum   = errors.New("length checksum mismatch")
	ErrDataChecksum     = errors.New("data checksum mismatch")
	ErrWrongDirection   = errors.New("unexpected frame direction")
	ErrFrameDataTooLong = errors.New("frame data exceeds maximum length")
)

// CalculateChecksum returns the sum of data truncated to one byte
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Build assembles a host-to-reader frame carrying cmd and args.
//
// Layout: preamble, start code, LEN, LCS, TFI, cmd, args, DCS, postamble,
// where LEN covers TFI+cmd+args, LCS is the two's complement of LEN and
// DCS the two's complement of the sum over TFI+cmd+args.
func Build(cmd byte, args []byte) ([]byte, error) {
	dataLen := 2 + len(args) // TFI + cmd + args
	if dataLen > MaxFrameDataLength {
		return nil, ErrFrameDataTooLong
	}

	lcs := ^byte(dataLen) + 1

	out := make([]byte, 0, dataLen+7)
	out = append(out, Preamble, StartCode1, StartCode2)
	out = append(out, byte(dataLen), lcs)
	out = append(out, HostToReader, cmd)
	out = append(out, args...)

	dcs := ^(HostToReader + cmd + CalculateChecksum(args)) + 1
	out = append(out, dcs, Postamble)
	return out, nil
}

// Parse validates a reader-to-host frame and returns its payload after
// the TFI byte (response code plus data).
func Parse(buf []byte) ([]byte, error) {
	start := bytes.Index(buf, []byte{StartCode1, StartCode2})
	if start < 0 {
		return nil, ErrNoStartCode
	}
	buf = buf[start+2:]

	if len(buf) < 2 {
		return nil, ErrFrameTooShort
	}
	dataLen := int(buf[0])
	if byte(dataLen)+buf[1] != 0 {
		return nil, ErrLengthChecksum
	}
	if len(buf) < 2+dataLen+1 {
		return nil, ErrFrameTooShort
	}

	data := buf[2 : 2+dataLen]
	dcs := buf[2+dataLen]
	if CalculateChecksum(data)+dcs != 0 {
		return nil, ErrDataChecksum
	}

	if dataLen < 1 {
		return nil, ErrFrameTooShort
	}
	if data[0] != ReaderToHost {
		return nil, fmt.Errorf("%w: TFI 0x%02X", ErrWrongDirection, data[0])
	}

	return data[1:], nil
}

// IsAck reports whether buf starts with an ACK frame
func IsAck(buf []byte) bool {
	return bytes.HasPrefix(buf, AckFrame)
}

// IsNack reports whether buf starts with a NACK frame
func IsNack(buf []byte) bool {
	return bytes.HasPrefix(buf, NackFrame)
}
