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
	"encoding/binary"
	"errors"
	"fmt"
)

// TLV tags used in the NDEF area of Type 5 tags.
const (
	tlvNull       byte = 0x00 // padding
	tlvNDEF       byte = 0x03 // NDEF Message TLV
	tlvTerminator byte = 0xFE // end of TLV area

	// tlvLongForm marks the three-byte length format: 0xFF followed by a
	// 16-bit big-endian length.
	tlvLongForm byte = 0xFF
)

// MaxNDEFMessageSize bounds the NDEF payload accepted from a tag. Larger
// declared lengths are treated as corruption.
const MaxNDEFMessageSize = 8192

// extractNDEFPayload scans a raw tag memory dump for the NDEF Message TLV
// and returns its payload, or nil if no complete NDEF TLV is present.
func extractNDEFPayload(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		switch data[i] {
		case tlvNDEF:
			return extractTLVPayload(data, i)
		case tlvTerminator:
			return nil
		}
	}
	return nil
}

// extractTLVPayload extracts the payload of the TLV starting at offset.
// Returns nil if the TLV is truncated.
func extractTLVPayload(data []byte, offset int) []byte {
	if offset+1 >= len(data) {
		return nil
	}
	if data[offset+1] == tlvLongForm {
		return extractLongFormatPayload(data, offset)
	}
	return extractShortFormatPayload(data, offset)
}

// extractShortFormatPayload handles the one-byte length format.
func extractShortFormatPayload(data []byte, offset int) []byte {
	if offset+1 >= len(data) {
		return nil
	}
	length := int(data[offset+1])
	start := offset + 2
	if start+length > len(data) {
		return nil
	}
	return data[start : start+length]
}

// extractLongFormatPayload handles the three-byte length format.
func extractLongFormatPayload(data []byte, offset int) []byte {
	if offset+4 > len(data) {
		return nil
	}
	length := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
	start := offset + 4
	if start+length > len(data) {
		return nil
	}
	return data[start : start+length]
}

// parseTLVLength parses the length of the TLV whose tag byte is at index i.
// It returns the payload length and the index of the first payload byte.
func parseTLVLength(data []byte, i int) (length, start int, err error) {
	if i+1 >= len(data) {
		return 0, 0, fmt.Errorf("%w: TLV at %d has no length byte", ErrTruncatedBuffer, i)
	}
	if data[i+1] == tlvLongForm {
		if i+4 > len(data) {
			return 0, 0, fmt.Errorf("%w: TLV at %d has incomplete 16-bit length", ErrTruncatedBuffer, i)
		}
		return int(binary.BigEndian.Uint16(data[i+2 : i+4])), i + 4, nil
	}
	return int(data[i+1]), i + 2, nil
}

// ValidateNDEFMessage checks that a raw tag memory dump contains a complete
// NDEF Message TLV whose payload decodes as a well-formed NDEF message.
func ValidateNDEFMessage(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyMessage
	}

	payload := extractNDEFPayload(data)
	if payload == nil {
		return errors.New("no complete NDEF TLV found")
	}
	if len(payload) > MaxNDEFMessageSize {
		return fmt.Errorf("NDEF payload size %d exceeds maximum %d", len(payload), MaxNDEFMessageSize)
	}

	if err := validateRecordStructure(payload); err != nil {
		return fmt.Errorf("NDEF TLV payload: %w", err)
	}
	return nil
}

// validateRecordStructure walks the record headers of an encoded message,
// checking framing flags and length consistency without decoding payload
// variants. Tag dumps may carry payloads the variant layer would reject
// while still being structurally sound.
func validateRecordStructure(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyMessage
	}

	offset := 0
	records := 0
	for offset < len(data) {
		rec := &Record{}
		n, err := rec.Unmarshal(data[offset:])
		if err != nil {
			return err
		}
		if records == 0 && !rec.mb {
			return ErrEmptyMessage
		}
		records++
		offset += n
		if rec.me {
			return nil
		}
	}
	return ErrMissingMessageEnd
}

// wrapNDEFMessage wraps an encoded NDEF message in a Message TLV followed
// by a terminator TLV, ready to be written to the tag's NDEF area.
func wrapNDEFMessage(msg []byte) ([]byte, error) {
	var header []byte
	switch {
	case len(msg) < int(tlvLongForm):
		header = []byte{tlvNDEF, byte(len(msg))}
	case len(msg) <= 0xFFFF:
		header = []byte{tlvNDEF, tlvLongForm, 0, 0}
		binary.BigEndian.PutUint16(header[2:], uint16(len(msg)))
	default:
		return nil, fmt.Errorf("%w: %d bytes does not fit a TLV length", ErrPayloadTooLarge, len(msg))
	}

	out := make([]byte, 0, len(header)+len(msg)+1)
	out = append(out, header...)
	out = append(out, msg...)
	out = append(out, tlvTerminator)
	return out, nil
}
