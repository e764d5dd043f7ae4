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
	"fmt"
	"strings"
)

// Message represents an NDEF message, an ordered non-empty sequence of
// records. A decoded Message has message-begin on the first record and
// message-end on the last; Marshal recomputes both.
type Message struct {
	Records []*Record
}

// DecodeMessage parses an NDEF message using the default variant registry.
func DecodeMessage(data []byte) (*Message, error) {
	return DecodeMessageWithRegistry(data, defaultRegistry)
}

// DecodeMessageWithRegistry parses an NDEF message, resolving record
// variants through the given registry.
//
// Records are consumed back-to-back until one carries the message-end flag.
// Trailing bytes after that record are ignored; Type 5 tags commonly pad
// the NDEF area with NULL TLVs.
func DecodeMessageWithRegistry(data []byte, reg *Registry) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := &Message{}
	offset := 0
	seenME := false

	for offset < len(data) && !seenME {
		rec := &Record{}
		n, err := rec.Unmarshal(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", offset, err)
		}

		if len(msg.Records) == 0 && !rec.mb {
			return nil, ErrEmptyMessage
		}

		value, err := reg.decodeValue(rec)
		if err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", offset, err)
		}
		rec.Value = value

		msg.Records = append(msg.Records, rec)
		seenME = rec.me
		offset += n
	}

	if len(msg.Records) == 0 {
		return nil, ErrEmptyMessage
	}
	if !seenME {
		return nil, ErrMissingMessageEnd
	}

	return msg, nil
}

// Marshal serializes the message to the NFC Forum wire format. The
// message-begin flag is set only on the first record and message-end only
// on the last, regardless of any flags carried over from a decode.
func (m *Message) Marshal() ([]byte, error) {
	if len(m.Records) == 0 {
		return nil, ErrEmptyMessage
	}

	var result []byte
	for i, rec := range m.Records {
		rec.mb = i == 0
		rec.me = i == len(m.Records)-1

		data, err := rec.Marshal()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		result = append(result, data...)
	}
	return result, nil
}

// String returns a human readable rendering of the message, one record
// per line.
func (m *Message) String() string {
	var sb strings.Builder
	for i, rec := range m.Records {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if rec.Value != nil {
			sb.WriteString(rec.Value.String())
		} else {
			fmt.Fprintf(&sb, "record TNF=%d type=%q (%d bytes)", rec.TNF, rec.Type, len(rec.Payload))
		}
	}
	return sb.String()
}
