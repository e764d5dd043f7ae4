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
	"math"
)

// TNF (Type Name Format) values as defined by NFC Forum.
const (
	TNFEmpty       byte = 0x00 // Empty record
	TNFWellKnown   byte = 0x01 // NFC Forum well-known type
	TNFMedia       byte = 0x02 // Media-type (RFC 2046)
	TNFAbsoluteURI byte = 0x03 // Absolute URI (RFC 3986)
	TNFExternal    byte = 0x04 // NFC Forum external type
	TNFUnknown     byte = 0x05 // Unknown
	TNFUnchanged   byte = 0x06 // Unchanged (for chunked records)
	TNFReserved    byte = 0x07 // Reserved
)

// Record header flag bits.
const (
	tnfMask byte = 0x07
	flagMB  byte = 0x80 // message begin
	flagME  byte = 0x40 // message end
	flagCF  byte = 0x20 // chunk flag
	flagSR  byte = 0x10 // short record
	flagIL  byte = 0x08 // ID length present
)

const shortRecordMaxLen = 255

// Record represents a single NDEF record.
//
// Type, ID and Payload hold the wire fields verbatim. Value holds the
// decoded variant (TextValue, URIValue, MIMEValue or RawValue) and is
// populated during message decode; the record constructors set it on the
// write path.
type Record struct {
	Value   RecordValue
	Type    string
	ID      string
	Payload []byte
	TNF     byte
	mb      bool
	me      bool
}

// MB returns true if this record is the first in a message.
func (r *Record) MB() bool { return r.mb }

// ME returns true if this record is the last in a message.
func (r *Record) ME() bool { return r.me }

// Marshal serializes a single NDEF record to bytes.
func (r *Record) Marshal() ([]byte, error) {
	if r.TNF > TNFReserved {
		return nil, ErrInvalidTNF
	}

	typeBytes := []byte(r.Type)
	idBytes := []byte(r.ID)
	payloadLen := len(r.Payload)

	if len(typeBytes) > math.MaxUint8 || len(idBytes) > math.MaxUint8 {
		return nil, ErrPayloadTooLarge
	}
	if uint64(payloadLen) > math.MaxUint32 {
		return nil, ErrPayloadTooLarge
	}

	flags := r.TNF & tnfMask
	if r.mb {
		flags |= flagMB
	}
	if r.me {
		flags |= flagME
	}
	if payloadLen <= shortRecordMaxLen {
		flags |= flagSR
	}
	if len(idBytes) > 0 {
		flags |= flagIL
	}

	header := []byte{flags, byte(len(typeBytes))}

	if payloadLen <= shortRecordMaxLen {
		header = append(header, byte(payloadLen))
	} else {
		lenBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBytes, uint32(payloadLen))
		header = append(header, lenBytes...)
	}

	if len(idBytes) > 0 {
		header = append(header, byte(len(idBytes)))
	}

	result := make([]byte, 0, len(header)+len(typeBytes)+len(idBytes)+payloadLen)
	result = append(result, header...)
	result = append(result, typeBytes...)
	result = append(result, idBytes...)
	result = append(result, r.Payload...)

	return result, nil
}

// Unmarshal parses a single NDEF record and returns the number of bytes
// consumed. Length fields are trusted only within the bounds of the
// remaining buffer; a length demanding more bytes than remain fails with
// ErrTruncatedBuffer rather than reading out of bounds.
func (r *Record) Unmarshal(data []byte) (int, error) {
	if len(data) < 3 {
		return 0, ErrTruncatedBuffer
	}

	flags := data[0]
	r.TNF = flags & tnfMask
	r.mb = flags&flagMB != 0
	r.me = flags&flagME != 0
	isShort := flags&flagSR != 0
	hasID := flags&flagIL != 0

	if flags&flagCF != 0 {
		return 0, ErrUnsupportedChunking
	}
	if r.TNF > TNFUnchanged {
		return 0, ErrInvalidTNF
	}

	typeLen := int(data[1])
	offset := 2

	var payloadLen int
	if isShort {
		if offset >= len(data) {
			return 0, ErrTruncatedBuffer
		}
		payloadLen = int(data[offset])
		offset++
	} else {
		if offset+4 > len(data) {
			return 0, ErrTruncatedBuffer
		}
		payloadLen = int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
	}

	var idLen int
	if hasID {
		if offset >= len(data) {
			return 0, ErrTruncatedBuffer
		}
		idLen = int(data[offset])
		offset++
	}

	if payloadLen < 0 || offset+typeLen+idLen+payloadLen > len(data) {
		return 0, ErrTruncatedBuffer
	}

	if typeLen > 0 {
		r.Type = string(data[offset : offset+typeLen])
		offset += typeLen
	}
	if idLen > 0 {
		r.ID = string(data[offset : offset+idLen])
		offset += idLen
	}
	if payloadLen > 0 {
		r.Payload = make([]byte, payloadLen)
		copy(r.Payload, data[offset:offset+payloadLen])
		offset += payloadLen
	}

	return offset, nil
}
