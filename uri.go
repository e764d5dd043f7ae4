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

// RecordTypeURI is the NFC Forum well-known type for URI records.
const RecordTypeURI = "U"

// uriPrefixes is the URI identifier code table from the NFC Forum URI RTD.
// The payload's first byte indexes this table; code 0x00 means no prefix.
var uriPrefixes = []string{
	0x00: "",
	0x01: "http://www.",
	0x02: "https://www.",
	0x03: "http://",
	0x04: "https://",
	0x05: "tel:",
	0x06: "mailto:",
	0x07: "ftp://anonymous:anonymous@",
	0x08: "ftp://ftp.",
	0x09: "ftps://",
	0x0A: "sftp://",
	0x0B: "smb://",
	0x0C: "nfs://",
	0x0D: "ftp://",
	0x0E: "dav://",
	0x0F: "news:",
	0x10: "telnet://",
	0x11: "imap:",
	0x12: "rtsp://",
	0x13: "urn:",
	0x14: "pop:",
	0x15: "sip:",
	0x16: "sips:",
	0x17: "tftp:",
	0x18: "btspp://",
	0x19: "btl2cap://",
	0x1A: "btgoep://",
	0x1B: "tcpobex://",
	0x1C: "irdaobex://",
	0x1D: "file://",
	0x1E: "urn:epc:id:",
	0x1F: "urn:epc:tag:",
	0x20: "urn:epc:pat:",
	0x21: "urn:epc:raw:",
	0x22: "urn:epc:",
	0x23: "urn:nfc:",
}

// URIValue is the decoded payload of a well-known "U" record.
type URIValue struct {
	URI string
}

// String implements RecordValue
func (v *URIValue) String() string {
	return v.URI
}

// EncodeRecord re-derives the wire record from the URI. The single longest
// matching prefix from the identifier table is selected and stripped, which
// makes re-encoding a decoded URI stable.
func (v *URIValue) EncodeRecord() (*Record, error) {
	code := byte(0)
	remainder := v.URI
	for i, prefix := range uriPrefixes {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(v.URI, prefix) && len(prefix) > len(uriPrefixes[code]) {
			code = byte(i)
			remainder = v.URI[len(prefix):]
		}
	}

	payload := make([]byte, 0, 1+len(remainder))
	payload = append(payload, code)
	payload = append(payload, remainder...)

	return &Record{
		TNF:     TNFWellKnown,
		Type:    RecordTypeURI,
		Payload: payload,
		Value:   v,
	}, nil
}

// NewURIRecord creates a URI record, abbreviating the URI with the best
// matching identifier code.
func NewURIRecord(uri string) *Record {
	rec, _ := (&URIValue{URI: uri}).EncodeRecord()
	return rec
}

// decodeURIPayload parses a "U" record payload: one identifier code byte
// followed by the remainder of the URI.
func decodeURIPayload(rec *Record) (RecordValue, error) {
	payload := rec.Payload
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty URI payload", ErrMalformedPayload)
	}

	code := payload[0]
	if int(code) >= len(uriPrefixes) {
		return nil, fmt.Errorf("%w: unknown URI identifier code 0x%02X", ErrMalformedPayload, code)
	}

	return &URIValue{URI: uriPrefixes[code] + string(payload[1:])}, nil
}
