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

import "fmt"

// MIMEValue is the decoded form of a media record (TNFMedia). The record's
// type bytes hold the MIME type verbatim; the payload is opaque data.
type MIMEValue struct {
	MIMEType string
	Data     []byte
}

// String implements RecordValue
func (v *MIMEValue) String() string {
	return fmt.Sprintf("%s (%d bytes)", v.MIMEType, len(v.Data))
}

// EncodeRecord builds the wire record for the media payload.
func (v *MIMEValue) EncodeRecord() (*Record, error) {
	return &Record{
		TNF:     TNFMedia,
		Type:    v.MIMEType,
		Payload: v.Data,
		Value:   v,
	}, nil
}

// NewMIMERecord creates a media record carrying opaque data.
func NewMIMERecord(mimeType string, data []byte) *Record {
	rec, _ := (&MIMEValue{MIMEType: mimeType, Data: data}).EncodeRecord()
	return rec
}

// decodeMIMEPayload is the TNF-wide variant for TNFMedia records.
func decodeMIMEPayload(rec *Record) (RecordValue, error) {
	return &MIMEValue{MIMEType: rec.Type, Data: rec.Payload}, nil
}
