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
	"unicode/utf16"
)

// RecordTypeText is the NFC Forum well-known type for text records.
const RecordTypeText = "T"

// Text record status byte layout: bit 7 selects the encoding, bits 0-6
// hold the language code length in bytes.
const (
	textStatusUTF16   byte = 0x80
	textStatusLangLen byte = 0x3F
)

// TextValue is the decoded payload of a well-known "T" record.
type TextValue struct {
	Language string
	Text     string
	UTF16    bool
}

// String implements RecordValue
func (v *TextValue) String() string {
	return v.Text
}

// EncodeRecord re-derives the wire record from the value's fields. The
// status byte and language code bytes are recomputed; UTF-16 text is
// emitted big-endian with a BOM.
func (v *TextValue) EncodeRecord() (*Record, error) {
	lang := []byte(v.Language)
	if len(lang) > int(textStatusLangLen) {
		return nil, fmt.Errorf("%w: language code %q too long", ErrMalformedPayload, v.Language)
	}

	status := byte(len(lang))
	var textBytes []byte
	if v.UTF16 {
		status |= textStatusUTF16
		textBytes = encodeUTF16BE(v.Text)
	} else {
		textBytes = []byte(v.Text)
	}

	payload := make([]byte, 0, 1+len(lang)+len(textBytes))
	payload = append(payload, status)
	payload = append(payload, lang...)
	payload = append(payload, textBytes...)

	return &Record{
		TNF:     TNFWellKnown,
		Type:    RecordTypeText,
		Payload: payload,
		Value:   v,
	}, nil
}

// NewTextRecord creates a UTF-8 text record with the given language code.
func NewTextRecord(text, language string) *Record {
	rec, _ := (&TextValue{Language: language, Text: text}).EncodeRecord()
	return rec
}

// decodeTextPayload parses a "T" record payload per the status byte layout.
func decodeTextPayload(rec *Record) (RecordValue, error) {
	payload := rec.Payload
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty text payload", ErrMalformedPayload)
	}

	status := payload[0]
	langLen := int(status & textStatusLangLen)
	if 1+langLen > len(payload) {
		return nil, fmt.Errorf("%w: language code length %d exceeds payload size %d",
			ErrMalformedPayload, langLen, len(payload))
	}

	value := &TextValue{
		Language: string(payload[1 : 1+langLen]),
		UTF16:    status&textStatusUTF16 != 0,
	}

	textBytes := payload[1+langLen:]
	if value.UTF16 {
		text, err := decodeUTF16(textBytes)
		if err != nil {
			return nil, err
		}
		value.Text = text
	} else {
		value.Text = string(textBytes)
	}

	return value, nil
}

// encodeUTF16BE encodes text as UTF-16 big-endian with a leading BOM.
func encodeUTF16BE(text string) []byte {
	units := utf16.Encode([]rune(text))
	out := make([]byte, 0, 2*(len(units)+1))
	out = append(out, 0xFE, 0xFF)
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

// decodeUTF16 decodes UTF-16 text bytes, honoring a BOM if present and
// defaulting to big-endian without one.
func decodeUTF16(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", fmt.Errorf("%w: odd UTF-16 text length %d", ErrMalformedPayload, len(data))
	}

	bigEndian := true
	if len(data) >= 2 {
		switch {
		case data[0] == 0xFE && data[1] == 0xFF:
			data = data[2:]
		case data[0] == 0xFF && data[1] == 0xFE:
			bigEndian = false
			data = data[2:]
		}
	}

	units := make([]uint16, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		if bigEndian {
			units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
		} else {
			units = append(units, uint16(data[i+1])<<8|uint16(data[i]))
		}
	}

	return string(utf16.Decode(units)), nil
}
