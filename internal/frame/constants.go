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

// Package frame implements the serial framing used by ISO15693 reader
// modules: start code, length with length checksum, direction byte,
// payload, data checksum.
package frame

// Frame direction constants - these indicate the direction of data flow
const (
	HostToReader = 0xD6 // Commands from host to reader module
	ReaderToHost = 0xD7 // Responses from reader module to host
)

// Frame markers and control bytes
const (
	Preamble   = 0x00 // Frame preamble byte
	StartCode1 = 0x00 // Start code byte 1
	StartCode2 = 0xFF // Start code byte 2
	Postamble  = 0x00 // Frame postamble byte
)

// Frame size limits. LEN is a single byte and extended frames are not
// supported, so data length is capped at 255.
const (
	MaxFrameDataLength = 255
	MinFrameLength     = 8 // preamble + startcode + len + lcs + tfi + cmd + dcs + postamble
)

// ResponseError is the reader module's error response code; the next
// payload byte carries the module error detail
const ResponseError = 0x7F

// AckFrame is sent by the reader module to confirm frame reception
var AckFrame = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}

// NackFrame is sent by the reader module on a corrupted frame
var NackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
