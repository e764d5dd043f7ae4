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

/*
Package ndef5 provides an NDEF (NFC Data Exchange Format) codec and a reader
stack for ISO15693 "Type 5" NFC tags.

The codec is a pure transformation between NDEF messages and the NFC Forum
binary record layout. It has no dependency on hardware: decoding and encoding
operate on byte buffers only, so the codec can be used against any transport
that can deliver the raw NDEF area of a tag.

Basic codec usage:

	msg := &ndef5.Message{
	    Records: []*ndef5.Record{
	        ndef5.NewTextRecord("hello", "en"),
	    },
	}
	data, err := msg.Marshal()
	if err != nil {
	    log.Fatal(err)
	}

	decoded, err := ndef5.DecodeMessage(data)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(decoded.Records[0].Value)

Record payloads are decoded through a variant registry. Text ("T"), URI ("U")
and MIME records are built in; anything else decodes as a RawValue carrying
the untouched payload bytes. Callers may register additional variants for
vendor record types:

	ndef5.RegisterVariant(ndef5.TNFExternal, "example.com:cfg", customVariant)

Reading and writing physical tags goes through a Reader bound to a transport:

	import (
	    "github.com/nfcforge/go-ndef5"
	    "github.com/nfcforge/go-ndef5/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	reader, err := ndef5.NewReader(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := reader.Init(); err != nil {
	    log.Fatal(err)
	}

	detected, err := reader.DetectTag()
	if err != nil {
	    log.Fatal(err)
	}

	tag, err := reader.CreateTag(detected)
	if err != nil {
	    log.Fatal(err)
	}

	msg, err := tag.ReadNDEF()
	if err != nil {
	    log.Fatal(err)
	}

Error Handling:

All operations return meaningful errors that can be inspected:

	if errors.Is(err, ndef5.ErrTruncatedBuffer) {
	    // Tag delivered fewer bytes than a record header declared
	}

Thread Safety:

The codec is pure and safe for concurrent use. Reader operations are not
thread-safe; serialize physical tag access in the caller (the polling
package does this for continuous scanning).
*/
package ndef5
