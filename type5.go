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
	"context"
	"encoding/hex"
	"errors"
	"fmt"
)

// Capability Container constants for Type 5 tags. The CC occupies the
// first 4 bytes of block 0 (8 bytes when the memory size does not fit the
// one-byte MLEN field).
const (
	ccMagic          byte = 0xE1 // one-byte address mode
	ccMagicExtended  byte = 0xE2 // two-byte address mode
	ccVersionMajor   byte = 0x01
	ccShortLen            = 4
	ccExtendedLen         = 8
	ccMLENGranule         = 8 // MLEN counts 8-byte units
	maxShortMLENSize      = 255 * ccMLENGranule
)

// CapabilityContainer is the decoded CC of a Type 5 tag
type CapabilityContainer struct {
	// MemoryLen is the usable NDEF area size in bytes
	MemoryLen int
	// Len is the CC size on the tag, 4 or 8 bytes
	Len          int
	Magic        byte
	VersionMajor byte
	VersionMinor byte
	ReadAccess   byte
	WriteAccess  byte
}

// Writable reports whether the CC grants write access
func (cc *CapabilityContainer) Writable() bool {
	return cc.WriteAccess == 0
}

// parseCapabilityContainer decodes the CC from the start of tag memory.
func parseCapabilityContainer(data []byte) (*CapabilityContainer, error) {
	if len(data) < ccShortLen {
		return nil, fmt.Errorf("%w: capability container truncated", ErrNotNDEFFormatted)
	}
	if data[0] != ccMagic && data[0] != ccMagicExtended {
		return nil, fmt.Errorf("%w: bad CC magic 0x%02X", ErrNotNDEFFormatted, data[0])
	}

	cc := &CapabilityContainer{
		Magic:        data[0],
		VersionMajor: data[1] >> 6,
		VersionMinor: data[1] >> 4 & 0x03,
		ReadAccess:   data[1] >> 2 & 0x03,
		WriteAccess:  data[1] & 0x03,
		MemoryLen:    int(data[2]) * ccMLENGranule,
		Len:          ccShortLen,
	}

	if data[2] == 0 {
		// Extended CC: 16-bit MLEN in bytes 6-7
		if len(data) < ccExtendedLen {
			return nil, fmt.Errorf("%w: extended capability container truncated", ErrNotNDEFFormatted)
		}
		cc.MemoryLen = (int(data[6])<<8 | int(data[7])) * ccMLENGranule
		cc.Len = ccExtendedLen
	}

	if cc.MemoryLen == 0 {
		return nil, fmt.Errorf("%w: CC declares zero memory", ErrNotNDEFFormatted)
	}
	return cc, nil
}

// Type5Tag represents an ISO15693 tag with an NDEF area
type Type5Tag struct {
	reader     *Reader
	uid        []byte
	blockSize  int
	blockCount int
}

// UID returns the tag UID as a hex string
func (t *Type5Tag) UID() string {
	return hex.EncodeToString(t.uid)
}

// UIDBytes returns the tag UID bytes in canonical order
func (t *Type5Tag) UIDBytes() []byte {
	return t.uid
}

// BlockSize returns the tag's memory block size in bytes
func (t *Type5Tag) BlockSize() int {
	return t.blockSize
}

// Capacity returns the tag's total memory size in bytes
func (t *Type5Tag) Capacity() int {
	return t.blockSize * t.blockCount
}

// ReadBlock reads one memory block
func (t *Type5Tag) ReadBlock(block uint8) ([]byte, error) {
	return t.reader.ReadBlock(block)
}

// WriteBlock writes one memory block
func (t *Type5Tag) WriteBlock(block uint8, data []byte) error {
	if len(data) != t.blockSize {
		return fmt.Errorf("%w: block size is %d, got %d bytes", ErrInvalidParameter, t.blockSize, len(data))
	}
	return t.reader.WriteBlock(block, data)
}

// readMemory reads n bytes from the start of tag memory, rounded up to
// whole blocks.
func (t *Type5Tag) readMemory(ctx context.Context, n int) ([]byte, error) {
	blocks := (n + t.blockSize - 1) / t.blockSize
	if blocks > t.blockCount {
		blocks = t.blockCount
	}

	data := make([]byte, 0, blocks*t.blockSize)
	for block := 0; block < blocks; block++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := t.reader.ReadBlock(byte(block))
		if err != nil {
			return nil, err
		}
		if len(chunk) < t.blockSize {
			return nil, fmt.Errorf("%w: block %d returned %d bytes", ErrFrameCorrupted, block, len(chunk))
		}
		data = append(data, chunk[:t.blockSize]...)
	}
	return data, nil
}

// ReadCapabilityContainer reads and decodes the tag's CC
func (t *Type5Tag) ReadCapabilityContainer() (*CapabilityContainer, error) {
	return t.readCapabilityContainer(context.Background())
}

func (t *Type5Tag) readCapabilityContainer(ctx context.Context) (*CapabilityContainer, error) {
	data, err := t.readMemory(ctx, ccExtendedLen)
	if err != nil {
		return nil, fmt.Errorf("read capability container: %w", err)
	}
	return parseCapabilityContainer(data)
}

// ReadNDEF reads and decodes the tag's NDEF message
func (t *Type5Tag) ReadNDEF() (*Message, error) {
	return t.ReadNDEFContext(context.Background())
}

// ReadNDEFContext reads and decodes the tag's NDEF message, checking the
// context between block reads.
func (t *Type5Tag) ReadNDEFContext(ctx context.Context) (*Message, error) {
	cc, err := t.readCapabilityContainer(ctx)
	if err != nil {
		return nil, err
	}

	area, err := t.readMemory(ctx, cc.Len+cc.MemoryLen)
	if err != nil {
		return nil, fmt.Errorf("read NDEF area: %w", err)
	}
	if len(area) <= cc.Len {
		return nil, ErrNotNDEFFormatted
	}

	payload := extractNDEFPayload(area[cc.Len:])
	if payload == nil {
		return nil, fmt.Errorf("%w: no NDEF TLV in tag memory", ErrNotNDEFFormatted)
	}
	if len(payload) == 0 {
		return nil, ErrEmptyMessage
	}

	msg, err := DecodeMessage(payload)
	if err != nil {
		return nil, fmt.Errorf("decode NDEF message: %w", err)
	}
	return msg, nil
}

// WriteNDEF encodes and writes an NDEF message to the tag
func (t *Type5Tag) WriteNDEF(msg *Message) error {
	return t.WriteNDEFContext(context.Background(), msg)
}

// WriteNDEFContext encodes and writes an NDEF message, checking the
// context between block writes.
func (t *Type5Tag) WriteNDEFContext(ctx context.Context, msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidParameter)
	}

	cc, err := t.readCapabilityContainer(ctx)
	if err != nil {
		return err
	}
	if !cc.Writable() {
		return ErrTagReadOnly
	}

	encoded, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("encode NDEF message: %w", err)
	}
	area, err := wrapNDEFMessage(encoded)
	if err != nil {
		return err
	}
	if len(area) > cc.MemoryLen {
		return fmt.Errorf("%w: message needs %d bytes, tag has %d", ErrDataTooLarge, len(area), cc.MemoryLen)
	}

	return t.writeArea(ctx, cc.Len, area)
}

// writeArea writes data at the given byte offset in tag memory, reading
// back partially covered edge blocks so neighboring bytes survive.
func (t *Type5Tag) writeArea(ctx context.Context, offset int, data []byte) error {
	firstBlock := offset / t.blockSize
	lastBlock := (offset + len(data) - 1) / t.blockSize
	if lastBlock >= t.blockCount {
		return fmt.Errorf("%w: write past end of tag memory", ErrDataTooLarge)
	}

	for block := firstBlock; block <= lastBlock; block++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		blockStart := block * t.blockSize
		buf := make([]byte, t.blockSize)

		covered := 0
		for i := range buf {
			pos := blockStart + i - offset
			if pos >= 0 && pos < len(data) {
				buf[i] = data[pos]
				covered++
			}
		}

		if covered < t.blockSize {
			existing, err := t.reader.ReadBlock(byte(block))
			if err != nil {
				return fmt.Errorf("read-modify-write block %d: %w", block, err)
			}
			if len(existing) < t.blockSize {
				return fmt.Errorf("%w: block %d returned %d bytes", ErrFrameCorrupted, block, len(existing))
			}
			for i := range buf {
				pos := blockStart + i - offset
				if pos < 0 || pos >= len(data) {
					buf[i] = existing[i]
				}
			}
		}

		if err := t.reader.WriteBlock(byte(block), buf); err != nil {
			return err
		}
	}
	return nil
}

// Format initializes the tag's capability container for an empty NDEF
// area covering the tag's usable memory. Existing NDEF content becomes
// unreachable.
func (t *Type5Tag) Format() error {
	usable := t.Capacity() - ccShortLen
	if usable <= 0 {
		return ErrDataTooLarge
	}
	if usable > maxShortMLENSize {
		usable = maxShortMLENSize
	}

	cc := []byte{ccMagic, ccVersionMajor << 6, byte(usable / ccMLENGranule), 0x00}
	empty := []byte{tlvNDEF, 0x00, tlvTerminator}

	area := make([]byte, 0, len(cc)+len(empty))
	area = append(area, cc...)
	area = append(area, empty...)
	return t.writeArea(context.Background(), 0, area)
}

// ReadText returns the text of the first text record on the tag
func (t *Type5Tag) ReadText() (string, error) {
	msg, err := t.ReadNDEF()
	if err != nil {
		return "", err
	}
	for _, rec := range msg.Records {
		if text, ok := rec.Value.(*TextValue); ok {
			return text.Text, nil
		}
	}
	return "", errors.New("no text record found")
}

// WriteText writes a single UTF-8 text record to the tag
func (t *Type5Tag) WriteText(text string) error {
	msg := &Message{Records: []*Record{NewTextRecord(text, "en")}}
	return t.WriteNDEF(msg)
}
