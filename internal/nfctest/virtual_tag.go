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

// Package nfctest provides a simulated ISO15693 tag for tests that need a
// reader stack without physical hardware.
package nfctest

import (
	"encoding/hex"
	"fmt"
	"sync"

	ndef5 "github.com/nfcforge/go-ndef5"
)

// ISO15693 command codes answered by the virtual tag
const (
	cmdInventory        = 0x01
	cmdReadSingleBlock  = 0x20
	cmdWriteSingleBlock = 0x21
	cmdReadMultiple     = 0x23
	cmdGetSystemInfo    = 0x2B
)

// TestUID is the default UID for virtual tags (canonical order)
var TestUID = []byte{0xE0, 0x04, 0x01, 0x50, 0x12, 0x34, 0x56, 0x78}

// VirtualTag simulates an ISO15693 tag with block-organized memory and a
// Type 5 NDEF area.
type VirtualTag struct {
	UID        []byte
	Memory     []byte
	BlockSize  int
	BlockCount int
	DSFID      byte
	Present    bool
	ReadOnly   bool
	mu         sync.Mutex
}

// NewVirtualTag creates a present, NDEF-formatted virtual tag with
// 4-byte blocks and the given UID (TestUID when nil).
func NewVirtualTag(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestUID
	}

	tag := &VirtualTag{
		UID:        append([]byte(nil), uid...),
		BlockSize:  4,
		BlockCount: 64,
		Present:    true,
	}
	tag.Memory = make([]byte, tag.BlockSize*tag.BlockCount)

	// CC: magic, version 1.0 with free access, MLEN for the rest of memory
	usable := len(tag.Memory) - 4
	tag.Memory[0] = 0xE1
	tag.Memory[1] = 0x40
	tag.Memory[2] = byte(usable / 8)

	// Empty NDEF message TLV plus terminator
	tag.Memory[4] = 0x03
	tag.Memory[5] = 0x00
	tag.Memory[6] = 0xFE

	return tag
}

// UIDString returns the UID as a hex string
func (v *VirtualTag) UIDString() string {
	return hex.EncodeToString(v.UID)
}

// SetPresent moves the tag into or out of the reader field. Safe to call
// while a polling loop is talking to the tag.
func (v *VirtualTag) SetPresent(present bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Present = present
}

// SetNDEFMessage stores an encoded NDEF message in the tag's TLV area
func (v *VirtualTag) SetNDEFMessage(msg *ndef5.Message) error {
	encoded, err := msg.Marshal()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	area := v.Memory[4:]
	if len(encoded)+3 > len(area) {
		return fmt.Errorf("message of %d bytes exceeds virtual tag capacity", len(encoded))
	}

	area[0] = 0x03
	area[1] = byte(len(encoded))
	copy(area[2:], encoded)
	area[2+len(encoded)] = 0xFE
	return nil
}

// SetNDEFText stores a single UTF-8 text record on the tag
func (v *VirtualTag) SetNDEFText(text string) error {
	return v.SetNDEFMessage(&ndef5.Message{
		Records: []*ndef5.Record{ndef5.NewTextRecord(text, "en")},
	})
}

// NDEFArea returns a copy of the tag memory after the capability container
func (v *VirtualTag) NDEFArea() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.Memory[4:]...)
}

// HandleCommand answers an ISO15693 command the way the physical tag
// would. The second return value is false when the tag gives no response
// at all (absent tag or unsupported command), in which case the transport
// should report a timeout.
func (v *VirtualTag) HandleCommand(cmd byte, args []byte) (resp []byte, handled bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.Present {
		return nil, false, nil
	}

	switch cmd {
	case cmdInventory:
		return v.inventoryResponse(), true, nil
	case cmdReadSingleBlock:
		if len(args) < 1 {
			return nil, true, fmt.Errorf("read: missing block number")
		}
		return v.readBlock(int(args[0]))
	case cmdReadMultiple:
		if len(args) < 2 {
			return nil, true, fmt.Errorf("read multiple: missing arguments")
		}
		var out []byte
		for block := int(args[0]); block <= int(args[0])+int(args[1]); block++ {
			data, _, blockErr := v.readBlock(block)
			if blockErr != nil {
				return nil, true, blockErr
			}
			out = append(out, data...)
		}
		return out, true, nil
	case cmdWriteSingleBlock:
		if len(args) < 1+v.BlockSize {
			return nil, true, fmt.Errorf("write: got %d data bytes, want %d", len(args)-1, v.BlockSize)
		}
		if v.ReadOnly {
			return nil, true, fmt.Errorf("write: tag is locked")
		}
		block := int(args[0])
		if block >= v.BlockCount {
			return nil, true, fmt.Errorf("write: block %d out of range", block)
		}
		copy(v.Memory[block*v.BlockSize:], args[1:1+v.BlockSize])
		return []byte{}, true, nil
	case cmdGetSystemInfo:
		return v.systemInfoResponse(), true, nil
	default:
		return nil, false, nil
	}
}

func (v *VirtualTag) readBlock(block int) ([]byte, bool, error) {
	if block >= v.BlockCount {
		return nil, true, fmt.Errorf("read: block %d out of range", block)
	}
	start := block * v.BlockSize
	return append([]byte(nil), v.Memory[start:start+v.BlockSize]...), true, nil
}

// inventoryResponse builds DSFID + UID with the UID in transmission
// (LSB-first) order.
func (v *VirtualTag) inventoryResponse() []byte {
	resp := make([]byte, 0, 1+len(v.UID))
	resp = append(resp, v.DSFID)
	for i := len(v.UID) - 1; i >= 0; i-- {
		resp = append(resp, v.UID[i])
	}
	return resp
}

// systemInfoResponse reports DSFID and memory geometry
func (v *VirtualTag) systemInfoResponse() []byte {
	// info flags announce DSFID and memory size fields
	resp := []byte{0x01 | 0x04}
	for i := len(v.UID) - 1; i >= 0; i-- {
		resp = append(resp, v.UID[i])
	}
	resp = append(resp, v.DSFID)
	resp = append(resp, byte(v.BlockCount-1), byte(v.BlockSize-1))
	return resp
}
