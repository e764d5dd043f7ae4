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

// ISO15693 command codes sent through the transport
const (
	cmdInventory          = 0x01
	cmdStayQuiet          = 0x02
	cmdReadSingleBlock    = 0x20
	cmdWriteSingleBlock   = 0x21
	cmdLockBlock          = 0x22
	cmdReadMultipleBlocks = 0x23
	cmdSelect             = 0x25
	cmdResetToReady       = 0x26
	cmdGetSystemInfo      = 0x2B
)

// ISO15693 request flags
const (
	// flagDataRateHigh selects the high data rate (26.48 kbit/s)
	flagDataRateHigh = 0x02
	// flagInventory marks an inventory request
	flagInventory = 0x04
	// flagSingleSlot requests a single inventory slot
	flagSingleSlot = 0x20
	// flagAddressed marks a request addressed to a specific UID
	flagAddressed = 0x20
)

// GetSystemInfo information flags
const (
	infoFlagDSFID      = 0x01
	infoFlagAFI        = 0x02
	infoFlagMemorySize = 0x04
	infoFlagICRef      = 0x08
)

// uidLength is the fixed ISO15693 UID size in bytes
const uidLength = 8
