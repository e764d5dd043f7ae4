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

package detection

import (
	"regexp"
	"strings"
)

// DefaultBlocklist returns a list of known problematic USB devices
// that should not be probed during detection.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		// Add known problematic devices here as discovered
		// Example entries:
		// "1234:5678", // Vendor X device that crashes on probe
		// "ABCD:EF01", // Device Y that hangs on reader commands
	}
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))

	for _, blocked := range blocklist {
		blocked = strings.ToUpper(strings.TrimSpace(blocked))
		if vidpid == blocked {
			return true
		}
	}
	return false
}

var vidpidPattern = regexp.MustCompile(`(?i)(?:vid[:_=]?\s*)?([0-9a-f]{4})[\s:,_]+(?:pid[:_=]?\s*)?([0-9a-f]{4})`)

// ParseVIDPID extracts VID:PID from common USB descriptor formats, e.g.
// "1234:5678", "VID:1234 PID:5678" or "vid_1234&pid_5678". Returns an
// empty string when no pair is found.
func ParseVIDPID(descriptor string) string {
	descriptor = strings.ReplaceAll(descriptor, "&", " ")
	m := vidpidPattern.FindStringSubmatch(descriptor)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1] + ":" + m[2])
}
