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

//go:build windows

package uart

import (
	"context"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// getSerialPorts returns available serial ports on Windows from the
// SERIALCOMM registry key. VID/PID is recovered from the registry value
// name when the port is USB-backed (e.g. \Device\USBVID_1A86&PID_7523...).
func getSerialPorts(ctx context.Context) ([]serialPort, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `HARDWARE\DEVICEMAP\SERIALCOMM`, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	values, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, err
	}

	ports := make([]serialPort, 0, len(values))
	for _, value := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		portName, _, err := key.GetStringValue(value)
		if err != nil {
			continue
		}

		ports = append(ports, serialPort{
			Path:   portName,
			Name:   portName,
			VIDPID: parseHardwareID(value),
		})
	}

	return ports, nil
}

// parseHardwareID extracts VID:PID from a VID_xxxx&PID_xxxx hardware ID
func parseHardwareID(hwid string) string {
	hwid = strings.ToUpper(hwid)

	vidIdx := strings.Index(hwid, "VID_")
	pidIdx := strings.Index(hwid, "PID_")
	if vidIdx < 0 || pidIdx < 0 {
		return ""
	}
	if vidIdx+8 > len(hwid) || pidIdx+8 > len(hwid) {
		return ""
	}

	vid := hwid[vidIdx+4 : vidIdx+8]
	pid := hwid[pidIdx+4 : pidIdx+8]
	for _, r := range vid + pid {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return ""
		}
	}
	return vid + ":" + pid
}
