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

//go:build darwin

package uart

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	calloutPattern = regexp.MustCompile(`"IOCalloutDevice"\s*=\s*"([^"]+)"`)
	vendorPattern  = regexp.MustCompile(`"idVendor"\s*=\s*(\d+)`)
	productPattern = regexp.MustCompile(`"idProduct"\s*=\s*(\d+)`)
)

// getSerialPorts returns available serial ports on macOS, using ioreg to
// recover USB VID/PID metadata where possible.
func getSerialPorts(ctx context.Context) ([]serialPort, error) {
	cmd := exec.CommandContext(ctx, "ioreg", "-r", "-c", "IOSerialBSDClient", "-a")
	output, err := cmd.Output()
	if err != nil {
		return getSerialPortsFallback()
	}

	devices := strings.Split(string(output), "+-o ")
	var ports []serialPort

	for _, device := range devices {
		if !strings.Contains(device, "IOSerialBSDClient") ||
			!strings.Contains(device, "IOCalloutDevice") {
			continue
		}

		m := calloutPattern.FindStringSubmatch(device)
		if len(m) < 2 {
			continue
		}

		ports = append(ports, serialPort{
			Path:   m[1],
			Name:   filepath.Base(m[1]),
			VIDPID: extractVIDPID(device),
		})
	}

	if len(ports) == 0 {
		return getSerialPortsFallback()
	}
	return ports, nil
}

// extractVIDPID formats ioreg's decimal idVendor/idProduct as VID:PID
func extractVIDPID(device string) string {
	vidMatch := vendorPattern.FindStringSubmatch(device)
	pidMatch := productPattern.FindStringSubmatch(device)
	if len(vidMatch) < 2 || len(pidMatch) < 2 {
		return ""
	}

	var vid, pid int
	if _, err := fmt.Sscanf(vidMatch[1], "%d", &vid); err != nil {
		return ""
	}
	if _, err := fmt.Sscanf(pidMatch[1], "%d", &pid); err != nil {
		return ""
	}
	return fmt.Sprintf("%04X:%04X", vid, pid)
}

// getSerialPortsFallback globs /dev/cu.* when ioreg is unavailable.
// Callout devices are preferred over tty.* for exclusive access.
func getSerialPortsFallback() ([]serialPort, error) {
	matches, err := filepath.Glob("/dev/cu.*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan serial devices: %w", err)
	}

	var ports []serialPort
	for _, path := range matches {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "cu.Bluetooth") {
			continue
		}
		ports = append(ports, serialPort{
			Path: path,
			Name: name,
		})
	}
	return ports, nil
}
