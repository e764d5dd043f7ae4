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

//go:build linux

package uart

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// getSerialPorts returns available serial ports on Linux. USB serial
// devices carry VID/PID metadata read from sysfs.
func getSerialPorts(ctx context.Context) ([]serialPort, error) {
	entries, err := os.ReadDir("/sys/class/tty")
	if err != nil {
		return getSerialPortsFallback()
	}

	var ports []serialPort
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if !strings.HasPrefix(name, "ttyUSB") && !strings.HasPrefix(name, "ttyACM") {
			continue
		}

		devPath := "/dev/" + name
		if _, err := os.Stat(devPath); err != nil {
			continue
		}

		port := serialPort{
			Path:   devPath,
			Name:   name,
			VIDPID: sysfsVIDPID(name),
		}
		ports = append(ports, port)
	}

	return ports, nil
}

// sysfsVIDPID walks the sysfs device tree upward from a tty node looking
// for the USB interface's idVendor/idProduct attributes.
func sysfsVIDPID(ttyName string) string {
	devLink := filepath.Join("/sys/class/tty", ttyName, "device")
	dir, err := filepath.EvalSymlinks(devLink)
	if err != nil {
		return ""
	}

	// idVendor lives on the USB device node, at most a few levels up
	for i := 0; i < 4; i++ {
		vid, vidErr := os.ReadFile(filepath.Join(dir, "idVendor"))
		pid, pidErr := os.ReadFile(filepath.Join(dir, "idProduct"))
		if vidErr == nil && pidErr == nil {
			return strings.ToUpper(strings.TrimSpace(string(vid)) + ":" + strings.TrimSpace(string(pid)))
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// getSerialPortsFallback globs /dev directly when sysfs is unavailable
func getSerialPortsFallback() ([]serialPort, error) {
	var ports []serialPort
	for _, pattern := range []string{"/dev/ttyUSB*", "/dev/ttyACM*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			ports = append(ports, serialPort{
				Path: path,
				Name: filepath.Base(path),
			})
		}
	}
	return ports, nil
}
