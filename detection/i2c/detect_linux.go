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

package i2c

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/nfcforge/go-ndef5/detection"
)

const (
	// i2cSlave is the ioctl command to set the slave address
	i2cSlave = 0x0703
)

// detectLinux searches Linux I2C buses for a reader module at its fixed
// address. Only the known address is probed; a full bus scan can disturb
// unrelated devices.
func detectLinux(ctx context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := findI2CBuses()
	if err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !probeAddress(bus, DefaultReaderAddress) {
			continue
		}

		devices = append(devices, detection.DeviceInfo{
			Transport: "i2c",
			Path:      bus,
			Name:      fmt.Sprintf("I2C reader at %s address 0x%02X", bus, DefaultReaderAddress),
		})
	}

	return devices, nil
}

// findI2CBuses discovers available I2C buses on the system
func findI2CBuses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		buses = append(buses, path)
	}
	return buses, nil
}

// probeAddress checks whether a device answers at the given address
func probeAddress(busPath string, addr uint8) bool {
	fd, err := syscall.Open(busPath, syscall.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer func() { _ = syscall.Close(fd) }()

	if err := ioctl(fd, i2cSlave, uintptr(addr)); err != nil {
		return false
	}

	buf := make([]byte, 1)
	_, err = syscall.Read(fd, buf)
	return err == nil
}

// ioctl performs an ioctl system call
func ioctl(fd int, request uint, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(request), arg)
	if errno != 0 {
		return errno
	}
	return nil
}
