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

// Package uart detects serial reader modules
package uart

import (
	"context"

	"github.com/nfcforge/go-ndef5/detection"
)

// serialPort describes a discovered serial port
type serialPort struct {
	Path   string
	Name   string
	VIDPID string
}

// knownReaders maps USB VID:PID pairs of reader sticks and the serial
// bridges they commonly ship with to a display name. Bridge chips cannot
// be distinguished from other serial hardware, so they are only
// candidates; callers still probe the port.
var knownReaders = map[string]string{
	"0483:5740": "ST CR95HF demo board",
	"0403:6001": "FTDI serial bridge",
	"10C4:EA60": "CP210x serial bridge",
	"1A86:7523": "CH340 serial bridge",
}

// detector implements the Detector interface for serial devices
type detector struct{}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect searches serial ports for reader module candidates
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts == nil {
		opts = detection.DefaultOptions()
	}

	ports, err := getSerialPorts(ctx)
	if err != nil {
		return nil, err
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if port.VIDPID != "" && detection.IsBlocked(port.VIDPID, opts.Blocklist) {
			continue
		}

		name, known := knownReaders[port.VIDPID]
		if !known {
			continue
		}

		devices = append(devices, detection.DeviceInfo{
			Transport: "uart",
			Path:      port.Path,
			Name:      name,
			VIDPID:    port.VIDPID,
		})
	}

	return devices, nil
}
