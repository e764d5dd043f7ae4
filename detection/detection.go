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

// Package detection discovers connected ISO15693 reader modules.
// Transport-specific detectors register themselves on import:
//
//	import (
//	    "github.com/nfcforge/go-ndef5/detection"
//	    _ "github.com/nfcforge/go-ndef5/detection/uart"
//	)
//
//	devices, err := detection.DetectAll(ctx, nil)
package detection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound       = errors.New("no reader devices found")
	ErrUnsupportedPlatform  = errors.New("detection not supported on this platform")
	ErrDetectionUnavailable = errors.New("no detectors registered")
)

// DeviceInfo describes a detected reader device
type DeviceInfo struct {
	// Transport is the transport type name, e.g. "uart" or "i2c"
	Transport string
	// Path is the device path to pass to the transport constructor
	Path string
	// Name is a human readable device description, if known
	Name string
	// VIDPID holds the USB vendor and product ID as "VVVV:PPPP", if known
	VIDPID string
}

// Options configures a detection run
type Options struct {
	// Blocklist lists VID:PID pairs that must not be probed
	Blocklist []string
	// Timeout bounds the whole detection run
	Timeout time.Duration
}

// DefaultOptions returns the options used when nil is passed
func DefaultOptions() *Options {
	return &Options{
		Blocklist: DefaultBlocklist(),
		Timeout:   2 * time.Second,
	}
}

// Detector finds reader devices reachable over one transport type
type Detector interface {
	// Transport returns the transport type name
	Transport() string

	// Detect searches for reader devices
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	detectorsMu sync.RWMutex
	detectors   []Detector
)

// RegisterDetector adds a detector to the registry. Called from detector
// package init functions.
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors = append(detectors, d)
}

// DetectAll runs every registered detector and merges the results.
// Platform-unsupported detectors are skipped silently; other detector
// failures abort the run.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	detectorsMu.RLock()
	active := append([]Detector(nil), detectors...)
	detectorsMu.RUnlock()

	if len(active) == 0 {
		return nil, ErrDetectionUnavailable
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var devices []DeviceInfo
	for _, d := range active {
		found, err := d.Detect(ctx, opts)
		if err != nil {
			if errors.Is(err, ErrUnsupportedPlatform) {
				continue
			}
			return nil, err
		}
		devices = append(devices, found...)
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	return devices, nil
}
