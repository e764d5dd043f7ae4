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

// Command readtag reads and writes NDEF messages on ISO15693 tags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
	"github.com/nfcforge/go-ndef5/detection"
	"github.com/nfcforge/go-ndef5/polling"
	"github.com/nfcforge/go-ndef5/transport/i2c"
	"github.com/nfcforge/go-ndef5/transport/uart"

	// Import all detectors to register them
	_ "github.com/nfcforge/go-ndef5/detection/i2c"
	_ "github.com/nfcforge/go-ndef5/detection/uart"
)

type config struct {
	devicePath   *string
	timeout      *time.Duration
	writeText    *string
	debug        *bool
	pollInterval *time.Duration
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"Device path (e.g., /dev/ttyUSB0 or /dev/i2c-1). Leave empty for auto-detection."),
		timeout:   flag.Duration("timeout", 30*time.Second, "Timeout for tag detection (default: 30s)"),
		writeText: flag.String("write", "", "Text to write to the tag (if not specified, will only read)"),
		debug:     flag.Bool("debug", false, "Enable debug output"),
		pollInterval: flag.Duration("poll-interval", 250*time.Millisecond,
			"Polling interval for tag detection (default: 250ms)"),
	}
	flag.Parse()

	if *cfg.debug {
		ndef5.SetDebugEnabled(true)
	}

	return cfg
}

// newTransport creates a transport from a device path
func newTransport(path string) (ndef5.Transport, error) {
	if path == "" {
		return nil, errors.New("empty device path")
	}

	if strings.Contains(strings.ToLower(path), "i2c") {
		transport, err := i2c.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	}

	// Default to UART for serial ports
	transport, err := uart.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create UART transport: %w", err)
	}
	return transport, nil
}

// autoDetectTransport finds a connected reader and opens its transport
func autoDetectTransport(ctx context.Context) (ndef5.Transport, error) {
	_, _ = fmt.Println("Auto-detecting reader devices...")

	devices, err := detection.DetectAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("device detection failed: %w", err)
	}

	var errs []error
	for _, device := range devices {
		transport, err := newTransport(device.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, _ = fmt.Printf("Using %s device: %s\n", device.Transport, device.Path)
		return transport, nil
	}
	return nil, errors.Join(errs...)
}

func openReader(ctx context.Context, cfg *config) (*ndef5.Reader, error) {
	var (
		transport ndef5.Transport
		err       error
	)
	if *cfg.devicePath == "" {
		transport, err = autoDetectTransport(ctx)
	} else {
		_, _ = fmt.Printf("Opening device: %s\n", *cfg.devicePath)
		transport, err = newTransport(*cfg.devicePath)
	}
	if err != nil {
		return nil, err
	}

	reader, err := ndef5.NewReader(transport, ndef5.WithTimeout(*cfg.timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	if err := reader.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize reader: %w", err)
	}
	return reader, nil
}

func printTag(tag *ndef5.Type5Tag) {
	_, _ = fmt.Printf("Tag UID: %s\n", tag.UID())
	_, _ = fmt.Printf("Capacity: %d bytes\n", tag.Capacity())

	msg, err := tag.ReadNDEF()
	if err != nil {
		if errors.Is(err, ndef5.ErrNotNDEFFormatted) {
			_, _ = fmt.Println("Tag is not NDEF formatted")
			return
		}
		_, _ = fmt.Printf("Failed to read NDEF: %v\n", err)
		return
	}

	for i, rec := range msg.Records {
		_, _ = fmt.Printf("Record %d: %s\n", i, rec.Value.String())
	}
}

func handleWriteMode(ctx context.Context, scanner *polling.Scanner, timeout time.Duration, text string) error {
	_, _ = fmt.Println("Waiting for tag to write...")

	err := scanner.WriteToNextTag(ctx, timeout, func(tag *ndef5.Type5Tag) error {
		if err := tag.WriteText(text); err != nil {
			return fmt.Errorf("failed to write text: %w", err)
		}
		_, _ = fmt.Println("Write successful!")
		printTag(tag)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			_, _ = fmt.Printf("timeout: no tag detected within %s\n", timeout)
			return nil
		}
		return fmt.Errorf("write operation failed: %w", err)
	}
	return nil
}

func runScanner(ctx context.Context, reader *ndef5.Reader, cfg *config) error {
	scanner, err := polling.NewScanner(reader, &polling.ScanConfig{
		PollInterval:      *cfg.pollInterval,
		TagRemovalTimeout: 2 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	scanner.OnTagDetected = func(detected *ndef5.DetectedTag) error {
		tag, err := reader.CreateTag(detected)
		if err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		printTag(tag)
		return nil
	}
	scanner.OnTagRemoved = func() {
		_, _ = fmt.Println("Tag removed - ready for next tag...")
	}

	if err := scanner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scanner: %w", err)
	}
	defer func() { _ = scanner.Stop() }()

	if *cfg.writeText != "" {
		return handleWriteMode(ctx, scanner, *cfg.timeout, *cfg.writeText)
	}

	// Read-only mode just waits for cancellation
	<-ctx.Done()
	return nil
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithTimeout(context.Background(), *cfg.timeout)
	defer cancel()

	reader, err := openReader(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to connect to reader: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = reader.Close() }()

	_, _ = fmt.Printf("Waiting for tag (timeout: %s, poll interval: %s)...\n", *cfg.timeout, *cfg.pollInterval)

	if err := runScanner(ctx, reader, cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
