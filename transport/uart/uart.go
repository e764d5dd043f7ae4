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

// Package uart provides a serial transport for ISO15693 reader modules
package uart

import (
	"context"
	"errors"
	"fmt"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
	"github.com/nfcforge/go-ndef5/internal/frame"
	"go.bug.st/serial"
)

const (
	defaultBaudRate = 115200
	defaultTimeout  = 500 * time.Millisecond
)

// Transport implements the ndef5.Transport interface for serial reader
// modules
type Transport struct {
	port    serial.Port
	path    string
	timeout time.Duration
}

// New opens a serial transport on the given port path
func New(path string) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: defaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, ndef5.NewTransportError("open", path,
			fmt.Errorf("%w: %w", ndef5.ErrDeviceNotFound, err), ndef5.ErrorTypePermanent)
	}

	t := &Transport{
		port:    port,
		path:    path,
		timeout: defaultTimeout,
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		return nil, ndef5.NewTransportError("open", path, err, ndef5.ErrorTypePermanent)
	}

	return t, nil
}

// SendCommand sends an ISO15693 command and waits for the tag response
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	if t.port == nil {
		return nil, ndef5.ErrTransportWrite
	}

	req, err := frame.Build(cmd, args)
	if err != nil {
		return nil, ndef5.NewTransportError("SendCommand", t.path, err, ndef5.ErrorTypePermanent)
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		return nil, ndef5.NewTransportError("SendCommand", t.path,
			fmt.Errorf("%w: %w", ndef5.ErrTransportWrite, err), ndef5.ErrorTypeTransient)
	}
	if _, err := t.port.Write(req); err != nil {
		return nil, ndef5.NewTransportError("SendCommand", t.path,
			fmt.Errorf("%w: %w", ndef5.ErrTransportWrite, err), ndef5.ErrorTypeTransient)
	}

	resp, err := t.readFrame()
	if err != nil {
		return nil, err
	}

	if len(resp) >= 2 && resp[0] == frame.ResponseError {
		return nil, ndef5.NewTransportError("SendCommand", t.path,
			fmt.Errorf("reader error 0x%02X", resp[1]), ndef5.ErrorTypePermanent)
	}
	if len(resp) < 1 || resp[0] != cmd+1 {
		return nil, ndef5.NewTransportError("SendCommand", t.path,
			ndef5.ErrFrameCorrupted, ndef5.ErrorTypeTransient)
	}
	return resp[1:], nil
}

// SendCommandWithContext sends a command, aborting early if the context
// is already cancelled.
func (t *Transport) SendCommandWithContext(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return t.SendCommand(cmd, args)
}

// readFrame accumulates serial bytes until a complete frame parses or the
// timeout elapses.
func (t *Transport) readFrame() ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, 0, frame.MaxFrameDataLength+8)
	chunk := make([]byte, 64)

	for {
		n, err := t.port.Read(chunk)
		if err != nil {
			return nil, ndef5.NewTransportError("readFrame", t.path,
				fmt.Errorf("%w: %w", ndef5.ErrTransportRead, err), ndef5.ErrorTypeTransient)
		}
		if n > 0 {
			buf = append(buf, chunk[:n]...)

			if frame.IsNack(buf) {
				return nil, ndef5.NewTransportError("readFrame", t.path,
					ndef5.ErrFrameCorrupted, ndef5.ErrorTypeTransient)
			}

			payload, parseErr := frame.Parse(buf)
			if parseErr == nil {
				return payload, nil
			}
			if !errors.Is(parseErr, frame.ErrFrameTooShort) && !errors.Is(parseErr, frame.ErrNoStartCode) {
				return nil, ndef5.NewTransportError("readFrame", t.path,
					fmt.Errorf("%w: %w", ndef5.ErrChecksumMismatch, parseErr), ndef5.ErrorTypeTransient)
			}
		}

		if time.Now().After(deadline) {
			return nil, ndef5.NewTimeoutError("readFrame", t.path)
		}
	}
}

// SetTimeout sets the read timeout for the transport
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set serial read timeout: %w", err)
	}
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.path, err)
	}
	t.port = nil
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() ndef5.TransportType {
	return ndef5.TransportUART
}

// HasCapability reports optional transport capabilities
func (*Transport) HasCapability(capability ndef5.TransportCapability) bool {
	return capability == ndef5.CapabilityFieldControl
}
