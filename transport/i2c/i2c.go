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

// Package i2c provides an I2C transport for ISO15693 reader modules
package i2c

import (
	"context"
	"fmt"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
	"github.com/nfcforge/go-ndef5/internal/frame"
	internaltransport "github.com/nfcforge/go-ndef5/internal/transport"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// readerAddr is the reader module's 7-bit I2C address
	readerAddr = 0x28

	// readyFlag is the first status byte when a response is waiting
	readyFlag = 0x01

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz
)

// Transport implements the ndef5.Transport interface for I2C communication
type Transport struct {
	dev     *i2c.Dev
	busName string
	timeout time.Duration
}

// New creates a new I2C transport on the given bus
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	dev := &i2c.Dev{Addr: readerAddr, Bus: bus}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	return &Transport{
		dev:     dev,
		busName: busName,
		timeout: 50 * time.Millisecond,
	}, nil
}

// SendCommand sends an ISO15693 command and waits for the tag response
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	req, err := frame.Build(cmd, args)
	if err != nil {
		return nil, ndef5.NewTransportError("SendCommand", t.busName, err, ndef5.ErrorTypePermanent)
	}

	if err := t.dev.Tx(req, nil); err != nil {
		return nil, ndef5.NewTransportError("SendCommand", t.busName,
			fmt.Errorf("%w: %w", ndef5.ErrTransportWrite, err), ndef5.ErrorTypeTransient)
	}

	resp, err := t.receiveFrame()
	if err != nil {
		return nil, err
	}

	if len(resp) >= 2 && resp[0] == frame.ResponseError {
		return nil, ndef5.NewTransportError("SendCommand", t.busName,
			fmt.Errorf("reader error 0x%02X", resp[1]), ndef5.ErrorTypePermanent)
	}
	if len(resp) < 1 || resp[0] != cmd+1 {
		return nil, ndef5.NewTransportError("SendCommand", t.busName,
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

// receiveFrame polls the module's ready flag, then reads the response
// frame. I2C reads are prefixed with a status byte.
func (t *Transport) receiveFrame() ([]byte, error) {
	_, err := internaltransport.TimeoutRetry(t.timeout, func() (struct{}, bool, error) {
		status := make([]byte, 1)
		if err := t.dev.Tx(nil, status); err != nil {
			return struct{}{}, false, ndef5.NewTransportError("receiveFrame", t.busName,
				fmt.Errorf("%w: %w", ndef5.ErrTransportRead, err), ndef5.ErrorTypeTransient)
		}
		return struct{}{}, status[0]&readyFlag == 0, nil
	})
	if err != nil {
		return nil, err
	}

	raw := make([]byte, frame.MaxFrameDataLength+8)
	if err := t.dev.Tx(nil, raw); err != nil {
		return nil, ndef5.NewTransportError("receiveFrame", t.busName,
			fmt.Errorf("%w: %w", ndef5.ErrTransportRead, err), ndef5.ErrorTypeTransient)
	}

	// Strip the leading status byte before frame parsing
	payload, err := frame.Parse(raw[1:])
	if err != nil {
		return nil, ndef5.NewTransportError("receiveFrame", t.busName,
			fmt.Errorf("%w: %w", ndef5.ErrChecksumMismatch, err), ndef5.ErrorTypeTransient)
	}
	return payload, nil
}

// SetTimeout sets the response poll timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Close closes the transport connection
func (*Transport) Close() error {
	// periph.io handles cleanup automatically
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Type returns the transport type
func (*Transport) Type() ndef5.TransportType {
	return ndef5.TransportI2C
}
