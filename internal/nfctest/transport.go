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

package nfctest

import (
	"sync"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
)

// Transport is an ndef5.Transport backed by a VirtualTag. Commands the
// tag does not answer surface as transport timeouts, matching a silent
// RF field.
type Transport struct {
	Tag     *VirtualTag
	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

// NewTransport creates a transport bound to the given virtual tag
func NewTransport(tag *VirtualTag) *Transport {
	return &Transport{Tag: tag, timeout: time.Second}
}

// SendCommand forwards the command to the virtual tag
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ndef5.ErrTransportRead
	}

	resp, handled, err := t.Tag.HandleCommand(cmd, args)
	if err != nil {
		return nil, ndef5.NewTransportError("SendCommand", "virtual", err, ndef5.ErrorTypePermanent)
	}
	if !handled {
		return nil, ndef5.NewTimeoutError("SendCommand", "virtual")
	}
	return resp, nil
}

// Close marks the transport as closed
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// SetTimeout records the timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// IsConnected returns true until Close is called
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Type returns the mock transport type
func (*Transport) Type() ndef5.TransportType {
	return ndef5.TransportMock
}
