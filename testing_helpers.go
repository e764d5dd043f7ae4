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

package ndef5

import (
	"sync"
	"time"
)

// MockTransport is a scriptable in-memory transport for tests. Commands
// are answered from ResponseFunc when set, otherwise from the Responses
// map, otherwise with ErrTransportTimeout (an empty field).
type MockTransport struct {
	ResponseFunc func(cmd byte, args []byte) ([]byte, error)
	Responses    map[byte][]byte
	sent         [][]byte
	timeout      time.Duration
	mu           sync.Mutex
	closed       bool
}

// NewMockTransport creates an empty mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		Responses: make(map[byte][]byte),
		timeout:   time.Second,
	}
}

// SendCommand answers from the configured script
func (m *MockTransport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrTransportRead
	}

	frame := make([]byte, 0, 1+len(args))
	frame = append(frame, cmd)
	frame = append(frame, args...)
	m.sent = append(m.sent, frame)

	if m.ResponseFunc != nil {
		return m.ResponseFunc(cmd, args)
	}
	if resp, ok := m.Responses[cmd]; ok {
		return append([]byte(nil), resp...), nil
	}
	return nil, NewTimeoutError("SendCommand", "mock")
}

// Sent returns every command frame sent so far, first byte being the
// command code.
func (m *MockTransport) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.sent...)
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout records the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected returns true until Close is called
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}
