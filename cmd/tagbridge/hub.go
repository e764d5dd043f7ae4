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

package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	ndef5 "github.com/nfcforge/go-ndef5"
	"github.com/rs/zerolog/log"
)

// Message is the envelope for every frame sent to clients
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RecordPayload describes one NDEF record in a tagData broadcast
type RecordPayload struct {
	TNF     byte   `json:"tnf"`
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Text    string `json:"text,omitempty"`
	URI     string `json:"uri,omitempty"`
	Payload []byte `json:"payload"`
}

// TagPayload is the payload of a tagData broadcast
type TagPayload struct {
	UID       string          `json:"uid"`
	ScannedAt string          `json:"scannedAt"`
	Records   []RecordPayload `json:"records"`
	Error     string          `json:"error,omitempty"`
}

// WriteRequestPayload is a client's request to write text to the next tag
type WriteRequestPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// client pairs a connection with the mutex serializing writes to it.
// gorilla/websocket supports at most one concurrent writer per
// connection, and both the hub broadcast and the per-client request
// handler send on the same conn.
type client struct {
	conn *websocket.Conn
	id   string
	mu   sync.Mutex
}

// send writes one message to the client, holding its write lock
func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub tracks connected WebSocket clients and broadcasts tag events
type Hub struct {
	clients map[*websocket.Conn]*client
	mu      sync.RWMutex
	lastTag *TagPayload
	tagMu   sync.RWMutex
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
	}
}

// Register adds a client connection under the given ID and returns the
// handle all writes to that connection must go through
func (h *Hub) Register(conn *websocket.Conn, clientID string) *client {
	c := &client{conn: conn, id: clientID}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = c
	return c
}

// Unregister removes a client connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every client connection
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// LastTag returns the most recently broadcast tag, if any
func (h *Hub) LastTag() *TagPayload {
	h.tagMu.RLock()
	defer h.tagMu.RUnlock()
	return h.lastTag
}

// broadcast sends a message to all connected clients, dropping clients
// whose connection fails
func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, c := range h.clients {
		if err := c.send(msg); err != nil {
			log.Warn().Err(err).Msg("websocket write failed, dropping client")
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
}

// BroadcastTag sends a decoded tag to all clients
func (h *Hub) BroadcastTag(payload *TagPayload) {
	h.tagMu.Lock()
	h.lastTag = payload
	h.tagMu.Unlock()

	h.broadcast(Message{Type: "tagData", Payload: payload})
}

// BroadcastRemoved notifies clients that the tag left the field
func (h *Hub) BroadcastRemoved() {
	h.tagMu.Lock()
	h.lastTag = nil
	h.tagMu.Unlock()

	h.broadcast(Message{Type: "tagRemoved", Payload: nil})
}

// buildTagPayload converts a decoded message into the wire payload
func buildTagPayload(uid string, msg *ndef5.Message, readErr error) *TagPayload {
	payload := &TagPayload{
		UID:       uid,
		ScannedAt: time.Now().Format(time.RFC3339),
	}
	if readErr != nil {
		payload.Error = readErr.Error()
		return payload
	}

	for _, rec := range msg.Records {
		rp := RecordPayload{
			TNF:     rec.TNF,
			Type:    rec.Type,
			ID:      rec.ID,
			Payload: rec.Payload,
		}
		switch v := rec.Value.(type) {
		case *ndef5.TextValue:
			rp.Text = v.Text
		case *ndef5.URIValue:
			rp.URI = v.URI
		}
		payload.Records = append(payload.Records, rp)
	}
	return payload
}
