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

// Command tagbridge exposes an ISO15693 reader over WebSocket. Decoded
// NDEF reads are broadcast to all connected clients as JSON; clients can
// queue text writes for the next presented tag.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	ndef5 "github.com/nfcforge/go-ndef5"
	"github.com/nfcforge/go-ndef5/polling"
	"github.com/nfcforge/go-ndef5/transport/i2c"
	"github.com/nfcforge/go-ndef5/transport/uart"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bridge runs on trusted local networks
	CheckOrigin: func(*http.Request) bool { return true },
}

type bridge struct {
	hub     *Hub
	reader  *ndef5.Reader
	scanner *polling.Scanner
}

func newTransport(path string) (ndef5.Transport, error) {
	if strings.Contains(strings.ToLower(path), "i2c") {
		return i2c.New(path)
	}
	return uart.New(path)
}

func (b *bridge) handleTag(detected *ndef5.DetectedTag) error {
	tag, err := b.reader.CreateTag(detected)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	msg, readErr := tag.ReadNDEF()
	if readErr != nil {
		log.Warn().Err(readErr).Str("uid", tag.UID()).Msg("NDEF read failed")
	} else {
		log.Info().Str("uid", tag.UID()).Int("records", len(msg.Records)).Msg("tag read")
	}

	b.hub.BroadcastTag(buildTagPayload(tag.UID(), msg, readErr))
	return nil
}

// handleWebSocket upgrades a client connection and serves its requests
func (b *bridge) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	c := b.hub.Register(conn, clientID)
	log.Info().Str("client", clientID[:8]).Int("total", b.hub.Count()).Msg("client connected")

	defer func() {
		_ = conn.Close()
		b.hub.Unregister(conn)
		log.Info().Str("client", clientID[:8]).Int("total", b.hub.Count()).Msg("client disconnected")
	}()

	// Replay the current tag so late joiners see it
	if last := b.hub.LastTag(); last != nil {
		_ = c.send(Message{Type: "tagData", Payload: last})
	}

	for {
		var req struct {
			Type    string              `json:"type"`
			Payload WriteRequestPayload `json:"payload"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		switch req.Type {
		case "writeRequest":
			b.handleWriteRequest(c, req.Payload)
		default:
			_ = c.send(Message{Type: "error", Payload: map[string]string{
				"id":    req.Payload.ID,
				"error": fmt.Sprintf("unknown message type: %s", req.Type),
			}})
		}
	}
}

// handleWriteRequest queues a text write for the next presented tag and
// reports the outcome to the requesting client
func (b *bridge) handleWriteRequest(c *client, req WriteRequestPayload) {
	requestID := req.ID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	log.Info().Str("request", requestID).Msg("write request queued")

	err := b.scanner.WriteToNextTag(context.Background(), writeTimeout, func(tag *ndef5.Type5Tag) error {
		return tag.WriteText(req.Text)
	})

	resp := map[string]any{"id": requestID, "success": err == nil}
	if err != nil {
		resp["error"] = err.Error()
		log.Warn().Err(err).Str("request", requestID).Msg("write failed")
	} else {
		log.Info().Str("request", requestID).Msg("write completed")
	}
	_ = c.send(Message{Type: "writeResponse", Payload: resp})
}

func run() error {
	listenAddr := flag.String("listen", ":8037", "HTTP listen address")
	devicePath := flag.String("device", "/dev/ttyUSB0", "Reader device path")
	pollInterval := flag.Duration("poll-interval", 250*time.Millisecond, "Tag polling interval")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		ndef5.SetDebugEnabled(true)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	transport, err := newTransport(*devicePath)
	if err != nil {
		return fmt.Errorf("failed to open device %s: %w", *devicePath, err)
	}

	reader, err := ndef5.NewReader(transport)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	if err := reader.Init(); err != nil {
		return fmt.Errorf("failed to initialize reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	scanner, err := polling.NewScanner(reader, &polling.ScanConfig{
		PollInterval:      *pollInterval,
		TagRemovalTimeout: 2 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	b := &bridge{
		hub:     NewHub(),
		reader:  reader,
		scanner: scanner,
	}
	scanner.OnTagDetected = b.handleTag
	scanner.OnTagChanged = b.handleTag
	scanner.OnTagRemoved = func() {
		log.Info().Msg("tag removed")
		b.hub.BroadcastRemoved()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scanner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scanner: %w", err)
	}
	defer func() { _ = scanner.Stop() }()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.handleWebSocket)

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		b.hub.CloseAll()
	}()

	log.Info().Str("addr", *listenAddr).Str("device", *devicePath).Msg("tagbridge listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("tagbridge failed")
		os.Exit(1)
	}
}
