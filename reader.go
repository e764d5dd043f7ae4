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
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ReaderConfig contains configuration options for the Reader
type ReaderConfig struct {
	// RetryConfig configures retry behavior for transport operations
	RetryConfig *RetryConfig
	// Timeout is the default timeout for operations
	Timeout time.Duration
}

// DefaultReaderConfig returns default reader configuration
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     1 * time.Second,
	}
}

// Reader drives an ISO15693 reader module through a Transport.
//
// Thread Safety: Reader is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization. For
// continuous scanning with coordinated writes, use the polling package,
// which serializes tag access for you.
type Reader struct {
	transport Transport
	config    *ReaderConfig
}

// NewReader creates a new reader bound to the given transport
func NewReader(transport Transport, opts ...Option) (*Reader, error) {
	reader := &Reader{
		transport: transport,
		config:    DefaultReaderConfig(),
	}

	for _, opt := range opts {
		if err := opt(reader); err != nil {
			return nil, err
		}
	}

	return reader, nil
}

// Init prepares the transport for tag operations
func (r *Reader) Init() error {
	if r.transport == nil || !r.transport.IsConnected() {
		return ErrDeviceNotFound
	}
	if err := r.transport.SetTimeout(r.config.Timeout); err != nil {
		return fmt.Errorf("failed to set transport timeout: %w", err)
	}
	debugln("reader initialized on", r.transport.Type(), "transport")
	return nil
}

// SetTimeout sets the default timeout for reader operations
func (r *Reader) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidParameter)
	}
	r.config.Timeout = timeout
	return r.transport.SetTimeout(timeout)
}

// SetRetryConfig updates the retry configuration
func (r *Reader) SetRetryConfig(config *RetryConfig) {
	r.config.RetryConfig = config
	if tr, ok := r.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
	}
}

// Transport returns the underlying transport
func (r *Reader) Transport() Transport {
	return r.transport
}

// Close releases the underlying transport
func (r *Reader) Close() error {
	if err := r.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// DetectedTag describes a tag found by an inventory round
type DetectedTag struct {
	DetectedAt time.Time
	// UID is the 8-byte ISO15693 UID in canonical order (0xE0 first)
	UID   []byte
	DSFID byte
}

// UIDString returns the UID as a hex string
func (t *DetectedTag) UIDString() string {
	return hex.EncodeToString(t.UID)
}

// DetectTag runs a single inventory round and returns the detected tag,
// or ErrNoTagDetected if no tag answered.
func (r *Reader) DetectTag() (*DetectedTag, error) {
	// Single-slot inventory, empty mask
	args := []byte{flagDataRateHigh | flagInventory | flagSingleSlot, 0x00}
	resp, err := r.transport.SendCommand(cmdInventory, args)
	if err != nil {
		if errors.Is(err, ErrTransportTimeout) {
			// A silent field just means no tag is present
			return nil, ErrNoTagDetected
		}
		return nil, fmt.Errorf("inventory failed: %w", err)
	}

	return parseInventoryResponse(resp)
}

// DetectTagContext runs inventory rounds until a tag is found or the
// context is cancelled.
func (r *Reader) DetectTagContext(ctx context.Context) (*DetectedTag, error) {
	for {
		tag, err := r.DetectTag()
		if err == nil {
			return tag, nil
		}
		if !errors.Is(err, ErrNoTagDetected) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// parseInventoryResponse extracts the DSFID and UID from an inventory
// response. The UID arrives LSB-first on the air interface; it is reversed
// into canonical order here.
func parseInventoryResponse(resp []byte) (*DetectedTag, error) {
	if len(resp) < 1+uidLength {
		return nil, ErrNoTagDetected
	}

	uid := make([]byte, uidLength)
	for i := 0; i < uidLength; i++ {
		uid[i] = resp[1+uidLength-1-i]
	}

	if uid[0] != 0xE0 {
		return nil, fmt.Errorf("%w: UID %s is not ISO15693", ErrInvalidTag, hex.EncodeToString(uid))
	}

	tag := &DetectedTag{
		DSFID:      resp[0],
		UID:        uid,
		DetectedAt: time.Now(),
	}
	debugf("detected tag %s (DSFID %02X)", tag.UIDString(), tag.DSFID)
	return tag, nil
}

// ReadBlock reads a single memory block from the currently present tag
func (r *Reader) ReadBlock(block byte) ([]byte, error) {
	resp, err := r.transport.SendCommand(cmdReadSingleBlock, []byte{block})
	if err != nil {
		return nil, fmt.Errorf("read block %d: %w", block, err)
	}
	return resp, nil
}

// WriteBlock writes a single memory block to the currently present tag
func (r *Reader) WriteBlock(block byte, data []byte) error {
	args := make([]byte, 0, 1+len(data))
	args = append(args, block)
	args = append(args, data...)
	if _, err := r.transport.SendCommand(cmdWriteSingleBlock, args); err != nil {
		return fmt.Errorf("write block %d: %w", block, err)
	}
	return nil
}

// ReadBlocks reads count consecutive blocks starting at block using the
// ReadMultipleBlocks command.
func (r *Reader) ReadBlocks(block, count byte) ([]byte, error) {
	if count == 0 {
		return nil, fmt.Errorf("%w: block count must be positive", ErrInvalidParameter)
	}
	// The command carries the number of blocks minus one
	resp, err := r.transport.SendCommand(cmdReadMultipleBlocks, []byte{block, count - 1})
	if err != nil {
		return nil, fmt.Errorf("read blocks %d..%d: %w", block, block+count-1, err)
	}
	return resp, nil
}

// SystemInfo describes tag geometry as reported by GetSystemInformation
type SystemInfo struct {
	UID        []byte
	BlockSize  int
	BlockCount int
	DSFID      byte
	AFI        byte
	ICRef      byte
	HasMemory  bool
}

// SystemInfo queries the tag's GetSystemInformation data
func (r *Reader) SystemInfo() (*SystemInfo, error) {
	resp, err := r.transport.SendCommand(cmdGetSystemInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("get system information: %w", err)
	}
	return parseSystemInfo(resp)
}

// parseSystemInfo parses a GetSystemInformation response: an info flags
// byte, the UID, then optional fields in flag order.
func parseSystemInfo(resp []byte) (*SystemInfo, error) {
	if len(resp) < 1+uidLength {
		return nil, fmt.Errorf("%w: system information response too short", ErrFrameCorrupted)
	}

	flags := resp[0]
	info := &SystemInfo{UID: make([]byte, uidLength)}
	for i := 0; i < uidLength; i++ {
		info.UID[i] = resp[1+uidLength-1-i]
	}

	offset := 1 + uidLength
	next := func() (byte, error) {
		if offset >= len(resp) {
			return 0, fmt.Errorf("%w: system information response truncated", ErrFrameCorrupted)
		}
		b := resp[offset]
		offset++
		return b, nil
	}

	var err error
	if flags&infoFlagDSFID != 0 {
		if info.DSFID, err = next(); err != nil {
			return nil, err
		}
	}
	if flags&infoFlagAFI != 0 {
		if info.AFI, err = next(); err != nil {
			return nil, err
		}
	}
	if flags&infoFlagMemorySize != 0 {
		var blocks, size byte
		if blocks, err = next(); err != nil {
			return nil, err
		}
		if size, err = next(); err != nil {
			return nil, err
		}
		info.BlockCount = int(blocks) + 1
		info.BlockSize = int(size&0x1F) + 1
		info.HasMemory = true
	}
	if flags&infoFlagICRef != 0 {
		if info.ICRef, err = next(); err != nil {
			return nil, err
		}
	}

	return info, nil
}

// CreateTag binds a detected tag to a Type5Tag handler, querying the tag's
// geometry. Tags that do not answer GetSystemInformation fall back to the
// 4-byte block size common to Type 5 silicon.
func (r *Reader) CreateTag(detected *DetectedTag) (*Type5Tag, error) {
	if detected == nil {
		return nil, fmt.Errorf("%w: nil detected tag", ErrInvalidParameter)
	}

	tag := &Type5Tag{
		reader:     r,
		uid:        detected.UID,
		blockSize:  4,
		blockCount: 64,
	}

	if info, err := r.SystemInfo(); err == nil && info.HasMemory {
		tag.blockSize = info.BlockSize
		tag.blockCount = info.BlockCount
	} else if err != nil {
		debugf("GetSystemInformation failed, using defaults: %v", err)
	}

	return tag, nil
}
