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

package polling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
)

// Scanner provides a high-level interface for continuous tag scanning
// with coordinated write operations. It wraps the lower-level Monitor to
// provide thread-safe scanning.
type Scanner struct {
	reader        *ndef5.Reader
	config        *ScanConfig
	monitor       *Monitor
	pendingWrite  atomic.Pointer[WriteRequest]
	cancelFunc    context.CancelFunc
	OnTagDetected func(*ndef5.DetectedTag) error
	OnTagRemoved  func()
	OnTagChanged  func(*ndef5.DetectedTag) error
	writeMutex    sync.Mutex
	stopMutex     sync.Mutex
	running       atomic.Bool
}

// ScanConfig holds configuration options for the Scanner
type ScanConfig struct {
	PollInterval      time.Duration
	TagRemovalTimeout time.Duration
}

// WriteRequest represents a pending write operation
type WriteRequest struct {
	operation func(*ndef5.Type5Tag) error
	result    chan error
	ctx       context.Context
	createdAt time.Time
}

// Scanner-specific errors
var (
	ErrWriteAlreadyPending = errors.New("write operation already pending")
	ErrScannerNotRunning   = errors.New("scanner is not running")
	ErrScannerStopped      = errors.New("scanner was stopped")
)

// NewScanner creates a new scanner instance
func NewScanner(reader *ndef5.Reader, config *ScanConfig) (*Scanner, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if config == nil {
		config = DefaultScanConfig()
	}

	return &Scanner{
		reader: reader,
		config: config,
	}, nil
}

// DefaultScanConfig returns sensible default configuration values
func DefaultScanConfig() *ScanConfig {
	return &ScanConfig{
		PollInterval:      250 * time.Millisecond,
		TagRemovalTimeout: 2 * time.Second,
	}
}

// Start begins continuous scanning (non-blocking). Returns an error if
// the scanner is already running.
func (s *Scanner) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("scanner is already running")
	}

	scanCtx, cancel := context.WithCancel(ctx)
	s.stopMutex.Lock()
	s.cancelFunc = cancel
	s.stopMutex.Unlock()

	go func() {
		defer func() {
			s.running.Store(false)
			s.stopMutex.Lock()
			s.cancelFunc = nil
			s.stopMutex.Unlock()
		}()

		if err := s.startScanning(scanCtx); err != nil && !errors.Is(err, context.Canceled) {
			_ = err
		}
	}()

	return nil
}

// Stop gracefully stops the scanner, blocking until it has fully stopped
func (s *Scanner) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.stopMutex.Lock()
	cancelFunc := s.cancelFunc
	s.stopMutex.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}

	// Fail a blocked writer instead of letting it run out its timeout
	if req := s.pendingWrite.Load(); req != nil {
		s.sendWriteResult(req, ErrScannerStopped)
	}

	for s.running.Load() {
		time.Sleep(10 * time.Millisecond)
	}

	return nil
}

// IsRunning returns whether the scanner is currently active
func (s *Scanner) IsRunning() bool {
	return s.running.Load()
}

// HasPendingWrite returns true if a write operation is waiting
func (s *Scanner) HasPendingWrite() bool {
	return s.pendingWrite.Load() != nil
}

// startScanning runs the main polling loop using the underlying Monitor
func (s *Scanner) startScanning(ctx context.Context) error {
	s.monitor = NewMonitor(s.reader, &Config{
		PollInterval:      s.config.PollInterval,
		TagRemovalTimeout: s.config.TagRemovalTimeout,
	})
	defer func() {
		if s.monitor != nil {
			_ = s.monitor.Close()
		}
	}()

	s.setupEventHandlers()

	return s.monitor.Start(ctx)
}

// setupEventHandlers bridges monitor callbacks into scanner callbacks.
// Pending writes are processed before user callbacks run.
func (s *Scanner) setupEventHandlers() {
	s.monitor.OnTagDetected = func(detected *ndef5.DetectedTag) error {
		s.processPendingWrites(detected)

		if s.OnTagDetected != nil {
			return s.OnTagDetected(detected)
		}
		return nil
	}

	s.monitor.OnTagRemoved = func() {
		if s.OnTagRemoved != nil {
			s.OnTagRemoved()
		}
	}

	s.monitor.OnTagChanged = func(detected *ndef5.DetectedTag) error {
		s.processPendingWrites(detected)

		if s.OnTagChanged != nil {
			return s.OnTagChanged(detected)
		}
		return nil
	}
}
