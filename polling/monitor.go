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

// Package polling provides continuous tag monitoring with removal
// detection and coordinated write operations.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
)

// Config holds configuration for a Monitor
type Config struct {
	// PollInterval is the time budget of a single detection attempt
	PollInterval time.Duration
	// TagRemovalTimeout is how long a tag may stay unseen before it is
	// reported as removed
	TagRemovalTimeout time.Duration
}

// DefaultConfig returns sensible default monitoring values
func DefaultConfig() *Config {
	return &Config{
		PollInterval:      250 * time.Millisecond,
		TagRemovalTimeout: 2 * time.Second,
	}
}

// Monitor handles continuous tag monitoring with a state machine
type Monitor struct {
	reader        *ndef5.Reader
	config        *Config
	OnTagDetected func(tag *ndef5.DetectedTag) error
	OnTagRemoved  func()
	OnTagChanged  func(tag *ndef5.DetectedTag) error
	state         TagState
	writeMu       sync.Mutex
}

// NewMonitor creates a new tag monitor
func NewMonitor(reader *ndef5.Reader, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		reader: reader,
		config: config,
		state:  TagState{},
	}
}

// Start begins continuous monitoring for tags. It blocks until the
// context is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	return m.continuousPolling(ctx)
}

// GetState returns the current tag state
func (m *Monitor) GetState() TagState {
	return m.state
}

// GetReader returns the underlying reader
func (m *Monitor) GetReader() *ndef5.Reader {
	return m.reader
}

// Close cleans up the monitor resources
func (m *Monitor) Close() error {
	if m.state.RemovalTimer != nil {
		m.state.RemovalTimer.Stop()
		m.state.RemovalTimer = nil
	}
	if err := m.reader.Close(); err != nil {
		return fmt.Errorf("failed to close reader: %w", err)
	}
	return nil
}

// WriteToTag executes a write operation against a detected tag while
// polling is paused. The removal timer is suspended for the duration of
// the operation so long writes are not misreported as removals.
func (m *Monitor) WriteToTag(detected *ndef5.DetectedTag, operation func(*ndef5.Type5Tag) error) error {
	if detected == nil {
		return fmt.Errorf("%w: nil detected tag", ndef5.ErrInvalidParameter)
	}
	if operation == nil {
		return errors.New("operation cannot be nil")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.state.TransitionToReading()
	defer m.state.TransitionToPostReadGrace(m.config.TagRemovalTimeout, func() {
		m.handleTagRemoval()
	})

	tag, err := m.reader.CreateTag(detected)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return operation(tag)
}

// continuousPolling runs the detection loop
func (m *Monitor) continuousPolling(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		detected, err := m.performSinglePoll(ctx)
		if err != nil {
			if !errors.Is(err, ErrNoTagInPoll) {
				m.handlePollingError(err)
			}
			continue
		}

		m.processPollingResults(detected)

		// Small delay between polls to avoid hammering the transport
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// performSinglePoll runs a single inventory cycle bounded by the poll
// interval
func (m *Monitor) performSinglePoll(ctx context.Context) (*ndef5.DetectedTag, error) {
	pollCtx, cancel := context.WithTimeout(ctx, m.config.PollInterval)
	defer cancel()

	tag, err := m.reader.DetectTagContext(pollCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ndef5.ErrNoTagDetected) {
			return nil, ErrNoTagInPoll
		}
		return nil, fmt.Errorf("tag detection failed: %w", err)
	}
	return tag, nil
}

// handlePollingError handles errors from polling operations
func (m *Monitor) handlePollingError(err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return
	}

	// Serious transport errors trigger immediate removal. This covers
	// reader disconnection.
	m.handleTagRemoval()
}

// handleTagRemoval handles tag removal state changes
func (m *Monitor) handleTagRemoval() {
	if m.state.Present {
		if m.OnTagRemoved != nil {
			m.OnTagRemoved()
		}
		m.state.TransitionToIdle()
	}
}

// processPollingResults updates the state machine for a detected tag
func (m *Monitor) processPollingResults(detected *ndef5.DetectedTag) {
	if detected == nil {
		// Removal is handled by the timer, nothing to do here
		return
	}

	changed := m.updateTagState(detected)

	// Arm the removal timer unless a read is in flight
	if m.state.DetectionState != StateReading {
		m.state.TransitionToDetected(m.config.TagRemovalTimeout, func() {
			m.handleTagRemoval()
		})
	}

	if changed {
		m.state.TestedUID = detected.UIDString()
	}
}

// updateTagState reports whether the tag in the field changed
func (m *Monitor) updateTagState(detected *ndef5.DetectedTag) bool {
	currentUID := detected.UIDString()

	if !m.state.Present {
		if m.OnTagDetected != nil {
			_ = m.OnTagDetected(detected)
		}
		m.state.Present = true
		m.state.LastUID = currentUID
		m.state.TestedUID = ""
		return true
	}

	if m.state.LastUID != currentUID {
		if m.OnTagChanged != nil {
			_ = m.OnTagChanged(detected)
		}
		m.state.LastUID = currentUID
		m.state.TestedUID = ""
		return true
	}

	return false
}
