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
	"errors"
	"time"
)

// TagDetectionState represents the finite state machine for tag detection
type TagDetectionState int

const (
	StateIdle TagDetectionState = iota
	StateTagDetected
	StateReading
	StatePostReadGrace
)

// TagState tracks the state of a tag in the reader field
type TagState struct {
	LastSeenTime   time.Time
	ReadStartTime  time.Time
	RemovalTimer   *time.Timer
	LastUID        string
	TestedUID      string
	DetectionState TagDetectionState
	Present        bool
}

// ErrNoTagInPoll indicates no tag was detected during a polling cycle
// (not an error condition)
var ErrNoTagInPoll = errors.New("no tag detected in polling cycle")

// safeTimerStop stops a timer and drains its channel if it already fired
func safeTimerStop(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// TransitionToReading moves to reading state and suspends the removal
// timer so long reads are not interrupted by removal detection
func (ts *TagState) TransitionToReading() {
	ts.DetectionState = StateReading
	ts.ReadStartTime = time.Now()
	safeTimerStop(ts.RemovalTimer)
	ts.RemovalTimer = nil
}

// TransitionToPostReadGrace moves to a short grace period after a read
// completes before removal detection resumes at full strength
func (ts *TagState) TransitionToPostReadGrace(timeout time.Duration, callback func()) {
	ts.DetectionState = StatePostReadGrace
	safeTimerStop(ts.RemovalTimer)
	ts.RemovalTimer = time.AfterFunc(timeout/2, callback)
}

// TransitionToDetected moves to tag detected state with the normal
// removal timeout
func (ts *TagState) TransitionToDetected(timeout time.Duration, callback func()) {
	ts.DetectionState = StateTagDetected
	ts.LastSeenTime = time.Now()
	safeTimerStop(ts.RemovalTimer)
	ts.RemovalTimer = time.AfterFunc(timeout, callback)
}

// TransitionToIdle resets to idle state
func (ts *TagState) TransitionToIdle() {
	ts.DetectionState = StateIdle
	ts.Present = false
	ts.LastUID = ""
	ts.TestedUID = ""
	ts.LastSeenTime = time.Time{}
	ts.ReadStartTime = time.Time{}
	safeTimerStop(ts.RemovalTimer)
	ts.RemovalTimer = nil
}
