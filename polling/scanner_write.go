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
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
)

// WriteToNextTag waits for the next detected tag and executes the write
// operation against it. Blocks until the operation completes, times out,
// or is cancelled.
func (s *Scanner) WriteToNextTag(ctx context.Context, timeout time.Duration, operation func(*ndef5.Type5Tag) error) error {
	if !s.running.Load() {
		return ErrScannerNotRunning
	}

	// Serialize write requests
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	if s.pendingWrite.Load() != nil {
		return ErrWriteAlreadyPending
	}

	writeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := make(chan error, 1)
	req := &WriteRequest{
		operation: operation,
		result:    result,
		ctx:       writeCtx,
		createdAt: time.Now(),
	}

	s.pendingWrite.Store(req)
	defer s.pendingWrite.Store(nil)

	select {
	case err := <-result:
		return err
	case <-writeCtx.Done():
		return writeCtx.Err()
	}
}

// processPendingWrites handles queued write operations when a tag is
// detected. Called from the polling loop.
func (s *Scanner) processPendingWrites(detected *ndef5.DetectedTag) {
	req := s.pendingWrite.Load()
	if req == nil {
		return
	}

	select {
	case <-req.ctx.Done():
		s.sendWriteResult(req, req.ctx.Err())
		return
	default:
	}

	err := s.monitor.WriteToTag(detected, req.operation)
	s.sendWriteResult(req, err)
}

// sendWriteResult delivers the write result without blocking the poll
// loop
func (*Scanner) sendWriteResult(req *WriteRequest, err error) {
	select {
	case req.result <- err:
	default:
	}
}
