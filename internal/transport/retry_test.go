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

package transport

import (
	"errors"
	"testing"
	"time"

	ndef5 "github.com/nfcforge/go-ndef5"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns result when done", func(t *testing.T) {
		t.Parallel()
		got, err := WithRetry(RetryConfig{MaxRetries: 3}, func() (int, bool, error) {
			return 42, false, nil
		})
		if err != nil {
			t.Fatalf("WithRetry() error = %v", err)
		}
		if got != 42 {
			t.Errorf("result = %d, want 42", got)
		}
	})

	t.Run("retries until done", func(t *testing.T) {
		t.Parallel()
		calls := 0
		got, err := WithRetry(RetryConfig{MaxRetries: 5}, func() (string, bool, error) {
			calls++
			return "ok", calls < 3, nil
		})
		if err != nil {
			t.Fatalf("WithRetry() error = %v", err)
		}
		if got != "ok" || calls != 3 {
			t.Errorf("result = %q after %d calls", got, calls)
		}
	})

	t.Run("error stops retries", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		calls := 0
		_, err := WithRetry(RetryConfig{MaxRetries: 5}, func() (int, bool, error) {
			calls++
			return 0, true, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WithRetry() error = %v, want boom", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("exhaustion reports communication failure", func(t *testing.T) {
		t.Parallel()
		_, err := WithRetry(RetryConfig{MaxRetries: 2}, func() (int, bool, error) {
			return 0, true, nil
		})
		if !errors.Is(err, ndef5.ErrCommunicationFailed) {
			t.Errorf("WithRetry() error = %v, want ErrCommunicationFailed", err)
		}
	})

	t.Run("retry hooks run", func(t *testing.T) {
		t.Parallel()
		retries, failed := 0, 0
		_, err := WithRetry(RetryConfig{
			MaxRetries:    2,
			OnRetry:       func() error { retries++; return nil },
			OnRetryFailed: func() error { failed++; return nil },
		}, func() (int, bool, error) {
			return 0, true, nil
		})
		if err == nil {
			t.Fatal("WithRetry() expected error after exhaustion")
		}
		if retries != 2 || failed != 1 {
			t.Errorf("retries = %d failed = %d, want 2 and 1", retries, failed)
		}
	})
}

func TestTimeoutRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns when ready", func(t *testing.T) {
		t.Parallel()
		calls := 0
		got, err := TimeoutRetry(time.Second, func() (int, bool, error) {
			calls++
			return 7, calls < 2, nil
		})
		if err != nil {
			t.Fatalf("TimeoutRetry() error = %v", err)
		}
		if got != 7 {
			t.Errorf("result = %d, want 7", got)
		}
	})

	t.Run("times out when never ready", func(t *testing.T) {
		t.Parallel()
		_, err := TimeoutRetry(20*time.Millisecond, func() (int, bool, error) {
			return 0, true, nil
		})
		if !errors.Is(err, ndef5.ErrTransportTimeout) {
			t.Errorf("TimeoutRetry() error = %v, want ErrTransportTimeout", err)
		}
	})

	t.Run("error stops polling", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("bus fault")
		_, err := TimeoutRetry(time.Second, func() (int, bool, error) {
			return 0, false, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("TimeoutRetry() error = %v, want bus fault", err)
		}
	})
}
