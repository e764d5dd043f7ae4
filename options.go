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
	"time"
)

// Option is a functional option for configuring a Reader
type Option func(*Reader) error

// WithRetryConfig sets the retry configuration for the reader
func WithRetryConfig(config *RetryConfig) Option {
	return func(r *Reader) error {
		r.SetRetryConfig(config)
		return nil
	}
}

// WithTimeout sets the default timeout for reader operations
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reader) error {
		return r.SetTimeout(timeout)
	}
}

// WithMaxRetries sets the maximum number of attempts for reader operations
func WithMaxRetries(maxAttempts int) Option {
	return func(reader *Reader) error {
		if reader.config.RetryConfig == nil {
			reader.config.RetryConfig = DefaultRetryConfig()
		}
		reader.config.RetryConfig.MaxAttempts = maxAttempts
		if tr, ok := reader.transport.(*TransportWithRetry); ok {
			tr.SetRetryConfig(reader.config.RetryConfig)
		}
		return nil
	}
}

// WithRetryBackoff sets the initial backoff duration for retries
func WithRetryBackoff(initialBackoff time.Duration) Option {
	return func(reader *Reader) error {
		if reader.config.RetryConfig == nil {
			reader.config.RetryConfig = DefaultRetryConfig()
		}
		reader.config.RetryConfig.InitialBackoff = initialBackoff
		if tr, ok := reader.transport.(*TransportWithRetry); ok {
			tr.SetRetryConfig(reader.config.RetryConfig)
		}
		return nil
	}
}
