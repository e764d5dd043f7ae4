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
	"errors"
	"fmt"
)

// Codec errors. All are returned to the caller as-is or wrapped with
// positional context; the codec never recovers or retries.
var (
	// ErrEmptyMessage indicates a decode of an empty buffer, or a buffer
	// whose first record does not carry the message-begin flag.
	ErrEmptyMessage = errors.New("ndef: empty message")

	// ErrMissingMessageEnd indicates the buffer was exhausted before any
	// record carried the message-end flag.
	ErrMissingMessageEnd = errors.New("ndef: message-end flag not found")

	// ErrTruncatedBuffer indicates a declared length field demands more
	// bytes than remain in the input.
	ErrTruncatedBuffer = errors.New("ndef: truncated record data")

	// ErrUnsupportedChunking indicates a record declared the chunk flag.
	// Chunked record reassembly is not supported.
	ErrUnsupportedChunking = errors.New("ndef: chunked records not supported")

	// ErrMalformedPayload indicates a well-known payload violates its
	// internal layout, e.g. a Text status byte declaring a language code
	// longer than the payload.
	ErrMalformedPayload = errors.New("ndef: malformed record payload")

	// ErrPayloadTooLarge indicates a payload length cannot be represented
	// in the 4-byte payload length field.
	ErrPayloadTooLarge = errors.New("ndef: payload too large")

	// ErrInvalidTNF indicates a TNF value outside the NFC Forum table.
	ErrInvalidTNF = errors.New("ndef: invalid TNF value")
)

// Reader and transport errors.
var (
	ErrNoTagDetected       = errors.New("no tag detected")
	ErrTimeout             = errors.New("operation timeout")
	ErrInvalidTag          = errors.New("invalid tag type")
	ErrNotNDEFFormatted    = errors.New("tag is not NDEF formatted")
	ErrTagReadOnly         = errors.New("tag is write protected")
	ErrDataTooLarge        = errors.New("data exceeds tag capacity")
	ErrDeviceNotFound      = errors.New("reader device not found")
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrCommunicationFailed = errors.New("communication with reader failed")
	ErrFrameCorrupted      = errors.New("corrupted response frame")
	ErrChecksumMismatch    = errors.New("frame checksum mismatch")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// ErrorType classifies transport errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve on retry
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve on retry
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a timeout that may resolve on retry
	ErrorTypeTimeout
)

// TransportError wraps a transport-level failure with its operation and
// classification so callers can decide whether to retry.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with the given classification
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a TransportError for a timed-out operation
func NewTimeoutError(op, port string) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportTimeout,
		Type:      ErrorTypeTimeout,
		Retryable: true,
	}
}

// retryableSentinels are transport errors worth retrying as-is.
var retryableSentinels = []error{
	ErrTransportTimeout,
	ErrTransportRead,
	ErrTransportWrite,
	ErrCommunicationFailed,
	ErrFrameCorrupted,
	ErrChecksumMismatch,
}

// IsRetryable reports whether an operation that failed with err is worth
// retrying. Codec errors are never retryable; transient transport errors are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.Retryable
	}

	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// GetErrorType returns the classification for err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout) || errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case IsRetryable(err):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
