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
	"fmt"
	"sync"
)

// RecordValue is the decoded form of a record payload. Concrete types are
// TextValue, URIValue, MIMEValue and RawValue, plus anything registered
// through RegisterVariant.
type RecordValue interface {
	// String returns a human readable rendering of the payload.
	String() string
}

// Variant decodes the payload of records matching a (TNF, type) pair into
// a typed RecordValue. Implementations must be safe for concurrent use;
// the codec calls them without synchronization.
type Variant interface {
	DecodePayload(rec *Record) (RecordValue, error)
}

// VariantFunc adapts a function to the Variant interface.
type VariantFunc func(rec *Record) (RecordValue, error)

// DecodePayload implements Variant
func (f VariantFunc) DecodePayload(rec *Record) (RecordValue, error) {
	return f(rec)
}

// RawValue is the fallback for any (TNF, type) pair without a registered
// variant. It carries the payload bytes untouched.
type RawValue struct {
	Payload []byte
}

// String implements RecordValue
func (v *RawValue) String() string {
	return fmt.Sprintf("raw payload (%d bytes)", len(v.Payload))
}

// variantKey identifies a decode strategy by TNF and type bytes.
type variantKey struct {
	typ string
	tnf byte
}

// Registry maps (TNF, type) pairs to payload decode strategies. The zero
// value is not usable; use NewRegistry, which seeds the built-in Text, URI
// and MIME variants. Registration and lookup are safe for concurrent use.
type Registry struct {
	exact map[variantKey]Variant
	// tnfWide holds per-TNF fallbacks for formats where the type bytes
	// are free-form, e.g. any media type under TNFMedia.
	tnfWide map[byte]Variant
	mu      sync.RWMutex
}

// NewRegistry creates a registry with the built-in variants registered.
func NewRegistry() *Registry {
	r := &Registry{
		exact:   make(map[variantKey]Variant),
		tnfWide: make(map[byte]Variant),
	}
	r.Register(TNFWellKnown, RecordTypeText, VariantFunc(decodeTextPayload))
	r.Register(TNFWellKnown, RecordTypeURI, VariantFunc(decodeURIPayload))
	r.Register(TNFMedia, "", VariantFunc(decodeMIMEPayload))
	return r
}

// Register adds a decode strategy for the given (TNF, type) pair,
// replacing any previous registration. An empty type registers a
// TNF-wide fallback matched when no exact type registration exists.
func (r *Registry) Register(tnf byte, typ string, v Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if typ == "" {
		r.tnfWide[tnf] = v
		return
	}
	r.exact[variantKey{tnf: tnf, typ: typ}] = v
}

// lookup returns the registered variant for the pair, or nil.
func (r *Registry) lookup(tnf byte, typ string) Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.exact[variantKey{tnf: tnf, typ: typ}]; ok {
		return v
	}
	return r.tnfWide[tnf]
}

// decodeValue resolves the typed value for a record. Unregistered pairs
// decode as RawValue; only registered variants can fail.
func (r *Registry) decodeValue(rec *Record) (RecordValue, error) {
	if v := r.lookup(rec.TNF, rec.Type); v != nil {
		value, err := v.DecodePayload(rec)
		if err != nil {
			return nil, err
		}
		return value, nil
	}
	return &RawValue{Payload: rec.Payload}, nil
}

// defaultRegistry backs the package-level decode functions.
var defaultRegistry = NewRegistry()

// RegisterVariant adds a decode strategy to the default registry used by
// DecodeMessage. Registrations affect only records matching the pair;
// unrelated records in the same message are untouched.
func RegisterVariant(tnf byte, typ string, v Variant) {
	defaultRegistry.Register(tnf, typ, v)
}
