// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration for
// the wire protocol.
//
// Every envelope and payload that crosses a channel is CBOR. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which keeps request
// payloads reproducible across processes and versions.
//
// For buffer-oriented operations (payloads inside an envelope):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// CBOR is self-delimiting, so streams need no framing layer: one
// Encode call writes one complete value, one Decode call reads one.
//
// Wire types use `cbor` struct tags. The decoder ignores unknown
// fields, so adding a field to a payload type is a compatible change
// for peers that have not yet picked it up.
package codec
