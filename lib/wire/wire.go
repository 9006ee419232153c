// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the envelope types exchanged over a channel and
// the closed error surface of the wire boundary.
//
// A request or response is a tagged union with exactly one variant per
// service method. On the wire the union is an envelope: the method's
// wire tag as discriminant plus the variant payload as raw CBOR. The
// variant set is held equal to the declared method list by the
// dispatcher and stub constructors (lib/rpc), which refuse any tag set
// that differs from the service description — no second copy of the
// method list exists to drift.
//
// Envelope values are transient: created for one call, discarded after
// dispatch or unwrap.
package wire

import (
	"github.com/bureau-foundation/wirerpc/lib/codec"
)

// Request is the wire request envelope: the invoked method's tag and
// that method's wire input payload.
type Request struct {
	// Tag selects the method variant. It is the sole discriminant;
	// the codec layer rejects tags the service does not declare
	// before dispatch sees them.
	Tag string `cbor:"tag"`

	// Payload is the method's wire input, encoded as CBOR.
	Payload codec.RawMessage `cbor:"payload,omitempty"`
}

// Response is the wire response envelope. Exactly one of the two arms
// is populated: a success carries the tag of the method that was
// dispatched and that method's wire output payload; a failure carries
// an ErrorDetail and no payload.
type Response struct {
	// OK discriminates success from failure.
	OK bool `cbor:"ok"`

	// Tag is the wire tag of the method this response answers. Set
	// on success; the client stub rejects a tag that differs from
	// the request's.
	Tag string `cbor:"tag,omitempty"`

	// Payload is the method's wire output, encoded as CBOR. Set on
	// success.
	Payload codec.RawMessage `cbor:"payload,omitempty"`

	// Error describes the failure. Set when OK is false.
	Error *ErrorDetail `cbor:"error,omitempty"`
}

// ErrorDetail is the wire form of a CallError.
type ErrorDetail struct {
	Kind    string           `cbor:"kind"`
	Message string           `cbor:"message,omitempty"`
	Detail  codec.RawMessage `cbor:"detail,omitempty"`
}

// ErrorResponse wraps err into a failure Response. A *CallError keeps
// its kind, message, and detail; any other error is carried with
// KindHandler and its message.
func ErrorResponse(err error) Response {
	return Response{Error: AsCallError(err).detail()}
}

// SuccessResponse wraps an encoded wire output into a success Response
// for the given method tag.
func SuccessResponse(tag string, payload codec.RawMessage) Response {
	return Response{OK: true, Tag: tag, Payload: payload}
}
