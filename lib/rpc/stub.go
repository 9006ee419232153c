// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/wirerpc/lib/codec"
	"github.com/bureau-foundation/wirerpc/lib/description"
	"github.com/bureau-foundation/wirerpc/lib/wire"
)

// Channel performs one synchronous request/response exchange with a
// remote service. Implementations own connection establishment,
// authentication, timeouts, and cancellation; this layer sends exactly
// one request per Invoke and expects exactly one response.
//
// A returned error is a transport failure and is surfaced to the
// caller opaquely — the framework never reinterprets it.
type Channel interface {
	Invoke(ctx context.Context, request wire.Request) (wire.Response, error)
}

// Stub is the caller-side binding of a service description to a
// channel. It holds no per-call state; each Call is an independent,
// atomic round trip.
//
// A Stub exclusively owns its channel for its lifetime and assumes at
// most one in-flight call. Sharing a stub across goroutines is
// undefined unless the channel itself serializes access.
type Stub struct {
	service description.ServiceDescription
	channel Channel
}

// NewStub binds a service description to a channel. The description
// must be valid and the channel non-nil.
func NewStub(service description.ServiceDescription, channel Channel) (*Stub, error) {
	if err := service.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service description: %w", err)
	}
	if channel == nil {
		return nil, fmt.Errorf("service %q: stub requires a channel", service.Name)
	}
	return &Stub{service: service, channel: channel}, nil
}

// Service returns the service description the stub was built from.
// Read-only, like Dispatcher.Service.
func (s *Stub) Service() description.ServiceDescription {
	return s.service
}

// Call performs one typed call through the stub: the domain input is
// converted to its wire form, wrapped in the request variant for tag,
// and sent through the channel; the response must carry the same tag,
// and its payload is converted back to the domain output.
//
// Every call ends in exactly one of three ways:
//
//   - success, with the typed domain output;
//   - a *wire.CallError — either the remote failure verbatim
//     (handler-defined kinds included) or a local internal error for
//     payloads and tags that violate the protocol. A response whose
//     tag differs from the request's is a protocol violation and is
//     reported as internal, never unwrapped;
//   - a plain wrapped error for transport failures, preserved for
//     errors.Is/errors.As against the channel's own error types.
//
// There is no retry and no pipelining; the call blocks until the
// channel completes or fails the exchange.
func Call[WI, DI, WO, DO any](
	ctx context.Context,
	stub *Stub,
	tag string,
	input Conversion[WI, DI],
	output Conversion[WO, DO],
	domainInput DI,
) (DO, error) {
	var zero DO

	if !stub.service.HasTag(tag) {
		return zero, wire.Internal("service %q does not declare method tag %q", stub.service.Name, tag)
	}

	payload, err := codec.Marshal(input.ToWire(domainInput))
	if err != nil {
		return zero, wire.Internal("encoding request payload for %q: %v", tag, err)
	}

	response, err := stub.channel.Invoke(ctx, wire.Request{Tag: tag, Payload: payload})
	if err != nil {
		return zero, fmt.Errorf("invoking %q on service %q: %w", tag, stub.service.Name, err)
	}

	if !response.OK {
		return zero, wire.FromDetail(response.Error)
	}
	if response.Tag != tag {
		return zero, wire.Internal("response tag %q does not match request tag %q", response.Tag, tag)
	}

	var wireOutput WO
	if err := codec.Unmarshal(response.Payload, &wireOutput); err != nil {
		return zero, wire.Internal("invalid response payload for %q", tag)
	}

	domainOutput, err := output.FromWire(wireOutput)
	if err != nil {
		return zero, wire.Internal("invalid response payload for %q", tag)
	}
	return domainOutput, nil
}
