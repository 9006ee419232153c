// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"fmt"
	"sort"

	"github.com/bureau-foundation/wirerpc/lib/codec"
	"github.com/bureau-foundation/wirerpc/lib/description"
	"github.com/bureau-foundation/wirerpc/lib/wire"
)

// MethodHandler binds one method's wire tag to its conversion pair and
// handler function. Build one with Handle; the type is opaque beyond
// construction.
type MethodHandler struct {
	tag    string
	invoke func(ctx context.Context, payload codec.RawMessage) wire.Response
}

// Handle builds the MethodHandler for the method with the given wire
// tag. The handler function receives the converted domain input and
// returns the domain output or an error. A returned *wire.CallError
// crosses the wire with its kind, message, and detail intact; any
// other error is carried under wire.KindHandler with its message.
//
// The payload path is: decode WI → input.FromWire → handler →
// output.ToWire → encode WO. Decode and conversion failures produce a
// generic internal error and the handler is never invoked — the
// underlying cause is a property of the malformed request, not
// something the remote caller gets to inspect.
func Handle[WI, DI, WO, DO any](
	tag string,
	input Conversion[WI, DI],
	output Conversion[WO, DO],
	handler func(ctx context.Context, in DI) (DO, error),
) MethodHandler {
	return MethodHandler{
		tag: tag,
		invoke: func(ctx context.Context, payload codec.RawMessage) wire.Response {
			var wireInput WI
			if err := codec.Unmarshal(payload, &wireInput); err != nil {
				return wire.ErrorResponse(wire.Internal("invalid payload for method %q", tag))
			}

			domainInput, err := input.FromWire(wireInput)
			if err != nil {
				return wire.ErrorResponse(wire.Internal("invalid payload for method %q", tag))
			}

			domainOutput, err := handler(ctx, domainInput)
			if err != nil {
				return wire.ErrorResponse(err)
			}

			encoded, err := codec.Marshal(output.ToWire(domainOutput))
			if err != nil {
				return wire.ErrorResponse(wire.Internal("encoding response for method %q", tag))
			}
			return wire.SuccessResponse(tag, encoded)
		},
	}
}

// Dispatcher routes wire requests to method handlers. Construction
// verifies that the handler set covers the declared method list
// exactly; a constructed Dispatcher is immutable and safe for
// concurrent Dispatch calls.
type Dispatcher struct {
	service  description.ServiceDescription
	handlers map[string]MethodHandler
}

// NewDispatcher builds a Dispatcher for the given service. It fails if
// the description is invalid, if any handler's tag is not declared or
// appears twice, or if any declared method lacks a handler — the
// routable tag set must equal the declared tag set before a single
// request is served.
func NewDispatcher(service description.ServiceDescription, handlers ...MethodHandler) (*Dispatcher, error) {
	if err := service.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service description: %w", err)
	}

	table := make(map[string]MethodHandler, len(handlers))
	for _, handler := range handlers {
		if !service.HasTag(handler.tag) {
			return nil, fmt.Errorf("service %q does not declare method tag %q", service.Name, handler.tag)
		}
		if _, exists := table[handler.tag]; exists {
			return nil, fmt.Errorf("service %q: duplicate handler for method tag %q", service.Name, handler.tag)
		}
		table[handler.tag] = handler
	}

	var missing []string
	for _, tag := range service.Tags() {
		if _, exists := table[tag]; !exists {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("service %q: no handler for method tags %v", service.Name, missing)
	}

	return &Dispatcher{service: service, handlers: table}, nil
}

// Dispatch routes one request to its handler and returns the
// response. The codec layer rejects undeclared tags at decode time,
// so a miss here means the request bypassed decoding; it is answered
// with an internal error rather than trusted.
//
// Dispatch runs synchronously on the calling goroutine. The context
// is passed through to the handler untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, request wire.Request) wire.Response {
	handler, exists := d.handlers[request.Tag]
	if !exists {
		return wire.ErrorResponse(wire.Internal("unknown method tag %q", request.Tag))
	}
	return handler.invoke(ctx, request.Payload)
}

// Service returns the service description this dispatcher was built
// from. The returned value shares the method slice; callers must
// treat it as read-only.
func (d *Dispatcher) Service() description.ServiceDescription {
	return d.service
}

// Tags returns the set of method tags this dispatcher can route, in
// declaration order. By construction it equals the declared tag set.
func (d *Dispatcher) Tags() []string {
	return d.service.Tags()
}
