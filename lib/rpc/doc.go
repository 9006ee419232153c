// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc derives a server-side dispatcher and a client-side stub
// from a service description, keeping both sides provably in sync with
// the declared method list.
//
// The flow, per service:
//
//	description.ServiceDescription
//	  → one rpc.Handle(...) per method      (server side)
//	  → rpc.NewDispatcher(...)              (fails unless every
//	                                         declared method has
//	                                         exactly one handler)
//	  → dispatcher.Dispatch(request)        (tag-routed, converts
//	                                         wire → domain → wire)
//
//	description.ServiceDescription
//	  → rpc.NewStub(description, channel)   (client side)
//	  → rpc.Call(ctx, stub, tag, ...)       (one blocking round trip)
//
// Wire and domain representations are kept apart by an explicit
// Conversion pair per payload type: wire→domain may reject malformed
// payloads, domain→wire must always succeed. The dispatcher invokes
// each conversion exactly once per call and never lets a conversion
// failure reach a handler.
//
// The package introduces no shared mutable state: a Dispatcher is
// immutable after construction and safe for concurrent Dispatch calls
// provided the handlers themselves are; all per-call state lives in
// the request value. A Stub owns its channel for its lifetime and
// supports one in-flight call at a time — concurrent use of a single
// stub is undefined unless the channel serializes access. Cancellation
// and timeouts belong entirely to the channel; this layer blocks for
// as long as the channel does.
//
// wirerpc-gen emits typed wrappers around this package (a handler
// interface, dispatcher constructor, and client struct per service) so
// that adding or removing a method is a compile-time event for every
// implementation and call site.
package rpc
