// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel provides the reference transport for wirerpc: a
// Unix-socket request/response protocol carrying CBOR envelopes.
//
// Each connection handles exactly one exchange: the client writes one
// wire.Request, the server dispatches it and writes one wire.Response,
// then the connection closes. CBOR is self-delimiting, so no framing
// protocol is needed.
//
// [SocketServer] hosts a dispatcher on a socket path. It validates the
// envelope's method tag against the dispatcher's service description
// at decode time — a tag the service does not declare never reaches
// Dispatch. [SocketChannel] is the matching rpc.Channel: it dials per
// call, holds no state between calls, and maps every failure of the
// exchange to a plain error the stub surfaces opaquely.
//
// This package is a local transport for composing and testing
// services. Connection authentication, encryption, pooling, and
// retry are the business of whatever channel implementation a
// deployment substitutes; the dispatcher and stub are indifferent
// to the swap.
package channel
