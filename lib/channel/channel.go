// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/wirerpc/lib/codec"
	"github.com/bureau-foundation/wirerpc/lib/wire"
)

// dialTimeout is the maximum time to wait for a connection to the
// service socket. This covers only the connect phase; ctx can cut it
// shorter.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for the server to
// send a response after writing the request. Matched to the server's
// readTimeout + writeTimeout to account for handler execution time.
const responseReadTimeout = 45 * time.Second

// maxResponseSize caps a single response envelope. Matches the
// server's maxRequestSize for symmetry.
const maxResponseSize = 1024 * 1024

// SocketChannel performs one request/response exchange per Invoke
// against a SocketServer. Each Invoke opens a new connection (matching
// the server's one-request-per-connection model), sends the request,
// reads the response, and closes the connection. The channel holds no
// state between calls.
type SocketChannel struct {
	socketPath string
}

// NewSocketChannel creates a channel that connects to the service
// socket at socketPath. The returned channel is intended to be owned
// by a single stub.
func NewSocketChannel(socketPath string) *SocketChannel {
	return &SocketChannel{socketPath: socketPath}
}

// Invoke sends one request envelope and reads one response envelope.
// Every failure — connecting, writing, reading — is returned as a
// plain error; the envelope layer above surfaces it without
// reinterpretation.
func (c *SocketChannel) Invoke(ctx context.Context, request wire.Request) (wire.Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return wire.Response{}, fmt.Errorf("connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return wire.Response{}, fmt.Errorf("writing request: %w", err)
	}

	// Half-close the write side. CBOR is self-delimiting so this
	// isn't strictly necessary, but it lets the server's read side
	// see EOF cleanly.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	var response wire.Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return wire.Response{}, fmt.Errorf("reading response: %w", err)
	}

	return response, nil
}
