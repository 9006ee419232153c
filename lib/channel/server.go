// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/wirerpc/lib/codec"
	"github.com/bureau-foundation/wirerpc/lib/rpc"
	"github.com/bureau-foundation/wirerpc/lib/wire"
)

// readTimeout is how long the server waits for the client to send its
// request. A well-behaved client sends the request immediately after
// connecting.
const readTimeout = 30 * time.Second

// writeTimeout is how long the server waits for the response to be
// written.
const writeTimeout = 10 * time.Second

// maxRequestSize caps a single request envelope. 1 MB is generous for
// any method payload this scheme is used for.
const maxRequestSize = 1024 * 1024

// SocketServer hosts a dispatcher's service on a Unix socket. Each
// connection carries exactly one request/response cycle. Requests are
// dispatched concurrently, one goroutine per connection; the
// dispatcher contract guarantees that is safe when the handlers are.
type SocketServer struct {
	socketPath string
	dispatcher *rpc.Dispatcher
	logger     *slog.Logger

	// activeConnections tracks in-flight requests for graceful
	// shutdown. Serve waits for all active connections to complete
	// before returning.
	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server that will serve the dispatcher's
// service on socketPath.
func NewSocketServer(socketPath string, dispatcher *rpc.Dispatcher, logger *slog.Logger) *SocketServer {
	return &SocketServer{
		socketPath: socketPath,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Serve starts accepting connections and dispatching requests. Blocks
// until ctx is cancelled, then stops accepting new connections and
// waits for active requests to complete.
//
// Any existing socket file at the configured path is removed before
// listening. The socket file is removed on return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("socket server listening",
		"path", s.socketPath,
		"service", s.dispatcher.Service().Name,
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// handleConnection processes one request/response cycle.
func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// Decode one request envelope. LimitReader prevents a client
	// from exhausting memory with an oversized payload.
	var request wire.Request
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			// Client connected but sent nothing.
			return
		}
		s.writeResponse(conn, wire.ErrorResponse(wire.Internal("invalid request envelope")))
		return
	}

	if request.Tag == "" {
		s.writeResponse(conn, wire.ErrorResponse(wire.Internal("missing method tag")))
		return
	}

	// Decode-time tag check: only declared variants are admitted.
	// Dispatch has its own guard, but an undeclared tag is a protocol
	// error of the connection, rejected here like any other malformed
	// envelope.
	if !s.dispatcher.Service().HasTag(request.Tag) {
		s.logger.Debug("rejected undeclared method tag", "tag", request.Tag)
		s.writeResponse(conn, wire.ErrorResponse(wire.Internal("unknown method tag %q", request.Tag)))
		return
	}

	response := s.dispatcher.Dispatch(ctx, request)
	if !response.OK {
		s.logger.Debug("dispatch failed",
			"tag", request.Tag,
			"kind", response.Error.Kind,
			"error", response.Error.Message,
		)
	}

	s.writeResponse(conn, response)
}

// writeResponse encodes one response envelope onto the connection.
// Write failures are logged at debug level — the connection is
// closing regardless.
func (s *SocketServer) writeResponse(conn net.Conn, response wire.Response) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}
