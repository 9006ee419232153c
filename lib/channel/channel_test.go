// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/wirerpc/lib/codec"
	"github.com/bureau-foundation/wirerpc/lib/description"
	"github.com/bureau-foundation/wirerpc/lib/rpc"
	"github.com/bureau-foundation/wirerpc/lib/testutil"
	"github.com/bureau-foundation/wirerpc/lib/wire"
)

// The test service is a two-method task frontend. Conversions are
// identities: the conversion machinery itself is covered by the rpc
// package tests; these tests exercise the socket transport.

type createTaskWire struct {
	Function string `cbor:"function"`
}

type createTaskResultWire struct {
	TaskID string `cbor:"task_id"`
}

type getTaskWire struct {
	TaskID string `cbor:"task_id"`
}

type getTaskResultWire struct {
	Status string `cbor:"status"`
}

func frontendDescription() description.ServiceDescription {
	return description.ServiceDescription{
		Name: "frontend",
		Methods: []description.MethodDescription{
			{Name: "create_task", WireTag: "create_task"},
			{Name: "get_task", WireTag: "get_task"},
		},
	}
}

type frontendServer struct {
	mu          sync.Mutex
	tasks       map[string]string
	createCalls int
}

func (s *frontendServer) createTask(ctx context.Context, in createTaskWire) (createTaskResultWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.tasks == nil {
		s.tasks = make(map[string]string)
	}
	taskID := fmt.Sprintf("task-%d", len(s.tasks)+1)
	s.tasks[taskID] = "created"
	return createTaskResultWire{TaskID: taskID}, nil
}

func (s *frontendServer) getTask(ctx context.Context, in getTaskWire) (getTaskResultWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, exists := s.tasks[in.TaskID]
	if !exists {
		return getTaskResultWire{}, wire.Errorf("task_not_found", "no task %q", in.TaskID)
	}
	return getTaskResultWire{Status: status}, nil
}

func newFrontendDispatcher(t *testing.T, server *frontendServer) *rpc.Dispatcher {
	t.Helper()
	dispatcher, err := rpc.NewDispatcher(frontendDescription(),
		rpc.Handle("create_task", rpc.Identity[createTaskWire](), rpc.Identity[createTaskResultWire](), server.createTask),
		rpc.Handle("get_task", rpc.Identity[getTaskWire](), rpc.Identity[getTaskResultWire](), server.getTask),
	)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return dispatcher
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(testutil.SocketDir(t), "frontend.sock")
}

// startServer serves the dispatcher on a fresh socket and returns the
// socket path, a shutdown function, and the channel Serve's result
// arrives on.
func startServer(t *testing.T, dispatcher *rpc.Dispatcher) (string, context.CancelFunc, chan error) {
	t.Helper()
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, dispatcher, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()

	waitForSocket(t, socketPath)
	return socketPath, cancel, serveDone
}

// waitForSocket polls until the socket file exists. Bounded by the
// test context timeout (no wall-clock access).
func waitForSocket(t *testing.T, path string) {
	t.Helper()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if t.Context().Err() != nil {
			t.Fatalf("socket %s did not appear before test context expired", path)
		}
		runtime.Gosched()
	}
}

func newFrontendStub(t *testing.T, socketPath string) *rpc.Stub {
	t.Helper()
	stub, err := rpc.NewStub(frontendDescription(), NewSocketChannel(socketPath))
	if err != nil {
		t.Fatalf("NewStub: %v", err)
	}
	return stub
}

func TestEndToEndRoundtrip(t *testing.T) {
	server := &frontendServer{}
	socketPath, cancel, serveDone := startServer(t, newFrontendDispatcher(t, server))
	defer cancel()

	stub := newFrontendStub(t, socketPath)

	created, err := rpc.Call(context.Background(), stub, "create_task",
		rpc.Identity[createTaskWire](), rpc.Identity[createTaskResultWire](),
		createTaskWire{Function: "echo"})
	if err != nil {
		t.Fatalf("create_task: %v", err)
	}
	if created.TaskID == "" {
		t.Fatal("create_task returned an empty task ID")
	}

	got, err := rpc.Call(context.Background(), stub, "get_task",
		rpc.Identity[getTaskWire](), rpc.Identity[getTaskResultWire](),
		getTaskWire{TaskID: created.TaskID})
	if err != nil {
		t.Fatalf("get_task: %v", err)
	}
	if got.Status != "created" {
		t.Errorf("status = %q, want %q", got.Status, "created")
	}

	cancel()
	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "Serve did not return after cancellation"); err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
}

func TestHandlerErrorEndToEnd(t *testing.T) {
	server := &frontendServer{}
	socketPath, cancel, _ := startServer(t, newFrontendDispatcher(t, server))
	defer cancel()

	stub := newFrontendStub(t, socketPath)

	_, err := rpc.Call(context.Background(), stub, "get_task",
		rpc.Identity[getTaskWire](), rpc.Identity[getTaskResultWire](),
		getTaskWire{TaskID: "missing"})
	if err == nil {
		t.Fatal("get_task succeeded for a missing task")
	}
	var callError *wire.CallError
	if !errors.As(err, &callError) {
		t.Fatalf("error %v is not a *wire.CallError", err)
	}
	if callError.Kind != "task_not_found" {
		t.Errorf("kind = %q, want %q", callError.Kind, "task_not_found")
	}
}

func TestUndeclaredTagRejectedAtDecodeTime(t *testing.T) {
	server := &frontendServer{}
	socketPath, cancel, _ := startServer(t, newFrontendDispatcher(t, server))
	defer cancel()

	socketChannel := NewSocketChannel(socketPath)
	response, err := socketChannel.Invoke(context.Background(), wire.Request{Tag: "approve_task"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if response.OK {
		t.Fatal("server accepted an undeclared method tag")
	}
	if response.Error.Kind != wire.KindInternal {
		t.Errorf("kind = %q, want %q", response.Error.Kind, wire.KindInternal)
	}
	if !strings.Contains(response.Error.Message, "approve_task") {
		t.Errorf("error %q does not name the rejected tag", response.Error.Message)
	}
	if server.createCalls != 0 {
		t.Errorf("handler ran %d times for an undeclared tag", server.createCalls)
	}
}

func TestMissingTagRejected(t *testing.T) {
	server := &frontendServer{}
	socketPath, cancel, _ := startServer(t, newFrontendDispatcher(t, server))
	defer cancel()

	socketChannel := NewSocketChannel(socketPath)
	response, err := socketChannel.Invoke(context.Background(), wire.Request{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if response.OK {
		t.Fatal("server accepted an envelope with no tag")
	}
}

func TestInvalidEnvelopeBytes(t *testing.T) {
	server := &frontendServer{}
	socketPath, cancel, _ := startServer(t, newFrontendDispatcher(t, server))
	defer cancel()

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer conn.Close()

	// Garbage bytes that aren't a CBOR envelope.
	conn.Write([]byte{0xFF, 0xFE, 0xFD, 0xFC})
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response wire.Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if response.OK {
		t.Error("server accepted an invalid envelope")
	}
	if response.Error.Kind != wire.KindInternal {
		t.Errorf("kind = %q, want %q", response.Error.Kind, wire.KindInternal)
	}
}

func TestGracefulShutdown(t *testing.T) {
	// Handler that blocks until released, so the shutdown happens
	// with a request in flight.
	handlerStarted := make(chan struct{})
	handlerRelease := make(chan struct{})
	dispatcher, err := rpc.NewDispatcher(frontendDescription(),
		rpc.Handle("create_task", rpc.Identity[createTaskWire](), rpc.Identity[createTaskResultWire](),
			func(ctx context.Context, in createTaskWire) (createTaskResultWire, error) {
				close(handlerStarted)
				<-handlerRelease
				return createTaskResultWire{TaskID: "task-1"}, nil
			}),
		rpc.Handle("get_task", rpc.Identity[getTaskWire](), rpc.Identity[getTaskResultWire](),
			func(ctx context.Context, in getTaskWire) (getTaskResultWire, error) {
				return getTaskResultWire{}, nil
			}),
	)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	socketPath, cancel, serveDone := startServer(t, dispatcher)

	stub := newFrontendStub(t, socketPath)

	type result struct {
		created createTaskResultWire
		err     error
	}
	resultChan := make(chan result, 1)
	go func() {
		created, err := rpc.Call(context.Background(), stub, "create_task",
			rpc.Identity[createTaskWire](), rpc.Identity[createTaskResultWire](),
			createTaskWire{Function: "echo"})
		resultChan <- result{created, err}
	}()

	// Wait for the handler to start, then cancel the server and
	// release the handler. The in-flight call must still complete.
	<-handlerStarted
	cancel()
	close(handlerRelease)

	got := testutil.RequireReceive(t, resultChan, 5*time.Second, "in-flight call did not complete")
	if got.err != nil {
		t.Errorf("in-flight call failed: %v", got.err)
	}
	if got.created.TaskID != "task-1" {
		t.Errorf("task ID = %q, want %q", got.created.TaskID, "task-1")
	}

	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "Serve did not return after cancellation"); err != nil {
		t.Errorf("Serve returned error: %v", err)
	}

	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("socket file not cleaned up after Serve returned")
	}
}

func TestConcurrentCalls(t *testing.T) {
	server := &frontendServer{}
	socketPath, cancel, _ := startServer(t, newFrontendDispatcher(t, server))
	defer cancel()

	const concurrency = 20
	var wg sync.WaitGroup
	for i := range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One stub per goroutine: a stub assumes a single
			// in-flight call.
			stub := newFrontendStub(t, socketPath)
			created, err := rpc.Call(context.Background(), stub, "create_task",
				rpc.Identity[createTaskWire](), rpc.Identity[createTaskResultWire](),
				createTaskWire{Function: fmt.Sprintf("job-%d", i)})
			if err != nil {
				t.Errorf("call %d: %v", i, err)
				return
			}
			if created.TaskID == "" {
				t.Errorf("call %d: empty task ID", i)
			}
		}()
	}
	wg.Wait()

	server.mu.Lock()
	defer server.mu.Unlock()
	if server.createCalls != concurrency {
		t.Errorf("handler ran %d times, want %d", server.createCalls, concurrency)
	}
}

func TestInvokeConnectFailure(t *testing.T) {
	socketChannel := NewSocketChannel(filepath.Join(t.TempDir(), "absent.sock"))
	stub, err := rpc.NewStub(frontendDescription(), socketChannel)
	if err != nil {
		t.Fatalf("NewStub: %v", err)
	}

	_, err = rpc.Call(context.Background(), stub, "create_task",
		rpc.Identity[createTaskWire](), rpc.Identity[createTaskResultWire](),
		createTaskWire{Function: "echo"})
	if err == nil {
		t.Fatal("Call succeeded against a missing socket")
	}
	// Transport failures stay plain errors, never CallErrors.
	var callError *wire.CallError
	if errors.As(err, &callError) {
		t.Errorf("transport failure was re-specialized into %+v", callError)
	}
}
