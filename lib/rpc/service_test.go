// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"fmt"
	"testing"

	"github.com/bureau-foundation/wirerpc/lib/description"
)

// The test service is a two-method authentication service. It covers
// both conversion styles: user_register validates its input on the
// way in, user_login wraps its output into a distinct domain type.

type registerRequestWire struct {
	UserID   string `cbor:"user_id"`
	Password string `cbor:"password"`
}

type registerResponseWire struct {
	Accepted bool `cbor:"accepted"`
}

type loginRequestWire struct {
	UserID   string `cbor:"user_id"`
	Password string `cbor:"password"`
}

type loginResponseWire struct {
	Token string `cbor:"token"`
}

// registerRequest is the domain form of a registration: the user ID
// has already been checked non-empty by the conversion.
type registerRequest struct {
	UserID   string
	Password string
}

// sessionToken is the domain form of a login result.
type sessionToken string

func registerInput() Conversion[registerRequestWire, registerRequest] {
	return Conversion[registerRequestWire, registerRequest]{
		FromWire: func(w registerRequestWire) (registerRequest, error) {
			if w.UserID == "" {
				return registerRequest{}, fmt.Errorf("user id required")
			}
			return registerRequest{UserID: w.UserID, Password: w.Password}, nil
		},
		ToWire: func(d registerRequest) registerRequestWire {
			return registerRequestWire{UserID: d.UserID, Password: d.Password}
		},
	}
}

func loginOutput() Conversion[loginResponseWire, sessionToken] {
	return Conversion[loginResponseWire, sessionToken]{
		FromWire: func(w loginResponseWire) (sessionToken, error) {
			if w.Token == "" {
				return "", fmt.Errorf("empty token")
			}
			return sessionToken(w.Token), nil
		},
		ToWire: func(d sessionToken) loginResponseWire {
			return loginResponseWire{Token: string(d)}
		},
	}
}

func authDescription() description.ServiceDescription {
	return description.ServiceDescription{
		Name: "authentication",
		Methods: []description.MethodDescription{
			{Name: "user_register", WireTag: "user_register"},
			{Name: "user_login", WireTag: "user_login"},
		},
	}
}

// authServer implements the two handlers and records invocations so
// tests can assert which handlers ran.
type authServer struct {
	registerCalls int
	loginCalls    int

	rejectLogin error // returned by login when non-nil
}

func (s *authServer) register(ctx context.Context, in registerRequest) (registerResponseWire, error) {
	s.registerCalls++
	return registerResponseWire{Accepted: true}, nil
}

func (s *authServer) login(ctx context.Context, in loginRequestWire) (sessionToken, error) {
	s.loginCalls++
	if s.rejectLogin != nil {
		return "", s.rejectLogin
	}
	return sessionToken("token-for-" + in.UserID), nil
}

func newAuthDispatcher(t *testing.T, server *authServer) *Dispatcher {
	t.Helper()
	dispatcher, err := NewDispatcher(authDescription(),
		Handle("user_register", registerInput(), Identity[registerResponseWire](), server.register),
		Handle("user_login", Identity[loginRequestWire](), loginOutput(), server.login),
	)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return dispatcher
}
