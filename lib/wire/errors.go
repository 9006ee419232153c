// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/wirerpc/lib/codec"
)

// Error kinds defined by the framework. Handlers may introduce their
// own kinds; those travel end-to-end unmodified.
const (
	// KindInternal is the generic failure the framework reports when
	// it will not expose the underlying cause across the wire:
	// malformed payloads, conversion failures, and response/request
	// tag mismatches all collapse to this kind.
	KindInternal = "internal"

	// KindHandler marks a handler failure that was returned as a
	// plain Go error rather than a *CallError. The message is
	// preserved; handlers that need a distinct kind return a
	// *CallError instead.
	KindHandler = "handler"
)

// CallError is the error value that crosses the wire boundary. A
// dispatch either succeeds with a payload or fails with exactly one
// CallError; there is no partial result.
//
// Kind identifies the failure class. The framework produces
// KindInternal and KindHandler; service-specific handlers define their
// own kinds (e.g., "authentication_failed") which pass through the
// dispatcher and stub verbatim, including the optional structured
// Detail payload.
type CallError struct {
	Kind    string
	Message string
	Detail  codec.RawMessage
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Internal returns a CallError of KindInternal.
func Internal(format string, args ...any) *CallError {
	return &CallError{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Errorf returns a CallError of the given kind. Use this in handlers
// for domain failures the caller should be able to distinguish.
func Errorf(kind, format string, args ...any) *CallError {
	return &CallError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsCallError converts any error to a *CallError. A *CallError
// anywhere in the chain is returned as-is; everything else is wrapped
// under KindHandler with its message preserved.
func AsCallError(err error) *CallError {
	var callError *CallError
	if errors.As(err, &callError) {
		return callError
	}
	return &CallError{Kind: KindHandler, Message: err.Error()}
}

// FromDetail reconstructs the CallError carried in a failure response.
// A failure envelope with no error detail is itself a protocol defect
// and surfaces as KindInternal.
func FromDetail(detail *ErrorDetail) *CallError {
	if detail == nil {
		return Internal("failure response carried no error detail")
	}
	kind := detail.Kind
	if kind == "" {
		kind = KindInternal
	}
	return &CallError{Kind: kind, Message: detail.Message, Detail: detail.Detail}
}

func (e *CallError) detail() *ErrorDetail {
	return &ErrorDetail{Kind: e.Kind, Message: e.Message, Detail: e.Detail}
}
