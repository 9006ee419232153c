// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

// Conversion maps between the wire representation W and the domain
// representation D of one payload type. The two directions are
// deliberately asymmetric:
//
//   - FromWire is fallible. Wire payloads arrive from outside the
//     process and may violate the domain type's invariants; FromWire
//     is where they are rejected.
//   - ToWire is total. A domain value always has a wire form — a
//     ToWire that could fail indicates a defect in the conversion
//     definition, not a runtime condition, so the signature does not
//     admit failure.
//
// Each direction is invoked exactly once per call: the dispatcher runs
// FromWire on the input and ToWire on the output; the stub runs ToWire
// on the input and FromWire on the output.
type Conversion[W, D any] struct {
	FromWire func(W) (D, error)
	ToWire   func(D) W
}

// Identity returns the conversion for a payload whose wire and domain
// representations are the same type.
func Identity[T any]() Conversion[T, T] {
	return Conversion[T, T]{
		FromWire: func(v T) (T, error) { return v, nil },
		ToWire:   func(v T) T { return v },
	}
}
