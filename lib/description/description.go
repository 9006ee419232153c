// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package description defines the declarative model of an RPC service:
// a service name plus an ordered list of methods, each with a wire tag
// and its input/output type names.
//
// A ServiceDescription is data only. It is constructed once — at
// startup for runtime-built services, or emitted by wirerpc-gen for
// generated ones — and treated as immutable for the life of the
// process. Everything else in the module (envelope routing, dispatcher
// construction, client stubs, code generation) derives from it, so
// there is exactly one copy of the method list to keep in sync.
package description

import (
	"fmt"
	"strings"
	"unicode"
)

// ServiceDescription declares a service's methods. The method order is
// significant only for generated code layout; routing is by wire tag.
type ServiceDescription struct {
	// Name identifies the service (e.g., "authentication"). Used in
	// generated identifiers and error messages, not on the wire.
	Name string

	// Methods is the ordered method list. Wire tags must be unique
	// within the service and stable across versions: the tag is the
	// sole discriminant carried in every envelope.
	Methods []MethodDescription
}

// MethodDescription declares one method: its name, wire tag, and the
// names of its wire and domain types. The type names are Go type
// expressions consumed by the generator; runtime dispatch never
// inspects them.
type MethodDescription struct {
	// Name is the method name as declared (e.g., "user_login" or
	// "UserLogin").
	Name string

	// WireTag is the discriminant carried in request and response
	// envelopes for this method. Empty tags are filled in by
	// Normalized from the method name.
	WireTag string

	// InputWire and OutputWire name the method's wire payload types.
	InputWire  string
	OutputWire string

	// InputDomain and OutputDomain name the internal types the
	// handler consumes and produces. Equal to the wire type names
	// when the method needs no conversion.
	InputDomain  string
	OutputDomain string
}

// NormalizeTag derives a wire tag from a method name: CamelCase is
// split on case boundaries, separators collapse to underscores, and
// the result is lowercase. "UserLogin", "user-login", and "user_login"
// all normalize to "user_login".
func NormalizeTag(name string) string {
	var builder strings.Builder
	builder.Grow(len(name) + 4)

	previousLowerOrDigit := false
	for _, r := range name {
		switch {
		case r == '-' || r == ' ' || r == '.':
			r = '_'
		case unicode.IsUpper(r):
			if previousLowerOrDigit {
				builder.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		previousLowerOrDigit = unicode.IsLower(r) || unicode.IsDigit(r)
		builder.WriteRune(r)
	}
	return builder.String()
}

// Normalized returns a copy of the description with every empty
// WireTag filled in from the method name via NormalizeTag. The
// receiver is not modified.
func (d ServiceDescription) Normalized() ServiceDescription {
	methods := make([]MethodDescription, len(d.Methods))
	copy(methods, d.Methods)
	for i := range methods {
		if methods[i].WireTag == "" {
			methods[i].WireTag = NormalizeTag(methods[i].Name)
		}
	}
	d.Methods = methods
	return d
}

// Validate checks the structural invariants: non-empty service name,
// at least one method, and method names and wire tags that are
// non-empty and unique within the service.
func (d ServiceDescription) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("service description has no name")
	}
	if len(d.Methods) == 0 {
		return fmt.Errorf("service %q declares no methods", d.Name)
	}

	names := make(map[string]bool, len(d.Methods))
	tags := make(map[string]bool, len(d.Methods))
	for i, method := range d.Methods {
		if method.Name == "" {
			return fmt.Errorf("service %q: method %d has no name", d.Name, i)
		}
		if names[method.Name] {
			return fmt.Errorf("service %q: duplicate method name %q", d.Name, method.Name)
		}
		names[method.Name] = true

		if method.WireTag == "" {
			return fmt.Errorf("service %q: method %q has no wire tag", d.Name, method.Name)
		}
		if tags[method.WireTag] {
			return fmt.Errorf("service %q: duplicate wire tag %q", d.Name, method.WireTag)
		}
		tags[method.WireTag] = true
	}
	return nil
}

// Tags returns the wire tags in declaration order.
func (d ServiceDescription) Tags() []string {
	tags := make([]string, len(d.Methods))
	for i, method := range d.Methods {
		tags[i] = method.WireTag
	}
	return tags
}

// HasTag reports whether the service declares a method with the given
// wire tag.
func (d ServiceDescription) HasTag(tag string) bool {
	for _, method := range d.Methods {
		if method.WireTag == tag {
			return true
		}
	}
	return false
}
