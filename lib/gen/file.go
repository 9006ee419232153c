// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gen turns a YAML service description into Go source: the
// service's description.ServiceDescription constructor, a handler
// interface (the dispatch contract), a dispatcher constructor, and a
// typed client.
//
// Generation happens at build time, driven by wirerpc-gen. The emitted
// code contains the only copy of the method list for its service —
// every envelope variant, handler slot, and client method is derived
// from it in one pass, so adding or removing a method in the YAML file
// regenerates every synchronized artifact together.
package gen

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/wirerpc/lib/description"
)

// File is the YAML document describing one service.
type File struct {
	// Service is the service name (e.g., "greeter"). It becomes the
	// ServiceDescription name and the prefix of every generated
	// identifier.
	Service string `yaml:"service"`

	// Package is the Go package the generated file belongs to.
	Package string `yaml:"package"`

	// Imports lists extra import paths for packages that define the
	// payload types, when they live outside the generated package.
	Imports []string `yaml:"imports"`

	// Methods is the ordered method list.
	Methods []Method `yaml:"methods"`
}

// Method describes one method: a name, an optional explicit wire tag
// (defaulted from the name), and the input/output type pairs.
type Method struct {
	Name   string   `yaml:"name"`
	Tag    string   `yaml:"tag"`
	Input  TypePair `yaml:"input"`
	Output TypePair `yaml:"output"`
}

// TypePair names the wire and domain types of one payload direction.
// When Domain is empty or equal to Wire, the generated code uses the
// identity conversion; otherwise FromWire and ToWire must name
// conversion functions with signatures
//
//	func(Wire) (Domain, error)   // from_wire
//	func(Domain) Wire            // to_wire
//
// defined in (or imported into) the generated package.
type TypePair struct {
	Wire     string `yaml:"wire"`
	Domain   string `yaml:"domain"`
	FromWire string `yaml:"from_wire"`
	ToWire   string `yaml:"to_wire"`
}

// identifierPattern is the accepted shape for service and method
// names: they must survive conversion to Go identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Load reads and validates a service description file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading service description: %w", err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Parse decodes and validates a service description document.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing service description: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks the document's own constraints and the structural
// invariants of the service description it denotes.
func (f *File) Validate() error {
	if f.Service == "" {
		return fmt.Errorf("missing service name")
	}
	if !identifierPattern.MatchString(f.Service) {
		return fmt.Errorf("service name %q is not a valid identifier", f.Service)
	}
	if f.Package == "" {
		return fmt.Errorf("service %q: missing package name", f.Service)
	}

	for _, method := range f.Methods {
		if method.Name == "" {
			return fmt.Errorf("service %q: method with no name", f.Service)
		}
		if !identifierPattern.MatchString(method.Name) {
			return fmt.Errorf("service %q: method name %q is not a valid identifier", f.Service, method.Name)
		}
		if err := method.Input.validate(); err != nil {
			return fmt.Errorf("service %q: method %q input: %w", f.Service, method.Name, err)
		}
		if err := method.Output.validate(); err != nil {
			return fmt.Errorf("service %q: method %q output: %w", f.Service, method.Name, err)
		}
	}

	// The derived description enforces the remaining invariants:
	// at least one method, unique names, unique tags.
	return f.Description().Validate()
}

func (p TypePair) validate() error {
	if p.Wire == "" {
		return fmt.Errorf("missing wire type")
	}
	if p.identity() {
		if p.FromWire != "" || p.ToWire != "" {
			return fmt.Errorf("conversion functions given for identical wire and domain types")
		}
		return nil
	}
	if p.FromWire == "" || p.ToWire == "" {
		return fmt.Errorf("distinct wire and domain types require from_wire and to_wire")
	}
	return nil
}

// identity reports whether the pair needs no conversion.
func (p TypePair) identity() bool {
	return p.Domain == "" || p.Domain == p.Wire
}

// domain returns the effective domain type name.
func (p TypePair) domain() string {
	if p.Domain == "" {
		return p.Wire
	}
	return p.Domain
}

// Description derives the service description declared by the file,
// with wire tags defaulted from method names.
func (f *File) Description() description.ServiceDescription {
	service := description.ServiceDescription{Name: f.Service}
	for _, method := range f.Methods {
		service.Methods = append(service.Methods, description.MethodDescription{
			Name:         method.Name,
			WireTag:      method.Tag,
			InputWire:    method.Input.Wire,
			OutputWire:   method.Output.Wire,
			InputDomain:  method.Input.domain(),
			OutputDomain: method.Output.domain(),
		})
	}
	return service.Normalized()
}
