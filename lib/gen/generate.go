// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"unicode"
)

// serviceModel is the template view of one service file.
type serviceModel struct {
	Package   string
	Imports   []string
	Service   string // service name as declared, e.g. "greeter"
	ServiceGo string // exported identifier prefix, e.g. "Greeter"
	Methods   []methodModel
}

type methodModel struct {
	Name     string
	Tag      string
	GoName   string // exported method identifier, e.g. "SayHello"
	ConvName string // unexported conversion prefix, e.g. "sayHello"

	InputWire    string
	InputDomain  string
	OutputWire   string
	OutputDomain string

	InputIdentity  bool
	OutputIdentity bool
	InputFromWire  string
	InputToWire    string
	OutputFromWire string
	OutputToWire   string
}

// Generate emits the Go source for the service file: description
// constructor, handler interface, dispatcher constructor, and typed
// client. The output is gofmt-formatted.
func Generate(file *File) ([]byte, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if err := serviceTemplate.Execute(&buffer, buildModel(file)); err != nil {
		return nil, fmt.Errorf("executing service template: %w", err)
	}

	source, err := format.Source(buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return source, nil
}

func buildModel(file *File) serviceModel {
	service := file.Description()

	model := serviceModel{
		Package:   file.Package,
		Imports:   file.Imports,
		Service:   file.Service,
		ServiceGo: exportName(file.Service),
	}
	for i, method := range file.Methods {
		goName := exportName(method.Name)
		model.Methods = append(model.Methods, methodModel{
			Name:     method.Name,
			Tag:      service.Methods[i].WireTag,
			GoName:   goName,
			ConvName: lowerFirst(goName),

			InputWire:    method.Input.Wire,
			InputDomain:  method.Input.domain(),
			OutputWire:   method.Output.Wire,
			OutputDomain: method.Output.domain(),

			InputIdentity:  method.Input.identity(),
			OutputIdentity: method.Output.identity(),
			InputFromWire:  method.Input.FromWire,
			InputToWire:    method.Input.ToWire,
			OutputFromWire: method.Output.FromWire,
			OutputToWire:   method.Output.ToWire,
		})
	}
	return model
}

// exportName converts a declared name to an exported Go identifier:
// "say_hello" becomes "SayHello", "SayHello" stays as is.
func exportName(name string) string {
	var builder strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		builder.WriteString(string(runes))
	}
	return builder.String()
}

// lowerFirst lowercases the first rune of an identifier.
func lowerFirst(name string) string {
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
