// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gen

import "text/template"

// serviceTemplate is the shape of every generated service file. The
// template deliberately derives each section from the same method
// range: envelope variants, handler slots, conversions, and client
// methods cannot drift apart because they have no independent copies
// of the method list.
var serviceTemplate = template.Must(template.New("service").Parse(`// Code generated by wirerpc-gen. DO NOT EDIT.

package {{.Package}}

import (
	"context"

	"github.com/bureau-foundation/wirerpc/lib/description"
	"github.com/bureau-foundation/wirerpc/lib/rpc"
{{- range .Imports}}
	"{{.}}"
{{- end}}
)

// {{.ServiceGo}}Description returns the declarative description of the
// {{.Service}} service. It is the single copy of the method list; the
// handler interface, dispatcher, and client below are derived from it.
func {{.ServiceGo}}Description() description.ServiceDescription {
	return description.ServiceDescription{
		Name: "{{.Service}}",
		Methods: []description.MethodDescription{
{{- range .Methods}}
			{
				Name:         "{{.Name}}",
				WireTag:      "{{.Tag}}",
				InputWire:    "{{.InputWire}}",
				OutputWire:   "{{.OutputWire}}",
				InputDomain:  "{{.InputDomain}}",
				OutputDomain: "{{.OutputDomain}}",
			},
{{- end}}
		},
	}
}

// {{.ServiceGo}}Handler is the dispatch contract for the {{.Service}}
// service: one handler per method. A dispatcher cannot be constructed
// from a type that is missing any of them.
type {{.ServiceGo}}Handler interface {
{{- range .Methods}}
	{{.GoName}}(ctx context.Context, input {{.InputDomain}}) ({{.OutputDomain}}, error)
{{- end}}
}
{{range .Methods}}
func {{.ConvName}}InputConversion() rpc.Conversion[{{.InputWire}}, {{.InputDomain}}] {
{{- if .InputIdentity}}
	return rpc.Identity[{{.InputWire}}]()
{{- else}}
	return rpc.Conversion[{{.InputWire}}, {{.InputDomain}}]{
		FromWire: {{.InputFromWire}},
		ToWire:   {{.InputToWire}},
	}
{{- end}}
}

func {{.ConvName}}OutputConversion() rpc.Conversion[{{.OutputWire}}, {{.OutputDomain}}] {
{{- if .OutputIdentity}}
	return rpc.Identity[{{.OutputWire}}]()
{{- else}}
	return rpc.Conversion[{{.OutputWire}}, {{.OutputDomain}}]{
		FromWire: {{.OutputFromWire}},
		ToWire:   {{.OutputToWire}},
	}
{{- end}}
}
{{end}}
// New{{.ServiceGo}}Dispatcher builds the dispatcher routing every
// {{.Service}} method to the corresponding handler method.
func New{{.ServiceGo}}Dispatcher(handler {{.ServiceGo}}Handler) (*rpc.Dispatcher, error) {
	return rpc.NewDispatcher({{.ServiceGo}}Description(),
{{- range .Methods}}
		rpc.Handle("{{.Tag}}", {{.ConvName}}InputConversion(), {{.ConvName}}OutputConversion(), handler.{{.GoName}}),
{{- end}}
	)
}

// {{.ServiceGo}}Client is the typed caller-side stub for the
// {{.Service}} service.
type {{.ServiceGo}}Client struct {
	stub *rpc.Stub
}

// New{{.ServiceGo}}Client binds a client to the given channel. The
// client owns the channel for its lifetime and supports one in-flight
// call at a time.
func New{{.ServiceGo}}Client(channel rpc.Channel) (*{{.ServiceGo}}Client, error) {
	stub, err := rpc.NewStub({{.ServiceGo}}Description(), channel)
	if err != nil {
		return nil, err
	}
	return &{{.ServiceGo}}Client{stub: stub}, nil
}
{{range .Methods}}
// {{.GoName}} performs one {{.Tag}} call.
func (c *{{$.ServiceGo}}Client) {{.GoName}}(ctx context.Context, input {{.InputDomain}}) ({{.OutputDomain}}, error) {
	return rpc.Call(ctx, c.stub, "{{.Tag}}", {{.ConvName}}InputConversion(), {{.ConvName}}OutputConversion(), input)
}
{{end}}`))
