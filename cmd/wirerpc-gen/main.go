// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wirerpc-gen compiles a YAML service description into Go source: the
// service's description constructor, handler interface, dispatcher
// constructor, and typed client.
//
// Usage:
//
//	wirerpc-gen --input service.yaml --output service_gen.go
//
// With --output omitted the generated source is written to stdout,
// which is convenient for inspection and for go:generate lines that
// redirect themselves.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wirerpc/lib/gen"
	"github.com/bureau-foundation/wirerpc/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var inputPath string
	var outputPath string

	flagSet := pflag.NewFlagSet("wirerpc-gen", pflag.ContinueOnError)
	flagSet.StringVar(&inputPath, "input", "", "YAML service description to compile")
	flagSet.StringVar(&outputPath, "output", "", "file to write the generated Go source to (default: stdout)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("wirerpc-gen %s\n", version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	// A bare positional argument is accepted as the input path so
	// go:generate lines stay short.
	if inputPath == "" && flagSet.NArg() == 1 {
		inputPath = flagSet.Arg(0)
	}
	if inputPath == "" {
		printHelp(flagSet)
		return fmt.Errorf("no service description given")
	}

	file, err := gen.Load(inputPath)
	if err != nil {
		return err
	}
	source, err := gen.Generate(file)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	if outputPath == "" {
		_, err := os.Stdout.Write(source)
		return err
	}
	if err := os.WriteFile(outputPath, source, 0644); err != nil {
		return fmt.Errorf("writing generated source: %w", err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Print(`wirerpc-gen - compile a YAML service description to Go source

Usage:
  wirerpc-gen --input service.yaml [--output service_gen.go]
  wirerpc-gen service.yaml

Flags:
`)
	fmt.Print(flagSet.FlagUsages())
}
