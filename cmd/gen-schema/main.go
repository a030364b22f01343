// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Command gen-schema writes the employee update JSON Schema for API clients.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/staffroster/staffroster/internal/employee"
)

func main() {
	out := pflag.String("out", filepath.Join("schemas", "employee-patch.schema.json"), "output path")
	pflag.Parse()

	if err := run(*out, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, stdout io.Writer) error {
	schema, err := employee.PatchSchema()
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outPath, append(schema, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "Generated %s\n", outPath)
	return nil
}
