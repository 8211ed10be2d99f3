// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package envelope implements A10: a structural JSON Schema guard run
// ahead of internal/adapter's field-level parsing, grounded directly
// on the teacher's pkg/schema — an embed.FS of schema documents, a
// custom jsonschema.Loaders scheme backed by that embed.FS, and a
// Validate([]byte) error entry point — narrowed from the teacher's
// four schema kinds (job meta/data/config/cluster) down to the single
// ingest envelope shape this repo accepts.
package envelope

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*
var schemaFiles embed.FS

func load(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Path)
}

func init() {
	jsonschema.Loaders["embedFS"] = load
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schemaOnce() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = jsonschema.Compile("embedFS://schemas/envelope.schema.json")
	})
	return compiled, compileErr
}

// ErrMalformed wraps a schema validation failure, giving C3/C10 a
// single sentinel-ish error class instead of a cascade of per-field
// adapter errors when the top-level shape itself is wrong.
type ErrMalformed struct {
	Detail string
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("envelope: structurally invalid payload: %s", e.Detail)
}

// Validate checks that body is a structurally valid ingest envelope
// (either the internal metrics/workouts shape or the vendor
// data-wrapped shape) before any family-specific parsing runs.
func Validate(body []byte) error {
	s, err := schemaOnce()
	if err != nil {
		return fmt.Errorf("envelope: compiling schema: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return &ErrMalformed{Detail: err.Error()}
	}

	if err := s.Validate(v); err != nil {
		return &ErrMalformed{Detail: err.Error()}
	}
	return nil
}
