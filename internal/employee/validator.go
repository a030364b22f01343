// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package employee

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
)

const patchSchemaID = "https://staffroster.dev/schemas/employee-patch.schema.json"

// PatchSchema returns the JSON Schema for Patch, reflected from its tags.
func PatchSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Patch{})
	schema.ID = jsonschema.ID(patchSchemaID)
	schema.Title = "Employee update"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "marshal patch schema").Wrap(err)
	}
	return data, nil
}

var compiledPatchSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	raw, err := PatchSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "parse patch schema").Wrap(err)
	}

	c := jschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(patchSchemaID, doc); err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "add patch schema").Wrap(err)
	}
	sch, err := c.Compile(patchSchemaID)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "compile patch schema").Wrap(err)
	}
	return sch, nil
})

// DecodePatch validates body against the patch schema and decodes it.
// Unknown fields, wrong types and empty values are rejected with
// EMPLOYEE_INVALID_PATCH.
func DecodePatch(body []byte) (*Patch, error) {
	sch, err := compiledPatchSchema()
	if err != nil {
		return nil, err
	}

	doc, err := jschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, oops.Code(CodeInvalidPatch).With("reason", "malformed json").Wrap(err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, oops.Code(CodeInvalidPatch).With("reason", err.Error()).Errorf("employee update does not match schema")
	}

	var patch Patch
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, oops.Code(CodeInvalidPatch).With("reason", "decode").Wrap(err)
	}
	return &patch, nil
}
