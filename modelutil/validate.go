// Package modelutil provides helpers for working with model I/O that don't
// belong on the normalized data model itself.
package modelutil

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
)

// ValidateJSON parses text as JSON and validates it against schema (a
// decoded JSON Schema document, as carried by
// model.ResponseFormat.Schema). A nil schema always succeeds. Used to
// confirm a structured-output response actually conforms to the schema the
// caller requested.
func ValidateJSON(schema map[string]any, text string) error {
	if schema == nil {
		return nil
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return apierror.Invariant("modelutil: structured output is not valid JSON", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", map[string]any(schema)); err != nil {
		return apierror.Invariant("modelutil: add schema resource", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return apierror.Invariant("modelutil: compile schema", err)
	}

	if err := compiled.Validate(doc); err != nil {
		return apierror.Invariant(fmt.Sprintf("modelutil: structured output does not match schema %q", schemaName(schema)), err)
	}
	return nil
}

func schemaName(schema map[string]any) string {
	if name, ok := schema["title"].(string); ok {
		return name
	}
	return ""
}
