package spec

import (
	"encoding/json"
	"fmt"
)

// Config controls how ParseSpec decodes an input document.
type Config struct {
	// StrictFields rejects schema objects that carry JSON Schema keywords
	// this generator doesn't act on (e.g. "discriminator", "pattern",
	// vendor "x-..." extensions). Off by default: most real-world specs
	// carry such keywords, and a generator that only understands a subset
	// of JSON Schema should say so loudly when asked to, not by default.
	StrictFields bool
}

// supportedSchemaFields is the complete set of JSON Schema keywords this
// generator's Schema type decodes. Anything else trips ErrUnsupportedField
// when Config.StrictFields is set.
var supportedSchemaFields = map[string]struct{}{
	"type": {}, "format": {}, "description": {}, "nullable": {},
	"properties": {}, "required": {}, "items": {},
	"anyOf": {}, "allOf": {}, "oneOf": {}, "enum": {}, "default": {}, "$ref": {},
}

// ErrUnsupportedField is wrapped with the offending field name and schema
// location when Config.StrictFields rejects a document.
type ErrUnsupportedField struct {
	Pointer string
	Field   string
}

func (e *ErrUnsupportedField) Error() string {
	return fmt.Sprintf("unsupported schema field %q at %s", e.Field, e.Pointer)
}

// ParseSpec decodes an OpenAPI document. With cfg.StrictFields set, it also
// checks the top-level keys of every components/schemas entry and rejects
// any JSON Schema keyword this generator's Schema type doesn't model;
// nested and inline schemas are not checked.
func ParseSpec(data []byte, cfg Config) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}

	if cfg.StrictFields {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode openapi document: %w", err)
		}
		if err := checkStrictSchemaFields(raw, "/components/schemas", "components", "schemas"); err != nil {
			return nil, err
		}
	}

	return &s, nil
}

// checkStrictSchemaFields walks down path (a sequence of map keys within
// raw) to the components/schemas map and validates every entry found
// there. Only components/schemas is checked: that is where a spec author
// is expected to hand-write full schema objects, whereas inline schemas
// elsewhere are far more often machine-generated and already well-formed.
func checkStrictSchemaFields(raw map[string]any, ptr string, path ...string) error {
	node := any(raw)
	for _, key := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node, ok = m[key]
		if !ok {
			return nil
		}
	}

	schemas, ok := node.(map[string]any)
	if !ok {
		return nil
	}

	for name, v := range schemas {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for field := range obj {
			if _, ok := supportedSchemaFields[field]; !ok {
				return &ErrUnsupportedField{Pointer: ptr + "/" + name, Field: field}
			}
		}
	}
	return nil
}
