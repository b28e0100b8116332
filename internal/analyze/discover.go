package analyze

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pixie-sh/oapigen/internal/pointer"
	"github.com/pixie-sh/oapigen/internal/rename"
	"github.com/pixie-sh/oapigen/internal/spec"
)

// toAny round-trips a value through JSON so pointer.Resolve can walk it as
// plain map[string]any/[]any, the same shape encoding/json decodes into
// when parsing the original document.
func toAny(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// collectInitialTypesToGenerate seeds the discovery worklist with every
// inline (non-$ref) schema reachable directly from components/* and every
// operation's parameters/requestBody/responses. $ref schemas aren't seeded
// here: the component they point at is already seeded from its own
// components/schemas entry, so following the ref again would just
// duplicate work (and, for self-referential schemas, loop forever).
func collectInitialTypesToGenerate(s *spec.Spec) []pointer.Pointer {
	var out []pointer.Pointer
	componentsPtr := pointer.New("components")

	for _, name := range sortedKeys(s.Components.Schemas) {
		if s.Components.Schemas[name].IsRef() {
			continue
		}
		out = append(out, componentsPtr.Push("schemas", name))
	}

	for _, name := range sortedKeys(s.Components.Responses) {
		resp := s.Components.Responses[name]
		if resp.IsRef() {
			continue
		}
		for _, mediaType := range sortedMediaTypesWithInlineSchema(resp.Object.Content) {
			out = append(out, componentsPtr.Push("responses", name, "content", mediaType, "schema"))
		}
	}

	for _, name := range sortedKeys(s.Components.Parameters) {
		param := s.Components.Parameters[name]
		if param.IsRef() || param.Object.Schema == nil || param.Object.Schema.IsRef() {
			continue
		}
		out = append(out, componentsPtr.Push("parameters", name, "schema"))
	}

	for _, name := range sortedKeys(s.Components.RequestBodies) {
		body := s.Components.RequestBodies[name]
		if body.IsRef() {
			continue
		}
		for _, mediaType := range sortedMediaTypesWithInlineSchema(body.Object.Content) {
			out = append(out, componentsPtr.Push("requestBodies", name, "content", mediaType, "schema"))
		}
	}

	for _, entry := range s.Operations() {
		opPtr := pointer.New("paths", entry.Path, entry.Method)

		for i, p := range entry.Operation.Parameters {
			if p.IsRef() || p.Object.Schema == nil || p.Object.Schema.IsRef() {
				continue
			}
			out = append(out, opPtr.Push("parameters", strconv.Itoa(i), "schema"))
		}

		if b := entry.Operation.RequestBody; b != nil && !b.IsRef() {
			for _, mediaType := range sortedMediaTypesWithInlineSchema(b.Object.Content) {
				out = append(out, opPtr.Push("requestBody", "content", mediaType, "schema"))
			}
		}

		for _, status := range sortedKeys(entry.Operation.Responses) {
			r := entry.Operation.Responses[status]
			if r.IsRef() {
				continue
			}
			for _, mediaType := range sortedMediaTypesWithInlineSchema(r.Object.Content) {
				out = append(out, opPtr.Push("responses", status, "content", mediaType, "schema"))
			}
		}
	}

	return out
}

// collectTypesToGenerate runs the worklist to a fixed point: pop a
// pointer, resolve it against the spec's decoded JSON form, and if it's a
// composite/object schema record it and push its inline children (branch
// schemas, object properties, array items) for the same treatment.
func collectTypesToGenerate(s *spec.Spec, specValue any, renamer rename.Renamer) []CollectedSchema {
	toCheck := collectInitialTypesToGenerate(s)
	visited := make(map[string]bool)
	var collected []CollectedSchema

	for len(toCheck) > 0 {
		ptr := toCheck[len(toCheck)-1]
		toCheck = toCheck[:len(toCheck)-1]

		key := ptr.String()
		if visited[key] {
			continue
		}
		visited[key] = true

		node, ok := ptr.Resolve(specValue)
		if !ok {
			continue
		}
		raw, err := json.Marshal(node)
		if err != nil {
			continue
		}
		var oor spec.ObjectOrReference[spec.Schema]
		if err := json.Unmarshal(raw, &oor); err != nil {
			continue
		}
		if oor.IsRef() {
			continue
		}
		schema := oor.Object

		switch {
		case schema.IsComposite():
			collected = append(collected, CollectedSchema{
				Location: ptr,
				Name:     renamer.NameType(specValue, ptr),
				Schema:   *schema,
			})
			for i := range schema.AnyOf {
				toCheck = append(toCheck, ptr.Push("anyOf", strconv.Itoa(i)))
			}
			for i := range schema.AllOf {
				toCheck = append(toCheck, ptr.Push("allOf", strconv.Itoa(i)))
			}
			for i := range schema.OneOf {
				toCheck = append(toCheck, ptr.Push("oneOf", strconv.Itoa(i)))
			}

		case schema.IsType(spec.TypeObject):
			collected = append(collected, CollectedSchema{
				Location: ptr,
				Name:     renamer.NameType(specValue, ptr),
				Schema:   *schema,
			})
			for _, name := range schema.SortedPropertyNames() {
				if prop := schema.Properties[name]; !prop.IsRef() {
					toCheck = append(toCheck, ptr.Push("properties", name))
				}
			}

		case schema.IsType(spec.TypeArray):
			if schema.Items != nil && !schema.Items.IsRef() {
				toCheck = append(toCheck, ptr.Push("items"))
			}
		}
	}

	return collected
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMediaTypesWithInlineSchema(content map[string]spec.MediaType) []string {
	var out []string
	for _, mediaType := range sortedKeys(content) {
		mt := content[mediaType]
		if mt.Schema != nil && !mt.Schema.IsRef() {
			out = append(out, mediaType)
		}
	}
	return out
}
