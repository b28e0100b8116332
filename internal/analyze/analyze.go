// Package analyze walks a parsed OpenAPI spec and builds the two things the
// code writers need: the full set of schemas that must become Go types,
// and a normalized description of every operation (path segments,
// parameters, request body, response envelope).
package analyze

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/pixie-sh/oapigen/internal/pointer"
	"github.com/pixie-sh/oapigen/internal/rename"
	"github.com/pixie-sh/oapigen/internal/spec"
)

// CollectedSchema is a schema location the analyzer decided needs its own
// named Go type, together with the name the renamer gave it.
type CollectedSchema struct {
	Location pointer.Pointer
	Name     string
	Schema   spec.Schema
}

// SegKind distinguishes a literal path segment from a path parameter.
type SegKind int

const (
	SegmentKind SegKind = iota
	ParameterKind
)

// SegmentOrParameter is one element of a parsed path template.
type SegmentOrParameter struct {
	Kind  SegKind
	Value string
}

func (s SegmentOrParameter) isEmpty() bool { return s.Value == "" }

// AsSegment returns the literal text and true if this is a Segment.
func (s SegmentOrParameter) AsSegment() (string, bool) {
	if s.Kind == SegmentKind {
		return s.Value, true
	}
	return "", false
}

// AsParameter returns the raw path parameter name and true if this is a
// Parameter.
func (s SegmentOrParameter) AsParameter() (string, bool) {
	if s.Kind == ParameterKind {
		return s.Value, true
	}
	return "", false
}

// ParameterDef is a single named, typed operation parameter.
type ParameterDef struct {
	Name       string // renamer-derived Go identifier
	Location   spec.ParameterLocation
	SchemaType string
}

// paramKey indexes OperationDef.Parameters by the parameter's *raw* OpenAPI
// name and location, since that's what a path template's {petId} segment
// and Parameter.Name both carry — the renamed Go identifier lives inside
// ParameterDef instead.
type paramKey struct {
	Name     string
	Location spec.ParameterLocation
}

// ResponseCase is one status-code branch of an operation's responses.
type ResponseCase struct {
	Status   string
	BodyType *string // nil when the response has no body
}

// OperationDef is the analyzer's normalized view of a single operation,
// everything the Types/Client/Server writers need and nothing they'd have
// to re-derive from the raw spec.
type OperationDef struct {
	// Name is the operation's identifier in the data model's own
	// convention, snake_case (matching NameProperty/NameParameter): the
	// Pascal-cased form the renamer produces is re-derived by the writers
	// at export time, the same way they re-Pascal property names.
	Name        string
	Method      string
	Path        []SegmentOrParameter
	Parameters  map[paramKey]ParameterDef
	RequestBody *string
	// Response names the type returned to callers: the sole response
	// body type when there's exactly one response, "struct{}" when that
	// response has no body, or "<Name>Response" when there is more than
	// one possible response and a sum type was synthesized for it.
	Response  string
	Responses []ResponseCase
}

// PathParams returns this operation's path parameters in path order.
func (o OperationDef) PathParams() []ParameterDef {
	var out []ParameterDef
	for _, seg := range o.Path {
		name, ok := seg.AsParameter()
		if !ok {
			continue
		}
		pd, ok := o.ParamByName(name, spec.InPath)
		if !ok {
			panic(fmt.Sprintf("path parameter %q should exist", name))
		}
		out = append(out, pd)
	}
	return out
}

// ParamByName looks up a parameter by its raw OpenAPI name and location.
func (o OperationDef) ParamByName(name string, loc spec.ParameterLocation) (ParameterDef, bool) {
	pd, ok := o.Parameters[paramKey{Name: name, Location: loc}]
	return pd, ok
}

// QueryParams returns this operation's query-string parameters sorted by
// raw name, the only ordering available since OperationDef.Parameters is
// keyed by a map. Header and cookie parameters are stored in Parameters as
// well, but neither this nor PathParams returns them.
func (o OperationDef) QueryParams() []ParameterDef {
	var keys []paramKey
	for k := range o.Parameters {
		if k.Location == spec.InQuery {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })

	out := make([]ParameterDef, 0, len(keys))
	for _, k := range keys {
		out = append(out, o.Parameters[k])
	}
	return out
}

// HasDefaultResponse reports whether "default" is one of the response
// status codes.
func (o OperationDef) HasDefaultResponse() bool {
	for _, r := range o.Responses {
		if r.Status == "default" {
			return true
		}
	}
	return false
}

// HasAnyResponseBody reports whether at least one response carries a body.
func (o OperationDef) HasAnyResponseBody() bool {
	for _, r := range o.Responses {
		if r.BodyType != nil {
			return true
		}
	}
	return false
}

// Analyzer drives discovery over a parsed spec using a pluggable Renamer.
type Analyzer struct {
	Renamer rename.Renamer
}

// New returns an Analyzer using the default renaming rules.
func New() *Analyzer {
	return &Analyzer{Renamer: rename.DefaultRenamer{}}
}

// Run parses raw OpenAPI JSON and discovers every schema and operation in
// it.
func (a *Analyzer) Run(data []byte, cfg spec.Config) (*AnalysisResult, error) {
	s, err := spec.ParseSpec(data, cfg)
	if err != nil {
		return nil, err
	}

	specValue, err := toAny(s)
	if err != nil {
		return nil, fmt.Errorf("re-encode spec for pointer resolution: %w", err)
	}

	renamer := a.Renamer
	if renamer == nil {
		renamer = rename.DefaultRenamer{}
	}

	schemas := collectTypesToGenerate(s, specValue, renamer)

	return &AnalysisResult{
		renamer:   renamer,
		spec:      s,
		specValue: specValue,
		schemas:   schemas,
	}, nil
}

// AnalysisResult is the analyzer's output: the spec, the renamer used to
// name things in it, and the full set of discovered schemas.
type AnalysisResult struct {
	renamer   rename.Renamer
	spec      *spec.Spec
	specValue any
	schemas   []CollectedSchema
}

// Spec returns the parsed OpenAPI document.
func (r *AnalysisResult) Spec() *spec.Spec { return r.spec }

// Renamer returns the Renamer used to name types and operations.
func (r *AnalysisResult) Renamer() rename.Renamer { return r.renamer }

// Schemas returns every discovered schema, in discovery order.
func (r *AnalysisResult) Schemas() []CollectedSchema { return r.schemas }

// FindSchema looks up a previously collected schema by its location.
func (r *AnalysisResult) FindSchema(ptr pointer.Pointer) (*CollectedSchema, bool) {
	want := ptr.String()
	for i := range r.schemas {
		if r.schemas[i].Location.String() == want {
			return &r.schemas[i], true
		}
	}
	return nil, false
}

// NameType resolves the Go type name for a schema found at ptr: a
// previously collected schema's own name, a $ref's target name, or
// (for inline scalars/arrays/objects) a fresh mapping from JSON Schema
// type to a Go type.
func (r *AnalysisResult) NameType(ptr pointer.Pointer, oor spec.ObjectOrReference[spec.Schema]) string {
	if cs, ok := r.FindSchema(ptr); ok {
		return cs.Name
	}

	if oor.IsRef() {
		refPtr, err := refToPointer(oor.Ref)
		if err != nil {
			panic(err)
		}
		cs, ok := r.FindSchema(refPtr)
		if !ok {
			panic(fmt.Sprintf("reference %q should exist as schema", oor.Ref))
		}
		return cs.Name
	}

	schema := oor.Object
	nullable := schema.IsNullable()
	wrapScalar := func(s string) string {
		if nullable {
			return "*" + s
		}
		return s
	}

	switch {
	case schema.IsType(spec.TypeObject):
		cs, ok := r.FindSchema(ptr)
		if !ok {
			panic(fmt.Sprintf("object schema at %q should have been collected", ptr.String()))
		}
		if nullable {
			return "*" + cs.Name
		}
		return cs.Name
	case schema.IsType(spec.TypeArray):
		// A Go slice is already nilable, so unlike scalars and structs an
		// array type is never additionally wrapped in a pointer for
		// nullability.
		if schema.Items != nil {
			return "[]" + r.NameType(ptr.Push("items"), *schema.Items)
		}
		return "[]json.RawMessage"
	case schema.IsType(spec.TypeInteger):
		if schema.Format != nil && *schema.Format == "int32" {
			return wrapScalar("int32")
		}
		return wrapScalar("int64")
	case schema.IsType(spec.TypeNumber):
		if schema.Format != nil && *schema.Format == "float" {
			return wrapScalar("float32")
		}
		return wrapScalar("float64")
	case schema.IsType(spec.TypeString):
		return wrapScalar("string")
	case schema.IsType(spec.TypeBoolean):
		return wrapScalar("bool")
	default:
		return "json.RawMessage"
	}
}

// Operations builds the normalized OperationDef for every operation in the
// spec, in the spec's own deterministic (sorted path, fixed method) order.
func (r *AnalysisResult) Operations() []OperationDef {
	var out []OperationDef

	for _, entry := range r.spec.Operations() {
		ptr := pointer.New("paths", entry.Path, entry.Method)
		operationName := r.renamer.NameOperation(r.specValue, ptr)
		path := parsePathSegments(entry.Path)

		parameters := make(map[paramKey]ParameterDef, len(entry.Operation.Parameters))
		for i, pOrRef := range entry.Operation.Parameters {
			pptr := ptr.Push("parameters", strconv.Itoa(i), "schema")
			param, err := spec.ResolveParameter(pOrRef, r.spec)
			if err != nil {
				panic(err)
			}
			if param.Schema == nil {
				panic(fmt.Sprintf("parameter %q should have a schema", param.Name))
			}

			var schemaType string
			if pOrRef.IsRef() {
				refPtr, err := refToPointer(pOrRef.Ref)
				if err != nil {
					panic(err)
				}
				cs, ok := r.FindSchema(refPtr)
				if !ok {
					panic(fmt.Sprintf("reference %q should exist as schema", pOrRef.Ref))
				}
				schemaType = cs.Name
			} else {
				schemaType = r.NameType(pptr, *param.Schema)
			}

			parameters[paramKey{Name: param.Name, Location: param.In}] = ParameterDef{
				Name:       r.renamer.NameParameter(param.Name),
				Location:   param.In,
				SchemaType: schemaType,
			}
		}

		var requestBody *string
		if b := entry.Operation.RequestBody; b != nil {
			if b.IsRef() {
				refPtr, err := refToPointer(b.Ref)
				if err != nil {
					panic(err)
				}
				if cs, ok := r.FindSchema(refPtr); ok {
					name := cs.Name
					requestBody = &name
				}
			} else if mt, ok := b.Object.Content["application/json"]; ok && mt.Schema != nil {
				bptr := ptr.Push("requestBody", "content", "application/json", "schema")
				name := r.NameType(bptr, *mt.Schema)
				requestBody = &name
			}
		}

		statuses := make([]string, 0, len(entry.Operation.Responses))
		for status := range entry.Operation.Responses {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)

		responses := make([]ResponseCase, 0, len(statuses))
		for _, status := range statuses {
			rOrRef := entry.Operation.Responses[status]
			var bodyType *string
			if rOrRef.IsRef() {
				refPtr, err := refToPointer(rOrRef.Ref)
				if err != nil {
					panic(err)
				}
				if cs, ok := r.FindSchema(refPtr); ok {
					name := cs.Name
					bodyType = &name
				}
			} else if mt, ok := rOrRef.Object.Content["application/json"]; ok && mt.Schema != nil {
				rptr := ptr.Push("responses", status, "content", "application/json", "schema")
				name := r.NameType(rptr, *mt.Schema)
				bodyType = &name
			}
			responses = append(responses, ResponseCase{Status: status, BodyType: bodyType})
		}

		var response string
		switch {
		case len(responses) == 1 && responses[0].BodyType != nil:
			response = *responses[0].BodyType
		case len(responses) == 1:
			response = "struct{}"
		default:
			response = operationName + "Response"
		}

		out = append(out, OperationDef{
			Name:        strcase.ToSnake(operationName),
			Method:      strings.ToUpper(entry.Method),
			Path:        path,
			Parameters:  parameters,
			RequestBody: requestBody,
			Response:    response,
			Responses:   responses,
		})
	}

	return out
}

// refToPointer turns a "$ref" string like "#/components/schemas/Pet" into
// the pointer "/components/schemas/Pet" it addresses within the same
// document. Cross-document refs (a non-empty segment before "#") aren't
// supported.
func refToPointer(ref string) (pointer.Pointer, error) {
	hash := strings.IndexByte(ref, '#')
	if hash < 0 {
		return pointer.Pointer{}, fmt.Errorf("ref %q has no document-relative pointer", ref)
	}
	return pointer.Parse(ref[hash+1:])
}

// parsePathSegments splits an OpenAPI path template such as
// "/pets/{petId}" into alternating literal and parameter tokens, tracking
// brace balance character by character.
func parsePathSegments(path string) []SegmentOrParameter {
	var memo []SegmentOrParameter
	for _, c := range path {
		switch c {
		case '/':
			if len(memo) != 0 {
				memo = append(memo, SegmentOrParameter{Kind: SegmentKind})
			}
			continue
		case '{':
			if len(memo) > 0 && memo[len(memo)-1].isEmpty() {
				memo[len(memo)-1] = SegmentOrParameter{Kind: ParameterKind}
				continue
			}
			panic(fmt.Sprintf("parameter start is incorrect for path %q", path))
		case '}':
			if len(memo) > 0 && memo[len(memo)-1].Kind == ParameterKind {
				continue
			}
			panic(fmt.Sprintf("parameter end is incorrect for path %q", path))
		}

		if len(memo) == 0 {
			memo = append(memo, SegmentOrParameter{Kind: SegmentKind, Value: string(c)})
			continue
		}
		last := memo[len(memo)-1]
		last.Value += string(c)
		memo[len(memo)-1] = last
	}
	return memo
}
