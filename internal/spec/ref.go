package spec

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ObjectOrReference represents an OpenAPI value that may either be given
// inline or as a "$ref" pointer to a component. Go has no tagged-union
// equivalent of Rust's serde(untagged) enum, so the sum is instead modeled
// as a struct with a discriminant field and a custom decoder: Ref is set
// (and Object left nil) when the JSON value carries a "$ref" key, otherwise
// Object is populated and Ref is empty.
type ObjectOrReference[T any] struct {
	Ref    string
	Object *T
}

// IsRef reports whether this value is a reference rather than an inline
// object.
func (o ObjectOrReference[T]) IsRef() bool {
	return o.Object == nil
}

// UnmarshalJSON implements the $ref-or-inline-object decode.
func (o *ObjectOrReference[T]) UnmarshalJSON(data []byte) error {
	var probe struct {
		Ref string `json:"$ref"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("object or reference: %w", err)
	}
	if probe.Ref != "" {
		o.Ref = probe.Ref
		o.Object = nil
		return nil
	}

	var obj T
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("object or reference: %w", err)
	}
	o.Object = &obj
	return nil
}

// MarshalJSON writes the value back in its OpenAPI form: {"$ref": ...} for
// a reference, or the inline object itself.
func (o ObjectOrReference[T]) MarshalJSON() ([]byte, error) {
	if o.Object == nil {
		return json.Marshal(struct {
			Ref string `json:"$ref"`
		}{Ref: o.Ref})
	}
	return json.Marshal(o.Object)
}

// RefErrorKind distinguishes the ways resolving a $ref can fail.
type RefErrorKind int

const (
	// InvalidType means the "$ref" string itself doesn't parse as a
	// recognized component reference (bad syntax, or an unknown
	// components/<kind> segment).
	InvalidType RefErrorKind = iota
	// MismatchedType means the reference parses fine but points at a
	// component of a different kind than the one being resolved (e.g. a
	// requestBody referenced where a schema was expected).
	MismatchedType
	// Unresolvable means the reference parses and has the right kind, but
	// no component with that name exists.
	Unresolvable
)

// RefError reports why a $ref failed to resolve against a Spec.
type RefError struct {
	Kind    RefErrorKind
	Ref     string
	Want    RefType
	Got     RefType
	Message string
}

func (e *RefError) Error() string {
	switch e.Kind {
	case MismatchedType:
		return fmt.Sprintf("cannot reference a %s as a %s: %s", e.Got, e.Want, e.Ref)
	case Unresolvable:
		return fmt.Sprintf("unresolvable path: %s", e.Ref)
	default:
		return fmt.Sprintf("invalid type: %s", e.Message)
	}
}

// RefType enumerates the OpenAPI component collections a $ref may target.
type RefType string

const (
	RefTypeSchema         RefType = "schemas"
	RefTypeResponse       RefType = "responses"
	RefTypeParameter      RefType = "parameters"
	RefTypeExample        RefType = "examples"
	RefTypeRequestBody    RefType = "requestBodies"
	RefTypeHeader         RefType = "headers"
	RefTypeSecurityScheme RefType = "securitySchemes"
	RefTypeLink           RefType = "links"
	RefTypeCallback       RefType = "callbacks"
)

var refPattern = regexp.MustCompile(`^(?P<source>[^#]*)#/components/(?P<type>[^/]+)/(?P<name>.+)$`)

// Ref is a parsed "$ref" string: the document it points into (empty for
// same-document refs), which component collection, and which entry.
type Ref struct {
	Source string
	Kind   RefType
	Name   string
}

// ParseRef parses a "$ref" value such as "#/components/schemas/Pet".
func ParseRef(path string) (Ref, error) {
	m := refPattern.FindStringSubmatch(path)
	if m == nil {
		return Ref{}, &RefError{Kind: InvalidType, Ref: path, Message: "does not match #/components/<type>/<name>"}
	}
	kind, err := parseRefType(m[2])
	if err != nil {
		return Ref{}, &RefError{Kind: InvalidType, Ref: path, Message: err.Error()}
	}
	return Ref{Source: m[1], Kind: kind, Name: m[3]}, nil
}

func parseRefType(s string) (RefType, error) {
	switch s {
	case "schemas":
		return RefTypeSchema, nil
	case "responses":
		return RefTypeResponse, nil
	case "parameters":
		return RefTypeParameter, nil
	case "examples":
		return RefTypeExample, nil
	case "requestBodies":
		return RefTypeRequestBody, nil
	case "headers":
		return RefTypeHeader, nil
	case "securitySchemes":
		return RefTypeSecurityScheme, nil
	case "links":
		return RefTypeLink, nil
	case "callbacks":
		return RefTypeCallback, nil
	default:
		return "", fmt.Errorf("unknown component collection %q", s)
	}
}

// ResolveSchema resolves a schema reference-or-object against the spec's
// components/schemas collection.
func ResolveSchema(o ObjectOrReference[Schema], s *Spec) (*Schema, error) {
	if o.Object != nil {
		return o.Object, nil
	}
	ref, err := ParseRef(o.Ref)
	if err != nil {
		return nil, err
	}
	if ref.Kind != RefTypeSchema {
		return nil, &RefError{Kind: MismatchedType, Ref: o.Ref, Want: RefTypeSchema, Got: ref.Kind}
	}
	entry, ok := s.Components.Schemas[ref.Name]
	if !ok {
		return nil, &RefError{Kind: Unresolvable, Ref: o.Ref}
	}
	return ResolveSchema(entry, s)
}

// ResolveParameter resolves a parameter reference-or-object against the
// spec's components/parameters collection.
func ResolveParameter(o ObjectOrReference[Parameter], s *Spec) (*Parameter, error) {
	if o.Object != nil {
		return o.Object, nil
	}
	ref, err := ParseRef(o.Ref)
	if err != nil {
		return nil, err
	}
	if ref.Kind != RefTypeParameter {
		return nil, &RefError{Kind: MismatchedType, Ref: o.Ref, Want: RefTypeParameter, Got: ref.Kind}
	}
	entry, ok := s.Components.Parameters[ref.Name]
	if !ok {
		return nil, &RefError{Kind: Unresolvable, Ref: o.Ref}
	}
	return ResolveParameter(entry, s)
}

// ResolveRequestBody resolves a request body reference-or-object against
// the spec's components/requestBodies collection.
func ResolveRequestBody(o ObjectOrReference[RequestBody], s *Spec) (*RequestBody, error) {
	if o.Object != nil {
		return o.Object, nil
	}
	ref, err := ParseRef(o.Ref)
	if err != nil {
		return nil, err
	}
	if ref.Kind != RefTypeRequestBody {
		return nil, &RefError{Kind: MismatchedType, Ref: o.Ref, Want: RefTypeRequestBody, Got: ref.Kind}
	}
	entry, ok := s.Components.RequestBodies[ref.Name]
	if !ok {
		return nil, &RefError{Kind: Unresolvable, Ref: o.Ref}
	}
	return ResolveRequestBody(entry, s)
}

// ResolveResponse resolves a response reference-or-object against the
// spec's components/responses collection.
func ResolveResponse(o ObjectOrReference[Response], s *Spec) (*Response, error) {
	if o.Object != nil {
		return o.Object, nil
	}
	ref, err := ParseRef(o.Ref)
	if err != nil {
		return nil, err
	}
	if ref.Kind != RefTypeResponse {
		return nil, &RefError{Kind: MismatchedType, Ref: o.Ref, Want: RefTypeResponse, Got: ref.Kind}
	}
	entry, ok := s.Components.Responses[ref.Name]
	if !ok {
		return nil, &RefError{Kind: Unresolvable, Ref: o.Ref}
	}
	return ResolveResponse(entry, s)
}
