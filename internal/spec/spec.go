// Package spec models the subset of the OpenAPI v3 document format this
// generator reads: schemas, operations, parameters, request bodies, and
// responses, plus the $ref resolution machinery needed to turn inline-or-
// referenced values into concrete ones.
package spec

import "sort"

// ParameterLocation is the OpenAPI "in" value for a parameter.
type ParameterLocation string

const (
	InPath   ParameterLocation = "path"
	InQuery  ParameterLocation = "query"
	InHeader ParameterLocation = "header"
	InCookie ParameterLocation = "cookie"
)

// Spec is the root OpenAPI document.
type Spec struct {
	OpenAPI    string     `json:"openapi"`
	Info       Info       `json:"info"`
	Servers    []Server   `json:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components `json:"components"`
}

// Info carries the document's title/version metadata. The generator never
// reads it beyond round-tripping, but it must survive decoding untouched.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Server is an OpenAPI server entry.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Components holds the spec's reusable, named collections.
type Components struct {
	Schemas       map[string]ObjectOrReference[Schema]      `json:"schemas,omitempty"`
	Responses     map[string]ObjectOrReference[Response]    `json:"responses,omitempty"`
	Parameters    map[string]ObjectOrReference[Parameter]   `json:"parameters,omitempty"`
	RequestBodies map[string]ObjectOrReference[RequestBody] `json:"requestBodies,omitempty"`
}

// PathItem groups the operations available at a single path template.
type PathItem struct {
	Get        *Operation             `json:"get,omitempty"`
	Put        *Operation             `json:"put,omitempty"`
	Post       *Operation             `json:"post,omitempty"`
	Delete     *Operation             `json:"delete,omitempty"`
	Options    *Operation             `json:"options,omitempty"`
	Head       *Operation             `json:"head,omitempty"`
	Patch      *Operation             `json:"patch,omitempty"`
	Trace      *Operation             `json:"trace,omitempty"`
	Parameters []ObjectOrReference[Parameter] `json:"parameters,omitempty"`
}

// Operation is a single HTTP operation (method + path).
type Operation struct {
	OperationID string                             `json:"operationId,omitempty"`
	Tags        []string                           `json:"tags,omitempty"`
	Summary     string                             `json:"summary,omitempty"`
	Description string                             `json:"description,omitempty"`
	Parameters  []ObjectOrReference[Parameter]     `json:"parameters,omitempty"`
	RequestBody *ObjectOrReference[RequestBody]    `json:"requestBody,omitempty"`
	Responses   map[string]ObjectOrReference[Response] `json:"responses"`
	Deprecated  bool                               `json:"deprecated,omitempty"`
}

// Parameter is a single operation or path-level parameter.
type Parameter struct {
	Name        string                     `json:"name"`
	In          ParameterLocation          `json:"in"`
	Description string                     `json:"description,omitempty"`
	Required    bool                       `json:"required,omitempty"`
	Schema      *ObjectOrReference[Schema] `json:"schema,omitempty"`
}

// RequestBody is an operation's request body.
type RequestBody struct {
	Description string               `json:"description,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// Response is a single status-code response.
type Response struct {
	Description string               `json:"description,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType pairs a content-type with the schema describing its body.
type MediaType struct {
	Schema *ObjectOrReference[Schema] `json:"schema,omitempty"`
}

// OperationEntry pairs a path and HTTP method with the operation found
// there, in the deterministic order Operations() produces.
type OperationEntry struct {
	Path      string
	Method    string
	Operation *Operation
}

// methodOrder fixes the order operations are visited in within a path,
// matching the order OpenAPI itself lists path-item fields in.
var methodOrder = []struct {
	name string
	get  func(PathItem) *Operation
}{
	{"get", func(p PathItem) *Operation { return p.Get }},
	{"put", func(p PathItem) *Operation { return p.Put }},
	{"post", func(p PathItem) *Operation { return p.Post }},
	{"delete", func(p PathItem) *Operation { return p.Delete }},
	{"options", func(p PathItem) *Operation { return p.Options }},
	{"head", func(p PathItem) *Operation { return p.Head }},
	{"patch", func(p PathItem) *Operation { return p.Patch }},
	{"trace", func(p PathItem) *Operation { return p.Trace }},
}

// Operations walks every path in deterministic (sorted-path, fixed-method)
// order, since Go map iteration order is randomized and the renamer /
// analyzer both need a stable traversal to produce reproducible output.
func (s *Spec) Operations() []OperationEntry {
	paths := make([]string, 0, len(s.Paths))
	for p := range s.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []OperationEntry
	for _, path := range paths {
		item := s.Paths[path]
		for _, m := range methodOrder {
			if op := m.get(item); op != nil {
				out = append(out, OperationEntry{Path: path, Method: m.name, Operation: op})
			}
		}
	}
	return out
}
