// Package codegen turns an analyzed spec into Go source, one jen.File per
// concern (types, client, server), mirroring the three-writer split of
// the generator this package is modeled on.
package codegen

import (
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"

	"github.com/pixie-sh/oapigen/internal/analyze"
)

// pascalCase exports a renamer-derived snake_case identifier as a Go field
// or type name.
func pascalCase(s string) string {
	return strcase.ToCamel(s)
}

// statusCode parses a response's status string into an HTTP status code;
// "default" (and anything else non-numeric) maps to 500, matching the
// original's own fallback (status_code.parse().unwrap_or(500)).
func statusCode(status string) int {
	n := 0
	for _, c := range status {
		if c < '0' || c > '9' {
			return 500
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 500
	}
	return n
}

// operationParams builds the parameter list shared by the Client and
// Handlers interface signatures: path parameters in path order, then query
// parameters sorted by name, then an optional body parameter, always
// preceded by a context.Context.
func operationParams(o analyze.OperationDef) []jen.Code {
	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	for _, p := range o.PathParams() {
		params = append(params, jen.Id(p.Name).Add(typeCode(p.SchemaType)))
	}
	for _, p := range o.QueryParams() {
		params = append(params, jen.Id(p.Name).Add(typeCode(p.SchemaType)))
	}
	if o.RequestBody != nil {
		params = append(params, jen.Id("body").Add(typeCode(*o.RequestBody)))
	}
	return params
}

// operationSignature renders "Name(ctx context.Context, ...) (Response, error)"
// as interface-method code, shared verbatim by the Client and Handlers
// interfaces so a single concrete implementation can satisfy both.
func operationSignature(o analyze.OperationDef) jen.Code {
	return jen.Id(pascalCase(o.Name)).Params(operationParams(o)...).Params(typeCode(o.Response), jen.Error())
}

// typeCode turns a type expression produced by analyze.NameType ("Pet",
// "*Pet", "[]Pet", "json.RawMessage", "struct{}", ...) into jen code,
// recursing through slice/pointer prefixes so jen still owns the import for
// the one case (encoding/json.RawMessage) that needs one.
func typeCode(expr string) jen.Code {
	switch {
	case strings.HasPrefix(expr, "[]"):
		return jen.Index().Add(typeCode(expr[2:]))
	case strings.HasPrefix(expr, "*"):
		return jen.Op("*").Add(typeCode(expr[1:]))
	case expr == "json.RawMessage":
		return jen.Qual("encoding/json", "RawMessage")
	default:
		return jen.Id(expr)
	}
}
