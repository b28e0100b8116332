package codegen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/pixie-sh/oapigen/internal/analyze"
)

// WriteServer renders the Handlers interface and a single dispatch
// function that matches a request's path and method against every
// operation and calls the corresponding Handlers method.
func WriteServer(result *analyze.AnalysisResult, packageName string) *jen.File {
	f := jen.NewFile(packageName)
	f.HeaderComment("Code generated by oapigen. DO NOT EDIT.")

	ops := result.Operations()

	var methods []jen.Code
	for _, o := range ops {
		methods = append(methods, operationSignature(o))
	}
	f.Type().Id("Handlers").Interface(methods...)
	f.Line()

	writeDispatch(f, ops)

	return f
}

// pathGroup is one distinct path shape (by segment/parameter layout) and
// every operation registered against it.
type pathGroup struct {
	key  string
	path []analyze.SegmentOrParameter
	ops  []analyze.OperationDef
}

// groupByPath buckets operations sharing an identical path shape, in the
// order each shape is first seen — operations() is already sorted by path
// then method, so this reproduces the original's BTreeMap<path, Vec<Op>>
// grouping without needing one here.
func groupByPath(ops []analyze.OperationDef) []pathGroup {
	index := map[string]int{}
	var groups []pathGroup
	for _, o := range ops {
		key := pathKey(o.Path)
		if i, ok := index[key]; ok {
			groups[i].ops = append(groups[i].ops, o)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, pathGroup{key: key, path: o.Path, ops: []analyze.OperationDef{o}})
	}
	return groups
}

// pathKey collapses a path's parameter names away, since the router only
// needs to know the shape (literal segment vs. any segment) to decide
// whether a request path matches; parameter names come back out of the
// matched group's own operations.
func pathKey(path []analyze.SegmentOrParameter) string {
	var b strings.Builder
	for _, seg := range path {
		if s, ok := seg.AsSegment(); ok {
			b.WriteString("/")
			b.WriteString(s)
			continue
		}
		b.WriteString("/{}")
	}
	return b.String()
}

// writeDispatch emits Dispatch(handlers Handlers) http.HandlerFunc: split
// the request path into segments, match against each distinct path shape
// (length plus per-position literal comparison — the Go-idiomatic
// rendition of the original's slice pattern match), then switch on method
// within the matched group.
func writeDispatch(f *jen.File, ops []analyze.OperationDef) {
	groups := groupByPath(ops)

	var body []jen.Code
	body = append(body,
		jen.Id("segments").Op(":=").Qual("strings", "Split").Call(
			jen.Qual("strings", "Trim").Call(jen.Id("r").Dot("URL").Dot("Path"), jen.Lit("/")),
			jen.Lit("/"),
		),
	)

	var outerCases []jen.Code
	for _, g := range groups {
		outerCases = append(outerCases, jen.Case(pathShapeCondition(g.path)).Block(append(writePathGroupBody(g), jen.Return())...))
	}
	body = append(body, jen.Switch().Block(outerCases...))
	body = append(body, jen.Qual("net/http", "NotFound").Call(jen.Id("w"), jen.Id("r")))

	f.Func().Id("Dispatch").Params(jen.Id("handlers").Id("Handlers")).Qual("net/http", "HandlerFunc").Block(
		jen.Return(jen.Func().Params(
			jen.Id("w").Qual("net/http", "ResponseWriter"),
			jen.Id("r").Op("*").Qual("net/http", "Request"),
		).Block(body...)),
	)
	f.Line()
}

// pathShapeCondition renders the boolean matching this path's segment
// count and every literal segment at its position; parameter positions
// impose no constraint beyond existing.
func pathShapeCondition(path []analyze.SegmentOrParameter) jen.Code {
	cond := jen.Len(jen.Id("segments")).Op("==").Lit(len(path))
	for i, seg := range path {
		if s, ok := seg.AsSegment(); ok {
			cond = cond.Op("&&").Id("segments").Index(jen.Lit(i)).Op("==").Lit(s)
		}
	}
	return cond
}

// writePathGroupBody emits the method switch for every operation sharing
// one path shape, with a trailing MethodNotAllowed default.
func writePathGroupBody(g pathGroup) []jen.Code {
	var cases []jen.Code
	for _, o := range g.ops {
		cases = append(cases, jen.Case(jen.Lit(o.Method)).Block(writeOperationHandlerBody(g.path, o)...))
	}
	cases = append(cases, jen.Default().Block(
		jen.Qual("net/http", "Error").Call(jen.Id("w"), jen.Lit("method not allowed"), jen.Qual("net/http", "StatusMethodNotAllowed")),
	))

	return []jen.Code{
		jen.Switch(jen.Id("r").Dot("Method")).Block(cases...),
	}
}

// writeOperationHandlerBody parses path parameters out of the matched
// segments, parses any query parameters, decodes a request body when the
// operation expects one, calls the handler, and writes the response.
func writeOperationHandlerBody(path []analyze.SegmentOrParameter, o analyze.OperationDef) []jen.Code {
	var stmts []jen.Code

	var args []jen.Code
	for i, seg := range path {
		name, ok := seg.AsParameter()
		if !ok {
			continue
		}
		pd, found := o.ParamByName(name, "path")
		if !found {
			continue
		}
		stmts = append(stmts, parseScalarParam(pd.Name, pd.SchemaType, jen.Id("segments").Index(jen.Lit(i)))...)
		args = append(args, jen.Id(pd.Name))
	}

	for _, pd := range o.QueryParams() {
		raw := jen.Id("r").Dot("URL").Dot("Query").Call().Dot("Get").Call(jen.Lit(pd.Name))
		stmts = append(stmts, parseScalarParam(pd.Name, pd.SchemaType, raw)...)
		args = append(args, jen.Id(pd.Name))
	}

	if o.RequestBody != nil {
		stmts = append(stmts,
			jen.Var().Id("body").Add(typeCode(*o.RequestBody)),
			jen.If(
				jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("r").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("body")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Qual("net/http", "Error").Call(jen.Id("w"), jen.Err().Dot("Error").Call(), jen.Qual("net/http", "StatusBadRequest")),
				jen.Return(),
			),
		)
		args = append(args, jen.Id("body"))
	}

	callArgs := append([]jen.Code{jen.Id("r").Dot("Context").Call()}, args...)
	// A single body-less response writes only its status, so the handler's
	// return value is discarded rather than bound to an unused variable.
	responseVar := "response"
	if len(o.Responses) == 1 && o.Responses[0].BodyType == nil {
		responseVar = "_"
	}
	stmts = append(stmts,
		jen.List(jen.Id(responseVar), jen.Err()).Op(":=").Id("handlers").Dot(pascalCase(o.Name)).Call(callArgs...),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Qual("net/http", "Error").Call(jen.Id("w"), jen.Err().Dot("Error").Call(), jen.Qual("net/http", "StatusInternalServerError")),
			jen.Return(),
		),
	)

	stmts = append(stmts, writeResponseEncode(o)...)
	return stmts
}

// parseScalarParam converts a string parameter's raw text (a path segment
// or a query value) into its declared schema type, returning a 400 on
// failure.
func parseScalarParam(name, schemaType string, raw jen.Code) []jen.Code {
	badRequest := []jen.Code{
		jen.Qual("net/http", "Error").Call(jen.Id("w"), jen.Err().Dot("Error").Call(), jen.Qual("net/http", "StatusBadRequest")),
		jen.Return(),
	}

	switch schemaType {
	case "bool":
		return []jen.Code{
			jen.List(jen.Id(name), jen.Err()).Op(":=").Qual("strconv", "ParseBool").Call(raw),
			jen.If(jen.Err().Op("!=").Nil()).Block(badRequest...),
		}
	case "int32", "int64":
		bitSize := 64
		if schemaType == "int32" {
			bitSize = 32
		}
		return []jen.Code{
			jen.List(jen.Id(name+"Raw"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(raw, jen.Lit(10), jen.Lit(bitSize)),
			jen.If(jen.Err().Op("!=").Nil()).Block(badRequest...),
			jen.Id(name).Op(":=").Id(schemaType).Call(jen.Id(name + "Raw")),
		}
	case "float32", "float64":
		bitSize := 64
		if schemaType == "float32" {
			bitSize = 32
		}
		return []jen.Code{
			jen.List(jen.Id(name+"Raw"), jen.Err()).Op(":=").Qual("strconv", "ParseFloat").Call(raw, jen.Lit(bitSize)),
			jen.If(jen.Err().Op("!=").Nil()).Block(badRequest...),
			jen.Id(name).Op(":=").Id(schemaType).Call(jen.Id(name + "Raw")),
		}
	default:
		return []jen.Code{jen.Id(name).Op(":=").Add(raw)}
	}
}

// writeResponseEncode renders the response-writing half of the handler:
// a single response writes its status and body (if any) directly; more
// than one possible response switches on which envelope field the handler
// populated.
func writeResponseEncode(o analyze.OperationDef) []jen.Code {
	if len(o.Responses) == 1 {
		rc := o.Responses[0]
		if rc.BodyType == nil {
			return []jen.Code{jen.Id("w").Dot("WriteHeader").Call(jen.Lit(statusCode(rc.Status)))}
		}
		return []jen.Code{
			jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
			jen.Id("w").Dot("WriteHeader").Call(jen.Lit(statusCode(rc.Status))),
			jen.Qual("encoding/json", "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(jen.Id("response")),
		}
	}

	var cases []jen.Code
	for _, rc := range o.Responses {
		fieldName := "S" + rc.Status
		if rc.BodyType == nil {
			cases = append(cases, jen.Case(jen.Id("response").Dot(fieldName).Op("!=").Nil()).Block(
				jen.Id("w").Dot("WriteHeader").Call(jen.Lit(statusCode(rc.Status))),
			))
			continue
		}
		cases = append(cases, jen.Case(jen.Id("response").Dot(fieldName).Op("!=").Nil()).Block(
			jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
			jen.Id("w").Dot("WriteHeader").Call(jen.Lit(statusCode(rc.Status))),
			jen.Qual("encoding/json", "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(jen.Id("response").Dot(fieldName)),
		))
	}

	return []jen.Code{jen.Switch().Block(cases...)}
}
