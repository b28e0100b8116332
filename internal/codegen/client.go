package codegen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/pixie-sh/oapigen/internal/analyze"
)

// WriteClient renders the Client interface, its UnexpectedResponse error
// type, and one concrete implementation against net/http. When
// defaultBaseURL is non-empty it is emitted as a DefaultBaseURL constant
// that NewHTTPClient falls back to when called with an empty baseURL.
func WriteClient(result *analyze.AnalysisResult, packageName, defaultBaseURL string) *jen.File {
	f := jen.NewFile(packageName)
	f.HeaderComment("Code generated by oapigen. DO NOT EDIT.")

	ops := result.Operations()

	var methods []jen.Code
	for _, o := range ops {
		methods = append(methods, operationSignature(o))
	}
	f.Type().Id("Client").Interface(methods...)
	f.Line()

	f.Type().Id("UnexpectedResponse").Struct(
		jen.Id("Method").String(),
		jen.Id("URL").String(),
		jen.Id("StatusCode").Int(),
	)
	f.Line()

	f.Func().Params(jen.Id("e").Op("*").Id("UnexpectedResponse")).Id("Error").Params().String().Block(
		jen.Return(jen.Qual("fmt", "Sprintf").Call(
			jen.Lit("unexpected status code %d from %s %s"),
			jen.Id("e").Dot("StatusCode"), jen.Id("e").Dot("Method"), jen.Id("e").Dot("URL"),
		)),
	)
	f.Line()

	if defaultBaseURL != "" {
		f.Const().Id("DefaultBaseURL").Op("=").Lit(defaultBaseURL)
		f.Line()
	}

	f.Type().Id("HTTPClient").Struct(
		jen.Id("c").Op("*").Qual("net/http", "Client"),
		jen.Id("baseURL").String(),
	)
	f.Line()

	newHTTPClientBody := []jen.Code{}
	if defaultBaseURL != "" {
		newHTTPClientBody = append(newHTTPClientBody,
			jen.If(jen.Id("baseURL").Op("==").Lit("")).Block(
				jen.Id("baseURL").Op("=").Id("DefaultBaseURL"),
			),
		)
	}
	newHTTPClientBody = append(newHTTPClientBody,
		jen.Return(jen.Op("&").Id("HTTPClient").Values(jen.Dict{
			jen.Id("c"):       jen.Id("c"),
			jen.Id("baseURL"): jen.Id("baseURL"),
		})),
	)

	f.Func().Id("NewHTTPClient").Params(
		jen.Id("c").Op("*").Qual("net/http", "Client"),
		jen.Id("baseURL").String(),
	).Op("*").Id("HTTPClient").Block(newHTTPClientBody...)
	f.Line()

	for _, o := range ops {
		writeClientMethod(f, o)
	}

	return f
}

// writeClientMethod emits one HTTPClient method: build the request URL
// (path substitution plus any query parameters), encode the body when the
// operation has one, execute it, and dispatch on the response status code.
func writeClientMethod(f *jen.File, o analyze.OperationDef) {
	var stmts []jen.Code

	stmts = append(stmts, jen.Var().Id("zero").Add(typeCode(o.Response)))
	stmts = append(stmts, buildURLStatements(o)...)

	bodyExpr := jen.Code(jen.Nil())
	if o.RequestBody != nil {
		stmts = append(stmts,
			jen.List(jen.Id("encoded"), jen.Err()).Op(":=").Qual("encoding/json", "Marshal").Call(jen.Id("body")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Id("zero"), jen.Err())),
		)
		bodyExpr = jen.Qual("bytes", "NewReader").Call(jen.Id("encoded"))
	}

	stmts = append(stmts,
		jen.List(jen.Id("req"), jen.Err()).Op(":=").Qual("net/http", "NewRequestWithContext").Call(
			jen.Id("ctx"), jen.Lit(o.Method), jen.Id("url"), bodyExpr,
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Id("zero"), jen.Err())),
	)
	if o.RequestBody != nil {
		stmts = append(stmts, jen.Id("req").Dot("Header").Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")))
	}

	stmts = append(stmts,
		jen.List(jen.Id("resp"), jen.Err()).Op(":=").Id("c").Dot("c").Dot("Do").Call(jen.Id("req")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Id("zero"), jen.Err())),
		jen.Defer().Id("resp").Dot("Body").Dot("Close").Call(),
	)

	stmts = append(stmts, writeResponseDispatch(o)...)

	f.Func().Params(jen.Id("c").Op("*").Id("HTTPClient")).Add(operationSignature(o)).Block(stmts...)
	f.Line()
}

// buildURLStatements builds the "url" variable: base URL + path-segment
// substitution, then "?"-joined query parameters via net/url.Values when
// the operation has any.
func buildURLStatements(o analyze.OperationDef) []jen.Code {
	pathExpr := "%s"
	var pathArgs []jen.Code
	for _, seg := range o.Path {
		if s, ok := seg.AsSegment(); ok {
			pathExpr += "/" + s
			continue
		}
		name, _ := seg.AsParameter()
		pathExpr += "/%v"
		pathArgs = append(pathArgs, jen.Id(paramGoName(o, name)))
	}

	urlStmt := jen.Id("url").Op(":=").Qual("fmt", "Sprintf").Call(append([]jen.Code{jen.Lit(pathExpr), jen.Id("c").Dot("baseURL")}, pathArgs...)...)

	q := o.QueryParams()
	if len(q) == 0 {
		return []jen.Code{urlStmt}
	}

	// The query values are built before the local "url" variable is
	// declared, so url.Values still refers to the net/url package.
	stmts := []jen.Code{jen.Id("q").Op(":=").Qual("net/url", "Values").Values()}
	for _, p := range q {
		stmts = append(stmts, jen.Id("q").Dot("Set").Call(jen.Lit(p.Name), jen.Qual("fmt", "Sprintf").Call(jen.Lit("%v"), jen.Id(p.Name))))
	}
	stmts = append(stmts, urlStmt, jen.Id("url").Op("+=").Lit("?").Op("+").Id("q").Dot("Encode").Call())

	return stmts
}

// paramGoName looks up a path parameter's renamer-derived Go identifier by
// its raw OpenAPI name.
func paramGoName(o analyze.OperationDef, rawName string) string {
	if pd, ok := o.ParamByName(rawName, "path"); ok {
		return pd.Name
	}
	panic(fmt.Sprintf("path parameter %q not found on operation %s", rawName, o.Name))
}

// writeResponseDispatch renders the status-code switch that decodes the
// matched response body (when the status has one) and returns it, falling
// back to UnexpectedResponse when nothing matches and the operation has no
// "default" response.
func writeResponseDispatch(o analyze.OperationDef) []jen.Code {
	var cases []jen.Code
	for _, rc := range o.Responses {
		body := responseCaseBody(o, rc)
		if rc.Status == "default" {
			cases = append(cases, jen.Default().Block(body...))
			continue
		}
		cases = append(cases, jen.Case(jen.Lit(statusCode(rc.Status))).Block(body...))
	}

	if !o.HasDefaultResponse() {
		cases = append(cases, jen.Default().Block(
			jen.Return(jen.Id("zero"), jen.Op("&").Id("UnexpectedResponse").Values(jen.Dict{
				jen.Id("Method"):     jen.Lit(o.Method),
				jen.Id("URL"):        jen.Id("url"),
				jen.Id("StatusCode"): jen.Id("resp").Dot("StatusCode"),
			})),
		))
	}

	return []jen.Code{
		jen.Switch(jen.Id("resp").Dot("StatusCode")).Block(cases...),
	}
}

// responseCaseBody renders the body of one status-code case: decode the
// JSON response (when there is one) into the operation's sole response
// type, or into the matching envelope field when the operation has more
// than one possible response.
func responseCaseBody(o analyze.OperationDef, rc analyze.ResponseCase) []jen.Code {
	single := len(o.Responses) == 1

	if rc.BodyType == nil {
		if single {
			return []jen.Code{jen.Return(jen.Id("zero"), jen.Nil())}
		}
		return []jen.Code{
			jen.Id("present").Op(":=").True(),
			jen.Return(jen.Id(o.Response).Values(jen.Dict{
				jen.Id("S" + rc.Status): jen.Op("&").Id("present"),
			}), jen.Nil()),
		}
	}

	if single {
		return []jen.Code{
			jen.Var().Id("body").Add(typeCode(*rc.BodyType)),
			jen.If(jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("resp").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("body")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Id("zero"), jen.Err()),
			),
			jen.Return(jen.Id("body"), jen.Nil()),
		}
	}

	return []jen.Code{
		jen.Var().Id("body").Add(typeCode(*rc.BodyType)),
		jen.If(jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("resp").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("body")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Id("zero"), jen.Err()),
		),
		jen.Return(jen.Id(o.Response).Values(jen.Dict{
			jen.Id("S" + rc.Status): jen.Op("&").Id("body"),
		}), jen.Nil()),
	}
}
