package codegen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/pixie-sh/oapigen/internal/analyze"
	"github.com/pixie-sh/oapigen/internal/spec"
)

// WriteTypes renders every schema the analyzer collected, plus one sum-type
// envelope per operation with more than one possible response, as Go type
// declarations.
func WriteTypes(result *analyze.AnalysisResult, packageName string) *jen.File {
	f := jen.NewFile(packageName)
	f.HeaderComment("Code generated by oapigen. DO NOT EDIT.")

	for _, cs := range result.Schemas() {
		writeType(f, result, cs)
	}

	for _, o := range result.Operations() {
		if len(o.Responses) > 1 {
			writeResponseEnvelope(f, o)
		}
	}

	return f
}

func writeType(f *jen.File, result *analyze.AnalysisResult, cs analyze.CollectedSchema) {
	switch {
	case len(cs.Schema.AllOf) > 0:
		writeComposite(f, result, cs, cs.Schema.AllOf, true)
	case len(cs.Schema.AnyOf) > 0:
		writeComposite(f, result, cs, cs.Schema.AnyOf, false)
	case len(cs.Schema.OneOf) > 0:
		writeOneOf(f, result, cs)
	case cs.Schema.IsType(spec.TypeObject):
		writeStruct(f, result, cs)
	}
}

// writeStruct emits one exported struct per object schema: required
// properties as plain fields, everything else wrapped in a pointer unless
// it's already a slice (already nilable) or pointer (nullable scalar).
func writeStruct(f *jen.File, result *analyze.AnalysisResult, cs analyze.CollectedSchema) {
	required := cs.Schema.RequiredSet()

	var fields []jen.Code
	for _, name := range cs.Schema.SortedPropertyNames() {
		prop := cs.Schema.Properties[name]
		ptr := cs.Location.Push("properties", name)
		fieldType := result.NameType(ptr, prop)

		_, isRequired := required[name]
		fieldType = optionalWrap(fieldType, isRequired)

		jsonTag := name
		if !isRequired {
			jsonTag += ",omitempty"
		}

		goName := pascalCase(result.Renamer().NameProperty(name))
		fields = append(fields, jen.Id(goName).Add(typeCode(fieldType)).Tag(map[string]string{"json": jsonTag}))
	}

	f.Type().Id(cs.Name).Struct(fields...)
	f.Line()
}

// optionalWrap adds a pointer wrap for non-required properties, unless the
// field type is already nilable on its own (a slice) or already a pointer
// (an inline nullable scalar NameType already wrapped).
func optionalWrap(fieldType string, required bool) string {
	if required || strings.HasPrefix(fieldType, "[]") || strings.HasPrefix(fieldType, "*") {
		return fieldType
	}
	return "*" + fieldType
}

// writeComposite emits the Go-native substitute for serde's
// #[serde(flatten)]: each allOf/anyOf branch becomes an anonymous
// (embedded) struct field, which encoding/json promotes and merges
// automatically. allOf branches are required (embedded by value); anyOf
// branches are optional (embedded by pointer), since any subset of them may
// be present.
func writeComposite(f *jen.File, result *analyze.AnalysisResult, cs analyze.CollectedSchema, branches []spec.ObjectOrReference[spec.Schema], allRequired bool) {
	keyword := "anyOf"
	if allRequired {
		keyword = "allOf"
	}

	var fields []jen.Code
	for i, branch := range branches {
		ptr := cs.Location.Push(keyword, fmt.Sprintf("%d", i))
		branchType := result.NameType(ptr, branch)
		if !allRequired {
			branchType = optionalWrap(branchType, false)
		}
		fields = append(fields, typeCode(branchType))
	}

	f.Type().Id(cs.Name).Struct(fields...)
	f.Line()
}

// writeOneOf emits the nearest Go idiom for serde's untagged enum: a
// wrapper struct with one optional field per branch, and a custom
// (Un)MarshalJSON that tries each branch in order and keeps whichever one
// decodes without error (UnmarshalJSON), or marshals whichever branch is
// set (MarshalJSON).
func writeOneOf(f *jen.File, result *analyze.AnalysisResult, cs analyze.CollectedSchema) {
	type branch struct {
		field string
		typ   string
	}
	var branches []branch
	for i, b := range cs.Schema.OneOf {
		ptr := cs.Location.Push("oneOf", fmt.Sprintf("%d", i))
		branches = append(branches, branch{
			field: fmt.Sprintf("V%d", i),
			typ:   result.NameType(ptr, b),
		})
	}

	var fields []jen.Code
	for _, b := range branches {
		fields = append(fields, jen.Id(b.field).Add(typeCode("*"+b.typ)))
	}
	f.Type().Id(cs.Name).Struct(fields...)
	f.Line()

	var unmarshalBody []jen.Code
	for i, b := range branches {
		varName := fmt.Sprintf("v%d", i)
		unmarshalBody = append(unmarshalBody,
			jen.Var().Id(varName).Add(typeCode(b.typ)),
			jen.If(
				jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id(varName)),
				jen.Err().Op("==").Nil(),
			).Block(
				jen.Id("t").Dot(b.field).Op("=").Op("&").Id(varName),
				jen.Return(jen.Nil()),
			),
		)
	}
	unmarshalBody = append(unmarshalBody, jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(cs.Name+": no oneOf branch matched"))))

	f.Func().Params(jen.Id("t").Op("*").Id(cs.Name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(unmarshalBody...)
	f.Line()

	var cases []jen.Code
	for _, b := range branches {
		cases = append(cases, jen.Case(jen.Id("t").Dot(b.field).Op("!=").Nil()).Block(
			jen.Return(jen.Qual("encoding/json", "Marshal").Call(jen.Id("t").Dot(b.field))),
		))
	}
	marshalBody := []jen.Code{
		jen.Switch().Block(cases...),
		jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(cs.Name+": no oneOf branch set"))),
	}
	f.Func().Params(jen.Id("t").Id(cs.Name)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(marshalBody...)
	f.Line()
}

// writeResponseEnvelope emits the sum type synthesized for an operation
// with more than one possible response: one optional field per status
// code, and a Status accessor reporting which one the handler populated.
// Unlike writeOneOf's wrapper, this type is never decoded generically from
// the wire — every call site that builds or matches one names the exact
// status field, so no custom (Un)MarshalJSON is needed here.
func writeResponseEnvelope(f *jen.File, o analyze.OperationDef) {
	var fields []jen.Code
	var cases []jen.Code
	for _, rc := range o.Responses {
		fieldName := "S" + rc.Status
		if rc.BodyType != nil {
			fields = append(fields, jen.Id(fieldName).Add(typeCode(optionalWrap(*rc.BodyType, false))))
		} else {
			fields = append(fields, jen.Id(fieldName).Op("*").Bool())
		}
		cases = append(cases, jen.Case(jen.Id("r").Dot(fieldName).Op("!=").Nil()).Block(
			jen.Return(jen.Lit(rc.Status)),
		))
	}

	f.Type().Id(o.Response).Struct(fields...)
	f.Line()

	f.Func().Params(jen.Id("r").Id(o.Response)).Id("Status").Params().String().Block(
		jen.Switch().Block(cases...),
		jen.Return(jen.Lit("")),
	)
	f.Line()
}
