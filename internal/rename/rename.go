// Package rename derives Go identifiers from JSON Pointer locations within
// an OpenAPI document. The mapping is pure: the same (document, pointer)
// pair always yields the same name, which is what lets the analyzer name
// a schema once and have every later reference agree.
package rename

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/pixie-sh/oapigen/internal/pointer"
)

// Renamer derives identifiers for generated types, operations, struct
// fields, and function parameters.
type Renamer interface {
	NameType(spec any, ptr pointer.Pointer) string
	NameOperation(spec any, ptr pointer.Pointer) string
	NameProperty(name string) string
	NameParameter(name string) string
}

var (
	operationRegex            = regexp.MustCompile(`^/paths/([^/]+)/([^/]+)`)
	operationRequestBodyRegex = regexp.MustCompile(`^/paths/([^/]+)/([^/]+)/requestBody/content/([^/]+)/schema$`)
	operationParameterRegex   = regexp.MustCompile(`^/paths/([^/]+)/([^/]+)/parameters/([^/]+)/schema$`)
	operationResponseRegex    = regexp.MustCompile(`^/paths/([^/]+)/([^/]+)/responses/([^/]+)/content/([^/]+)/schema$`)

	schemaComponentRegex      = regexp.MustCompile(`^/components/schemas/([^/]+)$`)
	requestBodyComponentRegex = regexp.MustCompile(`^/components/requestBodies/([^/]+)/content/([^/]+)/schema$`)
	parameterComponentRegex   = regexp.MustCompile(`^/components/parameters/([^/]+)/schema$`)
	responseComponentRegex    = regexp.MustCompile(`^/components/responses/([^/]+)/content/([^/]+)/schema$`)

	schemaPropertyRegex  = regexp.MustCompile(`(.+)/properties/([^/]+)$`)
	schemaItemsRegex     = regexp.MustCompile(`(.+)/items$`)
	schemaCompositeRegex = regexp.MustCompile(`(.+)/(anyOf|allOf|oneOf)/([0-9]+)$`)
)

// DefaultRenamer is the generator's only Renamer implementation. It is kept
// as an interface/implementation pair (rather than a set of free
// functions) so a caller wiring a custom naming scheme has a seam to
// implement against.
type DefaultRenamer struct{}

// pascalAlphanumeric converts s to PascalCase and strips anything left
// that isn't an ASCII letter or digit, so names survive JSON keys containing
// spaces, punctuation, or other non-identifier characters.
func pascalAlphanumeric(s string) string {
	pascal := strcase.ToCamel(s)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, pascal)
}

func (DefaultRenamer) operationNameFromCaptures(spec any, path, method string) string {
	ptr := pointer.New("paths", path, method)
	return DefaultRenamer{}.NameOperation(spec, ptr)
}

// NameOperation derives an operation's name: operationId verbatim
// (Pascal-cased) when the spec sets one, otherwise "{Method}{PathSegments}"
// built from the path template with parameter braces stripped.
func (r DefaultRenamer) NameOperation(spec any, ptr pointer.Pointer) string {
	if node, ok := ptr.Resolve(spec); ok {
		if m, ok := node.(map[string]any); ok {
			if id, ok := m["operationId"].(string); ok && id != "" {
				return pascalAlphanumeric(id)
			}
		}
	}

	m := operationRegex.FindStringSubmatch(ptr.String())
	if m == nil {
		panic(fmt.Sprintf("pointer %q is not an operation pointer", ptr.String()))
	}
	path, method := m[1], m[2]

	pathName := ""
	for _, segment := range strings.Split(path, "~1") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			segment = segment[1 : len(segment)-1]
		}
		pathName += capitalizeFirst(segment)
	}

	return pascalAlphanumeric(method) + pascalAlphanumeric(pathName)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NameType is the 10-rule pointer dispatch: component collections first,
// then operation-scoped request bodies/parameters/responses, then the
// structural rules (property, items, composite branch) that recurse on
// their parent pointer.
func (r DefaultRenamer) NameType(spec any, ptr pointer.Pointer) string {
	s := ptr.String()

	if ptr.HasPrefix("/components/") {
		if m := schemaComponentRegex.FindStringSubmatch(s); m != nil {
			return pascalAlphanumeric(m[1])
		}
		if m := requestBodyComponentRegex.FindStringSubmatch(s); m != nil {
			return pascalAlphanumeric(m[1])
		}
		if m := parameterComponentRegex.FindStringSubmatch(s); m != nil {
			return pascalAlphanumeric(m[1])
		}
		if m := responseComponentRegex.FindStringSubmatch(s); m != nil {
			return pascalAlphanumeric(m[1])
		}
	}

	if m := operationRequestBodyRegex.FindStringSubmatch(s); m != nil {
		return r.operationNameFromCaptures(spec, m[1], m[2]) + "Request"
	}

	if m := operationParameterRegex.FindStringSubmatch(s); m != nil {
		operationName := r.operationNameFromCaptures(spec, m[1], m[2])
		return fmt.Sprintf("%sParameter%s", operationName, m[3])
	}

	if m := operationResponseRegex.FindStringSubmatch(s); m != nil {
		operationName := r.operationNameFromCaptures(spec, m[1], m[2])
		return fmt.Sprintf("%sResponse%s", operationName, m[3])
	}

	if m := schemaPropertyRegex.FindStringSubmatch(s); m != nil {
		parent, _ := pointer.Parse(m[1])
		parentName := r.NameType(spec, parent)
		return parentName + pascalAlphanumeric(m[2])
	}

	if m := schemaItemsRegex.FindStringSubmatch(s); m != nil {
		parent, _ := pointer.Parse(m[1])
		parentName := r.NameType(spec, parent)
		return parentName + "Item"
	}

	if m := schemaCompositeRegex.FindStringSubmatch(s); m != nil {
		parent, _ := pointer.Parse(m[1])
		parentName := r.NameType(spec, parent)
		return fmt.Sprintf("%sV%s", parentName, m[3])
	}

	panic(fmt.Sprintf("pointer %q does not match any naming rule", s))
}

// NameProperty converts a JSON property name to an idiomatic Go field
// name's snake_case source form (the writer Pascal-cases it again for
// export); kept snake_case here to match struct tag conventions when a
// property's JSON name and Go name diverge only in case.
func (r DefaultRenamer) NameProperty(name string) string {
	return strcase.ToSnake(name)
}

// NameParameter converts an operation parameter name to snake_case for use
// as a Go function parameter.
func (r DefaultRenamer) NameParameter(name string) string {
	return strcase.ToSnake(name)
}
