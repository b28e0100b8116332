// Package pointer implements RFC 6901 JSON Pointers, used throughout the
// generator as the stable identity of a schema location within a spec
// document.
package pointer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// ErrMalformed is returned by Parse when a pointer string doesn't start
// with "/" (and isn't the empty root pointer).
var ErrMalformed = errors.New("pointer: malformed, must start with \"/\"")

// Pointer is an immutable sequence of reference tokens. The zero value is
// the root pointer ("").
type Pointer struct {
	tokens []string
}

// Root returns the pointer to the document root.
func Root() Pointer {
	return Pointer{}
}

// New builds a pointer from a slice of unescaped tokens.
func New(tokens ...string) Pointer {
	cp := make([]string, len(tokens))
	copy(cp, tokens)
	return Pointer{tokens: cp}
}

// Parse decodes a pointer string such as "/components/schemas/Pet".
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Root(), nil
	}
	if !strings.HasPrefix(s, "/") {
		return Pointer{}, ErrMalformed
	}
	parts := strings.Split(s[1:], "/")
	for i, p := range parts {
		parts[i] = unescape(p)
	}
	return Pointer{tokens: parts}, nil
}

// Push returns a new pointer with the given tokens appended. It never
// mutates the receiver, mirroring the non-destructive clone-then-push
// behavior tokens must have when a single pointer prefix is reused to build
// many children (each worklist entry needs its own independent copy).
func (p Pointer) Push(tokens ...string) Pointer {
	next := make([]string, len(p.tokens)+len(tokens))
	copy(next, p.tokens)
	copy(next[len(p.tokens):], tokens)
	return Pointer{tokens: next}
}

// Tokens returns the pointer's raw, unescaped tokens.
func (p Pointer) Tokens() []string {
	return p.tokens
}

// IsRoot reports whether this is the root pointer.
func (p Pointer) IsRoot() bool {
	return len(p.tokens) == 0
}

// String renders the pointer using RFC 6901 escaping ("~0" for "~", "~1"
// for "/").
func (p Pointer) String() string {
	if len(p.tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(escape(t))
	}
	return b.String()
}

func escape(tok string) string {
	return jsonpointer.Escape(tok)
}

func unescape(tok string) string {
	return jsonpointer.Unescape(tok)
}

// Resolve walks a decoded JSON document (as produced by encoding/json into
// map[string]any / []any / scalars) and returns the value at this pointer.
//
// jsonpointer.Pointer's own Get expects a JSONPointable implementation
// rather than plain decoded trees, so resolution against a spec's decoded
// form is done here directly instead.
func (p Pointer) Resolve(doc any) (any, bool) {
	cur := doc
	for _, tok := range p.tokens {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[tok]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// HasPrefix reports whether the pointer's string form starts with prefix,
// matching the original's ptr.starts_with("/components/") dispatch check.
func (p Pointer) HasPrefix(prefix string) bool {
	return strings.HasPrefix(p.String(), prefix)
}
