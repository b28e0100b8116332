package pointer

import "testing"

func TestParseAndString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"root", "", ""},
		{"simple", "/components/schemas/Pet", "/components/schemas/Pet"},
		{"escaped-tilde", "/a~0b", "/a~0b"},
		{"escaped-slash", "/a~1b", "/a~1b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got := p.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse("components/schemas/Pet"); err != ErrMalformed {
		t.Errorf("Parse() error = %v, want ErrMalformed", err)
	}
}

func TestPushDoesNotMutateReceiver(t *testing.T) {
	base := New("components", "schemas")
	child1 := base.Push("Pet")
	child2 := base.Push("Order")

	if got := child1.String(); got != "/components/schemas/Pet" {
		t.Errorf("child1 = %q, want /components/schemas/Pet", got)
	}
	if got := child2.String(); got != "/components/schemas/Order" {
		t.Errorf("child2 = %q, want /components/schemas/Order", got)
	}
	if got := base.String(); got != "/components/schemas" {
		t.Errorf("base mutated: got %q, want /components/schemas", got)
	}
}

func TestResolve(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{
					"type": "object",
				},
			},
		},
		"list": []any{"a", "b", "c"},
	}

	ptr := New("components", "schemas", "Pet", "type")
	v, ok := ptr.Resolve(doc)
	if !ok {
		t.Fatalf("Resolve() ok = false, want true")
	}
	if v != "object" {
		t.Errorf("Resolve() = %v, want %q", v, "object")
	}

	if _, ok := New("missing", "path").Resolve(doc); ok {
		t.Errorf("Resolve() for missing path ok = true, want false")
	}

	idxPtr := New("list", "1")
	v, ok = idxPtr.Resolve(doc)
	if !ok || v != "b" {
		t.Errorf("Resolve(list/1) = %v, %v, want \"b\", true", v, ok)
	}
}

func TestHasPrefix(t *testing.T) {
	p := New("components", "schemas", "Pet")
	if !p.HasPrefix("/components/") {
		t.Errorf("HasPrefix(/components/) = false, want true")
	}
	if p.HasPrefix("/paths/") {
		t.Errorf("HasPrefix(/paths/) = true, want false")
	}
}
