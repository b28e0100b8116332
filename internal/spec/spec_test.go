package spec

import "testing"

const petstoreFragment = `{
  "openapi": "3.0.0",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "paths": {
    "/pets/{petId}": {
      "get": {
        "operationId": "getPet",
        "parameters": [
          {"name": "petId", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}}
        }
      }
    },
    "/pets": {
      "get": {
        "operationId": "listPets",
        "responses": {
          "200": {"content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/Pet"}}}}}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "allOf": [
          {"$ref": "#/components/schemas/PetBase"},
          {"type": "object", "properties": {"tag": {"type": "string"}}}
        ]
      },
      "PetBase": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "integer", "format": "int64"},
          "name": {"type": "string"}
        }
      }
    }
  }
}`

func TestParseSpecAndOperationsOrder(t *testing.T) {
	s, err := ParseSpec([]byte(petstoreFragment), Config{})
	if err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}

	ops := s.Operations()
	if len(ops) != 2 {
		t.Fatalf("Operations() len = %d, want 2", len(ops))
	}
	// "/pets" sorts before "/pets/{petId}" lexicographically.
	if ops[0].Path != "/pets" || ops[1].Path != "/pets/{petId}" {
		t.Errorf("Operations() order = [%s, %s], want [/pets, /pets/{petId}]", ops[0].Path, ops[1].Path)
	}
}

func TestResolveSchemaRef(t *testing.T) {
	s, err := ParseSpec([]byte(petstoreFragment), Config{})
	if err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}

	ref := s.Components.Schemas["Pet"]
	resolved, err := ResolveSchema(ref, s)
	if err != nil {
		t.Fatalf("ResolveSchema() error = %v", err)
	}
	if len(resolved.AllOf) != 2 {
		t.Errorf("resolved.AllOf len = %d, want 2", len(resolved.AllOf))
	}

	petBaseRef, err := ResolveSchema(resolved.AllOf[0], s)
	if err != nil {
		t.Fatalf("ResolveSchema(allOf[0]) error = %v", err)
	}
	if !petBaseRef.IsType(TypeObject) {
		t.Errorf("PetBase type = %v, want object", petBaseRef.Type)
	}
}

func TestResolveSchemaRefUnresolvable(t *testing.T) {
	o := ObjectOrReference[Schema]{Ref: "#/components/schemas/Missing"}
	s := &Spec{Components: Components{Schemas: map[string]ObjectOrReference[Schema]{}}}
	_, err := ResolveSchema(o, s)
	refErr, ok := err.(*RefError)
	if !ok {
		t.Fatalf("error type = %T, want *RefError", err)
	}
	if refErr.Kind != Unresolvable {
		t.Errorf("Kind = %v, want Unresolvable", refErr.Kind)
	}
}

func TestResolveSchemaRefMismatchedType(t *testing.T) {
	o := ObjectOrReference[Schema]{Ref: "#/components/parameters/Foo"}
	s := &Spec{}
	_, err := ResolveSchema(o, s)
	refErr, ok := err.(*RefError)
	if !ok {
		t.Fatalf("error type = %T, want *RefError", err)
	}
	if refErr.Kind != MismatchedType {
		t.Errorf("Kind = %v, want MismatchedType", refErr.Kind)
	}
}

func TestStrictFieldsRejectsUnknownKeyword(t *testing.T) {
	const withPattern = `{
      "openapi": "3.0.0",
      "info": {"title": "x", "version": "1.0.0"},
      "paths": {},
      "components": {
        "schemas": {
          "Pet": {"type": "string", "pattern": "^[a-z]+$"}
        }
      }
    }`

	_, err := ParseSpec([]byte(withPattern), Config{StrictFields: true})
	if err == nil {
		t.Fatal("ParseSpec() error = nil, want ErrUnsupportedField")
	}
	fieldErr, ok := err.(*ErrUnsupportedField)
	if !ok {
		t.Fatalf("error type = %T, want *ErrUnsupportedField", err)
	}
	if fieldErr.Field != "pattern" {
		t.Errorf("Field = %q, want %q", fieldErr.Field, "pattern")
	}
}

func TestObjectOrReferenceUnmarshal(t *testing.T) {
	var ref ObjectOrReference[Schema]
	if err := ref.UnmarshalJSON([]byte(`{"$ref": "#/components/schemas/Pet"}`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if !ref.IsRef() || ref.Ref != "#/components/schemas/Pet" {
		t.Errorf("ref = %+v, want IsRef() with Ref set", ref)
	}

	var obj ObjectOrReference[Schema]
	if err := obj.UnmarshalJSON([]byte(`{"type": "string"}`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if obj.IsRef() || obj.Object == nil || !obj.Object.IsType(TypeString) {
		t.Errorf("obj = %+v, want inline string schema", obj)
	}
}
