package rename

import (
	"encoding/json"
	"testing"

	"github.com/pixie-sh/oapigen/internal/pointer"
)

func mustSpecValue(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return v
}

const fixture = `{
  "paths": {
    "/pets/{petId}": {
      "get": {
        "parameters": [{"name": "petId", "in": "path"}],
        "responses": {"200": {}}
      }
    },
    "/pets": {
      "get": {"operationId": "listPets", "responses": {"200": {}}}
    }
  },
  "components": {
    "schemas": {
      "Pet": {"type": "object", "properties": {"name": {"type": "string"}}}
    }
  }
}`

func TestNameOperationWithOperationId(t *testing.T) {
	r := DefaultRenamer{}
	spec := mustSpecValue(t, fixture)
	ptr := pointer.New("paths", "/pets", "get")
	got := r.NameOperation(spec, ptr)
	if got != "ListPets" {
		t.Errorf("NameOperation() = %q, want %q", got, "ListPets")
	}
}

func TestNameOperationFallsBackToPath(t *testing.T) {
	r := DefaultRenamer{}
	spec := mustSpecValue(t, fixture)
	ptr := pointer.New("paths", "/pets/{petId}", "get")
	got := r.NameOperation(spec, ptr)
	if got != "GetPetsPetId" {
		t.Errorf("NameOperation() = %q, want %q", got, "GetPetsPetId")
	}
}

func TestNameTypeComponentSchema(t *testing.T) {
	r := DefaultRenamer{}
	spec := mustSpecValue(t, fixture)
	ptr := pointer.New("components", "schemas", "Pet")
	if got := r.NameType(spec, ptr); got != "Pet" {
		t.Errorf("NameType() = %q, want %q", got, "Pet")
	}
}

func TestNameTypeProperty(t *testing.T) {
	r := DefaultRenamer{}
	spec := mustSpecValue(t, fixture)
	ptr := pointer.New("components", "schemas", "Pet", "properties", "name")
	if got := r.NameType(spec, ptr); got != "PetName" {
		t.Errorf("NameType() = %q, want %q", got, "PetName")
	}
}

func TestNameTypeCompositeBranch(t *testing.T) {
	r := DefaultRenamer{}
	spec := mustSpecValue(t, fixture)
	ptr := pointer.New("components", "schemas", "Pet", "allOf", "0")
	if got := r.NameType(spec, ptr); got != "PetV0" {
		t.Errorf("NameType() = %q, want %q", got, "PetV0")
	}
}

func TestNamePropertyAndParameterSnakeCase(t *testing.T) {
	r := DefaultRenamer{}
	if got := r.NameProperty("petId"); got != "pet_id" {
		t.Errorf("NameProperty() = %q, want %q", got, "pet_id")
	}
	if got := r.NameParameter("PetId"); got != "pet_id" {
		t.Errorf("NameParameter() = %q, want %q", got, "pet_id")
	}
}
