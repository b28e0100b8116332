package codegen

import (
	"strings"
	"testing"

	"github.com/pixie-sh/oapigen/internal/analyze"
	"github.com/pixie-sh/oapigen/internal/spec"
)

const petstoreSpec = `{
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
          "200": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}},
          "404": {}
        }
      }
    },
    "/pets": {
      "post": {
        "operationId": "createPet",
        "requestBody": {
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/NewPet"}}}
        },
        "responses": {"204": {}}
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "allOf": [
          {"$ref": "#/components/schemas/NewPet"},
          {"type": "object", "required": ["id"], "properties": {"id": {"type": "integer", "format": "int64"}}}
        ]
      },
      "NewPet": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "tag": {"type": "string", "nullable": true}
        }
      },
      "Shape": {
        "oneOf": [
          {"$ref": "#/components/schemas/NewPet"},
          {"type": "object", "properties": {"id": {"type": "integer"}}}
        ]
      }
    }
  }
}`

func mustAnalyze(t *testing.T) *analyze.AnalysisResult {
	t.Helper()
	result, err := analyze.New().Run([]byte(petstoreSpec), spec.Config{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

func TestWriteTypesStructAndComposite(t *testing.T) {
	result := mustAnalyze(t)
	var buf strings.Builder
	if err := WriteTypes(result, "petstore").Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"type NewPet struct",
		"Name string",
		"type Pet struct",
		"type Shape struct",
		"func (t *Shape) UnmarshalJSON",
		"func (t Shape) MarshalJSON",
		"type GetPetResponse struct",
		"func (r GetPetResponse) Status() string",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated types missing %q\n--- output ---\n%s", want, out)
		}
	}
}

func TestWriteClientHasOperationMethods(t *testing.T) {
	result := mustAnalyze(t)
	var buf strings.Builder
	if err := WriteClient(result, "petstore", "").Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"type Client interface",
		"GetPet(ctx context.Context, pet_id string) (GetPetResponse, error)",
		"CreatePet(ctx context.Context, body NewPet) (struct{}, error)",
		"type UnexpectedResponse struct",
		"func (c *HTTPClient) GetPet(",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated client missing %q\n--- output ---\n%s", want, out)
		}
	}
}

func TestWriteClientEmitsDefaultBaseURL(t *testing.T) {
	result := mustAnalyze(t)
	var buf strings.Builder
	if err := WriteClient(result, "petstore", "https://api.example.com").Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`DefaultBaseURL = "https://api.example.com"`,
		`baseURL == ""`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated client missing %q\n--- output ---\n%s", want, out)
		}
	}
}

func TestWriteServerHasDispatch(t *testing.T) {
	result := mustAnalyze(t)
	var buf strings.Builder
	if err := WriteServer(result, "petstore").Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"type Handlers interface",
		"func Dispatch(handlers Handlers) http.HandlerFunc",
		`segments[0] == "pets"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated server missing %q\n--- output ---\n%s", want, out)
		}
	}
}
