// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/parser"
)

// PetstoreYAML is an OAS 3.0.3 document exercising every request facet the
// validator handles:
//
//   - GET /pets: coerced query parameters with a default, a non-exploded
//     array, an allowEmptyValue parameter and a patterned header
//   - POST /pets: required JSON body with additionalProperties: false and a
//     nullable property
//   - /pets/{petId}: a $ref path parameter declared at path level and
//     operation-level bearer security
//   - PUT /pets/{petId}/photo: binary body
//   - GET /files/{path*}: wildcard path parameter
//   - GET /search: x-allow-unknown-query-parameters
//   - GET /filter: deepObject parameter accepting arbitrary properties
//   - GET /sorted: enum and a deepObject parameter with typed properties
//   - GET /me: required cookie
//   - POST /animals: discriminated oneOf body
//
// The document-level api_key scheme is an apiKey sent in the query string.
const PetstoreYAML = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0.0"
security:
  - api_key: []
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            minimum: 1
            maximum: 100
            default: 20
        - name: tags
          in: query
          style: form
          explode: false
          schema:
            type: array
            items:
              type: string
        - name: q
          in: query
          allowEmptyValue: true
          schema:
            type: string
        - name: X-Request-ID
          in: header
          schema:
            type: string
            pattern: "^[a-z0-9-]+$"
      responses:
        "200":
          description: OK
    post:
      operationId: createPet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewPet"
      responses:
        "201":
          description: Created
  /pets/{petId}:
    parameters:
      - $ref: "#/components/parameters/PetId"
    get:
      operationId: getPet
      security:
        - bearer: []
      responses:
        "200":
          description: OK
    delete:
      operationId: deletePet
      responses:
        "204":
          description: Deleted
  /pets/{petId}/photo:
    parameters:
      - $ref: "#/components/parameters/PetId"
    put:
      operationId: uploadPhoto
      requestBody:
        required: true
        content:
          application/octet-stream:
            schema:
              type: string
              format: binary
      responses:
        "204":
          description: Stored
  /files/{path*}:
    get:
      operationId: getFile
      parameters:
        - name: path
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
  /search:
    get:
      operationId: search
      x-allow-unknown-query-parameters: true
      parameters:
        - name: term
          in: query
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
  /filter:
    get:
      operationId: filter
      security: []
      parameters:
        - name: filter
          in: query
          style: deepObject
          explode: true
          schema:
            type: object
            additionalProperties: true
      responses:
        "200":
          description: OK
  /sorted:
    get:
      operationId: sorted
      parameters:
        - name: sort
          in: query
          schema:
            type: string
            enum: [asc, desc]
        - name: filter
          in: query
          style: deepObject
          schema:
            type: object
            properties:
              status:
                type: string
              minAge:
                type: integer
      responses:
        "200":
          description: OK
  /me:
    get:
      operationId: me
      parameters:
        - name: session
          in: cookie
          required: true
          schema:
            type: string
            minLength: 4
      responses:
        "200":
          description: OK
  /animals:
    post:
      operationId: createAnimal
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Animal"
      responses:
        "201":
          description: Created
components:
  parameters:
    PetId:
      name: petId
      in: path
      required: true
      schema:
        type: integer
        format: int64
  schemas:
    NewPet:
      type: object
      required: [name]
      additionalProperties: false
      properties:
        name:
          type: string
          minLength: 1
        tag:
          type: string
          nullable: true
        age:
          type: integer
          minimum: 0
    Animal:
      oneOf:
        - $ref: "#/components/schemas/Cat"
        - $ref: "#/components/schemas/Dog"
      discriminator:
        propertyName: petType
        mapping:
          cat: "#/components/schemas/Cat"
          dog: Dog
    Cat:
      type: object
      required: [petType, name]
      properties:
        petType:
          type: string
        name:
          type: string
        indoor:
          type: boolean
    Dog:
      type: object
      required: [petType, name, bark]
      properties:
        petType:
          type: string
        name:
          type: string
        bark:
          type: boolean
  securitySchemes:
    api_key:
      type: apiKey
      in: query
      name: api_key
    bearer:
      type: http
      scheme: bearer
`

// MustParse decodes an inline YAML or JSON document and fails the test on error.
func MustParse(t testing.TB, content string) *parser.Document {
	t.Helper()
	result, err := parser.ParseWithOptions(parser.WithBytes([]byte(content)))
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	return result.Document
}

// Petstore returns the decoded PetstoreYAML document.
func Petstore(t testing.TB) *parser.Document {
	t.Helper()
	return MustParse(t, PetstoreYAML)
}

// WriteTempYAML marshals a document to YAML and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary YAML file: %v", err)
	}

	return tmpFile
}

// WriteTempJSON marshals a document to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.json")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary JSON file: %v", err)
	}

	return tmpFile
}

// WritePetstore writes PetstoreYAML to a temporary file and returns its path.
func WritePetstore(t *testing.T) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "petstore.yaml")
	if err := os.WriteFile(tmpFile, []byte(PetstoreYAML), 0600); err != nil {
		t.Fatalf("Failed to write petstore: %v", err)
	}
	return tmpFile
}
