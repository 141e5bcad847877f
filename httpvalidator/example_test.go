package httpvalidator_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/parser"
)

const exampleSpec = `
openapi: "3.0.3"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
        - name: include
          in: query
          schema:
            type: string
            enum: [owner, vaccinations]
      responses:
        "200":
          description: Success
  /pets:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
      responses:
        "201":
          description: Created
`

func ExampleNew() {
	parsed, err := parser.ParseWithOptions(parser.WithBytes([]byte(exampleSpec)))
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}

	v, err := httpvalidator.New(parsed.Document)
	if err != nil {
		fmt.Println("Validator error:", err)
		return
	}

	fmt.Println("compiled validators:", v.CacheSize())
	// Output: compiled validators: 0
}

func ExampleValidator_ValidateRequest() {
	parsed, _ := parser.ParseWithOptions(parser.WithBytes([]byte(exampleSpec)))
	v, _ := httpvalidator.New(parsed.Document)

	req, _ := v.FromHTTP(httptest.NewRequest("GET", "/pets/123?include=owner", nil))
	if err := v.ValidateRequest(req); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("petId: %v (%T)\n", req.Params["petId"], req.Params["petId"])

	req, _ = v.FromHTTP(httptest.NewRequest("GET", "/pets/123?include=toys", nil))
	err := v.ValidateRequest(req)
	if reqErr, ok := httpvalidator.AsRequestError(err); ok {
		fmt.Println(reqErr.Status, reqErr.Message)
	}
	// Output:
	// petId: 123 (int64)
	// 400 request.query.include must be equal to one of the allowed values: owner, vaccinations
}

func ExampleValidator_Check() {
	parsed, _ := parser.ParseWithOptions(parser.WithBytes([]byte(exampleSpec)))
	v, _ := httpvalidator.New(parsed.Document)

	r := httptest.NewRequest("POST", "/pets", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	req, _ := v.FromHTTP(r)

	result, err := v.Check(req)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("valid:", result.Valid)
	fmt.Println("kind:", result.Kind)
	for _, e := range result.Error.Errors {
		fmt.Println(e.Path, e.Message)
	}
	// Output:
	// valid: false
	// kind: schema_validation
	// .body.name must have required property 'name'
}

func ExampleValidator_Middleware() {
	parsed, _ := parser.ParseWithOptions(parser.WithBytes([]byte(exampleSpec)))
	v, _ := httpvalidator.New(parsed.Document)

	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, _ := httpvalidator.RequestFromContext(r.Context())
		fmt.Fprintf(w, "pet %v", req.Params["petId"])
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/pets/7", nil))
	fmt.Println(rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/pets/seven", nil))
	fmt.Println(rec.Code, strings.TrimSpace(rec.Body.String()))
	// Output:
	// 200 pet 7
	// 400 {"status":400,"path":"/pets/seven","message":"request.params.petId must be integer","errors":[{"path":".params.petId","message":"must be integer","errorCode":"type.openapi.validation"}]}
}
