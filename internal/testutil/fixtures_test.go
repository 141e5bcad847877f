package testutil

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/parser"
)

func TestPetstore(t *testing.T) {
	doc := Petstore(t)

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.False(t, doc.IsOAS31())
	assert.Equal(t, []string{
		"/animals", "/files/{path*}", "/filter", "/me", "/pets",
		"/pets/{petId}", "/pets/{petId}/photo", "/search", "/sorted",
	}, doc.PathTemplates())

	getPet := doc.Operation("/pets/{petId}", "GET")
	require.NotNil(t, getPet)
	params := doc.Parameters("/pets/{petId}", getPet)
	require.Len(t, params, 1)
	assert.Equal(t, "petId", params[0].Name, "path-level $ref parameter should be resolved")

	search := doc.Operation("/search", "GET")
	require.NotNil(t, search)
	allow, declared := search.AllowUnknownQueryParameters()
	assert.True(t, allow)
	assert.True(t, declared)

	assert.True(t, doc.SecurityScheme("api_key").IsQueryAPIKey())
	assert.False(t, doc.SecurityScheme("bearer").IsQueryAPIKey())
}

func TestMustParse(t *testing.T) {
	doc := MustParse(t, `{"openapi": "3.1.0", "info": {"title": "T", "version": "1"}, "paths": {}}`)
	assert.True(t, doc.IsOAS31())
	assert.Empty(t, doc.PathTemplates())
}

func TestWritePetstore(t *testing.T) {
	path := WritePetstore(t)

	result, err := parser.ParseWithOptions(parser.WithFilePath(path))
	require.NoError(t, err)
	assert.Equal(t, parser.SourceFormatYAML, result.SourceFormat)
	assert.Equal(t, "Petstore", result.Document.Info.Title)
}

// TestWriteTempYAML verifies that documents are correctly marshaled to YAML files.
func TestWriteTempYAML(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "Test API", "version": "1.0.0"},
	}
	path := WriteTempYAML(t, doc)

	data, err := os.ReadFile(path)
	require.NoError(t, err, "Should be able to read temp file")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded), "File should contain valid YAML")
	assert.Equal(t, "3.0.3", decoded["openapi"])
}

// TestWriteTempJSON verifies that documents are correctly marshaled to JSON files.
func TestWriteTempJSON(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "Test API", "version": "1.0.0"},
	}
	path := WriteTempJSON(t, doc)

	data, err := os.ReadFile(path)
	require.NoError(t, err, "Should be able to read temp file")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), "File should contain valid JSON")
	assert.Equal(t, "3.0.3", decoded["openapi"])

	result, err := parser.ParseWithOptions(parser.WithFilePath(path))
	require.NoError(t, err)
	assert.Equal(t, parser.SourceFormatJSON, result.SourceFormat)
}
