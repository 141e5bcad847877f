package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/oaserrors"
)

// DefaultMaxFileSize is the largest document the parser reads (10 MiB).
const DefaultMaxFileSize int64 = 10 << 20

// SourceFormat represents the format of the source document.
type SourceFormat string

const (
	// SourceFormatYAML indicates the source was in YAML format
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatJSON indicates the source was in JSON format
	SourceFormatJSON SourceFormat = "json"
	// SourceFormatUnknown indicates the source format could not be determined
	SourceFormatUnknown SourceFormat = "unknown"
)

// Parser decodes OpenAPI 3.x documents.
type Parser struct {
	// Logger receives debug output about decoding. Defaults to NopLogger.
	Logger Logger
	// MaxFileSize limits how many bytes are read from a file or reader.
	// Zero means DefaultMaxFileSize.
	MaxFileSize int64
}

// New creates a Parser with default settings.
func New() *Parser {
	return &Parser{Logger: NopLogger{}}
}

// ParseResult contains a decoded document and facts about its source.
type ParseResult struct {
	// SourcePath is the file path the document was read from, or a synthetic
	// name ending in .yaml or .json for reader and byte inputs.
	SourcePath string
	// SourceFormat is the format of the source (JSON or YAML).
	SourceFormat SourceFormat
	// Version is the declared OAS version string (e.g. "3.0.3").
	Version string
	// Document is the decoded document.
	Document *Document
	// LoadTime is the time taken to read the source.
	LoadTime time.Duration
	// SourceSize is the size of the source in bytes.
	SourceSize int64
}

// Parse reads and decodes the document at path.
func (p *Parser) Parse(path string) (*ParseResult, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	data, err := p.readLimited(f)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to read file", Cause: err}
	}

	format := detectFormatFromPath(path)
	if format == SourceFormatUnknown {
		format = detectFormatFromContent(data)
	}
	return p.parse(data, path, format, time.Since(start))
}

// ParseReader reads and decodes a document from r.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	start := time.Now()
	data, err := p.readLimited(r)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: "ParseReader", Message: "failed to read input", Cause: err}
	}
	format := detectFormatFromContent(data)
	return p.parse(data, "ParseReader."+string(format), format, time.Since(start))
}

// ParseBytes decodes a document from data.
func (p *Parser) ParseBytes(data []byte) (*ParseResult, error) {
	format := detectFormatFromContent(data)
	return p.parse(data, "ParseBytes."+string(format), format, 0)
}

func (p *Parser) logger() Logger {
	if p.Logger == nil {
		return NopLogger{}
	}
	return p.Logger
}

func (p *Parser) readLimited(r io.Reader) ([]byte, error) {
	limit := p.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("document exceeds maximum size of %d bytes", limit)
	}
	return data, nil
}

func (p *Parser) parse(data []byte, sourcePath string, format SourceFormat, loadTime time.Duration) (*ParseResult, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		var parseErr *oaserrors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = sourcePath
			return nil, parseErr
		}
		return nil, &oaserrors.ParseError{Path: sourcePath, Message: "failed to decode document", Cause: err}
	}

	p.logger().Debug("parsed document",
		"source", sourcePath,
		"format", string(format),
		"version", doc.OpenAPI,
		"paths", len(doc.Paths),
	)

	return &ParseResult{
		SourcePath:   sourcePath,
		SourceFormat: format,
		Version:      doc.OpenAPI,
		Document:     doc,
		LoadTime:     loadTime,
		SourceSize:   int64(len(data)),
	}, nil
}

// decodeDocument decodes YAML or JSON (a YAML subset) into a Document.
func decodeDocument(data []byte) (*Document, error) {
	var tree any
	if detectFormatFromContent(data) == SourceFormatJSON {
		if err := decodeJSON(data, &tree); err != nil {
			return nil, &oaserrors.ParseError{Message: "invalid JSON", Cause: err}
		}
	} else if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &oaserrors.ParseError{Message: "invalid YAML", Cause: err}
	}
	root, ok := normalizeYAML(tree).(map[string]any)
	if !ok {
		return nil, &oaserrors.ParseError{Message: "document root must be an object"}
	}

	version, _ := root["openapi"].(string)
	if !strings.HasPrefix(version, "3.") {
		if _, isSwagger := root["swagger"]; isSwagger {
			return nil, &oaserrors.ParseError{Message: "OpenAPI 2.0 documents are not supported"}
		}
		return nil, &oaserrors.ParseError{Message: fmt.Sprintf("unsupported or missing openapi version %q", version)}
	}

	// Round-trip through JSON so the typed view and the raw tree agree on
	// value representation (json.Number for all numbers).
	encoded, err := json.Marshal(root)
	if err != nil {
		return nil, &oaserrors.ParseError{Message: "failed to normalize document", Cause: err}
	}
	doc := &Document{}
	if err := decodeJSON(encoded, doc); err != nil {
		return nil, &oaserrors.ParseError{Message: "invalid document structure", Cause: err}
	}
	if err := decodeJSON(encoded, &doc.raw); err != nil {
		return nil, &oaserrors.ParseError{Message: "invalid document structure", Cause: err}
	}

	doc.collectOperationExtensions()
	if err := doc.resolveComponentRefs(); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeJSON decodes data with json.Number for numbers, the representation
// used throughout Document.
func DecodeJSON(data []byte, v any) error {
	return decodeJSON(data, v)
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// normalizeYAML converts YAML-decoded values into JSON-compatible values.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	case time.Time:
		// YAML timestamps decode to time.Time; JSON has no such type.
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// collectOperationExtensions copies each operation's "x-" fields from the raw
// tree into Operation.Extensions.
func (d *Document) collectOperationExtensions() {
	rawPaths, _ := d.raw["paths"].(map[string]any)
	for route, item := range d.Paths {
		rawItem, _ := rawPaths[route].(map[string]any)
		for method, op := range item.Operations() {
			rawOp, _ := rawItem[strings.ToLower(method)].(map[string]any)
			for key, val := range rawOp {
				if !strings.HasPrefix(key, "x-") {
					continue
				}
				if op.Extensions == nil {
					op.Extensions = make(map[string]any)
				}
				op.Extensions[key] = val
			}
		}
	}
}

// detectFormatFromPath detects the source format from a file path
func detectFormatFromPath(path string) SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceFormatJSON
	case ".yaml", ".yml":
		return SourceFormatYAML
	default:
		return SourceFormatUnknown
	}
}

// detectFormatFromContent attempts to detect the format from the content bytes.
// JSON documents start with '{' or '[', YAML documents do not.
func detectFormatFromContent(data []byte) SourceFormat {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 {
		return SourceFormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return SourceFormatJSON
	}
	return SourceFormatYAML
}
