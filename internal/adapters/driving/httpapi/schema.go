package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 8 << 20

const searchSchemaJSON = `{
  "type": "object",
  "required": ["paths", "terms"],
  "properties": {
    "paths": {"type": "array", "items": {"type": "string"}},
    "terms": {"type": "array", "items": {"type": "string"}},
    "searchContent": {"type": "boolean"},
    "deepSearch": {"type": "boolean"},
    "searchId": {"type": "string", "maxLength": 128}
  }
}`

const formatSchemaJSON = `{
  "type": "object",
  "required": ["files"],
  "properties": {
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path"],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "type": {"type": "string"},
          "size": {"type": "integer", "minimum": 0},
          "modified": {"type": ["string", "null"]},
          "matches": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "terms": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

var (
	searchSchema = mustSchema(searchSchemaJSON)
	formatSchema = mustSchema(formatSchemaJSON)
)

func mustSchema(schemaJSON string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("httpapi: invalid schema: %v", err))
	}
	return schema
}

// readBody reads a request body and validates it against schema.
func readBody(r *http.Request, schema *gojsonschema.Schema) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("no data provided: %w", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("request body is over %d bytes: %w", maxBodyBytes, domain.ErrInvalidInput)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("no data provided: %w", domain.ErrInvalidInput)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("malformed JSON: %v: %w", err, domain.ErrInvalidInput)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, strings.TrimPrefix(desc.String(), "(root): "))
		}
		return nil, fmt.Errorf("request body: %s: %w", strings.Join(msgs, "; "), domain.ErrInvalidInput)
	}
	return data, nil
}
