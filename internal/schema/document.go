package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema constrains the serialized content type wire format. The
// format is JSON keyed by the model field names and must round-trip: a
// document encoded from a validated type decodes and validates identically.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "kind", "regions"],
  "additionalProperties": false,
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "kind": {"enum": ["page", "post", "site"]},
    "use_blocks": {"type": "boolean"},
    "regions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "fields"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "collection": {"type": "boolean"},
          "fields": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type"],
              "additionalProperties": false,
              "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "type": {"type": "string", "minLength": 1},
                "description": {"type": "string"},
                "placeholder": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compiledDocumentSchema     *jsonschema.Schema
	compileDocumentSchemaOnce  sync.Once
	compileDocumentSchemaError error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileDocumentSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("content_type.json", bytes.NewReader([]byte(documentSchema))); err != nil {
			compileDocumentSchemaError = err
			return
		}
		compiledDocumentSchema, compileDocumentSchemaError = compiler.Compile("content_type.json")
	})
	return compiledDocumentSchema, compileDocumentSchemaError
}

// EncodeDocument serializes a content type into its wire document.
func EncodeDocument(t *ContentType) ([]byte, error) {
	if t == nil || strings.TrimSpace(t.ID) == "" {
		return nil, ErrTypeIDRequired
	}
	return json.Marshal(t)
}

// DecodeDocument parses a wire document, checks it against the document
// schema, and returns the resulting content type. The caller still registers
// the type (which runs Validate) before use.
func DecodeDocument(data []byte) (*ContentType, error) {
	validator, err := documentValidator()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	if err := validator.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}

	var t ContentType
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	return &t, nil
}
