package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "guardian://rules.schema.json"

// rulesSchema describes the structure of a rules file. Weight values are left
// untyped because non-numeric weights are ignored rather than rejected.
const rulesSchema = `{
  "type": "object",
  "properties": {
    "scan": {
      "type": "object",
      "properties": {
        "include": {"type": "array", "items": {"type": "string"}},
        "exclude": {"type": "array", "items": {"type": "string"}},
        "max_bytes": {"type": "integer", "minimum": 1},
        "gitignore": {"type": "boolean"},
        "follow_symlinks": {"type": "boolean"}
      }
    },
    "complexity": {
      "type": "object",
      "properties": {
        "warn_at": {"type": "integer", "minimum": 1}
      }
    },
    "duplication": {
      "type": "object",
      "properties": {
        "k_shingle": {"type": "integer", "minimum": 1},
        "similarity_threshold": {"type": "number", "minimum": 0, "maximum": 1},
        "max_functions": {"type": "integer", "minimum": 0},
        "max_chars": {"type": "integer", "minimum": 1},
        "time_budget_seconds": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "weights": {"type": "object"},
    "analysis": {
      "type": "object",
      "properties": {
        "workers": {"type": "integer", "minimum": 0},
        "source_cache_size": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(rulesSchema)))
		if err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// validateSchema checks a parsed rules document. The document is normalized
// through JSON first so that TOML and YAML number types validate alike.
func validateSchema(raw map[string]any) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("compile rules schema: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
