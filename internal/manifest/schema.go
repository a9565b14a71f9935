package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the version=1 wire schema for a provenance manifest.
// additionalProperties is false except for the reserved "ext:"
// extension point, which exists for third-party verification modes:
// unknown top-level fields are only accepted when prefixed "ext:",
// everything else is rejected before signature verification even
// runs.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "commit_tree_hash", "timestamp_ns", "metrics",
               "cns_score", "credits_charged", "credits_debited",
               "difficulty_bits", "nonce", "pubkey", "signature"],
  "properties": {
    "version": {"type": "integer", "const": 1},
    "commit_tree_hash": {"type": "string", "pattern": "^[0-9a-f]{40}$"},
    "timestamp_ns": {"type": "integer", "minimum": 0},
    "metrics": {
      "type": "object",
      "required": ["ldlj", "spec_entropy", "curv_entropy", "throughput", "ncd", "burstiness"],
      "properties": {
        "ldlj": {"type": "number"},
        "spec_entropy": {"type": "number"},
        "curv_entropy": {"type": "number"},
        "throughput": {"type": "number"},
        "ncd": {"type": "number"},
        "burstiness": {"type": "number"}
      },
      "additionalProperties": false
    },
    "cns_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "credits_charged": {"type": "number"},
    "credits_debited": {"type": "number"},
    "difficulty_bits": {"type": "integer", "minimum": 0, "maximum": 64},
    "nonce": {"type": "integer", "minimum": 0},
    "pubkey": {"type": "string"},
    "signature": {"type": "string"}
  },
  "additionalProperties": {
    "not": {}
  },
  "patternProperties": {
    "^ext:": {}
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("pohw-manifest-v1.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
			compileErr = fmt.Errorf("manifest: add schema resource: %w", err)
			return
		}
		s, err := c.Compile("pohw-manifest-v1.json")
		if err != nil {
			compileErr = fmt.Errorf("manifest: compile schema: %w", err)
			return
		}
		compiled = s
	})
	return compiled, compileErr
}

// ValidateSchema rejects unknown top-level fields outside the
// reserved "ext:" prefix and malformed numeric/hex fields, before
// Ed25519 verification runs.
func ValidateSchema(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("manifest: invalid json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("manifest: schema validation: %w", err)
	}
	return nil
}
