package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const forgerySchema = `{
  "type": "object",
  "required": ["forgerySuspected"],
  "properties": {
    "forgerySuspected": {"type": "boolean"},
    "reason": {"type": "string"}
  }
}`

const riskSchema = `{
  "type": "object",
  "required": ["riskScore", "riskLabel", "rationale"],
  "properties": {
    "riskScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "riskLabel": {"enum": ["Low", "Medium", "High"]},
    "rationale": {"type": "string"}
  }
}`

const explanationSchema = `{
  "type": "object",
  "required": ["explanation"],
  "properties": {
    "explanation": {"type": "string", "pattern": "\\S"}
  }
}`

var schemas = map[Operation]*gojsonschema.Schema{
	OpDetectForgery: mustSchema(forgerySchema),
	OpAssessRisk:    mustSchema(riskSchema),
	OpExplain:       mustSchema(explanationSchema),
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("analysis: invalid schema: %v", err))
	}
	return s
}

// decodeOutput checks raw against the operation's schema and decodes it into out.
func decodeOutput(op Operation, raw json.RawMessage, out any) error {
	result, err := schemas[op].Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("output is not JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("output violates schema: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode output: %w", err)
	}
	return nil
}
