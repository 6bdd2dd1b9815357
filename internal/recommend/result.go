package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Result is the three-field recommendation shown next to the chart.
type Result struct {
	Focus       string `json:"focus"`
	Content     string `json:"content"`
	Combination string `json:"combination"`
}

// ErrInvalidResult is returned when a reply does not have exactly the three
// string fields of Result.
var ErrInvalidResult = errors.New("recommendation result has an invalid shape")

const resultSchemaJSON = `{
  "type": "object",
  "required": ["focus", "content", "combination"],
  "additionalProperties": false,
  "properties": {
    "focus":       {"type": "string", "minLength": 1},
    "content":     {"type": "string", "minLength": 1},
    "combination": {"type": "string", "minLength": 1}
  }
}`

var resultSchema = mustSchema(resultSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile result schema: %v", err))
	}
	return s
}

// ResultError lists the schema violations of a rejected reply.
type ResultError struct {
	Problems []string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidResult, strings.Join(e.Problems, "; "))
}

func (e *ResultError) Unwrap() error {
	return ErrInvalidResult
}

// ParseResult validates raw against the result schema and decodes it. A
// partial or extended object is an error, never a partial Result.
func ParseResult(raw json.RawMessage) (Result, error) {
	if len(raw) == 0 {
		return Result{}, &ResultError{Problems: []string{"(root): empty reply"}}
	}
	res, err := resultSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Result{}, &ResultError{Problems: []string{"(root): " + err.Error()}}
	}
	if !res.Valid() {
		problems := make([]string, 0, len(res.Errors()))
		for _, desc := range res.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, field+": "+desc.Description())
		}
		return Result{}, &ResultError{Problems: problems}
	}

	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, &ResultError{Problems: []string{"(root): " + err.Error()}}
	}
	return out, nil
}
