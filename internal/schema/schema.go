// Package schema checks assessment payloads against the expected shape.
//
// Deviations are reported as Issues, never as failures: the normalizer
// already tolerates every malformed field, so validation only explains
// which parts of a payload were ignored or defaulted.
package schema

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nao1215/sitescan/internal/field"
	"github.com/nao1215/sitescan/internal/model"
)

// complianceMax is the maximum compliance percentage.
const complianceMax = 100

// rootField is the field name gojsonschema uses for the document itself.
const rootField = "(root)"

//go:embed assessment.schema.json
var assessmentSchema []byte

var (
	compiledOnce sync.Once
	compiled     *gojsonschema.Schema
	compileErr   error
)

// Issue is one deviation of a payload from the assessment schema.
type Issue struct {
	// Field is the dot-separated path of the offending value, "(root)"
	// for the document itself.
	Field string `json:"field"`

	// Description explains the deviation.
	Description string `json:"description"`

	// Value is the offending value rendered as text, empty when absent.
	Value string `json:"value,omitempty"`
}

// String formats the issue as "field: description (got value)".
func (i Issue) String() string {
	if i.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", i.Field, i.Description, i.Value)
	}
	return i.Field + ": " + i.Description
}

// Schema returns the embedded JSON schema document.
func Schema() []byte {
	out := make([]byte, len(assessmentSchema))
	copy(out, assessmentSchema)
	return out
}

func loadSchema() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(assessmentSchema))
	})
	return compiled, compileErr
}

// Validate checks an assessment against the schema and returns the issues
// found, in the order gojsonschema reports them. A conforming payload
// yields an empty, non-nil slice.
func Validate(raw model.RawAssessment) []Issue {
	issues := []Issue{}

	s, err := loadSchema()
	if err != nil {
		return append(issues, Issue{Field: rootField, Description: "schema unavailable: " + err.Error()})
	}

	doc := map[string]any(raw)
	if doc == nil {
		doc = map[string]any{}
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return append(issues, Issue{Field: rootField, Description: err.Error()})
	}

	for _, verr := range result.Errors() {
		issues = append(issues, Issue{
			Field:       verr.Field(),
			Description: verr.Description(),
			Value:       actualValue(doc, verr.Field()),
		})
	}
	return issues
}

// Compliance returns the share of values in raw that produced no issue,
// as a percentage in [0, 100]. An empty payload is fully compliant.
func Compliance(raw model.RawAssessment, issues []Issue) int {
	total := countNodes(map[string]any(raw)) - 1
	if total <= 0 {
		if len(issues) == 0 {
			return complianceMax
		}
		return 0
	}

	valid := total - len(issues)
	compliance := int(float64(valid) / float64(total) * complianceMax)

	return min(max(compliance, 0), complianceMax)
}

// countNodes counts v and every value nested inside it.
func countNodes(v any) int {
	count := 1
	switch t := v.(type) {
	case map[string]any:
		for _, child := range t {
			count += countNodes(child)
		}
	case []any:
		for _, item := range t {
			count += countNodes(item)
		}
	}
	return count
}

// actualValue renders the scalar at a gojsonschema field path.
// Objects, lists and missing values render as empty.
func actualValue(doc map[string]any, path string) string {
	if path == rootField {
		return ""
	}
	switch v := field.Get(doc, path, nil).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
