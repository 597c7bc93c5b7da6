package validation

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Names of the embedded schemas under schemas/.
const (
	SchemaVehicleAnswers   = "vehicle-answers"
	SchemaInsuranceAnswers = "insurance-answers"
	SchemaLead             = "lead"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (vr *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, e := range vr.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) add(field, message, code string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message, Code: code})
}

func compileSchemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema)
		for _, name := range []string{SchemaVehicleAnswers, SchemaInsuranceAnswers, SchemaLead} {
			raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// SchemaNames lists the embedded schemas.
func SchemaNames() []string {
	names := []string{SchemaVehicleAnswers, SchemaInsuranceAnswers, SchemaLead}
	sort.Strings(names)
	return names
}

// Validate checks doc against a named embedded schema. Range-typed fields are
// also checked for min <= max, which JSON Schema cannot express.
func Validate(schemaName string, doc interface{}) (*ValidationResult, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[schemaName]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", schemaName)
	}

	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", schemaName, err)
	}

	result := toResult(res)
	if m, ok := doc.(map[string]interface{}); ok {
		for _, field := range []string{"monthlyBudget", "downPayment", "deductibleRange"} {
			checkRangeOrder(result, m, field)
		}
	}
	return result, nil
}

// ValidateAgainst validates doc against an arbitrary schema document, as the
// activity registry stores them.
func ValidateAgainst(schema interface{}, doc interface{}) (*ValidationResult, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, err
	}
	return toResult(res), nil
}

func toResult(res *gojsonschema.Result) *ValidationResult {
	result := &ValidationResult{Valid: true}
	for _, e := range res.Errors() {
		result.add(e.Field(), e.Description(), e.Type())
	}
	return result
}

func checkRangeOrder(result *ValidationResult, doc map[string]interface{}, field string) {
	pair, ok := doc[field].([]interface{})
	if !ok || len(pair) != 2 {
		return
	}
	min, okMin := toFloat(pair[0])
	max, okMax := toFloat(pair[1])
	if okMin && okMax && min > max {
		result.add(field, "range minimum must not exceed maximum", "range_order")
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ]{8,15}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
