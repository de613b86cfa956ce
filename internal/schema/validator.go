package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one violated constraint. Path uses dots for both object
// keys and array indices (e.g. "assumptions.2").
type FieldError struct {
	Path   string
	Reason string
}

// ValidationError aggregates every FieldError of one validation run.
type ValidationError struct {
	Schema Name
	Fields []FieldError
}

// Error joins all pairs into a single diagnostic line.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		p := f.Path
		if p == "" {
			p = "(root)"
		}
		parts = append(parts, p+": "+f.Reason)
	}
	return string(e.Schema) + ": " + strings.Join(parts, ", ")
}

// ErrUnknownSchema is returned by Validate for an unregistered schema name.
var ErrUnknownSchema = errors.New("unknown schema")

var (
	validate   = newValidator()
	indexPatRe = regexp.MustCompile(`\[(\d+)\]`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// ValidateCheckinFeedback validates v against the checkin_feedback schema.
func ValidateCheckinFeedback(v any) (*CheckinFeedback, error) {
	return validateInto[CheckinFeedback](CheckinFeedbackName, v)
}

// ValidateDecisionCoach validates v against the decision_coach schema.
func ValidateDecisionCoach(v any) (*DecisionCoach, error) {
	return validateInto[DecisionCoach](DecisionCoachName, v)
}

// Validate dispatches on name and returns the typed value as any.
func Validate(name Name, v any) (any, error) {
	switch name {
	case CheckinFeedbackName:
		return ValidateCheckinFeedback(v)
	case DecisionCoachName:
		return ValidateDecisionCoach(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
}

func validateInto[T any](name Name, v any) (*T, error) {
	var out T
	t := reflect.TypeOf(out)

	// 1) shape: JSON kinds and undeclared keys, at every level
	var errs []FieldError
	checkShape("", v, t, &errs)
	if _, isObj := v.(map[string]any); !isObj {
		return nil, &ValidationError{Schema: name, Fields: errs}
	}

	// 2) decode what is decodable; type mismatches are already reported
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ValidationError{Schema: name, Fields: append(errs, FieldError{Reason: "not encodable: " + err.Error()})}
	}
	if err := json.Unmarshal(raw, &out); err != nil && len(errs) == 0 {
		errs = append(errs, FieldError{Reason: err.Error()})
	}

	// 3) constraints: required, enums, literals, lengths
	if err := validate.Struct(&out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			if covered(errs, path) {
				continue
			}
			errs = append(errs, FieldError{Path: path, Reason: reason(fe)})
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Schema: name, Fields: errs}
	}
	return &out, nil
}

// checkShape walks v alongside the Go type t and records kind mismatches
// and keys t does not declare. A present null never matches: optional keys
// may be omitted but not set to null.
func checkShape(path string, v any, t reflect.Type, errs *[]FieldError) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if v == nil {
		*errs = append(*errs, FieldError{Path: path, Reason: "expected " + kindOf(t) + ", received null"})
		return
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			*errs = append(*errs, FieldError{Path: path, Reason: "expected object, received " + jsonKind(v)})
			return
		}
		fields := declaredFields(t)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ft, ok := fields[k]
			if !ok {
				*errs = append(*errs, FieldError{Path: join(path, k), Reason: "unrecognized key"})
				continue
			}
			checkShape(join(path, k), m[k], ft, errs)
		}
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok {
			*errs = append(*errs, FieldError{Path: path, Reason: "expected array, received " + jsonKind(v)})
			return
		}
		for i, e := range arr {
			checkShape(join(path, strconv.Itoa(i)), e, t.Elem(), errs)
		}
	case reflect.String:
		if _, ok := v.(string); !ok {
			*errs = append(*errs, FieldError{Path: path, Reason: "expected string, received " + jsonKind(v)})
		}
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			*errs = append(*errs, FieldError{Path: path, Reason: "expected boolean, received " + jsonKind(v)})
		}
	case reflect.Int, reflect.Int64, reflect.Float64:
		if _, ok := v.(float64); !ok {
			*errs = append(*errs, FieldError{Path: path, Reason: "expected number, received " + jsonKind(v)})
		}
	}
}

// kindOf names the JSON kind a Go type decodes from.
func kindOf(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return "number"
	}
}

func declaredFields(t reflect.Type) map[string]reflect.Type {
	out := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := jsonName(f); name != "" {
			out[name] = f.Type
		}
	}
	return out
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// fieldPath turns "CheckinFeedback.assumptions[2]" into "assumptions.2".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return indexPatRe.ReplaceAllString(ns, ".$1")
}

// covered reports whether path, or one of its ancestors, already has an error.
func covered(errs []FieldError, path string) bool {
	for _, e := range errs {
		if e.Path == path || strings.HasPrefix(path, e.Path+".") {
			return true
		}
	}
	return false
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "eq":
		return fmt.Sprintf("must equal %q", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "max":
		if isText(fe.Value()) {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must contain at most " + fe.Param() + " items"
	case "min":
		if isText(fe.Value()) {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must contain at least " + fe.Param() + " items"
	default:
		return "failed " + fe.Tag()
	}
}

func isText(v any) bool {
	switch v.(type) {
	case string, *string:
		return true
	}
	return false
}
