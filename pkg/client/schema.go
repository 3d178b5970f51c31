package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// extractJSON finds and parses the first JSON object embedded in a response.
// Instructed responses often wrap the payload in prose, so everything before
// the first '{' and after the last '}' is ignored.
func extractJSON(response string) (map[string]any, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parse response JSON: %w", err)
	}
	return parsed, nil
}

// validateShape checks that parsed contains every declared field with the
// declared type. Shape maps field name to one of: string, number, bool,
// array, object, any. Extra fields in the payload are allowed.
func validateShape(parsed map[string]any, shape map[string]string) error {
	// stable field order for deterministic error messages
	fields := make([]string, 0, len(shape))
	for f := range shape {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		want := shape[field]
		val, ok := parsed[field]
		if !ok {
			return fmt.Errorf("missing field %q", field)
		}

		if !matchesType(val, want) {
			return fmt.Errorf("field %q: expected %s, got %s", field, want, typeName(val))
		}
	}
	return nil
}

func matchesType(val any, want string) bool {
	switch want {
	case "string":
		_, ok := val.(string)
		return ok
	case "number":
		_, ok := val.(float64)
		return ok
	case "bool":
		_, ok := val.(bool)
		return ok
	case "array":
		_, ok := val.([]any)
		return ok
	case "object":
		_, ok := val.(map[string]any)
		return ok
	case "any":
		return true
	}
	return false
}

func typeName(val any) string {
	switch val.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", val)
}

// ValidTypes lists the shape descriptor types accepted by validateShape,
// used by the suite loader to reject bad fixtures early.
func ValidTypes() []string {
	return []string{"string", "number", "bool", "array", "object", "any"}
}

// ValidShapeType reports whether t is an accepted shape descriptor type.
func ValidShapeType(t string) bool {
	for _, v := range ValidTypes() {
		if t == v {
			return true
		}
	}
	return false
}
