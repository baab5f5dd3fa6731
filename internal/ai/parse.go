package ai

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// Parse decodes the model's text into T. An empty reply is treated as "{}"
// and yields a zero value; text that is not JSON yields a *ParseError.
// Numbers sent as strings ("80", "80%") are accepted for numeric fields.
// Field presence is not checked here, see MissingFields.
func Parse[T any](text string) (*T, error) {
	body := []byte(strings.TrimSpace(text))
	if len(body) == 0 {
		body = []byte("{}")
	}

	var out T
	err := json.Unmarshal(body, &out)

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if fixed, ok := coerceNumericStrings(reflect.TypeOf(out), body); ok {
			out = *new(T)
			err = json.Unmarshal(fixed, &out)
		}
	}
	if err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	return &out, nil
}

// coerceNumericStrings rewrites string values of t's numeric fields into
// JSON numbers. It reports false when nothing could be rewritten.
func coerceNumericStrings(t reflect.Type, body []byte) ([]byte, bool) {
	if t.Kind() != reflect.Struct {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}

	changed := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		switch field.Type.Kind() {
		case reflect.Float32, reflect.Float64,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		default:
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if _, err := strconv.ParseFloat(s, 64); err != nil || !json.Valid([]byte(s)) {
			continue
		}
		fields[name] = json.RawMessage(s)
		changed = true
	}
	if !changed {
		return nil, false
	}

	fixed, err := json.Marshal(fields)
	if err != nil {
		return nil, false
	}
	return fixed, true
}

// MissingFields returns the required keys that are absent or null in text
func MissingFields(text string, required []string) []string {
	body := strings.TrimSpace(text)
	if body == "" {
		body = "{}"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return required
	}

	var missing []string
	for _, name := range required {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			missing = append(missing, name)
		}
	}
	return missing
}
