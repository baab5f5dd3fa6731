package ai

import (
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/genai"
)

// SchemaOf derives a structured-output schema from the struct T.
//
// Only fields carrying a `schema` tag are included; the tag value becomes the
// property description and `schema:"-"` excludes the field. Property names
// come from the `json` tag, and every field without `omitempty` is required,
// so the Go type that decodes the reply is also the single definition of
// what is asked for.
func SchemaOf[T any]() (*genai.Schema, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}

	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		desc, ok := field.Tag.Lookup("schema")
		if !ok || desc == "-" {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		prop, err := schemaForType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("schema: field %s: %w", field.Name, err)
		}
		prop.Description = desc

		schema.Properties[name] = prop
		schema.PropertyOrdering = append(schema.PropertyOrdering, name)
		if !hasOption(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}

	if len(schema.Properties) == 0 {
		return nil, fmt.Errorf("schema: %s has no schema-tagged fields", t)
	}
	return schema, nil
}

func mustSchema[T any]() *genai.Schema {
	schema, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

func schemaForType(t reflect.Type) (*genai.Schema, error) {
	switch t.Kind() {
	case reflect.String:
		return &genai.Schema{Type: genai.TypeString}, nil
	case reflect.Bool:
		return &genai.Schema{Type: genai.TypeBoolean}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &genai.Schema{Type: genai.TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &genai.Schema{Type: genai.TypeNumber}, nil
	case reflect.Slice, reflect.Array:
		items, err := schemaForType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &genai.Schema{Type: genai.TypeArray, Items: items}, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", t.Kind())
	}
}

func hasOption(opts, want string) bool {
	for _, opt := range strings.Split(opts, ",") {
		if opt == want {
			return true
		}
	}
	return false
}
