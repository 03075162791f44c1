package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema reflects an inline object schema from the struct v
// points to. Fields without omitempty are listed as required.
func GenerateJSONSchema(v interface{}) (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(v)
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// MustGenerateJSONSchema is GenerateJSONSchema for package level tool definitions
func MustGenerateJSONSchema(v interface{}) json.RawMessage {
	schema, err := GenerateJSONSchema(v)
	if err != nil {
		panic(err)
	}
	return schema
}

// DecodeArguments converts a tool argument map into the struct target points
// to and checks that every required field is set
func DecodeArguments(args map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return RequireFields(target)
}

// RequireFields returns "<name> parameter is required" for the first field
// whose json tag lacks omitempty and whose value is the zero value. Embedded
// structs are skipped.
func RequireFields(target interface{}) error {
	v := reflect.Indirect(reflect.ValueOf(target))
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || strings.Contains(opts, "omitempty") {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if v.Field(i).IsZero() {
			return fmt.Errorf("%s parameter is required", name)
		}
	}
	return nil
}
