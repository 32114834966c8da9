package core

import (
	"fmt"
	"reflect"
	"strings"
)

// Identifier is implemented by resources that carry a stable remote identifier.
type Identifier interface {
	GetID() string
}

// GetID normalizes a resource-or-id argument to a bare identifier.
// Resources (anything implementing Identifier) and records with an "id" key
// yield that id; any other value is assumed to already be an identifier and is
// returned unchanged. The identifier shape is not validated.
func GetID(resourceOrID any) any {
	switch v := resourceOrID.(type) {
	case Identifier:
		return v.GetID()
	case Record:
		if id, ok := v["id"]; ok {
			return id
		}
	case map[string]any:
		if id, ok := v["id"]; ok {
			return id
		}
	}
	return resourceOrID
}

// FormatID renders an identifier for use in a URL path.
// Whole-number floats (as decoded from JSON) are printed without a fraction.
func FormatID(id any) string {
	if intId, err := toInt(id); err == nil {
		return fmt.Sprintf("%d", intId)
	}
	return fmt.Sprintf("%v", id)
}

func toInt(val any) (int64, error) {
	var idInt int64
	switch v := val.(type) {
	case int64:
		idInt = v
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("non-integral id %v", v)
		}
		idInt = int64(v)
	case int:
		idInt = int64(v)
	default:
		return 0, fmt.Errorf("unexpected type for id field: %T", v)
	}
	return idInt, nil
}

// BuildResourcePath normalizes a resource path to the "/segment/.../" form.
func BuildResourcePath(resourcePath string) string {
	trimmed := strings.Trim(resourcePath, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}

// BuildResourcePathWithID builds a complete resource path with an ID segment and
// optional additional segments, always ending with a slash.
// For example ("/content/audio/", 7) gives "/content/audio/7/".
func BuildResourcePathWithID(resourcePath string, id any, additionalSegments ...string) string {
	path := BuildResourcePath(resourcePath) + FormatID(id) + "/"
	for _, segment := range additionalSegments {
		path += strings.Trim(segment, "/") + "/"
	}
	return path
}

func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}

// structToMap converts a struct to a map[string]interface{} using reflection,
// respecting json tags. Untagged embedded structs contribute their fields to the
// same level.
func structToMap(item interface{}) map[string]interface{} {
	res := map[string]interface{}{}
	if item == nil {
		return res
	}

	v := reflect.TypeOf(item)
	reflectValue := reflect.Indirect(reflect.ValueOf(item))

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return res
	}

	for i := 0; i < v.NumField(); i++ {
		structField := v.Field(i)
		jsonTag := structField.Tag.Get("json")
		field := reflectValue.Field(i)

		if jsonTag == "" && structField.Anonymous && field.Kind() == reflect.Struct {
			for key, value := range structToMap(field.Interface()) {
				if _, exists := res[key]; !exists {
					res[key] = value
				}
			}
			continue
		}

		if !field.CanInterface() {
			continue
		}

		tagName, omitEmpty := parseJSONTag(jsonTag)
		if tagName == "" || tagName == "-" {
			continue
		}

		switch {
		case field.Kind() == reflect.Ptr:
			if field.IsNil() {
				if omitEmpty {
					continue
				}
				res[tagName] = nil
			} else if field.Elem().Kind() == reflect.Struct {
				res[tagName] = structToMap(field.Interface())
			} else {
				res[tagName] = field.Elem().Interface()
			}

		case field.Kind() == reflect.Struct:
			res[tagName] = structToMap(field.Interface())

		default:
			if omitEmpty && isZeroValue(field) {
				continue
			}
			res[tagName] = field.Interface()
		}
	}
	return res
}

// parseJSONTag parses a JSON struct tag and returns the field name and whether omitempty is specified.
func parseJSONTag(tag string) (name string, omitEmpty bool) {
	if tag == "" {
		return "", false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for i := 1; i < len(parts); i++ {
		if strings.TrimSpace(parts[i]) == "omitempty" {
			omitEmpty = true
			break
		}
	}
	return name, omitEmpty
}

// isZeroValue reports whether v is the zero value for its type.
// Empty slices and maps count as zero, matching omitempty.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// IsTruthy reports whether a value should be written to the wire:
// nil, zero numbers, false and empty strings, slices and maps are falsy.
func IsTruthy(val any) bool {
	if val == nil {
		return false
	}
	return !isZeroValue(reflect.ValueOf(val))
}

// FieldByJSONName returns the value of the struct field tagged with the given
// json name. Fields promoted from untagged embedded structs are found as well.
func FieldByJSONName(obj any, name string) (any, bool) {
	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil, false
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, false
	}
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				if v, ok := FieldByJSONName(val.Field(i).Interface(), name); ok {
					return v, true
				}
			}
			continue
		}
		if tagName, _ := parseJSONTag(tag); tagName != "-" && tagName == name && field.IsExported() {
			return val.Field(i).Interface(), true
		}
	}
	return nil, false
}
