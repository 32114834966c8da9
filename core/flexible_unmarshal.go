package core

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

var jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// FlexibleUnmarshal unmarshals JSON with flexible type conversion for string fields.
// When a string field in the target struct receives a non-string value (number, boolean),
// it automatically converts it to a string. Fields promoted from embedded structs are
// matched as well.
func FlexibleUnmarshal(data []byte, target interface{}) error {
	var rawData map[string]interface{}
	if err := json.Unmarshal(data, &rawData); err != nil {
		return err
	}

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer")
	}
	targetElem := targetValue.Elem()
	if targetElem.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct")
	}

	convertedData := convertMapToStruct(rawData, targetElem.Type())

	convertedJSON, err := json.Marshal(convertedData)
	if err != nil {
		return err
	}

	return json.Unmarshal(convertedJSON, target)
}

// convertMapToStruct recursively converts map values to match struct field types
func convertMapToStruct(data map[string]interface{}, structType reflect.Type) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range data {
		field, found := findFieldByJSONTag(structType, key)
		if !found {
			result[key] = value
			continue
		}

		result[key] = convertValue(value, field.Type)
	}

	return result
}

// convertValue converts a value to match the target type
func convertValue(value interface{}, targetType reflect.Type) interface{} {
	if value == nil {
		return nil
	}

	// Types with their own decoding get the raw value.
	if targetType.Implements(jsonUnmarshalerType) || reflect.PointerTo(targetType).Implements(jsonUnmarshalerType) {
		return value
	}

	if targetType.Kind() == reflect.String {
		return convertToString(value)
	}

	if targetType.Kind() == reflect.Slice {
		if arr, ok := value.([]interface{}); ok {
			result := make([]interface{}, len(arr))
			elemType := targetType.Elem()
			for i, item := range arr {
				result[i] = convertValue(item, elemType)
			}
			return result
		}
	}

	if targetType.Kind() == reflect.Ptr {
		return convertValue(value, targetType.Elem())
	}

	if targetType.Kind() == reflect.Struct {
		if m, ok := value.(map[string]interface{}); ok {
			return convertMapToStruct(m, targetType)
		}
	}

	return value
}

// convertToString converts any value to a string
func convertToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// findFieldByJSONTag finds a struct field by its JSON tag, descending into
// untagged embedded structs the way encoding/json promotes their fields.
func findFieldByJSONTag(structType reflect.Type, jsonTag string) (reflect.StructField, bool) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				if f, ok := findFieldByJSONTag(field.Type, jsonTag); ok {
					return f, true
				}
			}
			continue
		}

		tagName, _ := parseJSONTag(tag)
		if tagName == jsonTag {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

// JSONFieldNames returns the set of json keys declared by a struct type,
// including keys promoted from embedded structs.
func JSONFieldNames(structType reflect.Type) map[string]struct{} {
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	names := make(map[string]struct{})
	if structType.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				for name := range JSONFieldNames(field.Type) {
					names[name] = empty
				}
			}
			continue
		}
		if name, _ := parseJSONTag(tag); name != "" && name != "-" {
			names[name] = empty
		}
	}
	return names
}
