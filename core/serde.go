package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/bndr/gotabulate"
)

const (
	ResourceTypeKey = "@resourceType"
	customRawKey    = "@raw" // used to store raw non-object values in Record
)

var empty = struct{}{}
var printableAttrs = map[string]struct{}{
	"id":       empty,
	"title":    empty,
	"name":     empty,
	"username": empty,
	"tags":     empty,
	"duration": empty,
	"caption":  empty,
}

//  ######################################################
//              FUNCTION PARAMS
//  ######################################################

// Params represents a generic set of key-value parameters,
// used as request bodies for POST and PUT calls.
type Params map[string]any

// ToBody serializes the Params into a JSON-encoded io.Reader.
func (pr *Params) ToBody() (io.Reader, error) {
	buffer, err := json.Marshal(*pr)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buffer), nil
}

// Without removes the specified keys from the Params map.
func (pr *Params) Without(keys ...string) {
	for _, key := range keys {
		delete(*pr, key)
	}
}

// Copy returns a shallow copy of the Params.
func (pr Params) Copy() Params {
	out := make(Params, len(pr))
	for k, v := range pr {
		out[k] = v
	}
	return out
}

// NewParamsFromStruct creates a new Params map from any struct, respecting json tags.
// Embedded structs are flattened into the same map, as encoding/json does.
func NewParamsFromStruct(obj any) (Params, error) {
	params := make(Params)
	if obj == nil {
		return params, nil
	}
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return params, nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %T", obj)
	}
	for k, v := range structToMap(obj) {
		params[k] = v
	}
	return params, nil
}

//  ######################################################
//              RETURN TYPES
//  ######################################################

// getPrintableAttrs returns a slice of keys to be printed first from the Record
func getPrintableAttrs(r Record) []string {
	var attrs []string
	for key := range r {
		if _, ok := printableAttrs[key]; ok {
			attrs = append(attrs, key)
		}
	}
	sort.Strings(attrs)
	return attrs
}

// Renderable is an interface implemented by types that can render themselves
// into a human-readable string format, typically for CLI display or logging.
type Renderable interface {
	PrettyTable() string
	PrettyJson(indent ...string) string
}

// Record represents a single generic data object as a key-value map.
// When a response is empty (e.g., 204 No Content), an empty Record{} is returned.
type Record map[string]any

// RecordSet represents a list of Record objects.
type RecordSet []Record

// RecordUnion defines a union of supported record types for generic operations.
type RecordUnion interface {
	Record | RecordSet
}

// Fill populates the exported fields of the given struct pointer using values
// from the Record. Keys are matched against `json` tags, including tags of
// embedded structs. Numbers and booleans are converted to strings when the
// target field is a string.
func (r Record) Fill(container any) error {
	val := reflect.ValueOf(container)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("container must be a non-nil pointer to a struct")
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("container must point to a struct")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return FlexibleUnmarshal(data, container)
}

// Copy returns a shallow copy of the Record.
func (r Record) Copy() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// PrettyTable renders a single Record as a table
func (r Record) PrettyTable() string {
	headers := []string{"attr", "value"}
	var rows [][]any
	var name string
	if resourceTyp, ok := r[ResourceTypeKey]; ok {
		name, _ = resourceTyp.(string)
	}
	if len(r) == 0 {
		return "<>"
	}
	for _, key := range getPrintableAttrs(r) {
		if val, ok := r[key]; ok && val != nil {
			rows = append(rows, []any{key, fmt.Sprintf("%v", val)})
		}
	}

	var remaining []string
	for key, value := range r {
		if _, ok := printableAttrs[key]; ok || key == ResourceTypeKey || value == nil {
			continue
		}
		remaining = append(remaining, key)
	}
	sort.Strings(remaining)
	for _, key := range remaining {
		value := r[key]
		switch value.(type) {
		case map[string]any, []any, Record:
			compact, _ := json.Marshal(value)
			rows = append(rows, []any{key, string(compact)})
		default:
			rows = append(rows, []any{key, fmt.Sprintf("%v", value)})
		}
	}
	if len(rows) == 0 {
		return "<>"
	}
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(85)
	if name != "" {
		return fmt.Sprintf("%s:\n%s", name, t.Render("grid"))
	}
	return fmt.Sprintf("\n%s", t.Render("grid"))
}

// PrettyJson renders the Record as JSON, optionally indented
func (r Record) PrettyJson(indent ...string) string {
	return prettyJson(r, indent...)
}

func (r Record) Empty() bool {
	return len(r) == 0
}

func (r Record) String() string {
	return r.PrettyTable()
}

// PrettyTable renders the full RecordSet by rendering each individual Record
func (rs RecordSet) PrettyTable() string {
	if len(rs) == 0 {
		return "[]"
	}
	var out strings.Builder
	out.WriteString("[\n")
	for i, record := range rs {
		out.WriteString(record.PrettyTable())
		if i < len(rs)-1 {
			out.WriteString("\n\n")
		}
	}
	out.WriteString("\n]")
	return out.String()
}

func (rs RecordSet) Empty() bool {
	return len(rs) == 0
}

// PrettyJson renders the RecordSet as JSON, optionally indented
func (rs RecordSet) PrettyJson(indent ...string) string {
	return prettyJson(rs, indent...)
}

func prettyJson(v any, indent ...string) string {
	var b []byte
	var err error
	if len(indent) > 0 {
		b, err = json.MarshalIndent(v, "", indent[0])
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf("failed to marshal JSON: %v", err)
	}
	return string(b)
}

// unmarshalToRecordUnion parses an HTTP response body into one of the supported record types:
// - Record: a map representing a single JSON object (empty Record{} for empty responses or 204 No Content).
// - RecordSet: a slice of Records representing a JSON array.
func unmarshalToRecordUnion(response *http.Response) (Renderable, error) {
	defer response.Body.Close()

	if response.ContentLength == 0 || response.StatusCode == http.StatusNoContent {
		return Record{}, nil
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Record{}, nil
	}
	switch trimmed[0] {
	case '{':
		var rec Record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("malformed response object: %w", err)
		}
		return rec, nil
	case '[':
		var recSet RecordSet
		if err := json.Unmarshal(trimmed, &recSet); err == nil {
			return recSet, nil
		}
		var anySlice []any
		if err := json.Unmarshal(trimmed, &anySlice); err != nil {
			return nil, fmt.Errorf("malformed response list: %w", err)
		}
		recordSet := make(RecordSet, len(anySlice))
		for i, item := range anySlice {
			recordSet[i] = Record{customRawKey: item}
		}
		return recordSet, nil
	default:
		return nil, fmt.Errorf("unsupported JSON format: must be object or array")
	}
}

// typeMatch checks whether the dynamic type of given Renderable value
// matches the generic type T at runtime.
func typeMatch[T RecordUnion](val Renderable) bool {
	var zero T
	return reflect.TypeOf(val) == reflect.TypeOf(zero)
}

// setResourceKey sets resource type key for tabular formatting (only if not already set).
func setResourceKey(result Renderable, resourceType string) error {
	switch v := result.(type) {
	case Record:
		if _, ok := v[ResourceTypeKey]; !ok && len(v) > 0 {
			v[ResourceTypeKey] = resourceType
		}
		return nil
	case RecordSet:
		for _, rec := range v {
			if _, ok := rec[ResourceTypeKey]; !ok && len(rec) > 0 {
				rec[ResourceTypeKey] = resourceType
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported type %T", result)
	}
}
