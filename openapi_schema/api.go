// Package openapi_schema checks write payloads against an embedded OpenAPI
// description of the Storymarket content endpoints.
package openapi_schema

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	//go:embed storymarket.yaml
	schemaData     []byte
	openApiDocOnce sync.Once
	openApiDoc     *openapi3.T
	openApiDocErr  error

	apiPrefix = regexp.MustCompile(`^/api/[^/]+`)
)

// loadOpenAPIDocOnce parses and validates the embedded document exactly once.
// Errors from the first load are returned on every call.
func loadOpenAPIDocOnce() (*openapi3.T, error) {
	openApiDocOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(schemaData)
		if err != nil {
			openApiDocErr = fmt.Errorf("load OpenAPI document: %w", err)
			return
		}
		if err = doc.Validate(context.Background()); err != nil {
			openApiDocErr = fmt.Errorf("invalid OpenAPI document: %w", err)
			return
		}
		openApiDoc = doc
	})
	return openApiDoc, openApiDocErr
}

// resourcePathOf reduces a full request URL or an API path to the path the
// document is keyed by: "https://host/api/1.0/content/audio/7/" gives "/content/audio/7/".
func resourcePathOf(rawURL string) (string, error) {
	parsed, err := urlpkg.Parse(rawURL)
	if err != nil {
		return "", err
	}
	path := apiPrefix.ReplaceAllString(parsed.Path, "")
	return "/" + strings.Trim(path, "/") + "/", nil
}

// GetOpenApiResource finds the path item for a concrete resource path. A
// trailing object id is matched against the "{id}" template.
func GetOpenApiResource(resourcePath string) (*openapi3.PathItem, error) {
	doc, err := loadOpenAPIDocOnce()
	if err != nil {
		return nil, err
	}
	path, err := resourcePathOf(resourcePath)
	if err != nil {
		return nil, err
	}
	if item := doc.Paths.Find(path); item != nil {
		return item, nil
	}
	trimmed := strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i > 0 {
		if item := doc.Paths.Find(trimmed[:i] + "/{id}/"); item != nil {
			return item, nil
		}
	}

	var available []string
	for p := range doc.Paths.Map() {
		available = append(available, p)
	}
	sort.Strings(available)
	return nil, fmt.Errorf(
		"path %q not found in OpenAPI schema. Available paths:\n  - %s",
		resourcePath,
		strings.Join(available, "\n  - "),
	)
}

// GetRequestBodySchema returns the JSON request body schema of an operation,
// or nil when the operation takes no body.
func GetRequestBodySchema(httpMethod, resourcePath string) (*openapi3.SchemaRef, error) {
	item, err := GetOpenApiResource(resourcePath)
	if err != nil {
		return nil, err
	}
	operation := item.GetOperation(strings.ToUpper(httpMethod))
	if operation == nil {
		return nil, fmt.Errorf("%s is not supported on %q", httpMethod, resourcePath)
	}
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil, nil
	}
	content := operation.RequestBody.Value.Content.Get("application/json")
	if content == nil || content.Schema == nil {
		return nil, nil
	}
	return content.Schema, nil
}

// ValidateRequestBody checks a JSON body against the request schema of the operation.
func ValidateRequestBody(httpMethod, resourcePath string, body []byte) error {
	schemaRef, err := GetRequestBodySchema(httpMethod, resourcePath)
	if err != nil {
		return err
	}
	if schemaRef == nil || schemaRef.Value == nil {
		return nil
	}
	var value any
	if err = json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("request body is not JSON: %w", err)
	}
	if err = schemaRef.Value.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToUpper(httpMethod), resourcePath, err)
	}
	return nil
}

// ValidateBeforeRequest has the signature of core.Config.BeforeRequestFn. It
// rejects POST and PUT bodies that do not match the schema before they are sent.
func ValidateBeforeRequest(_ context.Context, _ *http.Request, verb, url string, body io.Reader) error {
	if verb != http.MethodPost && verb != http.MethodPut {
		return nil
	}
	if body == nil {
		return nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return ValidateRequestBody(verb, url, raw)
}

// OperationIDs lists the operation ids declared for a resource path, sorted.
func OperationIDs(resourcePath string) ([]string, error) {
	item, err := GetOpenApiResource(resourcePath)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, op := range item.Operations() {
		if op.OperationID != "" {
			ids = append(ids, op.OperationID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
