package openapi_schema

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

func mustLoadDoc(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := loadOpenAPIDocOnce()
	if err != nil {
		t.Fatalf("failed to load OpenAPI doc: %v", err)
	}
	if doc == nil {
		t.Fatalf("openapi doc is nil")
	}
	return doc
}

func TestLoadDoc(t *testing.T) {
	doc := mustLoadDoc(t)
	for _, path := range []string{
		"/content/audio/", "/content/audio/{id}/",
		"/content/text/", "/content/sub_category/", "/orgs/", "/pricing/", "/rights/",
	} {
		if doc.Paths.Value(path) == nil {
			t.Errorf("path %q missing from document", path)
		}
	}
}

func TestResourcePathOf(t *testing.T) {
	cases := map[string]string{
		"https://storymarket.com/api/1.0/content/audio/": "/content/audio/",
		"http://127.0.0.1:8080/api/1.0/content/audio/7/": "/content/audio/7/",
		"/api/2/orgs/3":                                  "/orgs/3/",
		"content/photo/":                                 "/content/photo/",
	}
	for in, want := range cases {
		got, err := resourcePathOf(in)
		if err != nil {
			t.Fatalf("resourcePathOf(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("resourcePathOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetOpenApiResource_ValidAndInvalid(t *testing.T) {
	for _, path := range []string{
		"/content/audio/",
		"/content/audio/42/",
		"https://storymarket.com/api/1.0/content/video/abc/",
		"/content/sub_category/{id}/",
	} {
		if _, err := GetOpenApiResource(path); err != nil {
			t.Fatalf("GetOpenApiResource(%q): %v", path, err)
		}
	}

	_, err := GetOpenApiResource("/this/path/does/not/exist/")
	if err == nil {
		t.Fatalf("expected error for invalid path, got nil")
	}
	if !strings.Contains(err.Error(), "/content/audio/") {
		t.Errorf("error should list available paths, got %v", err)
	}
}

func TestGetRequestBodySchema(t *testing.T) {
	schema, err := GetRequestBodySchema(http.MethodPost, "/content/audio/")
	if err != nil {
		t.Fatalf("GetRequestBodySchema: %v", err)
	}
	if schema == nil || schema.Value == nil {
		t.Fatalf("expected a request body schema for createAudio")
	}

	schema, err = GetRequestBodySchema(http.MethodGet, "/content/audio/")
	if err != nil {
		t.Fatalf("GetRequestBodySchema GET: %v", err)
	}
	if schema != nil {
		t.Errorf("GET takes no body, got %v", schema)
	}

	if _, err = GetRequestBodySchema(http.MethodPost, "/orgs/"); err == nil {
		t.Errorf("POST on /orgs/ should be rejected")
	}
}

func TestValidateRequestBody(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantErr bool
	}{
		{"flattened audio", http.MethodPost, "/content/audio/",
			`{"title":"Clip","duration":30,"tags":"news, city","org":"/orgs/7/","category":"/content/sub_category/3/","author":"jdoe"}`, false},
		{"update photo", http.MethodPut, "/content/photo/5/", `{"caption":"at dusk"}`, false},
		{"bad org reference", http.MethodPost, "/content/audio/", `{"title":"Clip","org":"7"}`, true},
		{"string duration", http.MethodPost, "/content/video/", `{"duration":"long"}`, true},
		{"negative duration", http.MethodPut, "/content/audio/1/", `{"duration":-1}`, true},
		{"tags as list", http.MethodPost, "/content/text/", `{"tags":["a","b"]}`, true},
		{"not json", http.MethodPost, "/content/data/", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequestBody(tt.method, tt.path, []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRequestBody() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBeforeRequest(t *testing.T) {
	ctx := context.Background()
	url := "https://storymarket.com/api/1.0/content/audio/"

	if err := ValidateBeforeRequest(ctx, nil, http.MethodGet, url, strings.NewReader(`{"duration":"x"}`)); err != nil {
		t.Errorf("GET bodies are not validated, got %v", err)
	}
	if err := ValidateBeforeRequest(ctx, nil, http.MethodPost, url, nil); err != nil {
		t.Errorf("nil body should pass, got %v", err)
	}
	if err := ValidateBeforeRequest(ctx, nil, http.MethodPost, url, strings.NewReader("  ")); err != nil {
		t.Errorf("empty body should pass, got %v", err)
	}
	if err := ValidateBeforeRequest(ctx, nil, http.MethodPost, url, strings.NewReader(`{"duration":"x"}`)); err == nil {
		t.Errorf("expected a schema error")
	}
}

func TestOperationIDs(t *testing.T) {
	ids, err := OperationIDs("/content/audio/9/")
	if err != nil {
		t.Fatalf("OperationIDs: %v", err)
	}
	want := []string{"deleteAudio", "getAudio", "updateAudio"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("OperationIDs = %v, want %v", ids, want)
	}
}
