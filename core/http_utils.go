package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
)

// validateResponse checks the response for valid HTTP status codes (2xx).
// It returns an *ApiError if the status code is not 2xx or the response is nil.
func validateResponse(response *http.Response) error {
	requestURL := "<unknown URL>"
	method := "<unknown method>"
	if response == nil {
		return &ApiError{
			Method:     method,
			URL:        requestURL,
			StatusCode: 0,
			Body:       "server unreachable: verify the host is correct and the network is accessible",
		}
	}
	if response.StatusCode >= 200 && response.StatusCode <= 299 {
		return nil
	}
	if response.Request != nil {
		if response.Request.URL != nil {
			requestURL = response.Request.URL.String()
		}
		method = response.Request.Method
	}
	return &ApiError{
		Method:     method,
		URL:        requestURL,
		StatusCode: response.StatusCode,
		Body:       getResponseBodyAsStr(response),
	}
}

// buildUrl builds the full URL for a resource path. The API root is
// "/api/<version>/" and the trailing slash of path is preserved, since the
// Storymarket API addresses every resource with a trailing slash.
func buildUrl(config *Config, path, apiVer string) (string, error) {
	if apiVer == "" {
		apiVer = config.ApiVersion
	}
	parsed, err := urlpkg.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid resource path %q: %w", path, err)
	}
	if parsed.Scheme != "" {
		return path, nil // already a full URL
	}
	trimmed := strings.Trim(parsed.Path, "/")
	joined := "/api/" + strings.Trim(apiVer, "/") + "/"
	if trimmed != "" {
		joined += trimmed + "/"
	}
	host := config.Host
	if config.Port != 0 {
		host = fmt.Sprintf("%s:%d", config.Host, config.Port)
	}
	scheme := config.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	url := urlpkg.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     joined,
		RawQuery: parsed.RawQuery,
	}
	return url.String(), nil
}

// BuildURL returns the absolute URL of a resource path for the configured
// host and API version, e.g. "/content/audio/7/" gives
// "https://storymarket.com/api/1.0/content/audio/7/".
func BuildURL(config *Config, path string) (string, error) {
	return buildUrl(config, path, "")
}

// getResponseBodyAsStr reads and returns the HTTP response body as a string.
// Valid JSON is pretty-printed; anything else is returned verbatim.
//
// Note: This function consumes and closes the response body.
func getResponseBodyAsStr(r *http.Response) string {
	var b bytes.Buffer
	if r == nil || r.Body == nil {
		return ""
	}
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	if err = json.Indent(&b, body, "", "  "); err == nil {
		return b.String()
	}
	return string(body)
}
