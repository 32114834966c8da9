package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotImplemented is returned by blob uploads when no BlobUploader is configured.
	ErrNotImplemented = errors.New("not implemented")

	// ErrResourceRequired is returned by Update when data is omitted and the
	// first argument is a bare identifier rather than a resource.
	ErrResourceRequired = errors.New("a resource instance is required when update data is omitted")

	// ErrDeleted is returned when a write is attempted through a resource that was deleted.
	ErrDeleted = errors.New("resource has been deleted")
)

// ApiError represents an error returned from an API request.
// It is the transport-level error: any non-2xx response or an unreachable server.
type ApiError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ApiError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request to %s failed: %s", e.Method, e.URL, e.Body)
	}
	return fmt.Sprintf(
		"%s request to %s returned status code %d"+
			" - response body: %s", e.Method, e.URL, e.StatusCode, e.Body,
	)
}

// NotFoundError is returned when the remote object does not exist (HTTP 404).
type NotFoundError struct {
	Resource string
	Path     string
	Err      *ApiError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource '%s' not found at '%s'", e.Resource, e.Path)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// ValidationError is returned when the remote API rejects a payload (4xx).
type ValidationError struct {
	Resource string
	Err      *ApiError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("resource '%s' rejected by server: %s", e.Resource, e.Err.Body)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AttributeNotFoundError is returned when an unknown attribute is accessed on a resource.
type AttributeNotFoundError struct {
	Resource  string
	Attribute string
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("'%s' has no attribute '%s'", e.Resource, e.Attribute)
}

// MissingFieldError is returned when an embedded sub-object lacks a required key.
type MissingFieldError struct {
	Type  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field '%s'", e.Type, e.Field)
}

func IsApiError(err error) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr)
}

func IsNotFoundErr(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

func IsValidationErr(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsAttributeNotFoundErr(err error) bool {
	var anfErr *AttributeNotFoundError
	return errors.As(err, &anfErr)
}

func IgnoreNotFound(val Record, err error) (Record, error) {
	if IsNotFoundErr(err) {
		return val, nil
	}
	return val, err
}

// IgnoreStatusCodes returns nil if err is an ApiError with one of the given status codes.
func IgnoreStatusCodes(err error, codes ...int) error {
	if ExpectStatusCodes(err, codes...) {
		return nil
	}
	return err
}

// ExpectStatusCodes reports whether err is an ApiError with one of the given status codes.
func ExpectStatusCodes(err error, codes ...int) bool {
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

// classifyError attaches the resource classification to a transport error.
// 404 becomes NotFoundError, other client errors except auth failures become
// ValidationError. Everything else is returned unchanged.
func classifyError(resource, path string, err error) error {
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch code := apiErr.StatusCode; {
	case code == http.StatusNotFound:
		return &NotFoundError{Resource: resource, Path: path, Err: apiErr}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return err
	case code >= 400 && code < 500:
		return &ValidationError{Resource: resource, Err: apiErr}
	}
	return err
}
