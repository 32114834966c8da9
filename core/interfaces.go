package core

import (
	"context"
	"io"
	"net/http"
)

// Rest is the shared API context every manager is bound to.
type Rest interface {
	GetSession() RESTSession
	GetCtx() context.Context
	SetCtx(context.Context)
}

// RequestInterceptor defines a middleware-style interface for intercepting API requests
// and responses. Managers get no-op implementations; install a custom one with
// Manager.SetInterceptor.
type RequestInterceptor interface {
	// BeforeRequest is invoked prior to sending the API request.
	BeforeRequest(ctx context.Context, r *http.Request, verb, url string, body io.Reader) error

	// AfterRequest is invoked after the API response is received and may
	// return a modified Record or RecordSet.
	AfterRequest(ctx context.Context, response Renderable) (Renderable, error)
}

// BlobUploader associates a binary payload with an existing content object.
// path is the object's resource path, e.g. "/content/audio/7/".
// Implementations perform one remote write and must honour ctx cancellation.
type BlobUploader interface {
	UploadBlob(ctx context.Context, session RESTSession, path string, blob io.Reader) error
}
